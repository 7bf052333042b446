package backtest

import (
	"math"
	"testing"
	"time"

	"strategylab/internal/types"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// mkBars builds one daily bar per close
func mkBars(closes ...float64) []types.OHLCV {
	bars := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		ts := day0.AddDate(0, 0, i)
		bars[i] = types.NewOHLCV("TEST", ts, c, c, c, c, 1000)
	}
	return bars
}

func sigs(values ...int) []types.Signal {
	return types.SignalsFromInts(values)
}

func zeroCostParams(mode Mode, capital float64) Params {
	p := DefaultParams()
	p.Mode = mode
	p.InitialCapital = capital
	p.CommissionRate = 0
	p.Slippage = 0
	p.RiskFreeRate = 0
	return p
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6*math.Max(1, math.Abs(want)) {
		t.Fatalf("%s = %.10f, want %.10f", name, got, want)
	}
}
