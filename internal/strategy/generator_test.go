package strategy

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"strategylab/internal/indicators"
	"strategylab/internal/types"
)

func barsFromCloses(closes []float64) []types.OHLCV {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = types.NewOHLCV("TEST", start.AddDate(0, 0, i), c, c, c, c, 1)
	}
	return bars
}

func randomWalk(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	closes := make([]float64, n)
	price := 100.0
	for i := range closes {
		price *= 1 + rng.NormFloat64()*0.02
		closes[i] = price
	}
	return closes
}

func ramp(segments ...[3]float64) []float64 {
	// each segment is {start, step, count}
	var out []float64
	for _, s := range segments {
		for i := 0; i < int(s[2]); i++ {
			out = append(out, s[0]+s[1]*float64(i))
		}
	}
	return out
}

func TestNew_Registry(t *testing.T) {
	for _, name := range Names() {
		g, err := New(name, nil)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if g.Name() != name {
			t.Fatalf("name = %q, want %q", g.Name(), name)
		}
		if g.Lookback() <= 0 {
			t.Fatalf("%s: lookback = %d", name, g.Lookback())
		}
	}
	if len(Names()) != 4 {
		t.Fatalf("names = %v", Names())
	}

	if _, err := New("commit_sma", nil); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("error = %v, want ErrUnknownStrategy", err)
	}
}

func TestNew_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{SMACrossName, Params{"fast": 10, "slow": 5}},
		{SMACrossName, Params{"fast": 0}},
		{SMACrossName, Params{"slow": 2.5}},
		{MACDCrossName, Params{"signal": -1}},
		{RSIThresholdName, Params{"buy": 80, "sell": 70}},
		{RSIThresholdName, Params{"sell": math.Inf(1)}},
		{SmartMoneyName, Params{"main_hull": 1}},
	}
	for _, tt := range tests {
		if _, err := New(tt.name, tt.params); !errors.Is(err, ErrInvalidParams) {
			t.Fatalf("%s %v: error = %v, want ErrInvalidParams", tt.name, tt.params, err)
		}
	}
}

func TestSMACross(t *testing.T) {
	g, err := New(SMACrossName, Params{"fast": 2, "slow": 3})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	closes := []float64{5, 4, 3, 2, 1, 2, 3, 4, 5, 4, 3, 2, 1}
	got := g.Generate(barsFromCloses(closes))

	want := make([]types.Signal, len(closes))
	want[6] = types.SignalLong
	want[10] = types.SignalShort
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("signals = %v, want %v", got, want)
		}
	}
}

func TestMACDCross(t *testing.T) {
	g, err := New(MACDCrossName, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	closes := ramp([3]float64{200, -1, 40}, [3]float64{161, 1, 40})
	got := g.Generate(barsFromCloses(closes))

	firstLong := -1
	for i, s := range got {
		if s == types.SignalLong {
			firstLong = i
			break
		}
	}
	if firstLong <= 40 || firstLong > 60 {
		t.Fatalf("first long signal at %d, want shortly after the turn at 40", firstLong)
	}
}

func TestRSIThreshold(t *testing.T) {
	g, err := New(RSIThresholdName, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	closes := ramp([3]float64{100, -1, 20}, [3]float64{81, 1, 20}, [3]float64{97, -3, 10})
	got := g.Generate(barsFromCloses(closes))

	var longs, shorts []int
	for i, s := range got {
		switch s {
		case types.SignalLong:
			longs = append(longs, i)
		case types.SignalShort:
			shorts = append(shorts, i)
		}
	}
	if len(longs) != 1 || longs[0] < 20 || longs[0] > 25 {
		t.Fatalf("long signals at %v, want one just after bar 20", longs)
	}
	if len(shorts) != 1 || shorts[0] != 40 {
		t.Fatalf("short signals at %v, want [40]", shorts)
	}
}

func TestSmartMoney_TrendFilter(t *testing.T) {
	g, err := New(SmartMoneyName, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if g.Lookback() != 338 {
		t.Fatalf("lookback = %d, want 338", g.Lookback())
	}

	closes := make([]float64, 900)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.05 + 8*math.Sin(float64(i)/15)
	}
	got := g.Generate(barsFromCloses(closes))
	if len(got) != len(closes) {
		t.Fatalf("signals = %d, want %d", len(got), len(closes))
	}

	warmup := indicators.HullWarmup(55) + 1
	for i := 0; i < warmup; i++ {
		if got[i] != types.SignalHold {
			t.Fatalf("signal %v during warm-up at %d", got[i], i)
		}
	}

	tf, ts := indicators.EMA(144, closes), indicators.EMA(169, closes)
	rf, rs := indicators.EMA(288, closes), indicators.EMA(338, closes)
	for i, s := range got {
		switch s {
		case types.SignalLong:
			if !(tf[i] > ts[i] && rf[i] > rs[i]) {
				t.Fatalf("long at %d against the trend", i)
			}
		case types.SignalShort:
			if !(tf[i] < ts[i] && rf[i] < rs[i]) {
				t.Fatalf("short at %d against the trend", i)
			}
		}
	}
}

func TestGenerators_NoLookahead(t *testing.T) {
	closes := randomWalk(800, 42)
	bars := barsFromCloses(closes)
	cut := 500

	for _, name := range Names() {
		g, err := New(name, nil)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		full := g.Generate(bars)
		prefix := g.Generate(bars[:cut])
		for i := range prefix {
			if prefix[i] != full[i] {
				t.Fatalf("%s: signal %d changes when later bars are added", name, i)
			}
		}
		for i, s := range full {
			if !s.Valid() {
				t.Fatalf("%s: invalid signal %d at %d", name, s, i)
			}
		}
	}
}
