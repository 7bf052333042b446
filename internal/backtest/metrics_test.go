package backtest

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"strategylab/internal/types"
)

func TestSharpeRatio(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.02, 0.0}
	std := math.Sqrt(0.000125)

	approx(t, "sharpe rf=0", SharpeRatio(returns, 0, 252), 0.005/std*math.Sqrt(252))
	approx(t, "sharpe rf=2.52%", SharpeRatio(returns, 0.0252, 252), (0.005-0.0001)/std*math.Sqrt(252))
}

func TestSharpeRatio_Undefined(t *testing.T) {
	tests := []struct {
		name    string
		returns []float64
	}{
		{"empty", nil},
		{"single", []float64{0.01}},
		{"constant", []float64{0.01, 0.01, 0.01, 0.01}},
		{"zero", []float64{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SharpeRatio(tt.returns, 0.02, 252); !math.IsNaN(got) {
				t.Fatalf("sharpe = %v, want NaN", got)
			}
		})
	}
}

func TestDrawdowns(t *testing.T) {
	values := []float64{100, 120, 90, 130, 65}
	want := []float64{0, 0, -0.25, 0, -0.5}
	got := Drawdowns(values)
	for i := range want {
		approx(t, "drawdown", got[i], want[i])
	}
	approx(t, "max drawdown", MaxDrawdown(values), -0.5)

	if dd := MaxDrawdown([]float64{1, 2, 3}); dd != 0 {
		t.Fatalf("rising curve drawdown = %v, want 0", dd)
	}
}

func TestAnnualizedReturn(t *testing.T) {
	approx(t, "two years", AnnualizedReturn(0.21, 730), 0.1)
	approx(t, "one year", AnnualizedReturn(0.05, 365), 0.05)
	if got := AnnualizedReturn(0.5, 0); got != 0 {
		t.Fatalf("zero span = %v, want 0", got)
	}
}

func TestComputeTradeStats(t *testing.T) {
	trades := []types.Trade{
		{ProfitLoss: 10, Return: 0.1, HoldingPeriod: 2},
		{ProfitLoss: -5, Return: -0.05, HoldingPeriod: 4},
		{ProfitLoss: 5, Return: 0.05, HoldingPeriod: 3},
	}
	s := ComputeTradeStats(trades)
	if s.Count != 3 || s.Wins != 2 || s.Losses != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	approx(t, "win rate", s.WinRate, 2.0/3)
	approx(t, "profit factor", s.ProfitFactor, 3)
	approx(t, "avg profit", s.AvgProfit, 10.0/3)
	approx(t, "avg holding", s.AvgHolding, 3)
	if s.MaxProfit != 10 || s.MaxLoss != -5 {
		t.Fatalf("extremes = %v/%v, want 10/-5", s.MaxProfit, s.MaxLoss)
	}
}

func TestProfitFactor_Edges(t *testing.T) {
	onlyWins := ComputeTradeStats([]types.Trade{{ProfitLoss: 3}, {ProfitLoss: 1}})
	if !math.IsInf(onlyWins.ProfitFactor, 1) {
		t.Fatalf("profit factor without losses = %v, want +Inf", onlyWins.ProfitFactor)
	}

	breakEven := ComputeTradeStats([]types.Trade{{ProfitLoss: 0}})
	if breakEven.ProfitFactor != 0 || breakEven.WinRate != 0 {
		t.Fatalf("break-even stats = %+v", breakEven)
	}

	empty := ComputeTradeStats(nil)
	if empty != (TradeStats{}) {
		t.Fatalf("empty stats = %+v, want zero value", empty)
	}
}

func TestMetrics_MarshalJSON(t *testing.T) {
	m := Metrics{
		TotalReturn:  0.1,
		SharpeRatio:  math.NaN(),
		ProfitFactor: math.Inf(1),
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"sharpe_ratio":null`, `"profit_factor":"+Inf"`, `"total_return":0.1`} {
		if !strings.Contains(out, want) {
			t.Fatalf("%s missing from %s", want, out)
		}
	}
}
