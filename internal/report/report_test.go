package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"strategylab/internal/backtest"
	"strategylab/internal/types"
)

func sampleResult() *backtest.Result {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &backtest.Result{
		Mode:     backtest.ModeWholeCapital,
		Symbol:   "BTCUSDT",
		Strategy: "sma_cross",
		Equity: []types.EquityPoint{
			{Timestamp: start, Equity: 1000000},
			{Timestamp: start.AddDate(0, 0, 30), Equity: 1234567.891},
		},
		Trades: []types.Trade{
			{Direction: types.PositionTypeLong, EntryTime: start, ExitTime: start.AddDate(0, 0, 3), EntryPrice: 100, ExitPrice: 110, ProfitLoss: 100, Return: 0.1},
			{Direction: types.PositionTypeLong, EntryTime: start.AddDate(0, 0, 5), ExitTime: start.AddDate(0, 0, 9), EntryPrice: 110, ExitPrice: 105, ProfitLoss: -45.5, Return: -0.045},
		},
		Metrics: backtest.Metrics{
			InitialCapital: 1000000,
			FinalEquity:    1234567.891,
			TotalReturn:    0.234567891,
			SharpeRatio:    math.NaN(),
			ProfitFactor:   math.Inf(1),
			TotalTrades:    2,
			HoldingUnit:    backtest.HoldingUnitBars,
		},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleResult(), Options{MaxTrades: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"BTCUSDT sma_cross / whole_capital",
		"1,234,567.89",
		"23.46%",
		"n/a",
		"inf",
		"1 more",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestWrite_Locale(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleResult(), Options{Locale: "de-DE"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "1.234.567,89") {
		t.Fatalf("german grouping missing:\n%s", buf.String())
	}

	if err := Write(&buf, sampleResult(), Options{Locale: "not a locale!"}); err == nil {
		t.Fatal("expected locale parse error")
	}
}
