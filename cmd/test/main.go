package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"strategylab/internal/backtest"
	"strategylab/internal/data"
	"strategylab/internal/indicators"
	"strategylab/internal/live"
	"strategylab/internal/report"
	"strategylab/internal/strategy"
	"strategylab/internal/types"
)

func main() {
	fmt.Println("🚀 Starting Strategy Lab smoke run...")

	config := data.DefaultSimulationConfig()
	config.Seed = 42
	bars := data.NewSimulator(config).Bars(1000)

	fmt.Println("\n=== Testing Indicators ===")
	testIndicators(bars)

	fmt.Println("\n=== Testing Resampling ===")
	testResample(bars)

	fmt.Println("\n=== Testing Backtest Engines ===")
	testEngines(bars)

	fmt.Println("\n=== Testing Live Stepper ===")
	testLive(bars)

	fmt.Println("\n✅ All checks completed successfully!")
}

func testIndicators(bars []types.OHLCV) {
	closes := types.Closes(bars)
	last := len(closes) - 1

	sma := indicators.SMA(20, closes)
	ema := indicators.EMA(20, closes)
	rsi := indicators.RSI(14, closes)
	macd, signal := indicators.MACD(12, 26, 9, closes)

	fmt.Printf("📈 SMA(20): %.4f\n", sma[last])
	fmt.Printf("📈 EMA(20): %.4f\n", ema[last])
	fmt.Printf("📊 RSI(14): %.2f\n", rsi[last])
	fmt.Printf("📊 MACD: %.4f, Signal: %.4f\n", macd[last], signal[last])
}

func testResample(bars []types.OHLCV) {
	interval, err := data.ParseTimeframe("1w")
	if err != nil {
		log.Fatalf("parse timeframe: %v", err)
	}
	weekly := data.Resample(bars, interval)
	fmt.Printf("✅ %d daily bars -> %d weekly bars\n", len(bars), len(weekly))
}

func testEngines(bars []types.OHLCV) {
	var jobs []backtest.Job
	for _, name := range strategy.Names() {
		gen, err := strategy.New(name, nil)
		if err != nil {
			log.Fatalf("strategy %s: %v", name, err)
		}
		signals := gen.Generate(bars)
		for _, mode := range []backtest.Mode{backtest.ModeWholeCapital, backtest.ModeLeveraged} {
			params := backtest.DefaultParams()
			params.Mode = mode
			jobs = append(jobs, backtest.Job{Symbol: "SYNTH", Strategy: name, Bars: bars, Signals: signals, Params: params})
		}
	}

	results, err := backtest.RunBatch(context.Background(), jobs, 4)
	if err != nil {
		log.Fatalf("batch: %v", err)
	}
	for _, jr := range results {
		if jr.Err != nil {
			log.Fatalf("%s: %v", jr.Strategy, jr.Err)
		}
		m := jr.Result.Metrics
		fmt.Printf("✅ %-14s %-13s return=%7.2f%% trades=%3d max_dd=%6.2f%%\n",
			jr.Strategy, jr.Result.Mode, m.TotalReturn*100, m.TotalTrades, m.MaxDrawdown*100)
	}

	fmt.Println()
	if err := report.Write(os.Stdout, results[0].Result, report.Options{MaxTrades: 3}); err != nil {
		log.Fatalf("report: %v", err)
	}
}

// testLive replays the series one bar at a time and compares the final
// equity with the whole-capital backtest of the same signals.
func testLive(bars []types.OHLCV) {
	dir, err := os.MkdirTemp("", "strategylab-live")
	if err != nil {
		log.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	store, err := live.NewFileStore(dir)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	runner := live.NewRunner(store)
	ctx := context.Background()

	costs := backtest.Costs{CommissionRate: 0.001, Slippage: 0.0005}
	state, err := runner.Start(ctx, "SYNTH", strategy.SMACrossName, nil, 10000, costs)
	if err != nil {
		log.Fatalf("start: %v", err)
	}

	for i := 1; i <= len(bars); i++ {
		if state, _, err = runner.Tick(ctx, state.InstanceID, bars[:i]); err != nil {
			log.Fatalf("tick %d: %v", i, err)
		}
	}

	gen, _ := strategy.New(strategy.SMACrossName, nil)
	params := backtest.DefaultParams()
	params.CommissionRate, params.Slippage = costs.CommissionRate, costs.Slippage
	res, err := backtest.Run(bars, gen.Generate(bars), params)
	if err != nil {
		log.Fatalf("backtest: %v", err)
	}

	// the backtest liquidates after the last bar, the live instance does not
	fmt.Printf("✅ Live: %d steps, %d trades, equity %.2f (backtest %.2f)\n",
		state.BarsProcessed, state.TradeCount, state.Equity, res.Metrics.FinalEquity)
}
