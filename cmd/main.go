package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"strategylab/internal/api"
	"strategylab/internal/backtest"
	"strategylab/internal/config"
	"strategylab/internal/data"
	"strategylab/internal/live"
	"strategylab/internal/logging"
	"strategylab/internal/report"
	"strategylab/internal/strategy"
	"strategylab/internal/types"

	"github.com/sirupsen/logrus"
)

const (
	// Application constants
	AppName           = "Strategy Lab"
	AppVersion        = "1.0.0"
	DefaultConfigPath = "./config.yaml"
)

var (
	// Command line flags
	configPath   = flag.String("config", DefaultConfigPath, "Path to configuration file (.yaml or .json)")
	runMode      = flag.String("mode", "backtest", "Run mode: backtest, step, serve")
	dataFile     = flag.String("data", "", "OHLCV CSV file (overrides config)")
	strategyList = flag.String("strategy", "", "Strategy name, or a comma separated list for a batch run")
	instanceID   = flag.String("instance", "", "Live instance id for step mode; a new instance is created when empty")
	debugMode    = flag.Bool("debug", false, "Enable debug mode")
	version      = flag.Bool("version", false, "Show version information")
	help         = flag.Bool("help", false, "Show help information")

	// Global variables
	cfg    *config.Config
	logger *logging.Logger
)

// Application represents the main application
type Application struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func init() {
	flag.Usage = printUsage
}

func main() {
	flag.Parse()

	if *version {
		printVersion()
		os.Exit(0)
	}

	if *help {
		printUsage()
		os.Exit(0)
	}

	app, err := initializeApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	defer app.cancel()

	if err := app.run(); err != nil {
		logger.Fatalf("Application failed: %v", err)
	}

	logger.Info("Application shutdown completed")
}

// initializeApplication loads configuration and sets up logging
func initializeApplication() (*Application, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{ctx: ctx, cancel: cancel}

	var err error
	cfg, err = config.LoadConfig(*configPath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if *debugMode {
		cfg.App.Debug = true
		cfg.Logging.Level = "debug"
	}
	if *dataFile != "" {
		cfg.Backtest.DataFile = *dataFile
	}
	if *instanceID != "" {
		cfg.Live.InstanceID = *instanceID
	}

	if err := ensureDirectories(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	logging.InitGlobalLogger(cfg.Logging)
	logger = logging.NewComponentLogger("main")

	logger.WithFields(logrus.Fields{
		"version":     AppVersion,
		"environment": cfg.App.Environment,
		"config_path": *configPath,
		"mode":        *runMode,
		"debug_mode":  cfg.App.Debug,
	}).Info("Starting Strategy Lab")

	app.setupSignalHandling()
	return app, nil
}

// run dispatches on the run mode
func (app *Application) run() error {
	switch *runMode {
	case "backtest":
		return app.runBacktest()
	case "step":
		return app.runStep()
	case "serve":
		return app.runServer()
	default:
		return fmt.Errorf("unknown mode %q", *runMode)
	}
}

// loadBars reads the configured data file and resamples it when asked
func loadBars() ([]types.OHLCV, error) {
	bars, err := data.LoadBarsCSV(cfg.Backtest.DataFile, data.LoadOptions{
		Symbol: cfg.Backtest.Symbol,
		Start:  cfg.Backtest.StartTime,
		End:    cfg.Backtest.EndTime,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Backtest.Timeframe != "" {
		interval, err := data.ParseTimeframe(cfg.Backtest.Timeframe)
		if err != nil {
			return nil, err
		}
		before := len(bars)
		bars = data.Resample(bars, interval)
		logger.Infof("Resampled %d bars to %d %s bars", before, len(bars), cfg.Backtest.Timeframe)
	}
	return bars, nil
}

// strategyNames returns the -strategy list, or the configured strategy
func strategyNames() []string {
	if *strategyList == "" {
		return []string{cfg.Strategy.Name}
	}
	var names []string
	for _, name := range strings.Split(*strategyList, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// strategyParams returns the configured params for the configured strategy
// and the defaults for any other one
func strategyParams(name string) strategy.Params {
	if name == cfg.Strategy.Name {
		return strategy.Params(cfg.Strategy.Params)
	}
	return nil
}

// runBacktest simulates every requested strategy over the data file
func (app *Application) runBacktest() error {
	bars, err := loadBars()
	if err != nil {
		return fmt.Errorf("failed to load bars: %w", err)
	}
	params := cfg.BacktestParams()

	var jobs []backtest.Job
	for _, name := range strategyNames() {
		gen, err := strategy.New(name, strategyParams(name))
		if err != nil {
			return err
		}
		jobs = append(jobs, backtest.Job{
			Symbol:   cfg.Backtest.Symbol,
			Strategy: gen.Name(),
			Bars:     bars,
			Signals:  gen.Generate(bars),
			Params:   params,
		})
	}

	start := time.Now()
	results, err := backtest.RunBatch(app.ctx, jobs, cfg.Backtest.Concurrency)
	if err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}
	elapsed := time.Since(start)

	var failed int
	for _, jr := range results {
		if jr.Err != nil {
			failed++
			logger.LogError("backtest", jr.Err, map[string]interface{}{
				"strategy": jr.Strategy,
				"job_id":   jr.ID,
			})
			continue
		}
		if err := app.publish(jr, elapsed); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d backtests failed", failed, len(results))
	}
	return nil
}

// publish saves, prints and logs one batch result
func (app *Application) publish(jr backtest.JobResult, elapsed time.Duration) error {
	res := jr.Result
	name := fmt.Sprintf("%s_%s_%s", res.Symbol, res.Strategy, res.Mode)
	paths, err := backtest.SaveResults(cfg.Backtest.ResultsDirectory, name, res, backtest.ExportOptions{
		Trades: cfg.Backtest.ExportTrades,
		Equity: cfg.Backtest.ExportEquity,
	})
	if err != nil {
		return err
	}
	for _, path := range paths {
		logger.Debugf("Wrote %s", path)
	}

	if err := report.Write(os.Stdout, res, report.Options{Locale: cfg.App.Locale, MaxTrades: 10}); err != nil {
		return err
	}
	fmt.Println()

	logger.LogBacktest(res, elapsed)
	logger.LogPerformance(res.Metrics.FinalEquity-res.Metrics.InitialCapital, res.Metrics.WinRate, res.Metrics.TotalTrades, res.Metrics.SharpeRatio)
	return nil
}

// runStep applies one live step using the tail of the data file as the window
func (app *Application) runStep() error {
	bars, err := loadBars()
	if err != nil {
		return fmt.Errorf("failed to load bars: %w", err)
	}
	if window := cfg.Live.WindowBars; window > 0 && len(bars) > window {
		bars = bars[len(bars)-window:]
	}

	store, err := live.NewFileStore(cfg.Live.StateDirectory)
	if err != nil {
		return err
	}
	runner := live.NewRunner(store)

	id := cfg.Live.InstanceID
	if id == "" {
		state, err := runner.Start(app.ctx, cfg.Backtest.Symbol, cfg.Strategy.Name, strategy.Params(cfg.Strategy.Params),
			cfg.Backtest.InitialCapital, backtest.Costs{
				CommissionRate: cfg.Backtest.CommissionRate,
				Slippage:       cfg.Backtest.Slippage,
			})
		if err != nil {
			return err
		}
		id = state.InstanceID
		fmt.Printf("Created instance %s\n", id)
	}

	state, outcome, err := runner.Tick(app.ctx, id, bars)
	if err != nil {
		if errors.Is(err, live.ErrStateNotFound) {
			return fmt.Errorf("no live instance %s in %s", id, cfg.Live.StateDirectory)
		}
		return err
	}

	fmt.Printf("%s %s: signal=%s action=%s cash=%.2f shares=%.6f equity=%.2f\n",
		outcome.Bar.Timestamp.Format(time.RFC3339), state.Symbol, outcome.Signal, outcome.Action,
		state.Cash, state.HoldingShares, state.Equity)
	return nil
}

// runServer serves the HTTP API until a signal arrives
func (app *Application) runServer() error {
	store, err := live.NewFileStore(cfg.Live.StateDirectory)
	if err != nil {
		return err
	}
	server := api.NewServer(cfg.Server.Port, cfg.Server.Mode, live.NewRunner(store), cfg.BacktestParams())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-app.ctx.Done():
		logger.Info("Context cancelled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}

// setupSignalHandling cancels the application context on SIGINT/SIGTERM
func (app *Application) setupSignalHandling() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigCh
		logger.WithField("signal", sig.String()).Info("Signal received, initiating shutdown")
		app.cancel()
	}()
}

// ensureDirectories ensures output directories exist
func ensureDirectories() error {
	directories := []string{cfg.Backtest.ResultsDirectory, cfg.Live.StateDirectory}
	if cfg.Logging.Output == "file" || cfg.Logging.Output == "both" {
		directories = append(directories, cfg.Logging.Directory)
	}

	for _, dir := range directories {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// printUsage prints command line usage information
func printUsage() {
	fmt.Printf(`%s - %s

Usage: %s [options]

Options:
`, AppName, AppVersion, os.Args[0])
	flag.PrintDefaults()
	fmt.Printf(`
Examples:
  %s -data ./btc_daily.csv                          # Backtest the configured strategy
  %s -strategy sma_cross,macd_cross,rsi_threshold   # Compare strategies in one batch
  %s -mode step -instance <id>                      # Apply the latest bar to a live instance
  %s -mode serve                                    # Run the HTTP API
  %s -version                                       # Show version

Strategies: %s

Environment Variables:
  STRATEGYLAB_MODE             Simulation model (whole_capital, leveraged)
  STRATEGYLAB_DATA_FILE        OHLCV CSV file
  STRATEGYLAB_TIMEFRAME        Resample interval, e.g. 4h
  STRATEGYLAB_STRATEGY         Strategy name
  STRATEGYLAB_LOG_LEVEL        Override log level (debug, info, warn, error)

Configuration:
  A configuration file will be created with default values if it doesn't exist.
  The default configuration file location is: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], strings.Join(strategy.Names(), ", "), DefaultConfigPath)
}

// printVersion prints version information
func printVersion() {
	fmt.Printf(`%s %s

Go Version: %s
GOOS: %s
GOARCH: %s
`, AppName, AppVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
