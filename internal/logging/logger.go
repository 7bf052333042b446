package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"strategylab/internal/backtest"
	"strategylab/internal/config"
	"strategylab/internal/types"
)

// Logger wraps logrus logger with a component name
type Logger struct {
	*logrus.Logger
	component string
}

// Log levels
const (
	DebugLevel = logrus.DebugLevel
	InfoLevel  = logrus.InfoLevel
	WarnLevel  = logrus.WarnLevel
	ErrorLevel = logrus.ErrorLevel
)

// logFileName is the active file inside LoggingConfig.Directory
const logFileName = "strategylab.log"

var globalLogger *Logger

// NewLogger creates a new logger with the given configuration
func NewLogger(cfg config.LoggingConfig) *Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	var output io.Writer
	switch cfg.Output {
	case "file":
		output = createFileWriter(cfg)
	case "both":
		output = io.MultiWriter(os.Stdout, createFileWriter(cfg))
	default:
		output = os.Stdout
	}
	logger.SetOutput(output)

	return &Logger{Logger: logger}
}

// createFileWriter creates a rotating file writer
func createFileWriter(cfg config.LoggingConfig) io.Writer {
	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		fmt.Printf("Warning: Failed to create log directory: %v\n", err)
		return os.Stdout
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Directory, logFileName),
		MaxSize:    cfg.MaxSize, // MB
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge, // days
		Compress:   cfg.Compress,
	}
}

// InitGlobalLogger initializes the global logger
func InitGlobalLogger(cfg config.LoggingConfig) {
	globalLogger = NewLogger(cfg)
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewLogger(config.LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		})
	}
	return globalLogger
}

// NewComponentLogger creates a logger for a specific component
func NewComponentLogger(component string) *Logger {
	return GetGlobalLogger().Component(component)
}

// Component returns a logger sharing l's output, tagged with component
func (l *Logger) Component(component string) *Logger {
	return &Logger{Logger: l.Logger, component: component}
}

// entry carries the component field, when set
func (l *Logger) entry() *logrus.Entry {
	e := logrus.NewEntry(l.Logger)
	if l.component != "" {
		e = e.WithField("component", l.component)
	}
	return e
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.entry().Debugf(format, args...)
}

// Info logs an info message
func (l *Logger) Info(args ...interface{}) {
	l.entry().Info(args...)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.entry().Infof(format, args...)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.entry().Warnf(format, args...)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.entry().Errorf(format, args...)
}

// Fatalf logs a formatted fatal message and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.entry().Fatalf(format, args...)
}

// WithFields adds multiple fields
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.entry().WithFields(fields)
}

// WithField adds a single field
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.entry().WithField(key, value)
}

// WithError adds an error field
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.entry().WithError(err)
}

// Backtest-specific logging methods

// LogTrade logs a single fill
func (l *Logger) LogTrade(symbol string, exec types.Execution) {
	l.WithFields(logrus.Fields{
		"event":      "trade",
		"symbol":     symbol,
		"side":       string(exec.Side),
		"quantity":   exec.Quantity,
		"price":      exec.Price,
		"commission": exec.Commission,
		"value":      exec.Notional(),
		"forced":     exec.Forced,
		"bar":        exec.Timestamp.Format(time.RFC3339),
	}).Info("Trade executed")
}

// LogBacktest logs the summary of a finished run
func (l *Logger) LogBacktest(res *backtest.Result, elapsed time.Duration) {
	m := res.Metrics
	l.WithFields(logrus.Fields{
		"event":         "backtest_complete",
		"mode":          string(res.Mode),
		"symbol":        res.Symbol,
		"strategy":      res.Strategy,
		"bars":          len(res.BuyAndHold),
		"trades":        m.TotalTrades,
		"final_equity":  m.FinalEquity,
		"total_return":  m.TotalReturn,
		"max_drawdown":  m.MaxDrawdown,
		"buy_and_hold":  m.BuyAndHoldReturn,
		"elapsed_ms":    elapsed.Milliseconds(),
		"holding_unit":  m.HoldingUnit,
		"total_fees":    m.TotalCommission,
		"calendar_days": m.CalendarDays,
	}).Info("Backtest completed")
}

// LogPerformance logs performance metrics. NaN and Inf ratios are logged as
// strings since the JSON formatter cannot encode them.
func (l *Logger) LogPerformance(totalPnL float64, winRate float64, tradeCount int, sharpeRatio float64) {
	l.WithFields(logrus.Fields{
		"event":        "performance_update",
		"total_pnl":    totalPnL,
		"win_rate":     winRate,
		"trade_count":  tradeCount,
		"sharpe_ratio": fmt.Sprintf("%.4f", sharpeRatio),
	}).Info("Performance metrics updated")
}

// LogLiveStep logs one paper-trading step
func (l *Logger) LogLiveStep(instanceID, symbol string, signal types.Signal, action string, equity float64) {
	l.WithFields(logrus.Fields{
		"event":       "live_step",
		"instance_id": instanceID,
		"symbol":      symbol,
		"signal":      signal.String(),
		"action":      action,
		"equity":      equity,
	}).Info("Live step processed")
}

// LogError logs an error with context
func (l *Logger) LogError(operation string, err error, context map[string]interface{}) {
	fields := logrus.Fields{
		"event":     "error",
		"operation": operation,
		"error":     err.Error(),
	}
	for k, v := range context {
		fields[k] = v
	}

	l.WithFields(fields).Error("Operation failed")
}

// LogSystem logs system-level events
func (l *Logger) LogSystem(event string, message string, details map[string]interface{}) {
	fields := logrus.Fields{
		"event":        "system_event",
		"system_event": event,
	}
	for k, v := range details {
		fields[k] = v
	}

	l.WithFields(fields).Info(message)
}

// Global convenience functions

// Infof logs a formatted info message using the global logger
func Infof(format string, args ...interface{}) {
	GetGlobalLogger().Infof(format, args...)
}

// Warnf logs a formatted warning message using the global logger
func Warnf(format string, args ...interface{}) {
	GetGlobalLogger().Warnf(format, args...)
}

// Errorf logs a formatted error message using the global logger
func Errorf(format string, args ...interface{}) {
	GetGlobalLogger().Errorf(format, args...)
}
