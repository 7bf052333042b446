package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"strategylab/internal/backtest"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `json:"app" yaml:"app"`
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Live     LiveConfig     `json:"live" yaml:"live"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
}

// AppConfig contains basic application configuration
type AppConfig struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	Environment string `json:"environment" yaml:"environment"` // "development", "production", "test"
	Locale      string `json:"locale" yaml:"locale"`           // report number formatting, e.g. "en-US"
	Debug       bool   `json:"debug" yaml:"debug"`
}

// BacktestConfig contains the simulation parameters and its input/output files
type BacktestConfig struct {
	// Simulation
	Mode                string  `json:"mode" yaml:"mode"` // "whole_capital", "leveraged"
	InitialCapital      float64 `json:"initial_capital" yaml:"initial_capital"`
	CommissionRate      float64 `json:"commission_rate" yaml:"commission_rate"`
	Slippage            float64 `json:"slippage" yaml:"slippage"`
	RiskFreeRate        float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	AnnualizationFactor float64 `json:"annualization_factor" yaml:"annualization_factor"` // 252 daily, 365 crypto
	Leverage            float64 `json:"leverage" yaml:"leverage"`
	AllowShort          bool    `json:"allow_short" yaml:"allow_short"`

	// Data
	DataFile  string    `json:"data_file" yaml:"data_file"`
	Symbol    string    `json:"symbol" yaml:"symbol"`
	StartTime time.Time `json:"start_time" yaml:"start_time"`
	EndTime   time.Time `json:"end_time" yaml:"end_time"`
	Timeframe string    `json:"timeframe" yaml:"timeframe"` // resample target, e.g. "4h"; empty keeps the file's bars

	// Output
	ResultsDirectory string `json:"results_directory" yaml:"results_directory"`
	ExportTrades     bool   `json:"export_trades" yaml:"export_trades"`
	ExportEquity     bool   `json:"export_equity" yaml:"export_equity"`

	// Batch runs
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// StrategyConfig selects the signal generator
type StrategyConfig struct {
	Name   string             `json:"name" yaml:"name"`
	Params map[string]float64 `json:"params" yaml:"params"`
}

// LiveConfig contains paper-trading stepper configuration
type LiveConfig struct {
	StateDirectory string `json:"state_directory" yaml:"state_directory"`
	InstanceID     string `json:"instance_id" yaml:"instance_id"`
	WindowBars     int    `json:"window_bars" yaml:"window_bars"` // bars passed to each step
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `json:"port" yaml:"port"`
	Mode            string        `json:"mode" yaml:"mode"` // gin mode: "debug", "release", "test"
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Output
	Level     string `json:"level" yaml:"level"`         // "debug", "info", "warn", "error"
	Format    string `json:"format" yaml:"format"`       // "json", "text"
	Output    string `json:"output" yaml:"output"`       // "stdout", "file", "both"
	Directory string `json:"directory" yaml:"directory"` // Log file directory

	// File rotation
	MaxSize    int  `json:"max_size" yaml:"max_size"`       // Max MB per file
	MaxBackups int  `json:"max_backups" yaml:"max_backups"` // Max number of old files
	MaxAge     int  `json:"max_age" yaml:"max_age"`         // Max days to retain
	Compress   bool `json:"compress" yaml:"compress"`       // Compress old files
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	params := backtest.DefaultParams()
	return &Config{
		App: AppConfig{
			Name:        "Strategy Lab",
			Version:     "1.0.0",
			Environment: "development",
			Locale:      "en-US",
			Debug:       false,
		},
		Backtest: BacktestConfig{
			Mode:                string(params.Mode),
			InitialCapital:      params.InitialCapital,
			CommissionRate:      params.CommissionRate,
			Slippage:            params.Slippage,
			RiskFreeRate:        params.RiskFreeRate,
			AnnualizationFactor: params.AnnualizationFactor,
			Leverage:            params.Leverage,
			AllowShort:          params.AllowShort,
			DataFile:            "./data/prices.csv",
			Symbol:              "BTCUSDT",
			ResultsDirectory:    "./backtest_results",
			ExportTrades:        true,
			ExportEquity:        true,
			Concurrency:         4,
		},
		Strategy: StrategyConfig{
			Name: "sma_cross",
			Params: map[string]float64{
				"fast": 5,
				"slow": 10,
			},
		},
		Live: LiveConfig{
			StateDirectory: "./live_state",
			WindowBars:     400,
		},
		Server: ServerConfig{
			Port:            8080,
			Mode:            "release",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stdout",
			Directory:  "./logs",
			MaxSize:    100, // MB
			MaxBackups: 10,
			MaxAge:     30, // days
			Compress:   true,
		},
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by
// extension. A default file is written when none exists. Environment
// overrides are applied before validation.
func LoadConfig(configPath string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		defaultConfig := DefaultConfig()
		if err := SaveConfig(defaultConfig, configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		defaultConfig.applyEnv()
		if err := defaultConfig.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return defaultConfig, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unset keys keep their defaults
	config := DefaultConfig()
	if isYAML(configPath) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(configPath) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// applyEnv overrides file values with STRATEGYLAB_* variables
func (c *Config) applyEnv() {
	c.Backtest.Mode = GetEnv("STRATEGYLAB_MODE", c.Backtest.Mode)
	c.Backtest.InitialCapital = GetEnvFloat("STRATEGYLAB_INITIAL_CAPITAL", c.Backtest.InitialCapital)
	c.Backtest.CommissionRate = GetEnvFloat("STRATEGYLAB_COMMISSION_RATE", c.Backtest.CommissionRate)
	c.Backtest.Slippage = GetEnvFloat("STRATEGYLAB_SLIPPAGE", c.Backtest.Slippage)
	c.Backtest.Leverage = GetEnvFloat("STRATEGYLAB_LEVERAGE", c.Backtest.Leverage)
	c.Backtest.AllowShort = GetEnvBool("STRATEGYLAB_ALLOW_SHORT", c.Backtest.AllowShort)
	c.Backtest.DataFile = GetEnv("STRATEGYLAB_DATA_FILE", c.Backtest.DataFile)
	c.Backtest.Timeframe = GetEnv("STRATEGYLAB_TIMEFRAME", c.Backtest.Timeframe)
	c.Backtest.Concurrency = GetEnvInt("STRATEGYLAB_CONCURRENCY", c.Backtest.Concurrency)
	c.Strategy.Name = GetEnv("STRATEGYLAB_STRATEGY", c.Strategy.Name)
	c.Live.StateDirectory = GetEnv("STRATEGYLAB_STATE_DIR", c.Live.StateDirectory)
	c.Server.Port = GetEnvInt("STRATEGYLAB_PORT", c.Server.Port)
	c.Logging.Level = GetEnv("STRATEGYLAB_LOG_LEVEL", c.Logging.Level)
	c.App.Debug = GetEnvBool("STRATEGYLAB_DEBUG", c.App.Debug)
}

// BacktestParams converts the backtest section into engine parameters
func (c *Config) BacktestParams() backtest.Params {
	return backtest.Params{
		Mode:                backtest.Mode(c.Backtest.Mode),
		InitialCapital:      c.Backtest.InitialCapital,
		CommissionRate:      c.Backtest.CommissionRate,
		Slippage:            c.Backtest.Slippage,
		RiskFreeRate:        c.Backtest.RiskFreeRate,
		AnnualizationFactor: c.Backtest.AnnualizationFactor,
		Leverage:            c.Backtest.Leverage,
		AllowShort:          c.Backtest.AllowShort,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}

	if err := c.BacktestParams().Validate(); err != nil {
		return fmt.Errorf("backtest: %w", err)
	}
	if c.Backtest.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if !c.Backtest.StartTime.IsZero() && !c.Backtest.EndTime.IsZero() && !c.Backtest.EndTime.After(c.Backtest.StartTime) {
		return fmt.Errorf("end time must be after start time")
	}

	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy name is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, level := range validLevels {
		if c.Logging.Level == level {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validFormats := []string{"json", "text"}
	formatValid := false
	for _, format := range validFormats {
		if c.Logging.Format == format {
			formatValid = true
			break
		}
	}
	if !formatValid {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// GetEnv returns environment variable with default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvBool returns boolean environment variable with default value
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

// GetEnvFloat returns float environment variable with default value
func GetEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := parseFloat(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetEnvInt returns integer environment variable with default value
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := parseInt(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Helper functions for parsing
func parseFloat(s string) (float64, error) {
	var result float64
	_, err := fmt.Sscanf(s, "%f", &result)
	return result, err
}

func parseInt(s string) (int, error) {
	var result int
	_, err := fmt.Sscanf(s, "%d", &result)
	return result, err
}
