package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"strategylab/internal/backtest"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Strategy.Name != "sma_cross" {
		t.Fatalf("strategy = %q, want sma_cross", cfg.Strategy.Name)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
backtest:
  mode: leveraged
  leverage: 3
  allow_short: false
strategy:
  name: rsi_threshold
  params:
    period: 7
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	params := cfg.BacktestParams()
	if params.Mode != backtest.ModeLeveraged || params.Leverage != 3 || params.AllowShort {
		t.Fatalf("unexpected params: %+v", params)
	}
	// keys absent from the file keep their defaults
	if params.InitialCapital != 10000 || params.AnnualizationFactor != 252 {
		t.Fatalf("defaults lost: %+v", params)
	}
	if cfg.Strategy.Name != "rsi_threshold" || cfg.Strategy.Params["period"] != 7 {
		t.Fatalf("unexpected strategy: %+v", cfg.Strategy)
	}
}

func TestSaveConfig_RoundTripYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := DefaultConfig()
	cfg.Backtest.Symbol = "ETHUSDT"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Backtest.Symbol != "ETHUSDT" {
		t.Fatalf("symbol = %q, want ETHUSDT", loaded.Backtest.Symbol)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("STRATEGYLAB_INITIAL_CAPITAL", "2500")
	t.Setenv("STRATEGYLAB_STRATEGY", "macd_cross")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Backtest.InitialCapital != 2500 {
		t.Fatalf("initial capital = %v, want 2500", cfg.Backtest.InitialCapital)
	}
	if cfg.Strategy.Name != "macd_cross" {
		t.Fatalf("strategy = %q, want macd_cross", cfg.Strategy.Name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty name", func(c *Config) { c.App.Name = "" }},
		{"zero capital", func(c *Config) { c.Backtest.InitialCapital = 0 }},
		{"unknown mode", func(c *Config) { c.Backtest.Mode = "grid" }},
		{"zero concurrency", func(c *Config) { c.Backtest.Concurrency = 0 }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Backtest.Slippage = -1
	if err := cfg.Validate(); !errors.Is(err, backtest.ErrInvalidInput) {
		t.Fatalf("error = %v, want wrapped ErrInvalidInput", err)
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
