package backtest

import (
	"errors"
	"fmt"
	"math"

	"strategylab/internal/types"
)

// ErrInvalidInput is returned when a series or parameter set cannot be simulated.
var ErrInvalidInput = errors.New("invalid input")

// Mode selects the simulation model
type Mode string

const (
	// ModeWholeCapital commits all cash to one long position per entry.
	ModeWholeCapital Mode = "whole_capital"
	// ModeLeveraged tracks a continuous long/short exposure multiplier.
	ModeLeveraged Mode = "leveraged"
)

// Params holds the cost and risk assumptions of a run
type Params struct {
	Mode                Mode    `json:"mode" yaml:"mode"`
	InitialCapital      float64 `json:"initial_capital" yaml:"initial_capital"`
	CommissionRate      float64 `json:"commission_rate" yaml:"commission_rate"` // fee_rate in leveraged mode
	Slippage            float64 `json:"slippage" yaml:"slippage"`               // whole-capital mode only
	RiskFreeRate        float64 `json:"risk_free_rate" yaml:"risk_free_rate"`   // annualized
	AnnualizationFactor float64 `json:"annualization_factor" yaml:"annualization_factor"`
	Leverage            float64 `json:"leverage" yaml:"leverage"`
	AllowShort          bool    `json:"allow_short" yaml:"allow_short"`
}

// DefaultParams returns daily-bar defaults
func DefaultParams() Params {
	return Params{
		Mode:                ModeWholeCapital,
		InitialCapital:      10000.0,
		CommissionRate:      0.001,  // 0.1%
		Slippage:            0.0005, // 0.05%
		RiskFreeRate:        0.02,
		AnnualizationFactor: 252,
		Leverage:            1,
		AllowShort:          true,
	}
}

// Validate checks the parameter ranges
func (p Params) Validate() error {
	switch p.Mode {
	case ModeWholeCapital, ModeLeveraged:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, p.Mode)
	}
	if !(p.InitialCapital > 0) || math.IsInf(p.InitialCapital, 0) {
		return fmt.Errorf("%w: initial capital must be positive, got %v", ErrInvalidInput, p.InitialCapital)
	}
	if !(p.AnnualizationFactor > 0) || math.IsInf(p.AnnualizationFactor, 0) {
		return fmt.Errorf("%w: annualization factor must be positive, got %v", ErrInvalidInput, p.AnnualizationFactor)
	}
	if err := p.Costs().Validate(); err != nil {
		return err
	}
	if !(p.Leverage >= 0) || math.IsInf(p.Leverage, 0) {
		return fmt.Errorf("%w: leverage must not be negative, got %v", ErrInvalidInput, p.Leverage)
	}
	if math.IsNaN(p.RiskFreeRate) || math.IsInf(p.RiskFreeRate, 0) {
		return fmt.Errorf("%w: risk-free rate must be finite", ErrInvalidInput)
	}
	return nil
}

// Costs returns the fill frictions of the whole-capital model
func (p Params) Costs() Costs {
	return Costs{CommissionRate: p.CommissionRate, Slippage: p.Slippage}
}

// ParseSignals converts untrusted integers into signals, rejecting anything
// outside {-1, 0, 1} before the narrowing to int8
func ParseSignals(values []int) ([]types.Signal, error) {
	signals := make([]types.Signal, len(values))
	for i, v := range values {
		if v < int(types.SignalShort) || v > int(types.SignalLong) {
			return nil, fmt.Errorf("%w: signal %d at bar %d is not -1, 0 or 1", ErrInvalidInput, v, i)
		}
		signals[i] = types.Signal(v)
	}
	return signals, nil
}

// validateSeries checks bars and signals before any state is touched.
func validateSeries(bars []types.OHLCV, signals []types.Signal) error {
	if len(bars) == 0 {
		return fmt.Errorf("%w: price series is empty", ErrInvalidInput)
	}
	if len(signals) != len(bars) {
		return fmt.Errorf("%w: %d signals for %d bars", ErrInvalidInput, len(signals), len(bars))
	}
	for i, bar := range bars {
		if !(bar.Close > 0) || math.IsInf(bar.Close, 0) {
			return fmt.Errorf("%w: bar %d has non-positive close %v", ErrInvalidInput, i, bar.Close)
		}
		if i > 0 && !bar.Timestamp.After(bars[i-1].Timestamp) {
			return fmt.Errorf("%w: bar %d timestamp %s is not after %s", ErrInvalidInput, i,
				bar.Timestamp.Format("2006-01-02T15:04:05Z07:00"), bars[i-1].Timestamp.Format("2006-01-02T15:04:05Z07:00"))
		}
		if !signals[i].Valid() {
			return fmt.Errorf("%w: bar %d has signal %d outside {-1,0,1}", ErrInvalidInput, i, int8(signals[i]))
		}
	}
	return nil
}
