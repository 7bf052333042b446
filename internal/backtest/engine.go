package backtest

import (
	"fmt"

	"strategylab/internal/types"
)

// Simulator turns a price series and an aligned signal series into a Result.
// Implementations are pure: no I/O, no shared state between calls.
type Simulator interface {
	Mode() Mode
	Simulate(bars []types.OHLCV, signals []types.Signal, params Params) (*Result, error)
}

// NewSimulator returns the simulator for mode
func NewSimulator(mode Mode) (Simulator, error) {
	switch mode {
	case ModeWholeCapital, "":
		return WholeCapital{}, nil
	case ModeLeveraged:
		return Leveraged{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, mode)
	}
}

// Run simulates with the engine selected by params.Mode.
func Run(bars []types.OHLCV, signals []types.Signal, params Params) (*Result, error) {
	if params.Mode == "" {
		params.Mode = ModeWholeCapital
	}
	sim, err := NewSimulator(params.Mode)
	if err != nil {
		return nil, err
	}
	return sim.Simulate(bars, signals, params)
}

func prepare(bars []types.OHLCV, signals []types.Signal, params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	return validateSeries(bars, signals)
}

// BuyAndHold returns initial*close[i]/close[0] for every bar, with no costs.
func BuyAndHold(bars []types.OHLCV, initial float64) []types.EquityPoint {
	curve := make([]types.EquityPoint, len(bars))
	if len(bars) == 0 {
		return curve
	}
	first := bars[0].Close
	for i, bar := range bars {
		curve[i] = types.EquityPoint{
			Timestamp: bar.Timestamp,
			Equity:    initial * (bar.Close / first),
		}
	}
	return curve
}
