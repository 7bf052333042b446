package strategy

import (
	"fmt"

	"strategylab/internal/indicators"
	"strategylab/internal/types"
)

// SMACrossName is the registry name of SMACross
const SMACrossName = "sma_cross"

// SMACross goes long when the fast moving average crosses above the slow one
// and exits when it crosses back below.
type SMACross struct {
	Fast int
	Slow int
}

func newSMACross(p Params) (Generator, error) {
	fast, err := p.period("fast", 5)
	if err != nil {
		return nil, err
	}
	slow, err := p.period("slow", 10)
	if err != nil {
		return nil, err
	}
	if fast >= slow {
		return nil, fmt.Errorf("%w: fast period %d must be below slow period %d", ErrInvalidParams, fast, slow)
	}
	return &SMACross{Fast: fast, Slow: slow}, nil
}

func (s *SMACross) Name() string { return SMACrossName }

func (s *SMACross) Lookback() int { return s.Slow + 1 }

func (s *SMACross) Generate(bars []types.OHLCV) []types.Signal {
	closes := types.Closes(bars)
	return indicators.Crossover(indicators.SMA(s.Fast, closes), indicators.SMA(s.Slow, closes))
}
