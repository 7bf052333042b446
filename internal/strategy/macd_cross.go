package strategy

import (
	"fmt"

	"strategylab/internal/indicators"
	"strategylab/internal/types"
)

// MACDCrossName is the registry name of MACDCross
const MACDCrossName = "macd_cross"

// MACDCross trades crossings of the MACD line over its signal line
type MACDCross struct {
	Fast   int
	Slow   int
	Signal int
}

func newMACDCross(p Params) (Generator, error) {
	fast, err := p.period("fast", 12)
	if err != nil {
		return nil, err
	}
	slow, err := p.period("slow", 26)
	if err != nil {
		return nil, err
	}
	signal, err := p.period("signal", 9)
	if err != nil {
		return nil, err
	}
	if fast >= slow {
		return nil, fmt.Errorf("%w: fast period %d must be below slow period %d", ErrInvalidParams, fast, slow)
	}
	return &MACDCross{Fast: fast, Slow: slow, Signal: signal}, nil
}

func (m *MACDCross) Name() string { return MACDCrossName }

// Lookback covers the slow EMA plus the signal EMA settling on top of it
func (m *MACDCross) Lookback() int { return m.Slow + m.Signal }

func (m *MACDCross) Generate(bars []types.OHLCV) []types.Signal {
	line, signal := indicators.MACD(m.Fast, m.Slow, m.Signal, types.Closes(bars))
	return indicators.Crossover(line, signal)
}
