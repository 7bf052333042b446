package strategy

import (
	"fmt"

	"strategylab/internal/indicators"
	"strategylab/internal/types"
)

// RSIThresholdName is the registry name of RSIThreshold
const RSIThresholdName = "rsi_threshold"

// RSIThreshold buys when RSI climbs back above the oversold level and sells
// when it drops back below the overbought level.
type RSIThreshold struct {
	Period int
	Buy    float64
	Sell   float64
}

func newRSIThreshold(p Params) (Generator, error) {
	period, err := p.period("period", 14)
	if err != nil {
		return nil, err
	}
	buy, err := p.level("buy", 30)
	if err != nil {
		return nil, err
	}
	sell, err := p.level("sell", 70)
	if err != nil {
		return nil, err
	}
	if buy < 0 || sell > 100 || buy >= sell {
		return nil, fmt.Errorf("%w: need 0 <= buy < sell <= 100, got %v/%v", ErrInvalidParams, buy, sell)
	}
	return &RSIThreshold{Period: period, Buy: buy, Sell: sell}, nil
}

func (r *RSIThreshold) Name() string { return RSIThresholdName }

func (r *RSIThreshold) Lookback() int { return 3 * r.Period }

func (r *RSIThreshold) Generate(bars []types.OHLCV) []types.Signal {
	rsi := indicators.RSI(r.Period, types.Closes(bars))
	buys := indicators.CrossAbove(rsi, r.Buy)
	sells := indicators.CrossBelow(rsi, r.Sell)

	out := make([]types.Signal, len(bars))
	for i := range out {
		switch {
		case sells[i]:
			out[i] = types.SignalShort
		case buys[i]:
			out[i] = types.SignalLong
		}
	}
	return out
}
