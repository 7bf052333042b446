package strategy

import (
	"fmt"

	"strategylab/internal/indicators"
	"strategylab/internal/types"
)

// SmartMoneyName is the registry name of SmartMoney
const SmartMoneyName = "smart_money"

// SmartMoney trades crossings of two Hull averages, taken only when the EMA
// tunnel and the long EMA ribbon agree with the direction of the cross.
type SmartMoney struct {
	MainHull   int
	SecondHull int
	TunnelFast int
	TunnelSlow int
	RibbonFast int
	RibbonSlow int
}

func newSmartMoney(p Params) (Generator, error) {
	s := &SmartMoney{}
	for _, f := range []struct {
		key  string
		def  int
		dest *int
	}{
		{"main_hull", 55, &s.MainHull},
		{"second_hull", 21, &s.SecondHull},
		{"tunnel_fast", 144, &s.TunnelFast},
		{"tunnel_slow", 169, &s.TunnelSlow},
		{"ribbon_fast", 288, &s.RibbonFast},
		{"ribbon_slow", 338, &s.RibbonSlow},
	} {
		v, err := p.period(f.key, f.def)
		if err != nil {
			return nil, err
		}
		*f.dest = v
	}
	if s.MainHull < 2 || s.SecondHull < 2 {
		return nil, fmt.Errorf("%w: hull periods must be at least 2", ErrInvalidParams)
	}
	return s, nil
}

func (s *SmartMoney) Name() string { return SmartMoneyName }

func (s *SmartMoney) Lookback() int {
	return max(s.RibbonSlow, s.RibbonFast, s.TunnelSlow, s.TunnelFast,
		indicators.HullWarmup(s.MainHull)+1, indicators.HullWarmup(s.SecondHull)+1)
}

func (s *SmartMoney) Generate(bars []types.OHLCV) []types.Signal {
	closes := types.Closes(bars)
	tunnelFast := indicators.EMA(s.TunnelFast, closes)
	tunnelSlow := indicators.EMA(s.TunnelSlow, closes)
	ribbonFast := indicators.EMA(s.RibbonFast, closes)
	ribbonSlow := indicators.EMA(s.RibbonSlow, closes)
	main := indicators.Hull(s.MainHull, closes)
	second := indicators.Hull(s.SecondHull, closes)

	out := indicators.Crossover(main, second)
	for i, sig := range out {
		switch sig {
		case types.SignalLong:
			if !(tunnelFast[i] > tunnelSlow[i] && ribbonFast[i] > ribbonSlow[i]) {
				out[i] = types.SignalHold
			}
		case types.SignalShort:
			if !(tunnelFast[i] < tunnelSlow[i] && ribbonFast[i] < ribbonSlow[i]) {
				out[i] = types.SignalHold
			}
		}
	}
	return out
}
