package backtest

import (
	"math"

	"strategylab/internal/types"
)

// Leveraged is the exposure-multiplier model. The position on each bar is
// +leverage after a +1 signal, -leverage (or flat without shorting) after a -1
// signal, and otherwise the previous bar's position. The position decided at
// bar i-1 earns bar i's return. A leg still open after the last bar is left
// open and reported in Result.OpenLeg.
type Leveraged struct{}

// Mode implements Simulator
func (Leveraged) Mode() Mode {
	return ModeLeveraged
}

// Positions returns the per-bar exposure for signals. Bar 0 is always flat.
func Positions(signals []types.Signal, leverage float64, allowShort bool) []float64 {
	positions := make([]float64, len(signals))
	for i := 1; i < len(signals); i++ {
		switch signals[i] {
		case types.SignalLong:
			positions[i] = leverage
		case types.SignalShort:
			if allowShort {
				positions[i] = -leverage
			} else {
				positions[i] = 0
			}
		default:
			positions[i] = positions[i-1]
		}
	}
	return positions
}

// Simulate implements Simulator. The equity curve has one point per bar.
func (Leveraged) Simulate(bars []types.OHLCV, signals []types.Signal, params Params) (*Result, error) {
	params.Mode = ModeLeveraged
	if err := prepare(bars, signals, params); err != nil {
		return nil, err
	}

	fee := params.CommissionRate
	positions := Positions(signals, params.Leverage, params.AllowShort)

	equity := make([]types.EquityPoint, len(bars))
	growth := 1.0
	totalFees := 0.0
	for i, bar := range bars {
		if i > 0 {
			r := bar.Close/bars[i-1].Close - 1
			ret := r * positions[i-1]
			if positions[i] != positions[i-1] {
				charge := fee * math.Abs(positions[i])
				ret -= charge
				totalFees += charge * equity[i-1].Equity
			}
			growth *= 1 + ret
		}
		equity[i] = types.EquityPoint{Timestamp: bar.Timestamp, Equity: params.InitialCapital * growth}
	}

	trades, open := extractLegs(bars, positions, equity, params.Leverage, fee)

	res := &Result{
		Mode:       ModeLeveraged,
		Params:     params,
		Equity:     equity,
		BuyAndHold: BuyAndHold(bars, params.InitialCapital),
		Trades:     trades,
		Exposure:   positions,
		OpenLeg:    open,
	}
	res.Metrics = ComputeMetrics(equity, trades, params)
	res.Metrics.HoldingUnit = HoldingUnitDays
	res.Metrics.BuyAndHoldReturn = TotalReturn(types.EquityValues(res.BuyAndHold))
	res.Metrics.TotalCommission = totalFees
	return res, nil
}

// extractLegs walks the position-change events. Each event closes the
// previous nonzero leg and opens a new one at the event bar; bar 0 always
// counts as an event.
func extractLegs(bars []types.OHLCV, positions []float64, equity []types.EquityPoint, leverage, fee float64) ([]types.Trade, *types.Position) {
	trades := []types.Trade{}

	var (
		entryPrice float64
		entryIndex = -1
		entryPos   float64
	)
	for i, bar := range bars {
		if i > 0 && positions[i] == positions[i-1] {
			continue
		}
		if entryIndex >= 0 && entryPos != 0 {
			exit := bar.Close * (1 - fee)
			var rtn float64
			direction := types.PositionTypeLong
			if entryPos > 0 {
				rtn = exit/entryPrice - 1
			} else {
				rtn = entryPrice/exit - 1
				direction = types.PositionTypeShort
			}
			rtn *= leverage
			trades = append(trades, types.Trade{
				Direction:     direction,
				EntryIndex:    entryIndex,
				ExitIndex:     i,
				EntryTime:     bars[entryIndex].Timestamp,
				ExitTime:      bar.Timestamp,
				EntryPrice:    entryPrice,
				ExitPrice:     exit,
				Quantity:      math.Abs(entryPos),
				ProfitLoss:    rtn * equity[entryIndex].Equity,
				Return:        rtn,
				HoldingPeriod: calendarDays(bars[entryIndex].Timestamp, bar.Timestamp),
			})
		}
		entryPrice = bar.Close * (1 + fee)
		entryIndex = i
		entryPos = positions[i]
	}

	if entryIndex >= 0 && entryPos != 0 {
		return trades, &types.Position{
			Size:       entryPos,
			EntryPrice: entryPrice,
			EntryTime:  bars[entryIndex].Timestamp,
			EntryIndex: entryIndex,
		}
	}
	return trades, nil
}
