package backtest

import (
	"strategylab/internal/types"
)

// WholeCapital is the long-only, all-in share model. A +1 signal while flat
// buys with all cash, a -1 signal while long sells everything, and a position
// still open after the last bar is liquidated at the last close.
type WholeCapital struct{}

// Mode implements Simulator
func (WholeCapital) Mode() Mode {
	return ModeWholeCapital
}

// Simulate implements Simulator. The equity curve holds a seed point with the
// initial capital followed by one point per bar.
func (WholeCapital) Simulate(bars []types.OHLCV, signals []types.Signal, params Params) (*Result, error) {
	params.Mode = ModeWholeCapital
	if err := prepare(bars, signals, params); err != nil {
		return nil, err
	}

	costs := params.Costs()
	acct := NewAccount(params.InitialCapital)

	equity := make([]types.EquityPoint, 0, len(bars)+1)
	equity = append(equity, types.EquityPoint{Timestamp: bars[0].Timestamp, Equity: params.InitialCapital})

	var (
		trades     []types.Trade
		executions []types.Execution
	)

	for i, bar := range bars {
		switch signals[i] {
		case types.SignalLong:
			if exec, ok := acct.Buy(i, bar.Timestamp, bar.Close, costs); ok {
				executions = append(executions, exec)
			}
		case types.SignalShort:
			if exec, trade, ok := acct.Sell(i, bar.Timestamp, bar.Close, costs, false); ok {
				executions = append(executions, exec)
				trades = append(trades, trade)
			}
		}
		equity = append(equity, types.EquityPoint{Timestamp: bar.Timestamp, Equity: acct.Equity(bar.Close)})
	}

	if acct.IsLong() {
		last := len(bars) - 1
		exec, trade, _ := acct.Sell(last, bars[last].Timestamp, bars[last].Close, costs, true)
		executions = append(executions, exec)
		trades = append(trades, trade)
		// the final point reflects the liquidation costs
		equity[len(equity)-1].Equity = acct.Cash
	}

	if trades == nil {
		trades = []types.Trade{}
	}

	res := &Result{
		Mode:       ModeWholeCapital,
		Params:     params,
		Equity:     equity,
		BuyAndHold: BuyAndHold(bars, params.InitialCapital),
		Trades:     trades,
		Executions: executions,
	}
	res.Metrics = ComputeMetrics(equity, trades, params)
	res.Metrics.HoldingUnit = HoldingUnitBars
	res.Metrics.BuyAndHoldReturn = TotalReturn(types.EquityValues(res.BuyAndHold))
	for _, exec := range executions {
		res.Metrics.TotalCommission += exec.Commission
	}
	return res, nil
}
