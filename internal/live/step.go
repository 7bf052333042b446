package live

import (
	"fmt"
	"math"

	"strategylab/internal/backtest"
	"strategylab/internal/strategy"
	"strategylab/internal/types"
)

// Step actions
const (
	ActionBuy     = "buy"
	ActionSell    = "sell"
	ActionNone    = "none"
	ActionSkipped = "skipped" // latest bar was already processed
)

// StepOutcome describes what one step did
type StepOutcome struct {
	Signal    types.Signal     `json:"signal"`
	Action    string           `json:"action"`
	Bar       types.OHLCV      `json:"bar"`
	Execution *types.Execution `json:"execution,omitempty"`
	Trade     *types.Trade     `json:"trade,omitempty"`
}

// Step generates signals over bars and applies the whole-capital transition
// for the last bar only. Bars not newer than LastProcessed are skipped. The
// input state is not modified.
func Step(state State, bars []types.OHLCV, gen strategy.Generator) (State, StepOutcome, error) {
	if len(bars) == 0 {
		return state, StepOutcome{}, fmt.Errorf("%w: empty bar window", backtest.ErrInvalidInput)
	}
	last := bars[len(bars)-1]
	if !(last.Close > 0) || math.IsInf(last.Close, 0) {
		return state, StepOutcome{}, fmt.Errorf("%w: latest close %v is not positive", backtest.ErrInvalidInput, last.Close)
	}

	outcome := StepOutcome{Action: ActionSkipped, Bar: last}
	if !state.LastProcessed.IsZero() && !last.Timestamp.After(state.LastProcessed) {
		return state, outcome, nil
	}

	signals := gen.Generate(bars)
	if len(signals) != len(bars) {
		return state, StepOutcome{}, fmt.Errorf("%w: generator %s returned %d signals for %d bars",
			backtest.ErrInvalidInput, gen.Name(), len(signals), len(bars))
	}
	outcome.Signal = signals[len(signals)-1]
	outcome.Action = ActionNone

	next := state
	acct := next.account()
	bar := next.BarsProcessed

	switch outcome.Signal {
	case types.SignalLong:
		if exec, ok := acct.Buy(bar, last.Timestamp, last.Close, next.Costs()); ok {
			outcome.Action = ActionBuy
			outcome.Execution = &exec
		}
	case types.SignalShort:
		if exec, trade, ok := acct.Sell(bar, last.Timestamp, last.Close, next.Costs(), false); ok {
			outcome.Action = ActionSell
			outcome.Execution = &exec
			outcome.Trade = &trade
			next.RealizedPnL += trade.ProfitLoss
			next.TradeCount++
		}
	}

	next.apply(acct)
	if outcome.Execution != nil {
		exec := *outcome.Execution
		next.LastExecution = &exec
	}
	next.Equity = acct.Equity(last.Close)
	next.LastProcessed = last.Timestamp
	next.BarsProcessed++
	return next, outcome, nil
}
