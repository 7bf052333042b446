package backtest

import (
	"fmt"
	"math"
	"time"

	"strategylab/internal/types"
)

// Costs are the per-fill frictions of the whole-capital model.
type Costs struct {
	CommissionRate float64
	Slippage       float64
}

// Validate checks that commission is non-negative and finite and slippage
// is in [0, 1)
func (c Costs) Validate() error {
	if !(c.CommissionRate >= 0) || math.IsInf(c.CommissionRate, 0) {
		return fmt.Errorf("%w: commission rate must be non-negative and finite, got %v", ErrInvalidInput, c.CommissionRate)
	}
	if !(c.Slippage >= 0) || c.Slippage >= 1 {
		return fmt.Errorf("%w: slippage must be in [0, 1), got %v", ErrInvalidInput, c.Slippage)
	}
	return nil
}

// Account is the cash/share ledger of the whole-capital model. The backtest
// engine and the live stepper both drive it, so a fill is priced the same way
// in either place.
type Account struct {
	Cash       float64   `json:"cash"`
	Shares     float64   `json:"shares"`
	EntryCost  float64   `json:"entry_cost"`
	EntryIndex int       `json:"entry_index"`
	EntryTime  time.Time `json:"entry_time"`
}

// NewAccount creates a flat account holding capital in cash
func NewAccount(capital float64) *Account {
	return &Account{Cash: capital, EntryIndex: -1}
}

// IsLong returns true while shares are held
func (a *Account) IsLong() bool {
	return a.Shares > 0
}

// Equity returns cash plus the shares marked at price
func (a *Account) Equity(price float64) float64 {
	return a.Cash + a.Shares*price
}

// Position returns the open position as a types.Position
func (a *Account) Position() types.Position {
	if !a.IsLong() {
		return types.Position{EntryIndex: -1}
	}
	return types.Position{
		Size:       a.Shares,
		EntryPrice: a.EntryCost / a.Shares,
		EntryTime:  a.EntryTime,
		EntryIndex: a.EntryIndex,
	}
}

// Buy spends all cash on shares at close*(1+slippage). It is a no-op while
// already long or when no shares can be bought.
func (a *Account) Buy(index int, ts time.Time, close float64, costs Costs) (types.Execution, bool) {
	if a.IsLong() {
		return types.Execution{}, false
	}
	fill := close * (1 + costs.Slippage)
	shares := a.Cash / (fill * (1 + costs.CommissionRate))
	if !(shares > 0) {
		return types.Execution{}, false
	}
	commission := shares * fill * costs.CommissionRate

	a.Cash -= shares*fill + commission
	a.Shares = shares
	a.EntryCost = shares * fill
	a.EntryIndex = index
	a.EntryTime = ts

	return types.Execution{
		Index:      index,
		Timestamp:  ts,
		Side:       types.OrderSideBuy,
		Price:      fill,
		Quantity:   shares,
		Commission: commission,
	}, true
}

// Sell closes the whole position at close*(1-slippage) and returns the
// realized trade. It is a no-op while flat.
func (a *Account) Sell(index int, ts time.Time, close float64, costs Costs, forced bool) (types.Execution, types.Trade, bool) {
	if !a.IsLong() {
		return types.Execution{}, types.Trade{}, false
	}
	fill := close * (1 - costs.Slippage)
	proceeds := a.Shares * fill
	commission := proceeds * costs.CommissionRate
	pnl := proceeds - a.EntryCost - commission

	trade := types.Trade{
		Direction:     types.PositionTypeLong,
		EntryIndex:    a.EntryIndex,
		ExitIndex:     index,
		EntryTime:     a.EntryTime,
		ExitTime:      ts,
		EntryPrice:    a.EntryCost / a.Shares,
		ExitPrice:     fill,
		Quantity:      a.Shares,
		Commission:    commission,
		ProfitLoss:    pnl,
		HoldingPeriod: index - a.EntryIndex,
		Forced:        forced,
	}
	if a.EntryCost > 0 {
		trade.Return = pnl / a.EntryCost
	}
	exec := types.Execution{
		Index:      index,
		Timestamp:  ts,
		Side:       types.OrderSideSell,
		Price:      fill,
		Quantity:   a.Shares,
		Commission: commission,
		Forced:     forced,
	}

	a.Cash += proceeds - commission
	a.Shares = 0
	a.EntryCost = 0
	a.EntryIndex = -1
	a.EntryTime = time.Time{}

	return exec, trade, true
}
