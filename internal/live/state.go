package live

import (
	"time"

	"github.com/google/uuid"

	"strategylab/internal/backtest"
	"strategylab/internal/strategy"
	"strategylab/internal/types"
)

// State is everything a paper-trading instance carries between steps. It is
// a plain value: Step returns a new State and the caller persists it.
type State struct {
	InstanceID     string          `json:"instance_id"`
	Symbol         string          `json:"symbol"`
	Strategy       string          `json:"strategy"`
	StrategyParams strategy.Params `json:"strategy_params,omitempty"`
	CommissionRate float64         `json:"commission_rate"`
	Slippage       float64         `json:"slippage"`

	InitialCapital float64   `json:"initial_capital"`
	Cash           float64   `json:"cash"`
	HoldingShares  float64   `json:"holding_shares"`
	EntryCost      float64   `json:"entry_cost"`
	EntryTime      time.Time `json:"entry_time"`
	EntryBar       int       `json:"entry_bar"`

	LastProcessed time.Time        `json:"last_processed"`
	BarsProcessed int              `json:"bars_processed"`
	RealizedPnL   float64          `json:"realized_pnl"`
	TradeCount    int              `json:"trade_count"`
	Equity        float64          `json:"equity"`
	LastExecution *types.Execution `json:"last_execution,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates a flat instance with a fresh id
func NewState(symbol, strategyName string, params strategy.Params, capital float64, costs backtest.Costs) *State {
	now := time.Now().UTC()
	return &State{
		InstanceID:     uuid.NewString(),
		Symbol:         symbol,
		Strategy:       strategyName,
		StrategyParams: params,
		CommissionRate: costs.CommissionRate,
		Slippage:       costs.Slippage,
		InitialCapital: capital,
		Cash:           capital,
		EntryBar:       -1,
		Equity:         capital,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsLong returns true while shares are held
func (s *State) IsLong() bool {
	return s.HoldingShares > 0
}

// Costs returns the fill frictions of the instance
func (s *State) Costs() backtest.Costs {
	return backtest.Costs{CommissionRate: s.CommissionRate, Slippage: s.Slippage}
}

// account rebuilds the cash/share ledger from the state
func (s *State) account() *backtest.Account {
	return &backtest.Account{
		Cash:       s.Cash,
		Shares:     s.HoldingShares,
		EntryCost:  s.EntryCost,
		EntryIndex: s.EntryBar,
		EntryTime:  s.EntryTime,
	}
}

// apply copies the ledger back into the state
func (s *State) apply(acct *backtest.Account) {
	s.Cash = acct.Cash
	s.HoldingShares = acct.Shares
	s.EntryCost = acct.EntryCost
	s.EntryBar = acct.EntryIndex
	s.EntryTime = acct.EntryTime
}
