package backtest

import (
	"encoding/json"
	"math"

	"strategylab/internal/types"
)

// Result is the outcome of one simulation run
type Result struct {
	Mode       Mode                `json:"mode"`
	Symbol     string              `json:"symbol,omitempty"`
	Strategy   string              `json:"strategy,omitempty"`
	Params     Params              `json:"params"`
	Equity     []types.EquityPoint `json:"equity"`
	BuyAndHold []types.EquityPoint `json:"buy_and_hold"`
	Trades     []types.Trade       `json:"trades"`
	Executions []types.Execution   `json:"executions,omitempty"`
	Exposure   []float64           `json:"exposure,omitempty"`
	OpenLeg    *types.Position     `json:"open_leg,omitempty"`
	Metrics    Metrics             `json:"metrics"`
}

// Metrics is the performance summary of a run. Returns and drawdown are
// fractions; WinRate is in [0, 1].
type Metrics struct {
	InitialCapital   float64 `json:"initial_capital"`
	FinalEquity      float64 `json:"final_equity"`
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	BuyAndHoldReturn float64 `json:"buy_and_hold_return"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	CalendarDays     int     `json:"calendar_days"`

	TotalTrades      int     `json:"total_trades"`
	WinningTrades    int     `json:"winning_trades"`
	LosingTrades     int     `json:"losing_trades"`
	WinRate          float64 `json:"win_rate"`
	ProfitFactor     float64 `json:"profit_factor"`
	AvgTradeProfit   float64 `json:"avg_trade_profit"`
	AvgTradeReturn   float64 `json:"avg_trade_return"`
	LargestWin       float64 `json:"largest_win"`
	LargestLoss      float64 `json:"largest_loss"`
	AvgHoldingPeriod float64 `json:"avg_holding_period"`
	HoldingUnit      string  `json:"holding_unit"`
	TotalCommission  float64 `json:"total_commission"`
}

// MarshalJSON writes undefined ratios as null and infinities as strings,
// since JSON has no NaN or Inf.
func (m Metrics) MarshalJSON() ([]byte, error) {
	type plain Metrics
	return json.Marshal(struct {
		plain
		AnnualizedReturn interface{} `json:"annualized_return"`
		SharpeRatio      interface{} `json:"sharpe_ratio"`
		ProfitFactor     interface{} `json:"profit_factor"`
	}{
		plain:            plain(m),
		AnnualizedReturn: jsonFloat(m.AnnualizedReturn),
		SharpeRatio:      jsonFloat(m.SharpeRatio),
		ProfitFactor:     jsonFloat(m.ProfitFactor),
	})
}

func jsonFloat(v float64) interface{} {
	switch {
	case math.IsNaN(v):
		return nil
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	default:
		return v
	}
}
