package types

import "time"

// Trade is a closed round trip. It is never mutated after creation.
type Trade struct {
	Direction  PositionType `json:"direction"`
	EntryIndex int          `json:"entry_index"`
	ExitIndex  int          `json:"exit_index"`
	EntryTime  time.Time    `json:"entry_time"`
	ExitTime   time.Time    `json:"exit_time"`
	EntryPrice float64      `json:"entry_price"`
	ExitPrice  float64      `json:"exit_price"`
	Quantity   float64      `json:"quantity"`
	Commission float64      `json:"commission"`
	ProfitLoss float64      `json:"profit_loss"`
	Return     float64      `json:"return"`
	// HoldingPeriod is counted in bars for whole-capital runs and in
	// calendar days for leveraged runs.
	HoldingPeriod int  `json:"holding_period"`
	Forced        bool `json:"forced"`
}

// IsWin returns true if the trade made money after costs
func (t Trade) IsWin() bool {
	return t.ProfitLoss > 0
}

// OrderSide represents the side of a fill
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Execution is a single simulated fill.
type Execution struct {
	Index      int       `json:"index"`
	Timestamp  time.Time `json:"timestamp"`
	Side       OrderSide `json:"side"`
	Price      float64   `json:"price"`
	Quantity   float64   `json:"quantity"`
	Commission float64   `json:"commission"`
	Forced     bool      `json:"forced,omitempty"`
}

// Notional returns price times quantity
func (e Execution) Notional() float64 {
	return e.Price * e.Quantity
}

// EquityPoint is the account value at the close of a bar.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}

// EquityValues extracts the equity column of a curve.
func EquityValues(points []EquityPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Equity
	}
	return out
}
