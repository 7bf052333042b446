package types

import (
	"time"
)

// OHLCV represents one bar of a price series.
// Only Timestamp and Close are read by the backtest engines.
type OHLCV struct {
	Symbol    string    `json:"symbol,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// NewOHLCV creates a new OHLCV instance
func NewOHLCV(symbol string, timestamp time.Time, open, high, low, close, volume float64) OHLCV {
	return OHLCV{
		Symbol:    symbol,
		Timestamp: timestamp,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}
}

// IsValidRange reports whether high/low bound open and close.
func (o OHLCV) IsValidRange() bool {
	return !(o.High < o.Low || o.High < o.Open || o.High < o.Close || o.Low > o.Open || o.Low > o.Close)
}

// Closes extracts the closing prices of a series.
func Closes(bars []OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	return closes
}
