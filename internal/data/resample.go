package data

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"strategylab/internal/types"
)

// ParseTimeframe converts labels such as "15m", "4h", "1d" or "1w" into a
// duration. Anything time.ParseDuration accepts also works.
func ParseTimeframe(tf string) (time.Duration, error) {
	tf = strings.TrimSpace(strings.ToLower(tf))
	if tf == "" {
		return 0, fmt.Errorf("empty timeframe")
	}
	unit := tf[len(tf)-1]
	if unit == 'd' || unit == 'w' {
		n, err := strconv.Atoi(tf[:len(tf)-1])
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid timeframe: %s", tf)
		}
		day := 24 * time.Hour
		if unit == 'w' {
			return time.Duration(n) * 7 * day, nil
		}
		return time.Duration(n) * day, nil
	}
	d, err := time.ParseDuration(tf)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid timeframe: %s", tf)
	}
	return d, nil
}

// Resample merges sorted bars into interval-aligned candles. Open comes from
// the first bar of a bucket, close from the last, high/low are the extremes
// and volume is summed. Bucket timestamps are the interval start.
func Resample(bars []types.OHLCV, interval time.Duration) []types.OHLCV {
	if interval <= 0 || len(bars) == 0 {
		return bars
	}

	out := make([]types.OHLCV, 0, len(bars))
	var current *types.OHLCV
	for _, bar := range bars {
		start := alignTime(bar.Timestamp, interval)
		if current != nil && current.Timestamp.Equal(start) {
			current.High = max(current.High, bar.High)
			current.Low = min(current.Low, bar.Low)
			current.Close = bar.Close
			current.Volume += bar.Volume
			continue
		}
		if current != nil {
			out = append(out, *current)
		}
		candle := bar
		candle.Timestamp = start
		current = &candle
	}
	out = append(out, *current)
	return out
}

// alignTime truncates to the start of the interval
func alignTime(t time.Time, interval time.Duration) time.Time {
	return t.Truncate(interval)
}
