package indicators

import (
	"math"

	"github.com/cinar/indicator"
)

// Series returned here are aligned with their input. Bars where a rolling
// window is not yet full hold NaN, which never satisfies a comparison, so a
// crossover cannot fire during warm-up.

// SMA is the rolling mean over period values. NaN inputs at the head of
// values (from an upstream window) shift the warm-up accordingly.
func SMA(period int, values []float64) []float64 {
	out := nanSeries(len(values))
	start := firstValid(values)
	if period <= 0 || start < 0 {
		return out
	}
	tail := indicator.Sma(period, values[start:])
	for i := period - 1; i < len(tail); i++ {
		out[start+i] = tail[i]
	}
	return out
}

// EMA is the exponential average with k = 2/(period+1), seeded with the first
// value. It is defined from the first bar.
func EMA(period int, values []float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	return indicator.Ema(period, values)
}

// MACD returns the fast-minus-slow EMA line and its signal EMA
func MACD(fast, slow, signal int, closes []float64) ([]float64, []float64) {
	if fast == 12 && slow == 26 && signal == 9 {
		return indicator.Macd(closes)
	}
	fastEma := EMA(fast, closes)
	slowEma := EMA(slow, closes)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fastEma[i] - slowEma[i]
	}
	return line, EMA(signal, line)
}

// RSI smooths gains and losses with an EMA of span period. A series without
// losses reads 100; a flat series is NaN.
func RSI(period int, closes []float64) []float64 {
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else if delta < 0 {
			losses[i] = -delta
		}
	}

	avgGain := EMA(period, gains)
	avgLoss := EMA(period, losses)
	rsi := make([]float64, len(closes))
	for i := range closes {
		rs := avgGain[i] / avgLoss[i]
		rsi[i] = 100 - 100/(1+rs)
	}
	return rsi
}

// Hull is 2*SMA(period/2) - SMA(period), smoothed by an SMA of sqrt(period)
func Hull(period int, closes []float64) []float64 {
	half := SMA(period/2, closes)
	full := SMA(period, closes)
	raw := make([]float64, len(closes))
	for i := range closes {
		raw[i] = 2*half[i] - full[i]
	}
	return SMA(int(math.Sqrt(float64(period))), raw)
}

// HullWarmup is the index of the first defined Hull value
func HullWarmup(period int) int {
	return period - 1 + int(math.Sqrt(float64(period))) - 1
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func firstValid(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}
