package indicators

import "strategylab/internal/types"

// Crossover emits +1 on the bar a rises above b and -1 on the bar it falls
// below. Bar 0 never fires.
func Crossover(a, b []float64) []types.Signal {
	out := make([]types.Signal, len(a))
	for i := 1; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] > b[i] && a[i-1] <= b[i-1]:
			out[i] = types.SignalLong
		case a[i] < b[i] && a[i-1] >= b[i-1]:
			out[i] = types.SignalShort
		}
	}
	return out
}

// CrossAbove reports the bars where values moves from at-or-below level to above it
func CrossAbove(values []float64, level float64) []bool {
	out := make([]bool, len(values))
	for i := 1; i < len(values); i++ {
		out[i] = values[i] > level && values[i-1] <= level
	}
	return out
}

// CrossBelow reports the bars where values moves from at-or-above level to below it
func CrossBelow(values []float64, level float64) []bool {
	out := make([]bool, len(values))
	for i := 1; i < len(values); i++ {
		out[i] = values[i] < level && values[i-1] >= level
	}
	return out
}
