package types

import "fmt"

// Signal is a per-bar trading directive.
type Signal int8

const (
	SignalShort Signal = -1 // enter/flip short, or exit a long
	SignalHold  Signal = 0
	SignalLong  Signal = 1
)

// Valid reports whether s is one of -1, 0, 1.
func (s Signal) Valid() bool {
	return s >= SignalShort && s <= SignalLong
}

func (s Signal) String() string {
	switch s {
	case SignalLong:
		return "long"
	case SignalShort:
		return "short"
	case SignalHold:
		return "hold"
	default:
		return fmt.Sprintf("signal(%d)", int8(s))
	}
}

// SignalsFromInts converts integers already known to be -1, 0 or 1. Values
// outside int8 wrap; use backtest.ParseSignals for untrusted input.
func SignalsFromInts(values []int) []Signal {
	out := make([]Signal, len(values))
	for i, v := range values {
		out[i] = Signal(v)
	}
	return out
}
