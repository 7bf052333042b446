package strategy

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"strategylab/internal/types"
)

var (
	// ErrUnknownStrategy is returned by New for an unregistered name
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrInvalidParams is returned when a generator parameter is out of range
	ErrInvalidParams = errors.New("invalid strategy parameters")
)

// Generator turns a bar series into one signal per bar. Generate must be
// deterministic and must only read bars at or before the bar it signals on.
type Generator interface {
	Name() string
	// Lookback is the number of bars a live window needs before the latest
	// signal is meaningful.
	Lookback() int
	Generate(bars []types.OHLCV) []types.Signal
}

// Params are numeric generator settings keyed by name. Unknown keys are ignored.
type Params map[string]float64

type factory func(Params) (Generator, error)

var registry = map[string]factory{
	SMACrossName:     newSMACross,
	MACDCrossName:    newMACDCross,
	RSIThresholdName: newRSIThreshold,
	SmartMoneyName:   newSmartMoney,
}

// New creates the generator registered under name
func New(name string, params Params) (Generator, error) {
	create, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}
	return create(params)
}

// Names lists the registered generators in alphabetical order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the default parameters of every generator
func Describe() map[string]Params {
	out := make(map[string]Params, len(registry))
	for name := range registry {
		out[name] = defaultParams(name)
	}
	return out
}

func defaultParams(name string) Params {
	switch name {
	case SMACrossName:
		return Params{"fast": 5, "slow": 10}
	case MACDCrossName:
		return Params{"fast": 12, "slow": 26, "signal": 9}
	case RSIThresholdName:
		return Params{"period": 14, "buy": 30, "sell": 70}
	case SmartMoneyName:
		return Params{"main_hull": 55, "second_hull": 21, "tunnel_fast": 144, "tunnel_slow": 169, "ribbon_fast": 288, "ribbon_slow": 338}
	}
	return Params{}
}

// period reads a positive whole-number setting
func (p Params) period(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	if v < 1 || v != math.Trunc(v) || v > 1e6 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %v", ErrInvalidParams, key, v)
	}
	return int(v), nil
}

// level reads a finite setting
func (p Params) level(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be finite", ErrInvalidParams, key)
	}
	return v, nil
}
