package data

import (
	"math"
	"math/rand"
	"time"

	"strategylab/internal/types"
)

// SimulationConfig describes a synthetic price series
type SimulationConfig struct {
	Symbol           string
	InitialPrice     float64
	Volatility       float64 // max uniform move per tick, as a fraction of price
	Trend            float64 // drift per tick, in thousandths of price
	RandomVolatility float64 // scale of the gaussian noise term
	TicksPerBar      int
	Interval         time.Duration
	Start            time.Time
	Seed             int64
}

// DefaultSimulationConfig returns a daily series around 100
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Symbol:           "SYNTH",
		InitialPrice:     100,
		Volatility:       0.01,
		RandomVolatility: 0.1,
		TicksPerBar:      8,
		Interval:         24 * time.Hour,
		Start:            time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:             1,
	}
}

// Simulator generates bars from a seeded tick walk. The same config always
// yields the same series.
type Simulator struct {
	config SimulationConfig
	rng    *rand.Rand
	price  float64
	count  int
}

// NewSimulator creates a simulator, filling unset fields with defaults
func NewSimulator(config SimulationConfig) *Simulator {
	defaults := DefaultSimulationConfig()
	if config.InitialPrice <= 0 {
		config.InitialPrice = defaults.InitialPrice
	}
	if config.Volatility <= 0 {
		config.Volatility = defaults.Volatility
	}
	if config.RandomVolatility < 0 {
		config.RandomVolatility = defaults.RandomVolatility
	}
	if config.TicksPerBar <= 0 {
		config.TicksPerBar = defaults.TicksPerBar
	}
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.Start.IsZero() {
		config.Start = defaults.Start
	}

	return &Simulator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
		price:  config.InitialPrice,
	}
}

// Bars generates the next n bars
func (s *Simulator) Bars(n int) []types.OHLCV {
	bars := make([]types.OHLCV, 0, n)
	for i := 0; i < n; i++ {
		bars = append(bars, s.nextBar())
	}
	return bars
}

func (s *Simulator) nextBar() types.OHLCV {
	open := s.price
	i := s.count
	s.count++
	bar := types.OHLCV{
		Symbol:    s.config.Symbol,
		Timestamp: s.config.Start.Add(time.Duration(i) * s.config.Interval),
		Open:      open,
		High:      open,
		Low:       open,
		Close:     open,
	}

	for t := 0; t < s.config.TicksPerBar; t++ {
		change := s.priceChange()
		s.price = math.Max(s.price+change, 0.01)

		bar.High = math.Max(bar.High, s.price)
		bar.Low = math.Min(bar.Low, s.price)
		bar.Close = s.price
		bar.Volume += s.volume(math.Abs(change))
	}
	return bar
}

// priceChange is a uniform walk plus drift, mean reversion toward the
// initial price and gaussian noise, capped at 5% of price per tick
func (s *Simulator) priceChange() float64 {
	price := s.price
	walk := (s.rng.Float64() - 0.5) * 2 * s.config.Volatility * price
	trend := s.config.Trend * price * 0.001
	reversion := -0.1 * (price - s.config.InitialPrice) * 0.001
	noise := s.rng.NormFloat64() * s.config.RandomVolatility * price * 0.01

	change := walk + trend + reversion + noise

	maxChange := price * 0.05
	if change > maxChange {
		change = maxChange
	} else if change < -maxChange {
		change = -maxChange
	}
	return change
}

// volume grows with the size of the move
func (s *Simulator) volume(change float64) float64 {
	base := 1000.0 + s.rng.Float64()*5000.0
	return base * (1.0 + (change/100.0)*10.0) * (1.0 + s.config.RandomVolatility*s.rng.Float64())
}
