package backtest

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"strategylab/internal/types"
)

// Holding period units
const (
	HoldingUnitBars = "bars"
	HoldingUnitDays = "days"
)

// returns with a population standard deviation at or below this are treated
// as constant
const zeroVarianceTolerance = 1e-12

// ComputeMetrics derives the summary statistics shared by both engines.
// Mode specific fields (holding unit, commission, buy-and-hold) are filled by
// the engine.
func ComputeMetrics(equity []types.EquityPoint, trades []types.Trade, params Params) Metrics {
	values := types.EquityValues(equity)

	m := Metrics{
		InitialCapital: params.InitialCapital,
		TotalReturn:    TotalReturn(values),
		MaxDrawdown:    MaxDrawdown(values),
		SharpeRatio:    SharpeRatio(PeriodReturns(values), params.RiskFreeRate, params.AnnualizationFactor),
	}
	if len(values) > 0 {
		m.FinalEquity = values[len(values)-1]
	}
	if len(equity) > 0 {
		m.CalendarDays = calendarDays(equity[0].Timestamp, equity[len(equity)-1].Timestamp)
	}
	m.AnnualizedReturn = AnnualizedReturn(m.TotalReturn, m.CalendarDays)

	stats := ComputeTradeStats(trades)
	m.TotalTrades = stats.Count
	m.WinningTrades = stats.Wins
	m.LosingTrades = stats.Losses
	m.WinRate = stats.WinRate
	m.ProfitFactor = stats.ProfitFactor
	m.AvgTradeProfit = stats.AvgProfit
	m.AvgTradeReturn = stats.AvgReturn
	m.LargestWin = stats.MaxProfit
	m.LargestLoss = stats.MaxLoss
	m.AvgHoldingPeriod = stats.AvgHolding
	return m
}

// TotalReturn returns last/first - 1, or 0 for fewer than one point
func TotalReturn(values []float64) float64 {
	if len(values) == 0 || values[0] == 0 {
		return 0
	}
	return values[len(values)-1]/values[0] - 1
}

// Drawdowns returns value/peak-to-date - 1 for every point
func Drawdowns(values []float64) []float64 {
	out := make([]float64, len(values))
	peak := math.Inf(-1)
	for i, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			out[i] = v/peak - 1
		}
	}
	return out
}

// MaxDrawdown returns the most negative drawdown (0 when equity never falls)
func MaxDrawdown(values []float64) float64 {
	worst := 0.0
	for _, dd := range Drawdowns(values) {
		if dd < worst {
			worst = dd
		}
	}
	return worst
}

// PeriodReturns returns the simple returns between consecutive points
func PeriodReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		out[i-1] = values[i]/values[i-1] - 1
	}
	return out
}

// SharpeRatio annualizes the mean excess return over the population standard
// deviation. The annual risk-free rate is spread evenly over the
// annualizationFactor periods of a year. It returns NaN when the ratio is
// undefined: fewer than two returns or a constant return series.
func SharpeRatio(returns []float64, riskFreeRate, annualizationFactor float64) float64 {
	if len(returns) < 2 || annualizationFactor <= 0 {
		return math.NaN()
	}
	mean, variance := stat.MeanVariance(returns, nil)
	n := float64(len(returns))
	std := math.Sqrt(variance * (n - 1) / n)
	if math.IsNaN(std) || std <= zeroVarianceTolerance {
		return math.NaN()
	}
	excess := mean - riskFreeRate/annualizationFactor
	return excess / std * math.Sqrt(annualizationFactor)
}

// AnnualizedReturn compounds total over a 365 day year. It is 0 for a zero
// day span.
func AnnualizedReturn(total float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	return math.Pow(1+total, 365/float64(days)) - 1
}

// TradeStats summarizes a trade log
type TradeStats struct {
	Count        int
	Wins         int
	Losses       int
	WinRate      float64
	ProfitFactor float64
	AvgProfit    float64
	AvgReturn    float64
	MaxProfit    float64
	MaxLoss      float64
	AvgHolding   float64
}

// ComputeTradeStats summarizes trades. Everything is 0 for an empty log. The
// profit factor is +Inf when there are profits and no losses.
func ComputeTradeStats(trades []types.Trade) TradeStats {
	s := TradeStats{Count: len(trades)}
	if s.Count == 0 {
		return s
	}

	var grossProfit, grossLoss, sumPnL, sumReturn, sumHolding float64
	s.MaxProfit = math.Inf(-1)
	s.MaxLoss = math.Inf(1)
	for _, t := range trades {
		switch {
		case t.ProfitLoss > 0:
			s.Wins++
			grossProfit += t.ProfitLoss
		case t.ProfitLoss < 0:
			s.Losses++
			grossLoss += -t.ProfitLoss
		}
		sumPnL += t.ProfitLoss
		sumReturn += t.Return
		sumHolding += float64(t.HoldingPeriod)
		s.MaxProfit = math.Max(s.MaxProfit, t.ProfitLoss)
		s.MaxLoss = math.Min(s.MaxLoss, t.ProfitLoss)
	}

	n := float64(s.Count)
	s.WinRate = float64(s.Wins) / n
	s.AvgProfit = sumPnL / n
	s.AvgReturn = sumReturn / n
	s.AvgHolding = sumHolding / n
	s.ProfitFactor = profitFactor(grossProfit, grossLoss)
	return s
}

func profitFactor(gain, loss float64) float64 {
	if loss == 0 {
		if gain > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return gain / loss
}

// calendarDays counts whole days between two timestamps
func calendarDays(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from) / (24 * time.Hour))
}
