package report

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"strategylab/internal/backtest"
)

// Options controls the report layout
type Options struct {
	Locale    string // BCP 47 tag, "en-US" when empty
	MaxTrades int    // trades listed at the end, 0 lists none
}

// Write renders a human-readable summary of res
func Write(w io.Writer, res *backtest.Result, opts Options) error {
	tag := language.AmericanEnglish
	if opts.Locale != "" {
		parsed, err := language.Parse(opts.Locale)
		if err != nil {
			return fmt.Errorf("failed to parse locale %q: %w", opts.Locale, err)
		}
		tag = parsed
	}
	p := message.NewPrinter(tag)
	m := res.Metrics

	title := string(res.Mode)
	if res.Strategy != "" {
		title = res.Strategy + " / " + title
	}
	if res.Symbol != "" {
		title = res.Symbol + " " + title
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p.Fprintf(tw, "Backtest: %s\n", title)
	if len(res.Equity) > 0 {
		p.Fprintf(tw, "Period:\t%s to %s (%d days)\n",
			res.Equity[0].Timestamp.Format(time.DateOnly),
			res.Equity[len(res.Equity)-1].Timestamp.Format(time.DateOnly),
			m.CalendarDays)
	}
	p.Fprintf(tw, "Initial capital:\t%s\n", money(p, m.InitialCapital))
	p.Fprintf(tw, "Final equity:\t%s\n", money(p, m.FinalEquity))
	p.Fprintf(tw, "Total return:\t%s\n", percent(p, m.TotalReturn))
	p.Fprintf(tw, "Annualized return:\t%s\n", percent(p, m.AnnualizedReturn))
	p.Fprintf(tw, "Buy and hold:\t%s\n", percent(p, m.BuyAndHoldReturn))
	p.Fprintf(tw, "Max drawdown:\t%s\n", percent(p, m.MaxDrawdown))
	p.Fprintf(tw, "Sharpe ratio:\t%s\n", ratio(p, m.SharpeRatio))
	p.Fprintf(tw, "Trades:\t%d (%d won, %d lost)\n", m.TotalTrades, m.WinningTrades, m.LosingTrades)
	p.Fprintf(tw, "Win rate:\t%s\n", percent(p, m.WinRate))
	p.Fprintf(tw, "Profit factor:\t%s\n", ratio(p, m.ProfitFactor))
	p.Fprintf(tw, "Avg trade:\t%s (%s)\n", money(p, m.AvgTradeProfit), percent(p, m.AvgTradeReturn))
	p.Fprintf(tw, "Largest win/loss:\t%s / %s\n", money(p, m.LargestWin), money(p, m.LargestLoss))
	p.Fprintf(tw, "Avg holding:\t%.1f %s\n", m.AvgHoldingPeriod, m.HoldingUnit)
	p.Fprintf(tw, "Fees paid:\t%s\n", money(p, m.TotalCommission))
	if res.OpenLeg != nil {
		p.Fprintf(tw, "Open leg:\t%s x%.2f from %s\n", res.OpenLeg.Type(), math.Abs(res.OpenLeg.Size),
			res.OpenLeg.EntryTime.Format(time.DateOnly))
	}

	if opts.MaxTrades > 0 && len(res.Trades) > 0 {
		p.Fprintf(tw, "\n#\tSide\tEntry\tExit\tEntry price\tExit price\tP&L\tReturn\n")
		for i, t := range res.Trades {
			if i == opts.MaxTrades {
				p.Fprintf(tw, "...\t%d more\n", len(res.Trades)-i)
				break
			}
			p.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", i+1, t.Direction,
				t.EntryTime.Format(time.DateOnly), t.ExitTime.Format(time.DateOnly),
				money(p, t.EntryPrice), money(p, t.ExitPrice), money(p, t.ProfitLoss), percent(p, t.Return))
		}
	}

	return tw.Flush()
}

// money rounds half away from zero to cents before grouping
func money(p *message.Printer, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return p.Sprintf("%.2f", decimal.NewFromFloat(v).Round(2).InexactFloat64())
}

func percent(p *message.Printer, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return p.Sprintf("%.2f%%", decimal.NewFromFloat(v).Shift(2).Round(2).InexactFloat64())
}

func ratio(p *message.Printer, v float64) string {
	switch {
	case math.IsNaN(v):
		return "n/a"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return p.Sprintf("%.2f", v)
}
