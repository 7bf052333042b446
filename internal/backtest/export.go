package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"strategylab/internal/types"
)

type tradeRow struct {
	Direction     string  `csv:"direction"`
	EntryTime     string  `csv:"entry_time"`
	ExitTime      string  `csv:"exit_time"`
	EntryPrice    float64 `csv:"entry_price"`
	ExitPrice     float64 `csv:"exit_price"`
	Quantity      float64 `csv:"quantity"`
	Commission    float64 `csv:"commission"`
	ProfitLoss    float64 `csv:"profit_loss"`
	Return        float64 `csv:"return"`
	HoldingPeriod int     `csv:"holding_period"`
	Forced        bool    `csv:"forced"`
}

type equityRow struct {
	Timestamp string  `csv:"timestamp"`
	Equity    float64 `csv:"equity"`
	Drawdown  float64 `csv:"drawdown"`
	Peak      float64 `csv:"peak_equity"`
}

// ExportOptions selects which files SaveResults writes besides the JSON result
type ExportOptions struct {
	Trades bool
	Equity bool
}

// SaveResults writes <name>.json and, when enabled, <name>_trades.csv and
// <name>_equity.csv into dir. It returns the written paths.
func SaveResults(dir, name string, res *Result, opts ExportOptions) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	var written []string

	jsonPath := filepath.Join(dir, name+".json")
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write results: %w", err)
	}
	written = append(written, jsonPath)

	if opts.Trades {
		path := filepath.Join(dir, name+"_trades.csv")
		if err := writeCSV(path, tradeRows(res.Trades)); err != nil {
			return written, fmt.Errorf("failed to export trades: %w", err)
		}
		written = append(written, path)
	}

	if opts.Equity {
		path := filepath.Join(dir, name+"_equity.csv")
		if err := writeCSV(path, equityRows(res.Equity)); err != nil {
			return written, fmt.Errorf("failed to export equity curve: %w", err)
		}
		written = append(written, path)
	}

	return written, nil
}

func writeCSV(path string, rows interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return gocsv.MarshalFile(rows, file)
}

func tradeRows(trades []types.Trade) []*tradeRow {
	rows := make([]*tradeRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, &tradeRow{
			Direction:     string(t.Direction),
			EntryTime:     t.EntryTime.Format(time.RFC3339),
			ExitTime:      t.ExitTime.Format(time.RFC3339),
			EntryPrice:    t.EntryPrice,
			ExitPrice:     t.ExitPrice,
			Quantity:      t.Quantity,
			Commission:    t.Commission,
			ProfitLoss:    t.ProfitLoss,
			Return:        t.Return,
			HoldingPeriod: t.HoldingPeriod,
			Forced:        t.Forced,
		})
	}
	return rows
}

func equityRows(points []types.EquityPoint) []*equityRow {
	values := types.EquityValues(points)
	drawdowns := Drawdowns(values)
	rows := make([]*equityRow, 0, len(points))
	peak := 0.0
	for i, p := range points {
		if p.Equity > peak {
			peak = p.Equity
		}
		rows = append(rows, &equityRow{
			Timestamp: p.Timestamp.Format(time.RFC3339),
			Equity:    p.Equity,
			Drawdown:  drawdowns[i],
			Peak:      peak,
		})
	}
	return rows
}
