package backtest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
)

func TestSaveResults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	res, err := Run(mkBars(100, 110, 90, 120), sigs(0, 1, -1, 0), zeroCostParams(ModeWholeCapital, 1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	paths, err := SaveResults(dir, "run", res, ExportOptions{Trades: true, Equity: true})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("written = %v, want 3 files", paths)
	}

	data, err := os.ReadFile(filepath.Join(dir, "run.json"))
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("result json is invalid: %v", err)
	}
	if decoded["mode"] != string(ModeWholeCapital) {
		t.Fatalf("mode = %v", decoded["mode"])
	}

	tradesFile, err := os.Open(filepath.Join(dir, "run_trades.csv"))
	if err != nil {
		t.Fatalf("open trades csv: %v", err)
	}
	defer tradesFile.Close()
	var trades []*tradeRow
	if err := gocsv.UnmarshalFile(tradesFile, &trades); err != nil {
		t.Fatalf("parse trades csv: %v", err)
	}
	if len(trades) != 1 || trades[0].Direction != "long" || trades[0].HoldingPeriod != 1 {
		t.Fatalf("unexpected trade rows: %+v", trades)
	}

	equityFile, err := os.Open(filepath.Join(dir, "run_equity.csv"))
	if err != nil {
		t.Fatalf("open equity csv: %v", err)
	}
	defer equityFile.Close()
	var equity []*equityRow
	if err := gocsv.UnmarshalFile(equityFile, &equity); err != nil {
		t.Fatalf("parse equity csv: %v", err)
	}
	if len(equity) != len(res.Equity) {
		t.Fatalf("equity rows = %d, want %d", len(equity), len(res.Equity))
	}
	approx(t, "last drawdown", equity[len(equity)-1].Drawdown, 90.0/110-1)
}

func TestSaveResults_JSONOnly(t *testing.T) {
	dir := t.TempDir()
	res, err := Run(mkBars(100, 101), sigs(0, 0), DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	paths, err := SaveResults(dir, "flat", res, ExportOptions{})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("written = %v, want only the json file", paths)
	}
	if _, err := os.Stat(filepath.Join(dir, "flat_trades.csv")); !os.IsNotExist(err) {
		t.Fatalf("trades csv written without being requested: %v", err)
	}
}
