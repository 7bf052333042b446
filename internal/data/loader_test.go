package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadBarsCSV(t *testing.T) {
	path := writeFile(t, "Timestamp,Open,High,Low,Close,Volume\n"+
		"2024-01-03,102,103,101,102.5,10\n"+
		"2024-01-01,100,101,99,100.5,10\n"+
		"2024-01-02,101,bad,100,101.5,10\n"+
		"2024-01-02,101,102,100,101.5,10\n"+
		"2024-01-04,104,103,101,102,10\n"+
		"2024-01-04,104,104,104,104,10\n")

	bars, err := LoadBarsCSV(path, LoadOptions{Symbol: "BTCUSDT"})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(bars) != 4 {
		t.Fatalf("bars = %d, want 4", len(bars))
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			t.Fatalf("bars not strictly increasing at %d", i)
		}
	}
	if bars[0].Close != 100.5 || bars[0].Symbol != "BTCUSDT" {
		t.Fatalf("first bar = %+v", bars[0])
	}
	if bars[3].Close != 104 {
		t.Fatalf("bar with broken OHLC range was kept: %+v", bars[3])
	}
}

func TestLoadBarsCSV_DateRange(t *testing.T) {
	path := writeFile(t, "date,open,high,low,close,volume\n"+
		"2024-01-01 00:00:00,1,1,1,1,1\n"+
		"2024-01-02 00:00:00,2,2,2,2,1\n"+
		"2024-01-03 00:00:00,3,3,3,3,1\n")

	bars, err := LoadBarsCSV(path, LoadOptions{
		Start: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(bars) != 1 || bars[0].Close != 2 {
		t.Fatalf("unexpected bars: %+v", bars)
	}
}

func TestLoadBarsCSV_Errors(t *testing.T) {
	if _, err := LoadBarsCSV(filepath.Join(t.TempDir(), "missing.csv"), LoadOptions{}); err == nil {
		t.Fatal("expected error for missing file")
	}

	noClose := writeFile(t, "timestamp,open,high,low,volume\n2024-01-01,1,1,1,1\n")
	if _, err := LoadBarsCSV(noClose, LoadOptions{}); err == nil {
		t.Fatal("expected error for missing close column")
	}

	allBad := writeFile(t, "timestamp,open,high,low,close,volume\nyesterday,1,1,1,1,1\n")
	if _, err := LoadBarsCSV(allBad, LoadOptions{}); err == nil {
		t.Fatal("expected error when no row is valid")
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	for _, in := range []string{
		"2024-03-01 12:30:00",
		"2024-03-01T12:30:00Z",
		"2024-03-01T12:30:00.000Z",
		"2024/03/01 12:30:00",
		"1709296200",
		"1709296200000",
	} {
		got, err := parseTimestamp(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("%s: got %s, want %s", in, got, want)
		}
	}
}
