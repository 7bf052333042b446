package data

import (
	"testing"
	"time"

	"strategylab/internal/types"
)

func TestResample(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hourly := []types.OHLCV{
		types.NewOHLCV("X", base, 10, 12, 9, 11, 1),
		types.NewOHLCV("X", base.Add(time.Hour), 11, 15, 10, 14, 2),
		types.NewOHLCV("X", base.Add(24*time.Hour), 14, 14, 8, 9, 3),
	}

	daily := Resample(hourly, 24*time.Hour)
	if len(daily) != 2 {
		t.Fatalf("candles = %d, want 2", len(daily))
	}
	first := daily[0]
	if first.Open != 10 || first.High != 15 || first.Low != 9 || first.Close != 14 || first.Volume != 3 {
		t.Fatalf("first candle = %+v", first)
	}
	if !daily[1].Timestamp.Equal(base.Add(24 * time.Hour)) {
		t.Fatalf("second candle starts at %s", daily[1].Timestamp)
	}
	if hourly[0].High != 12 {
		t.Fatal("input bars were modified")
	}
}

func TestParseTimeframe(t *testing.T) {
	tests := map[string]time.Duration{
		"15m": 15 * time.Minute,
		"4h":  4 * time.Hour,
		"1d":  24 * time.Hour,
		"1w":  7 * 24 * time.Hour,
	}
	for in, want := range tests {
		got, err := ParseTimeframe(in)
		if err != nil || got != want {
			t.Fatalf("%s: got %v, %v; want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "0d", "xd", "-1h"} {
		if _, err := ParseTimeframe(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}
