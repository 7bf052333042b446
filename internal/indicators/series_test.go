package indicators

import (
	"math"
	"testing"

	"strategylab/internal/types"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMA_WarmupIsNaN(t *testing.T) {
	got := SMA(3, []float64{1, 2, 3, 4, 5})
	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Fatalf("warm-up values = %v, want NaN", got[:2])
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if !near(got[i+2], w) {
			t.Fatalf("sma = %v, want tail %v", got, want)
		}
	}
}

func TestSMA_SkipsLeadingNaN(t *testing.T) {
	in := []float64{math.NaN(), math.NaN(), 2, 4, 6}
	got := SMA(2, in)
	if !math.IsNaN(got[2]) || !near(got[3], 3) || !near(got[4], 5) {
		t.Fatalf("sma = %v", got)
	}
}

func TestEMA(t *testing.T) {
	got := EMA(3, []float64{2, 4, 8})
	// k = 0.5
	want := []float64{2, 3, 5.5}
	for i, w := range want {
		if !near(got[i], w) {
			t.Fatalf("ema = %v, want %v", got, want)
		}
	}
}

func TestMACD_CustomMatchesDefaultPath(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/5)
	}
	line, signal := indicatorMACDByHand(closes)
	gotLine, gotSignal := MACD(12, 26, 9, closes)
	for i := range closes {
		if !near(line[i], gotLine[i]) || !near(signal[i], gotSignal[i]) {
			t.Fatalf("bar %d: macd %v/%v, want %v/%v", i, gotLine[i], gotSignal[i], line[i], signal[i])
		}
	}
}

func indicatorMACDByHand(closes []float64) ([]float64, []float64) {
	fast, slow := EMA(12, closes), EMA(26, closes)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	return line, EMA(9, line)
}

func TestRSI(t *testing.T) {
	rising := RSI(14, []float64{1, 2, 3, 4})
	if rising[3] != 100 {
		t.Fatalf("rsi without losses = %v, want 100", rising[3])
	}

	flat := RSI(14, []float64{5, 5, 5})
	if !math.IsNaN(flat[2]) {
		t.Fatalf("rsi of flat series = %v, want NaN", flat[2])
	}

	mixed := RSI(2, []float64{10, 12, 11})
	// k = 2/3: gains 0, 4/3, 4/9; losses 0, 0, 2/3
	want := 100 - 100/(1+(4.0/9)/(2.0/3))
	if !near(mixed[2], want) {
		t.Fatalf("rsi = %v, want %v", mixed[2], want)
	}
}

func TestHull_Warmup(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	hull := Hull(9, closes)
	first := HullWarmup(9)
	if !math.IsNaN(hull[first-1]) || math.IsNaN(hull[first]) {
		t.Fatalf("first defined hull value at %d, want %d", firstValid(hull), first)
	}
	// a linear series has a linear hull: 2*mean(last 4) - mean(last 9) lead
	if hull[first+1]-hull[first] <= 0 {
		t.Fatal("hull of rising series is not rising")
	}
}

func TestCrossover(t *testing.T) {
	a := []float64{1, 2, 3, 2, 1, math.NaN(), 3}
	b := []float64{2, 2, 2, 2, 2, 2, 2}
	got := Crossover(a, b)
	want := []types.Signal{0, 0, 1, 0, -1, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("crossover = %v, want %v", got, want)
		}
	}
}

func TestCrossLevel(t *testing.T) {
	values := []float64{25, 31, 35, 71, 69, 75}
	above := CrossAbove(values, 30)
	below := CrossBelow(values, 70)
	if !above[1] || above[2] {
		t.Fatalf("cross above = %v", above)
	}
	if !below[4] || below[3] || below[5] {
		t.Fatalf("cross below = %v", below)
	}
}
