package indicators

import (
	"math"
	"testing"
	"time"

	"stratbench/internal/domain"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func barsFromCloses(closes []float64) []domain.Bar {
	bars := make([]domain.Bar, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = domain.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func TestSMA(t *testing.T) {
	s := SMA([]float64{1, 2, 3, 4, 5}, 3)

	if _, ok := s.At(0); ok {
		t.Error("index 0 should be invalid for SMA(3)")
	}
	if _, ok := s.At(1); ok {
		t.Error("index 1 should be invalid for SMA(3)")
	}

	want := []float64{2, 3, 4}
	for i, w := range want {
		v, ok := s.At(i + 2)
		if !ok {
			t.Fatalf("index %d should be valid", i+2)
		}
		if !almostEqual(v, w) {
			t.Errorf("SMA[%d] = %v, want %v", i+2, v, w)
		}
	}
}

func TestEMA(t *testing.T) {
	// alpha = 2/(3+1) = 0.5, seeded with the first value.
	s := EMA([]float64{2, 4, 8}, 3)

	v0, ok := s.At(0)
	if !ok || !almostEqual(v0, 2) {
		t.Errorf("EMA[0] = %v (valid=%v), want 2", v0, ok)
	}
	v1, _ := s.At(1)
	if !almostEqual(v1, 3) { // 0.5*4 + 0.5*2
		t.Errorf("EMA[1] = %v, want 3", v1)
	}
	v2, _ := s.At(2)
	if !almostEqual(v2, 5.5) { // 0.5*8 + 0.5*3
		t.Errorf("EMA[2] = %v, want 5.5", v2)
	}
}

func TestRSI(t *testing.T) {
	// Two up moves then two down moves with period 2.
	closes := []float64{10, 11, 12, 11, 10}
	s := RSI(closes, 2)

	for i := 0; i < 2; i++ {
		if _, ok := s.At(i); ok {
			t.Errorf("index %d should be invalid for RSI(2)", i)
		}
	}

	// Index 2: gains (1,1), losses (0,0) -> avg loss 0 -> RSI 100.
	v, ok := s.At(2)
	if !ok || !almostEqual(v, 100) {
		t.Errorf("RSI[2] = %v (valid=%v), want 100", v, ok)
	}

	// Index 3: deltas +1,-1 -> avgGain 0.5, avgLoss 0.5 -> RS 1 -> RSI 50.
	v, _ = s.At(3)
	if !almostEqual(v, 50) {
		t.Errorf("RSI[3] = %v, want 50", v)
	}

	// Index 4: deltas -1,-1 -> avgGain 0 -> RSI 0.
	v, _ = s.At(4)
	if !almostEqual(v, 0) {
		t.Errorf("RSI[4] = %v, want 0", v)
	}
}

func TestRSIFlatSeries(t *testing.T) {
	s := RSI([]float64{5, 5, 5, 5}, 2)
	v, ok := s.At(3)
	if !ok {
		t.Fatal("flat series RSI should be valid after warm-up")
	}
	if !almostEqual(v, 100) {
		t.Errorf("flat series RSI = %v, want 100 (zero-loss convention)", v)
	}
}

func TestMACD(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	macd, signal, hist := MACD(closes, 2, 4, 3)

	if len(macd) != len(closes) || len(signal) != len(closes) || len(hist) != len(closes) {
		t.Fatal("MACD output length mismatch")
	}
	for i := range closes {
		m, mok := macd.At(i)
		s, sok := signal.At(i)
		h, hok := hist.At(i)
		if !mok || !sok || !hok {
			t.Fatalf("MACD outputs should be valid from index 0, got invalid at %d", i)
		}
		if !almostEqual(h, m-s) {
			t.Errorf("histogram[%d] = %v, want macd-signal = %v", i, h, m-s)
		}
	}

	// Fast EMA leads slow EMA in a rising series.
	m, _ := macd.At(len(closes) - 1)
	if m <= 0 {
		t.Errorf("MACD should be positive in a rising series, got %v", m)
	}
}

func TestBollinger(t *testing.T) {
	closes := []float64{2, 4, 6}
	upper, middle, lower := Bollinger(closes, 3, 2.0)

	m, ok := middle.At(2)
	if !ok || !almostEqual(m, 4) {
		t.Fatalf("middle[2] = %v (valid=%v), want 4", m, ok)
	}
	// Sample std dev of {2,4,6} is 2.
	u, _ := upper.At(2)
	l, _ := lower.At(2)
	if !almostEqual(u, 8) {
		t.Errorf("upper[2] = %v, want 8", u)
	}
	if !almostEqual(l, 0) {
		t.Errorf("lower[2] = %v, want 0", l)
	}

	if _, ok := upper.At(1); ok {
		t.Error("upper band should be invalid before the window fills")
	}
}

func TestVWAP(t *testing.T) {
	bars := []domain.Bar{
		{High: 12, Low: 8, Close: 10, Volume: 100},  // typical 10
		{High: 22, Low: 18, Close: 20, Volume: 300}, // typical 20
	}
	s := VWAP(bars)

	v, ok := s.At(0)
	if !ok || !almostEqual(v, 10) {
		t.Errorf("VWAP[0] = %v (valid=%v), want 10", v, ok)
	}
	// (10*100 + 20*300) / 400 = 17.5
	v, _ = s.At(1)
	if !almostEqual(v, 17.5) {
		t.Errorf("VWAP[1] = %v, want 17.5", v)
	}
}

func TestVWAPZeroVolume(t *testing.T) {
	bars := []domain.Bar{{High: 12, Low: 8, Close: 10, Volume: 0}}
	s := VWAP(bars)
	if _, ok := s.At(0); ok {
		t.Error("VWAP with zero cumulative volume should be invalid")
	}
}

func TestATR(t *testing.T) {
	bars := []domain.Bar{
		{High: 12, Low: 10, Close: 11},
		{High: 14, Low: 11, Close: 13}, // TR = max(3, 3, 0) = 3
		{High: 13, Low: 9, Close: 10},  // TR = max(4, 0, 4) = 4
	}
	s := ATR(bars, 2)

	if _, ok := s.At(0); ok {
		t.Error("ATR(2) should be invalid at index 0")
	}
	// TR[0] = 2 (no previous close), TR[1] = 3 -> mean 2.5
	v, ok := s.At(1)
	if !ok || !almostEqual(v, 2.5) {
		t.Errorf("ATR[1] = %v (valid=%v), want 2.5", v, ok)
	}
	v, _ = s.At(2)
	if !almostEqual(v, 3.5) {
		t.Errorf("ATR[2] = %v, want 3.5", v)
	}
}

func TestStochastic(t *testing.T) {
	bars := []domain.Bar{
		{High: 10, Low: 0, Close: 5},
		{High: 10, Low: 0, Close: 10},
		{High: 10, Low: 0, Close: 0},
	}
	k, d := Stochastic(bars, 2, 2)

	if _, ok := k.At(0); ok {
		t.Error("%K should be invalid at index 0 for kPeriod 2")
	}
	v, ok := k.At(1)
	if !ok || !almostEqual(v, 100) {
		t.Errorf("%%K[1] = %v (valid=%v), want 100", v, ok)
	}
	v, _ = k.At(2)
	if !almostEqual(v, 0) {
		t.Errorf("%%K[2] = %v, want 0", v)
	}

	// %D at index 2 is the mean of %K[1] and %K[2].
	v, ok = d.At(2)
	if !ok || !almostEqual(v, 50) {
		t.Errorf("%%D[2] = %v (valid=%v), want 50", v, ok)
	}
}

func TestStochasticFlatRange(t *testing.T) {
	bars := []domain.Bar{
		{High: 5, Low: 5, Close: 5},
		{High: 5, Low: 5, Close: 5},
	}
	k, _ := Stochastic(bars, 2, 2)
	if _, ok := k.At(1); ok {
		t.Error("%K should be invalid when the high/low range is flat")
	}
}

func TestAllAlignsWithInput(t *testing.T) {
	bars := barsFromCloses([]float64{9, 10, 11, 12, 13, 12, 11, 10, 11, 12})
	snaps := All(bars)

	if len(snaps) != len(bars) {
		t.Fatalf("All returned %d snapshots, want %d", len(snaps), len(bars))
	}
	for i, s := range snaps {
		if !s.Timestamp.Equal(bars[i].Timestamp) {
			t.Errorf("snapshot %d timestamp mismatch", i)
		}
		if s.Close != bars[i].Close {
			t.Errorf("snapshot %d close mismatch", i)
		}
	}
	// Warm-up entries are nil, later entries populated.
	if snaps[0].SMA10 != nil {
		t.Error("SMA10 should be nil before its window fills")
	}
	if snaps[9].SMA10 == nil {
		t.Error("SMA10 should be set at index 9")
	}
	if snaps[0].EMA12 == nil {
		t.Error("EMA12 is seeded and should be set from index 0")
	}
	if snaps[9].SMA50 != nil {
		t.Error("SMA50 should remain nil with only 10 bars")
	}
}
