package indicators

import (
	"time"

	"stratbench/internal/domain"
)

// Snapshot is one bar annotated with the standard indicator set. Indicator
// fields are nil inside their warm-up window, which serializes to JSON null.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`

	SMA10 *float64 `json:"sma_10"`
	SMA20 *float64 `json:"sma_20"`
	SMA50 *float64 `json:"sma_50"`
	EMA12 *float64 `json:"ema_12"`
	EMA26 *float64 `json:"ema_26"`

	RSI *float64 `json:"rsi"`

	MACD          *float64 `json:"macd"`
	MACDSignal    *float64 `json:"macd_signal"`
	MACDHistogram *float64 `json:"macd_histogram"`

	BBUpper  *float64 `json:"bb_upper"`
	BBMiddle *float64 `json:"bb_middle"`
	BBLower  *float64 `json:"bb_lower"`

	VWAP *float64 `json:"vwap"`
	ATR  *float64 `json:"atr"`

	StochK *float64 `json:"stoch_k"`
	StochD *float64 `json:"stoch_d"`
}

// All computes the standard indicator set over the given bars with the
// conventional default parameters.
func All(bars []domain.Bar) []Snapshot {
	closes := Closes(bars)

	sma10 := SMA(closes, 10)
	sma20 := SMA(closes, 20)
	sma50 := SMA(closes, 50)
	ema12 := EMA(closes, 12)
	ema26 := EMA(closes, 26)
	rsi := RSI(closes, 14)
	macd, macdSignal, macdHist := MACD(closes, 12, 26, 9)
	bbUpper, bbMiddle, bbLower := Bollinger(closes, 20, 2.0)
	vwap := VWAP(bars)
	atr := ATR(bars, 14)
	stochK, stochD := Stochastic(bars, 14, 3)

	out := make([]Snapshot, len(bars))
	for i, b := range bars {
		out[i] = Snapshot{
			Timestamp: b.Timestamp,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,

			SMA10: ptr(sma10, i),
			SMA20: ptr(sma20, i),
			SMA50: ptr(sma50, i),
			EMA12: ptr(ema12, i),
			EMA26: ptr(ema26, i),

			RSI: ptr(rsi, i),

			MACD:          ptr(macd, i),
			MACDSignal:    ptr(macdSignal, i),
			MACDHistogram: ptr(macdHist, i),

			BBUpper:  ptr(bbUpper, i),
			BBMiddle: ptr(bbMiddle, i),
			BBLower:  ptr(bbLower, i),

			VWAP: ptr(vwap, i),
			ATR:  ptr(atr, i),

			StochK: ptr(stochK, i),
			StochD: ptr(stochD, i),
		}
	}
	return out
}

func ptr(s Series, i int) *float64 {
	v, ok := s.At(i)
	if !ok {
		return nil
	}
	return &v
}
