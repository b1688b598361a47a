// Package indicators provides pure technical indicator functions over price
// series. Every function returns a Series aligned by index with its input;
// entries inside the warm-up window are marked invalid rather than carrying
// NaN, so callers must branch on validity explicitly.
package indicators

import (
	"math"

	"stratbench/internal/domain"
)

// Point is one computed indicator value. Valid is false while the lookback
// window has not yet filled.
type Point struct {
	Value float64
	Valid bool
}

// Series is an indicator output, same length as its input series.
type Series []Point

// At returns the value at index i and whether it is valid. Out-of-range
// indices are reported as invalid.
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s) {
		return 0, false
	}
	p := s[i]
	return p.Value, p.Valid
}

// Closes extracts the close prices from a bar slice.
func Closes(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// SMA computes the simple moving average: the arithmetic mean of the trailing
// period values. Valid from index period-1.
func SMA(values []float64, period int) Series {
	out := make(Series, len(values))
	if period <= 0 {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = Point{Value: sum / float64(period), Valid: true}
		}
	}
	return out
}

// EMA computes the exponential moving average with smoothing factor
// alpha = 2/(period+1), seeded with the first value. No warm-up bias
// correction is applied, so the series is valid from index 0.
func EMA(values []float64, period int) Series {
	out := make(Series, len(values))
	if period <= 0 || len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(period+1)
	ema := values[0]
	out[0] = Point{Value: ema, Valid: true}
	for i := 1; i < len(values); i++ {
		ema = alpha*values[i] + (1-alpha)*ema
		out[i] = Point{Value: ema, Valid: true}
	}
	return out
}

// RSI computes the relative strength index over the trailing period deltas.
// The first delta needs index 1, so the series is valid from index period.
// A zero average loss yields RSI 100.
func RSI(values []float64, period int) Series {
	out := make(Series, len(values))
	if period <= 0 || len(values) < period+1 {
		return out
	}
	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}
	var gainSum, lossSum float64
	for i := 1; i < len(values); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}
		if i >= period {
			avgGain := gainSum / float64(period)
			avgLoss := lossSum / float64(period)
			if avgLoss == 0 {
				out[i] = Point{Value: 100, Valid: true}
				continue
			}
			rs := avgGain / avgLoss
			out[i] = Point{Value: 100 - 100/(1+rs), Valid: true}
		}
	}
	return out
}

// MACD computes the moving average convergence divergence line, its signal
// line, and the histogram (macd - signal). All three are valid from index 0
// because the underlying EMAs are seeded.
func MACD(values []float64, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, histogram Series) {
	fast := EMA(values, fastPeriod)
	slow := EMA(values, slowPeriod)

	macd = make(Series, len(values))
	macdValues := make([]float64, len(values))
	for i := range values {
		fv, fok := fast.At(i)
		sv, sok := slow.At(i)
		if fok && sok {
			macd[i] = Point{Value: fv - sv, Valid: true}
			macdValues[i] = fv - sv
		}
	}

	signal = EMA(macdValues, signalPeriod)

	histogram = make(Series, len(values))
	for i := range values {
		mv, mok := macd.At(i)
		sv, sok := signal.At(i)
		if mok && sok {
			histogram[i] = Point{Value: mv - sv, Valid: true}
		}
	}
	return macd, signal, histogram
}

// Bollinger computes Bollinger Bands: middle is the SMA, the band width is
// stdDev times the rolling sample standard deviation. Valid from index
// period-1.
func Bollinger(values []float64, period int, stdDev float64) (upper, middle, lower Series) {
	middle = SMA(values, period)
	upper = make(Series, len(values))
	lower = make(Series, len(values))
	if period < 2 {
		return upper, middle, lower
	}
	for i := period - 1; i < len(values); i++ {
		m, _ := middle.At(i)
		var ss float64
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - m
			ss += d * d
		}
		// Sample standard deviation (n-1 denominator), matching rolling std
		// conventions elsewhere in the ecosystem.
		sd := math.Sqrt(ss / float64(period-1))
		upper[i] = Point{Value: m + stdDev*sd, Valid: true}
		lower[i] = Point{Value: m - stdDev*sd, Valid: true}
	}
	return upper, middle, lower
}

// VWAP computes the volume weighted average price cumulatively from the
// start of the given slice. There is no session reset: callers control the
// boundary by choosing the slice they pass in. Points with zero cumulative
// volume are invalid.
func VWAP(bars []domain.Bar) Series {
	out := make(Series, len(bars))
	var pvSum, volSum float64
	for i, b := range bars {
		typical := (b.High + b.Low + b.Close) / 3
		pvSum += typical * float64(b.Volume)
		volSum += float64(b.Volume)
		if volSum > 0 {
			out[i] = Point{Value: pvSum / volSum, Valid: true}
		}
	}
	return out
}

// ATR computes the average true range: the rolling mean over period bars of
// max(high-low, |high-prevClose|, |low-prevClose|). The first bar has no
// previous close, so its true range is just high-low. Valid from index
// period-1.
func ATR(bars []domain.Bar, period int) Series {
	out := make(Series, len(bars))
	if period <= 0 || len(bars) == 0 {
		return out
	}
	tr := make([]float64, len(bars))
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < len(bars); i++ {
		b := bars[i]
		prevClose := bars[i-1].Close
		tr[i] = math.Max(b.High-b.Low, math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
	}
	var sum float64
	for i, v := range tr {
		sum += v
		if i >= period {
			sum -= tr[i-period]
		}
		if i >= period-1 {
			out[i] = Point{Value: sum / float64(period), Valid: true}
		}
	}
	return out
}

// Stochastic computes the stochastic oscillator. %K compares the close
// against the high/low range of the trailing kPeriod bars; %D is the SMA of
// %K over dPeriod. A flat range makes %K invalid for that index.
func Stochastic(bars []domain.Bar, kPeriod, dPeriod int) (k, d Series) {
	k = make(Series, len(bars))
	d = make(Series, len(bars))
	if kPeriod <= 0 || dPeriod <= 0 {
		return k, d
	}
	for i := kPeriod - 1; i < len(bars); i++ {
		lowest := bars[i-kPeriod+1].Low
		highest := bars[i-kPeriod+1].High
		for j := i - kPeriod + 2; j <= i; j++ {
			if bars[j].Low < lowest {
				lowest = bars[j].Low
			}
			if bars[j].High > highest {
				highest = bars[j].High
			}
		}
		if highest == lowest {
			continue
		}
		k[i] = Point{Value: 100 * (bars[i].Close - lowest) / (highest - lowest), Valid: true}
	}
	// %D: SMA over %K, valid only where the whole window is valid.
	for i := dPeriod - 1; i < len(bars); i++ {
		var sum float64
		ok := true
		for j := i - dPeriod + 1; j <= i; j++ {
			v, valid := k.At(j)
			if !valid {
				ok = false
				break
			}
			sum += v
		}
		if ok {
			d[i] = Point{Value: sum / float64(dPeriod), Valid: true}
		}
	}
	return k, d
}
