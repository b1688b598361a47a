// Package builtins provides the built-in strategy implementations that ship
// with stratbench.
package builtins

import (
	"stratbench/internal/domain"
	"stratbench/internal/strategy"
)

// Register adds every built-in strategy constructor to the registry.
func Register(r *strategy.Registry) {
	r.Register("sma_crossover", NewSMACrossover)
	r.Register("rsi_mean_revert", NewRSIMeanReversion)
	r.Register("macd_trend_follow", NewMACDTrendFollow)
	r.Register("vwap_reversion", NewVWAPReversion)
	r.Register("opening_range_breakout", NewOpeningRangeBreakout)
	r.Register("morning_momentum", NewMorningMomentum)
	r.Register("mean_reversion_intraday", NewMeanReversionIntraday)
	r.Register("sector_momentum", NewSectorMomentum)
}

// NewRegistry returns a registry pre-populated with all built-ins.
func NewRegistry() *strategy.Registry {
	r := strategy.NewRegistry()
	Register(r)
	return r
}

// position is the mutable per-instance state a strategy carries across
// Analyze calls. While open is false the strategy is flat and may only enter;
// while open it may only exit. This is what enforces the never-buy-while-long
// / never-sell-while-flat contract.
type position struct {
	open    bool
	entry   float64
	highest float64
}

func (p *position) enter(price float64) {
	p.open = true
	p.entry = price
	p.highest = price
}

func (p *position) exit() {
	*p = position{}
}

// track records a new high-water mark for trailing stops.
func (p *position) track(price float64) {
	if price > p.highest {
		p.highest = price
	}
}

// pnlPct is the open profit in percent at the given price.
func (p *position) pnlPct(price float64) float64 {
	return (price - p.entry) / p.entry * 100
}

func hold(bar domain.Bar, reason string) domain.Signal {
	return domain.Signal{
		Timestamp:  bar.Timestamp,
		Action:     domain.ActionHold,
		Confidence: 0,
		Reason:     reason,
		Price:      bar.Close,
	}
}

func buy(bar domain.Bar, confidence float64, reason string) domain.Signal {
	return domain.Signal{
		Timestamp:  bar.Timestamp,
		Action:     domain.ActionBuy,
		Confidence: clamp(confidence),
		Reason:     reason,
		Price:      bar.Close,
	}
}

func sell(bar domain.Bar, confidence float64, reason string) domain.Signal {
	return domain.Signal{
		Timestamp:  bar.Timestamp,
		Action:     domain.ActionSell,
		Confidence: clamp(confidence),
		Reason:     reason,
		Price:      bar.Close,
	}
}

// clamp bounds a confidence heuristic to [0, 1].
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// avgVolume is the mean volume over bars[from:to), or 0 for an empty range.
func avgVolume(bars []domain.Bar, from, to int) float64 {
	if from < 0 {
		from = 0
	}
	if to > len(bars) || from >= to {
		return 0
	}
	var sum float64
	for _, b := range bars[from:to] {
		sum += float64(b.Volume)
	}
	return sum / float64(to-from)
}

// nearClose reports whether index is within the final bars of the series,
// used by intraday-style strategies to flatten before the end of the period.
func nearClose(bars []domain.Bar, index int) bool {
	return index >= len(bars)-3
}

const insufficientData = "Insufficient data for analysis"
