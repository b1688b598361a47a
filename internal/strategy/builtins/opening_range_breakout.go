package builtins

import (
	"errors"
	"fmt"

	"stratbench/internal/domain"
	"stratbench/internal/strategy"
)

var _ strategy.Strategy = (*OpeningRangeBreakout)(nil)

// OpeningRangeBreakout tracks the high and low of the first rangePeriod bars
// and buys a close above the range high, optionally requiring a volume surge.
type OpeningRangeBreakout struct {
	rangePeriod  int
	volConfirm   bool
	volThreshold float64
	stopLoss     float64
	takeProfit   float64

	rangeHigh float64
	rangeLow  float64
	rangeSet  bool
	pos       position
}

// NewOpeningRangeBreakout constructs the strategy. Defaults: 30-bar range,
// volume confirmation at 1.5x average, 1.5% stop, 3% target.
func NewOpeningRangeBreakout(p strategy.Params) (strategy.Strategy, error) {
	s := &OpeningRangeBreakout{
		rangePeriod:  p.Int("range_period", 30),
		volConfirm:   p.Bool("volume_confirmation", true),
		volThreshold: p.Float("volume_threshold", 1.5),
		stopLoss:     p.Float("stop_loss_pct", 1.5),
		takeProfit:   p.Float("take_profit_pct", 3.0),
	}
	if s.rangePeriod <= 0 {
		return nil, errors.New("range period must be positive")
	}
	if s.stopLoss <= 0 {
		return nil, errors.New("stop loss percentage must be positive")
	}
	if s.takeProfit <= 0 {
		return nil, errors.New("take profit percentage must be positive")
	}
	return s, nil
}

func (s *OpeningRangeBreakout) Name() string { return "opening_range_breakout" }

func (s *OpeningRangeBreakout) Description() string {
	return fmt.Sprintf("Opening Range Breakout (%d-bar range)", s.rangePeriod)
}

func (s *OpeningRangeBreakout) Analyze(bars []domain.Bar, index int) domain.Signal {
	bar := bars[index]
	if index < 2 {
		return hold(bar, insufficientData)
	}

	if index < s.rangePeriod {
		s.updateRange(bars[:index+1])
		return hold(bar, fmt.Sprintf(
			"Establishing opening range: H=%.2f, L=%.2f", s.rangeHigh, s.rangeLow))
	}
	if !s.rangeSet {
		s.updateRange(bars[:s.rangePeriod])
		s.rangeSet = true
	}

	avgVol := avgVolume(bars, max(0, index-20), index)
	volRatio := 1.0
	if avgVol > 0 {
		volRatio = float64(bar.Volume) / avgVol
	}

	if !s.pos.open {
		if bar.Close > s.rangeHigh && (!s.volConfirm || volRatio >= s.volThreshold) {
			s.pos.enter(bar.Close)
			conf := clamp(0.6 + (volRatio/(s.volThreshold*2))*0.4)
			return buy(bar, conf, fmt.Sprintf(
				"Breakout above OR high %.2f, vol_ratio=%.1fx", s.rangeHigh, volRatio))
		}
	} else {
		pnl := s.pos.pnlPct(bar.Close)

		if bar.Close <= s.pos.entry*(1-s.stopLoss/100) {
			s.pos.exit()
			return sell(bar, 0.9, fmt.Sprintf("Stop-loss hit: %.2f%%", pnl))
		}
		if bar.Close >= s.pos.entry*(1+s.takeProfit/100) {
			s.pos.exit()
			return sell(bar, 0.9, fmt.Sprintf("Take-profit hit: %.2f%%", pnl))
		}
		if nearClose(bars, index) {
			s.pos.exit()
			return sell(bar, 0.8, fmt.Sprintf("End of day exit: %.2f%%", pnl))
		}
	}

	return hold(bar, fmt.Sprintf("Monitoring: OR H=%.2f, L=%.2f", s.rangeHigh, s.rangeLow))
}

func (s *OpeningRangeBreakout) updateRange(opening []domain.Bar) {
	s.rangeHigh = opening[0].High
	s.rangeLow = opening[0].Low
	for _, b := range opening[1:] {
		if b.High > s.rangeHigh {
			s.rangeHigh = b.High
		}
		if b.Low < s.rangeLow {
			s.rangeLow = b.Low
		}
	}
}
