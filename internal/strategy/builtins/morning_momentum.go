package builtins

import (
	"errors"
	"fmt"

	"stratbench/internal/domain"
	"stratbench/internal/indicators"
	"stratbench/internal/strategy"
)

var _ strategy.Strategy = (*MorningMomentum)(nil)

// MorningMomentum buys gap-ups confirmed by a volume surge and a non-extended
// short RSI, riding the move with a trailing stop.
type MorningMomentum struct {
	gapThreshold float64
	rsiPeriod    int
	rsiMax       float64
	volRatioMin  float64
	volPeriod    int
	trailingStop float64
	pos          position
}

// NewMorningMomentum constructs the strategy. Defaults: 2% gap, RSI(5) < 70,
// volume 2x the 20-bar average, 2% trailing stop.
func NewMorningMomentum(p strategy.Params) (strategy.Strategy, error) {
	s := &MorningMomentum{
		gapThreshold: p.Float("gap_threshold", 2.0),
		rsiPeriod:    p.Int("rsi_period", 5),
		rsiMax:       p.Float("rsi_max", 70),
		volRatioMin:  p.Float("volume_ratio_min", 2.0),
		volPeriod:    p.Int("volume_period", 20),
		trailingStop: p.Float("trailing_stop_pct", 2.0),
	}
	if s.gapThreshold <= 0 {
		return nil, errors.New("gap threshold must be positive")
	}
	if s.rsiPeriod < 2 {
		return nil, errors.New("RSI period must be at least 2")
	}
	if s.rsiMax < 0 || s.rsiMax > 100 {
		return nil, errors.New("RSI max must be between 0 and 100")
	}
	if s.volRatioMin <= 0 {
		return nil, errors.New("volume ratio min must be positive")
	}
	return s, nil
}

func (s *MorningMomentum) Name() string { return "morning_momentum" }

func (s *MorningMomentum) Description() string {
	return fmt.Sprintf("Morning Momentum (gap>%g%%, RSI<%g, vol>%gx)",
		s.gapThreshold, s.rsiMax, s.volRatioMin)
}

func (s *MorningMomentum) Analyze(bars []domain.Bar, index int) domain.Signal {
	bar := bars[index]
	if index < max(s.rsiPeriod+1, s.volPeriod) {
		return hold(bar, insufficientData)
	}

	prev := bars[index-1]
	gapPct := (bar.Open - prev.Close) / prev.Close * 100

	rsi := indicators.RSI(indicators.Closes(bars[:index+1]), s.rsiPeriod)
	curRSI, ok := rsi.At(index)
	if !ok {
		return hold(bar, insufficientData)
	}

	avgVol := avgVolume(bars, index-s.volPeriod, index)
	volRatio := 0.0
	if avgVol > 0 {
		volRatio = float64(bar.Volume) / avgVol
	}

	if !s.pos.open {
		if gapPct >= s.gapThreshold && curRSI < s.rsiMax && volRatio >= s.volRatioMin {
			s.pos.enter(bar.Close)
			conf := clamp(gapPct/(s.gapThreshold*2)*0.4 +
				volRatio/(s.volRatioMin*2)*0.4 +
				(s.rsiMax-curRSI)/s.rsiMax*0.2)
			return buy(bar, conf, fmt.Sprintf(
				"Morning gap up: %.2f%% gap, RSI=%.1f, vol_ratio=%.1fx", gapPct, curRSI, volRatio))
		}
	} else {
		s.pos.track(bar.Close)

		stopped := bar.Close <= s.pos.highest*(1-s.trailingStop/100)
		if stopped || nearClose(bars, index) {
			s.pos.exit()
			reason := "End of day exit"
			if stopped {
				reason = "Trailing stop hit"
			}
			return sell(bar, 0.8, reason)
		}
	}

	return hold(bar, fmt.Sprintf(
		"Monitoring: gap=%.2f%%, RSI=%.1f, vol_ratio=%.1fx", gapPct, curRSI, volRatio))
}
