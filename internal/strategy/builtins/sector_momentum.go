package builtins

import (
	"errors"
	"fmt"

	"stratbench/internal/domain"
	"stratbench/internal/indicators"
	"stratbench/internal/strategy"
)

var _ strategy.Strategy = (*SectorMomentum)(nil)

// SectorMomentum buys stocks showing leadership (strong 20-bar return)
// confirmed by a volume surge, mid-range RSI momentum, and an EMA uptrend.
type SectorMomentum struct {
	rsiPeriod    int
	rsiMin       float64
	rsiMax       float64
	volSurge     float64
	emaPeriod    int
	trailingStop float64
	pos          position
}

// NewSectorMomentum constructs the strategy. Defaults: RSI(14) in 50-75,
// volume 2x average, EMA(20) trend filter, 2.5% trailing stop.
func NewSectorMomentum(p strategy.Params) (strategy.Strategy, error) {
	s := &SectorMomentum{
		rsiPeriod:    p.Int("rsi_period", 14),
		rsiMin:       p.Float("rsi_min", 50),
		rsiMax:       p.Float("rsi_max", 75),
		volSurge:     p.Float("volume_surge_threshold", 2.0),
		emaPeriod:    p.Int("ema_trend_period", 20),
		trailingStop: p.Float("trailing_stop_pct", 2.5),
	}
	if s.rsiPeriod < 2 {
		return nil, errors.New("RSI period must be at least 2")
	}
	if s.rsiMin < 0 || s.rsiMin > 100 {
		return nil, errors.New("RSI min must be between 0 and 100")
	}
	if s.rsiMax < 0 || s.rsiMax > 100 {
		return nil, errors.New("RSI max must be between 0 and 100")
	}
	if s.rsiMin >= s.rsiMax {
		return nil, errors.New("RSI min must be less than RSI max")
	}
	if s.volSurge <= 0 {
		return nil, errors.New("volume surge threshold must be positive")
	}
	return s, nil
}

func (s *SectorMomentum) Name() string { return "sector_momentum" }

func (s *SectorMomentum) Description() string {
	return fmt.Sprintf("Sector Momentum (RSI %g-%g, vol>%gx)", s.rsiMin, s.rsiMax, s.volSurge)
}

// isLeader is a stand-in for comparing against sector ETF performance. It
// checks for a strong return over the last 20 bars.
func (s *SectorMomentum) isLeader(bars []domain.Bar, index int) bool {
	if index < 20 {
		return false
	}
	ref := bars[index-20].Close
	return (bars[index].Close-ref)/ref > 0.03
}

func (s *SectorMomentum) Analyze(bars []domain.Bar, index int) domain.Signal {
	bar := bars[index]
	if index < max(s.rsiPeriod+1, s.emaPeriod) {
		return hold(bar, insufficientData)
	}

	closes := indicators.Closes(bars[:index+1])
	curRSI, ok := indicators.RSI(closes, s.rsiPeriod).At(index)
	if !ok {
		return hold(bar, insufficientData)
	}
	curEMA, _ := indicators.EMA(closes, s.emaPeriod).At(index)

	avgVol := avgVolume(bars, max(0, index-20), index)
	volRatio := 1.0
	if avgVol > 0 {
		volRatio = float64(bar.Volume) / avgVol
	}

	uptrend := bar.Close > curEMA
	leader := s.isLeader(bars, index)

	if !s.pos.open {
		if leader && volRatio >= s.volSurge && curRSI >= s.rsiMin && curRSI <= s.rsiMax && uptrend {
			s.pos.enter(bar.Close)
			conf := clamp(0.4 + volRatio/(s.volSurge*2)*0.3 +
				(curRSI-s.rsiMin)/(s.rsiMax-s.rsiMin)*0.3)
			return buy(bar, conf, fmt.Sprintf(
				"Sector momentum: RSI=%.1f, vol=%.1fx, leading sector", curRSI, volRatio))
		}
	} else {
		s.pos.track(bar.Close)
		pnl := s.pos.pnlPct(bar.Close)

		if bar.Close <= s.pos.highest*(1-s.trailingStop/100) {
			s.pos.exit()
			return sell(bar, 0.9, fmt.Sprintf("Trailing stop hit: %.2f%%", pnl))
		}
		if bar.Close < curEMA {
			s.pos.exit()
			return sell(bar, 0.8, fmt.Sprintf("Trend reversal: %.2f%%", pnl))
		}
		if curRSI > 80 {
			s.pos.exit()
			return sell(bar, 0.8, fmt.Sprintf("RSI overbought: %.1f, PnL=%.2f%%", curRSI, pnl))
		}
		if nearClose(bars, index) {
			s.pos.exit()
			return sell(bar, 0.8, fmt.Sprintf("End of day exit: %.2f%%", pnl))
		}
	}

	status := "lagging"
	if leader {
		status = "leading"
	}
	return hold(bar, fmt.Sprintf(
		"Monitoring: %s sector, RSI=%.1f, vol=%.1fx", status, curRSI, volRatio))
}
