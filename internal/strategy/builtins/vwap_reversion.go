package builtins

import (
	"errors"
	"fmt"

	"stratbench/internal/domain"
	"stratbench/internal/indicators"
	"stratbench/internal/strategy"
)

var _ strategy.Strategy = (*VWAPReversion)(nil)

// VWAPReversion buys dips below VWAP while the EMA trend points up and exits
// on reversion to VWAP, a stop, a target, or near the end of the series.
type VWAPReversion struct {
	emaFast      int
	emaSlow      int
	deviationPct float64
	takeProfit   float64
	stopLoss     float64
	pos          position
}

// NewVWAPReversion constructs the strategy. Defaults: EMA 20/50, 0.5%
// deviation, 1% take-profit, 1.5% stop-loss.
func NewVWAPReversion(p strategy.Params) (strategy.Strategy, error) {
	s := &VWAPReversion{
		emaFast:      p.Int("ema_fast", 20),
		emaSlow:      p.Int("ema_slow", 50),
		deviationPct: p.Float("vwap_deviation_pct", 0.5),
		takeProfit:   p.Float("take_profit_pct", 1.0),
		stopLoss:     p.Float("stop_loss_pct", 1.5),
	}
	if s.emaFast < 2 || s.emaSlow < 2 {
		return nil, errors.New("EMA periods must be at least 2")
	}
	if s.emaFast >= s.emaSlow {
		return nil, errors.New("fast EMA period must be less than slow EMA period")
	}
	if s.deviationPct <= 0 {
		return nil, errors.New("VWAP deviation percentage must be positive")
	}
	return s, nil
}

func (s *VWAPReversion) Name() string { return "vwap_reversion" }

func (s *VWAPReversion) Description() string {
	return fmt.Sprintf("VWAP Mean Reversion (EMA%d/%d)", s.emaFast, s.emaSlow)
}

func (s *VWAPReversion) Analyze(bars []domain.Bar, index int) domain.Signal {
	bar := bars[index]
	if index < s.emaSlow+1 {
		return hold(bar, insufficientData)
	}

	vwap := indicators.VWAP(bars[:index+1])
	curVWAP, ok := vwap.At(index)
	if !ok {
		return hold(bar, insufficientData)
	}

	closes := indicators.Closes(bars)
	fast, _ := indicators.EMA(closes, s.emaFast).At(index)
	slow, _ := indicators.EMA(closes, s.emaSlow).At(index)
	uptrend := fast > slow

	deviation := (bar.Close - curVWAP) / curVWAP * 100

	if !s.pos.open {
		if uptrend && deviation < -s.deviationPct {
			s.pos.enter(bar.Close)
			conf := clamp(0.5 + (-deviation/(s.deviationPct*2))*0.5)
			return buy(bar, conf, fmt.Sprintf(
				"VWAP dip in uptrend: %.2f%% below VWAP", deviation))
		}
	} else {
		pnl := s.pos.pnlPct(bar.Close)

		if bar.Close >= curVWAP {
			s.pos.exit()
			return sell(bar, 0.8, fmt.Sprintf("Mean reversion to VWAP: %.2f%%", pnl))
		}
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

	trend := "downtrend"
	if uptrend {
		trend = "uptrend"
	} else if fast == slow {
		trend = "neutral"
	}
	return hold(bar, fmt.Sprintf("Monitoring: %s, VWAP dev=%.2f%%", trend, deviation))
}
