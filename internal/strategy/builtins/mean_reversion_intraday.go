package builtins

import (
	"errors"
	"fmt"

	"stratbench/internal/domain"
	"stratbench/internal/indicators"
	"stratbench/internal/strategy"
)

var _ strategy.Strategy = (*MeanReversionIntraday)(nil)

// MeanReversionIntraday buys sharp short-term oversold readings, with the
// lower Bollinger Band as an extra confidence boost, and targets a quick
// reversion to the RSI midline or the middle band.
type MeanReversionIntraday struct {
	rsiPeriod   int
	rsiOversold float64
	rsiTarget   float64
	bbPeriod    int
	bbStd       float64
	takeProfit  float64
	stopLoss    float64
	pos         position
}

// NewMeanReversionIntraday constructs the strategy. Defaults: RSI(5) < 25
// entry, RSI 50 target, BB(20, 2), 2% take-profit, 1.5% stop-loss.
func NewMeanReversionIntraday(p strategy.Params) (strategy.Strategy, error) {
	s := &MeanReversionIntraday{
		rsiPeriod:   p.Int("rsi_period", 5),
		rsiOversold: p.Float("rsi_oversold", 25),
		rsiTarget:   p.Float("rsi_target", 50),
		bbPeriod:    p.Int("bb_period", 20),
		bbStd:       p.Float("bb_std", 2.0),
		takeProfit:  p.Float("take_profit_pct", 2.0),
		stopLoss:    p.Float("stop_loss_pct", 1.5),
	}
	if s.rsiPeriod < 2 {
		return nil, errors.New("RSI period must be at least 2")
	}
	if s.rsiOversold < 0 || s.rsiOversold > 100 {
		return nil, errors.New("RSI oversold must be between 0 and 100")
	}
	if s.rsiTarget < 0 || s.rsiTarget > 100 {
		return nil, errors.New("RSI target must be between 0 and 100")
	}
	if s.rsiOversold >= s.rsiTarget {
		return nil, errors.New("RSI oversold must be less than RSI target")
	}
	return s, nil
}

func (s *MeanReversionIntraday) Name() string { return "mean_reversion_intraday" }

func (s *MeanReversionIntraday) Description() string {
	return fmt.Sprintf("Mean Reversion Intraday (RSI%d<%g)", s.rsiPeriod, s.rsiOversold)
}

func (s *MeanReversionIntraday) Analyze(bars []domain.Bar, index int) domain.Signal {
	bar := bars[index]
	if index < max(s.rsiPeriod+1, s.bbPeriod) {
		return hold(bar, insufficientData)
	}

	closes := indicators.Closes(bars[:index+1])
	curRSI, ok := indicators.RSI(closes, s.rsiPeriod).At(index)
	if !ok {
		return hold(bar, insufficientData)
	}
	_, middle, lower := indicators.Bollinger(closes, s.bbPeriod, s.bbStd)
	curMiddle, ok1 := middle.At(index)
	curLower, ok2 := lower.At(index)
	if !ok1 || !ok2 {
		return hold(bar, insufficientData)
	}

	if !s.pos.open {
		if curRSI < s.rsiOversold {
			s.pos.enter(bar.Close)
			conf := clamp(0.5 + (s.rsiOversold-curRSI)/s.rsiOversold*0.5)
			if bar.Close <= curLower*1.01 {
				conf = clamp(conf + 0.2)
			}
			return buy(bar, conf, fmt.Sprintf(
				"Oversold signal: RSI=%.1f, near BB lower", curRSI))
		}
	} else {
		pnl := s.pos.pnlPct(bar.Close)

		if curRSI >= s.rsiTarget {
			s.pos.exit()
			return sell(bar, 0.8, fmt.Sprintf("RSI reversion: RSI=%.1f, PnL=%.2f%%", curRSI, pnl))
		}
		if bar.Close >= curMiddle {
			s.pos.exit()
			return sell(bar, 0.8, fmt.Sprintf("BB mean reversion: PnL=%.2f%%", pnl))
		}
		if bar.Close >= s.pos.entry*(1+s.takeProfit/100) {
			s.pos.exit()
			return sell(bar, 0.9, fmt.Sprintf("Take-profit hit: %.2f%%", pnl))
		}
		if bar.Close <= s.pos.entry*(1-s.stopLoss/100) {
			s.pos.exit()
			return sell(bar, 0.9, fmt.Sprintf("Stop-loss hit: %.2f%%", pnl))
		}
		if nearClose(bars, index) {
			s.pos.exit()
			return sell(bar, 0.8, fmt.Sprintf("End of day exit: %.2f%%", pnl))
		}
	}

	return hold(bar, fmt.Sprintf("Monitoring: RSI=%.1f", curRSI))
}
