package builtins

import (
	"errors"
	"fmt"

	"stratbench/internal/domain"
	"stratbench/internal/indicators"
	"stratbench/internal/strategy"
)

var _ strategy.Strategy = (*RSIMeanReversion)(nil)

// RSIMeanReversion buys when RSI recovers from an oversold level and sells
// once RSI reaches the overbought threshold.
type RSIMeanReversion struct {
	period     int
	oversold   float64
	overbought float64
	pos        position
}

// NewRSIMeanReversion constructs the strategy. Defaults: period 14,
// oversold 30, overbought 70.
func NewRSIMeanReversion(p strategy.Params) (strategy.Strategy, error) {
	s := &RSIMeanReversion{
		period:     p.Int("period", 14),
		oversold:   p.Float("oversold", 30),
		overbought: p.Float("overbought", 70),
	}
	if s.period < 2 {
		return nil, errors.New("period must be at least 2")
	}
	if s.oversold >= s.overbought {
		return nil, errors.New("oversold threshold must be less than overbought threshold")
	}
	if s.oversold < 0 || s.overbought > 100 {
		return nil, errors.New("RSI thresholds must be between 0 and 100")
	}
	return s, nil
}

func (s *RSIMeanReversion) Name() string { return "rsi_mean_revert" }

func (s *RSIMeanReversion) Description() string {
	return fmt.Sprintf("RSI Mean Reversion (period=%d, oversold=%g, overbought=%g)",
		s.period, s.oversold, s.overbought)
}

func (s *RSIMeanReversion) Analyze(bars []domain.Bar, index int) domain.Signal {
	bar := bars[index]
	if index < s.period+1 {
		return hold(bar, insufficientData)
	}

	rsi := indicators.RSI(indicators.Closes(bars[:index+1]), s.period)
	cur, ok1 := rsi.At(index)
	prev, ok2 := rsi.At(index - 1)
	if !ok1 || !ok2 {
		return hold(bar, insufficientData)
	}

	if !s.pos.open {
		// Oversold recovery: RSI crosses back above the oversold level.
		if prev <= s.oversold && cur > s.oversold {
			s.pos.enter(bar.Close)
			conf := 0.5
			if prev < s.oversold {
				conf = (s.oversold - prev) / s.oversold
			}
			return buy(bar, conf, fmt.Sprintf(
				"RSI oversold signal: RSI crossed above %g (current: %.2f)", s.oversold, cur))
		}
		return hold(bar, fmt.Sprintf("RSI neutral: %.2f", cur))
	}

	if cur > s.overbought {
		s.pos.exit()
		conf := (cur - s.overbought) / (100 - s.overbought)
		return sell(bar, conf, fmt.Sprintf(
			"RSI overbought signal: RSI is %.2f (threshold: %g)", cur, s.overbought))
	}
	return hold(bar, fmt.Sprintf("RSI neutral: %.2f", cur))
}
