package builtins

import (
	"errors"
	"fmt"

	"stratbench/internal/domain"
	"stratbench/internal/indicators"
	"stratbench/internal/strategy"
)

var _ strategy.Strategy = (*MACDTrendFollow)(nil)

// MACDTrendFollow enters on a bullish MACD/signal crossover and exits on the
// bearish crossover.
type MACDTrendFollow struct {
	fast   int
	slow   int
	signal int
	pos    position
}

// NewMACDTrendFollow constructs the strategy. Defaults: 12/26/9.
func NewMACDTrendFollow(p strategy.Params) (strategy.Strategy, error) {
	s := &MACDTrendFollow{
		fast:   p.Int("fast_period", 12),
		slow:   p.Int("slow_period", 26),
		signal: p.Int("signal_period", 9),
	}
	if s.fast >= s.slow {
		return nil, errors.New("fast period must be less than slow period")
	}
	if s.fast < 2 || s.signal < 2 {
		return nil, errors.New("periods must be at least 2")
	}
	return s, nil
}

func (s *MACDTrendFollow) Name() string { return "macd_trend_follow" }

func (s *MACDTrendFollow) Description() string {
	return fmt.Sprintf("MACD Trend Following (%d/%d/%d)", s.fast, s.slow, s.signal)
}

func (s *MACDTrendFollow) Analyze(bars []domain.Bar, index int) domain.Signal {
	bar := bars[index]
	if index < s.slow+s.signal {
		return hold(bar, insufficientData)
	}

	macd, signal, hist := indicators.MACD(indicators.Closes(bars[:index+1]), s.fast, s.slow, s.signal)
	curMACD, ok1 := macd.At(index)
	curSig, ok2 := signal.At(index)
	prevMACD, ok3 := macd.At(index - 1)
	prevSig, ok4 := signal.At(index - 1)
	curHist, ok5 := hist.At(index)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return hold(bar, insufficientData)
	}

	if !s.pos.open {
		if prevMACD <= prevSig && curMACD > curSig {
			s.pos.enter(bar.Close)
			conf := clamp(curHist / bar.Close * 100)
			return buy(bar, conf, fmt.Sprintf(
				"MACD bullish crossover: MACD %.4f crossed above signal %.4f", curMACD, curSig))
		}
		return hold(bar, "No MACD crossover")
	}

	if prevMACD >= prevSig && curMACD < curSig {
		s.pos.exit()
		conf := clamp(-curHist / bar.Close * 100)
		return sell(bar, conf, fmt.Sprintf(
			"MACD bearish crossover: MACD %.4f crossed below signal %.4f", curMACD, curSig))
	}
	return hold(bar, "No MACD crossover")
}
