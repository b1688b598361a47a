package builtins

import (
	"errors"
	"fmt"
	"math"

	"stratbench/internal/domain"
	"stratbench/internal/indicators"
	"stratbench/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*SMACrossover)(nil)

// SMACrossover enters long when the short-period SMA crosses above the
// long-period SMA and exits when it crosses back below.
type SMACrossover struct {
	shortPeriod int
	longPeriod  int
	pos         position
}

// NewSMACrossover constructs the strategy. Defaults: short 10, long 30.
func NewSMACrossover(p strategy.Params) (strategy.Strategy, error) {
	s := &SMACrossover{
		shortPeriod: p.Int("short_period", 10),
		longPeriod:  p.Int("long_period", 30),
	}
	if s.shortPeriod >= s.longPeriod {
		return nil, errors.New("short period must be less than long period")
	}
	if s.shortPeriod < 2 || s.longPeriod < 2 {
		return nil, errors.New("periods must be at least 2")
	}
	return s, nil
}

func (s *SMACrossover) Name() string { return "sma_crossover" }

func (s *SMACrossover) Description() string {
	return fmt.Sprintf("SMA Crossover (%d/%d)", s.shortPeriod, s.longPeriod)
}

func (s *SMACrossover) Analyze(bars []domain.Bar, index int) domain.Signal {
	bar := bars[index]
	if index < s.longPeriod {
		return hold(bar, insufficientData)
	}

	closes := indicators.Closes(bars[:index+1])
	short := indicators.SMA(closes, s.shortPeriod)
	long := indicators.SMA(closes, s.longPeriod)

	curShort, ok1 := short.At(index)
	curLong, ok2 := long.At(index)
	prevShort, ok3 := short.At(index - 1)
	prevLong, ok4 := long.At(index - 1)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return hold(bar, insufficientData)
	}

	if !s.pos.open {
		// Bullish crossover: short crosses above long.
		if prevShort <= prevLong && curShort > curLong {
			s.pos.enter(bar.Close)
			conf := math.Abs(curShort-curLong) / curLong
			return buy(bar, conf, fmt.Sprintf(
				"SMA bullish crossover: %d-period crossed above %d-period", s.shortPeriod, s.longPeriod))
		}
		return hold(bar, "No crossover detected")
	}

	// Bearish crossover: short crosses below long.
	if prevShort >= prevLong && curShort < curLong {
		s.pos.exit()
		conf := math.Abs(curLong-curShort) / curLong
		return sell(bar, conf, fmt.Sprintf(
			"SMA bearish crossover: %d-period crossed below %d-period", s.shortPeriod, s.longPeriod))
	}
	return hold(bar, "No crossover detected")
}
