// Package backtest simulates a strategy over historical bars and produces a
// performance report.
package backtest

import (
	"errors"
	"fmt"
	"time"

	"stratbench/internal/domain"
	"stratbench/internal/strategy"
)

// ErrNoData is returned when Run is given an empty bar series.
var ErrNoData = errors.New("no data provided for backtest")

// Config describes a single backtest run.
type Config struct {
	Symbol         string          `json:"symbol"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	InitialCapital float64         `json:"initial_capital"`
	Commission     float64         `json:"commission"`
	StrategyID     string          `json:"strategy_id"`
	Parameters     strategy.Params `json:"parameters,omitempty"`
}

type runState int

const (
	stateIdle runState = iota
	stateRunning
	stateClosing
	stateDone
)

// openTrade carries entry-side fields until the matching sell completes the
// trade record.
type openTrade struct {
	entryTime  time.Time
	entryPrice float64
	quantity   int64
}

// Engine executes one backtest. An engine holds the mutable run state and is
// strictly single-use: construct a fresh engine (and a fresh strategy
// instance) per run.
type Engine struct {
	cfg   Config
	strat strategy.Strategy

	state    runState
	capital  float64
	position int64
	open     *openTrade
	trades   []domain.Trade
	curve    []domain.EquityPoint
}

// NewEngine builds an engine for the given config and strategy instance.
// A zero InitialCapital defaults to 10000.
func NewEngine(cfg Config, strat strategy.Strategy) *Engine {
	if cfg.InitialCapital == 0 {
		cfg.InitialCapital = 10000
	}
	return &Engine{
		cfg:     cfg,
		strat:   strat,
		capital: cfg.InitialCapital,
	}
}

// Run walks the bar series once, executing fills at each bar's close, then
// force-closes any open position at the final bar and reports. An empty
// series fails before any state mutation; a second call on the same engine
// errors.
func (e *Engine) Run(bars []domain.Bar) (*Result, error) {
	if e.state != stateIdle {
		return nil, errors.New("backtest engine cannot be reused; construct a new engine per run")
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	e.state = stateRunning
	peak := e.cfg.InitialCapital

	for i, bar := range bars {
		signal := e.strat.Analyze(bars, i)

		equity := e.capital + float64(e.position)*bar.Close
		if equity > peak {
			peak = equity
		}
		drawdown := 0.0
		if peak > 0 {
			drawdown = (peak - equity) / peak
		}
		e.curve = append(e.curve, domain.EquityPoint{
			Timestamp: bar.Timestamp,
			Equity:    equity,
			Drawdown:  drawdown,
		})

		switch {
		case signal.Action == domain.ActionBuy && e.position == 0:
			e.executeBuy(bar)
		case signal.Action == domain.ActionSell && e.position > 0:
			e.executeSell(bar, signal.Reason)
		}
	}

	e.state = stateClosing
	if e.position > 0 {
		e.executeSell(bars[len(bars)-1], "End of backtest period")
	}

	e.state = stateDone
	return e.report(), nil
}

// executeBuy sizes the order to all available capital at the bar's close.
// If not even one share is affordable the signal is a no-op.
func (e *Engine) executeBuy(bar domain.Bar) {
	price := bar.Close
	shares := int64(e.capital / price)
	if shares <= 0 {
		return
	}
	commission := e.cfg.Commission * float64(shares) * price
	totalCost := float64(shares)*price + commission
	if totalCost > e.capital {
		return
	}
	e.capital -= totalCost
	e.position = shares
	e.open = &openTrade{
		entryTime:  bar.Timestamp,
		entryPrice: price,
		quantity:   shares,
	}
}

func (e *Engine) executeSell(bar domain.Bar, reason string) {
	if e.position <= 0 || e.open == nil {
		return
	}
	price := bar.Close
	commission := e.cfg.Commission * float64(e.position) * price
	proceeds := float64(e.position)*price - commission
	e.capital += proceeds

	e.trades = append(e.trades, domain.Trade{
		EntryTime:  e.open.entryTime,
		EntryPrice: e.open.entryPrice,
		ExitTime:   bar.Timestamp,
		ExitPrice:  price,
		Quantity:   e.open.quantity,
		Side:       domain.SideLong,
		PnL:        (price-e.open.entryPrice)*float64(e.position) - commission*2,
		PnLPct:     (price - e.open.entryPrice) / e.open.entryPrice * 100,
		Reason:     reason,
	})
	e.position = 0
	e.open = nil
}

// RunStrategy is the convenience path used by the API and CLIs: construct
// the strategy from the registry, run a fresh engine, report.
func RunStrategy(reg *strategy.Registry, cfg Config, bars []domain.Bar) (*Result, error) {
	strat, err := reg.New(cfg.StrategyID, cfg.Parameters)
	if err != nil {
		return nil, err
	}
	result, err := NewEngine(cfg, strat).Run(bars)
	if err != nil {
		return nil, fmt.Errorf("backtest %s on %s: %w", cfg.StrategyID, cfg.Symbol, err)
	}
	return result, nil
}
