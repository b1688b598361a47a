package backtest

import (
	"math"

	"stratbench/internal/domain"
)

// tradingDaysPerYear annualizes the Sharpe and Sortino ratios. It assumes
// daily bars and is a fixed convention, not detected from bar spacing.
const tradingDaysPerYear = 252

// Result is the full report of a completed run. All fields are plain values
// so a Result serializes directly to JSON or a store row.
type Result struct {
	StrategyID     string               `json:"strategy_id"`
	Symbol         string               `json:"symbol"`
	StartDate      string               `json:"start_date"`
	EndDate        string               `json:"end_date"`
	InitialCapital float64              `json:"initial_capital"`
	FinalCapital   float64              `json:"final_capital"`
	TotalReturn    float64              `json:"total_return"`
	TotalReturnPct float64              `json:"total_return_pct"`
	SharpeRatio    float64              `json:"sharpe_ratio"`
	SortinoRatio   float64              `json:"sortino_ratio"`
	MaxDrawdown    float64              `json:"max_drawdown"`
	MaxDrawdownPct float64              `json:"max_drawdown_pct"`
	TotalTrades    int                  `json:"total_trades"`
	WinningTrades  int                  `json:"winning_trades"`
	LosingTrades   int                  `json:"losing_trades"`
	WinRate        float64              `json:"win_rate"`
	AvgWin         float64              `json:"avg_win"`
	AvgLoss        float64              `json:"avg_loss"`
	ProfitFactor   float64              `json:"profit_factor"`
	Trades         []domain.Trade       `json:"trades"`
	EquityCurve    []domain.EquityPoint `json:"equity_curve"`
}

// report derives the metric set from the finished run. The forced close in
// Run guarantees the position is flat here, so final capital is simply the
// cash balance.
func (e *Engine) report() *Result {
	finalCapital := e.capital
	totalReturn := finalCapital - e.cfg.InitialCapital

	var wins, losses []float64
	for _, t := range e.trades {
		switch {
		case t.PnL > 0:
			wins = append(wins, t.PnL)
		case t.PnL < 0:
			losses = append(losses, -t.PnL)
		}
	}

	winRate := 0.0
	if len(e.trades) > 0 {
		winRate = float64(len(wins)) / float64(len(e.trades)) * 100
	}

	// With no losing trades the denominator defaults to 1. This is a
	// compatibility convention carried from the reference behavior, not a
	// mathematically principled choice.
	totalLosses := sum(losses)
	if len(losses) == 0 {
		totalLosses = 1
	}
	profitFactor := 0.0
	if totalLosses > 0 {
		profitFactor = sum(wins) / totalLosses
	}

	var sharpe, sortino float64
	if len(e.curve) > 1 {
		returns := make([]float64, 0, len(e.curve)-1)
		for i := 1; i < len(e.curve); i++ {
			prev := e.curve[i-1].Equity
			returns = append(returns, (e.curve[i].Equity-prev)/prev)
		}
		m := mean(returns)
		if sd := stdDev(returns); sd > 0 {
			sharpe = m / sd * math.Sqrt(tradingDaysPerYear)
		}
		var downside []float64
		for _, r := range returns {
			if r < 0 {
				downside = append(downside, r)
			}
		}
		if dsd := stdDev(downside); dsd > 0 {
			sortino = m / dsd * math.Sqrt(tradingDaysPerYear)
		}
	}

	maxDrawdown := 0.0
	for _, p := range e.curve {
		if p.Drawdown > maxDrawdown {
			maxDrawdown = p.Drawdown
		}
	}

	return &Result{
		StrategyID:     e.cfg.StrategyID,
		Symbol:         e.cfg.Symbol,
		StartDate:      e.cfg.StartDate,
		EndDate:        e.cfg.EndDate,
		InitialCapital: e.cfg.InitialCapital,
		FinalCapital:   finalCapital,
		TotalReturn:    totalReturn,
		TotalReturnPct: totalReturn / e.cfg.InitialCapital * 100,
		SharpeRatio:    sharpe,
		SortinoRatio:   sortino,
		MaxDrawdown:    maxDrawdown,
		MaxDrawdownPct: maxDrawdown * 100,
		TotalTrades:    len(e.trades),
		WinningTrades:  len(wins),
		LosingTrades:   len(losses),
		WinRate:        winRate,
		AvgWin:         mean(wins),
		AvgLoss:        mean(losses),
		ProfitFactor:   profitFactor,
		Trades:         e.trades,
		EquityCurve:    e.curve,
	}
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return sum(xs) / float64(len(xs))
}

// stdDev is the population standard deviation, matching the statistics the
// Sharpe and Sortino definitions here expect.
func stdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}
