// Package store defines storage interfaces for persisting and retrieving
// bar history and backtest results.
package store

import (
	"context"
	"time"

	"stratbench/internal/backtest"
	"stratbench/internal/domain"
)

// BarStore persists and retrieves OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars to storage.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns bars for the given symbol within [start, end].
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols available in storage.
	ListSymbols(ctx context.Context) ([]string, error)
}

// ResultStore persists and retrieves completed backtest results.
type ResultStore interface {
	// SaveResult persists a result and its trades, returning the new row id.
	SaveResult(ctx context.Context, res *backtest.Result) (int64, error)

	// GetResult retrieves a stored result by id, including its trades.
	// The equity curve is not persisted and comes back empty.
	GetResult(ctx context.Context, id int64) (*backtest.Result, error)

	// ListResults returns the most recent result summaries, up to limit.
	ListResults(ctx context.Context, limit int) ([]ResultSummary, error)
}

// ResultSummary is the listing row for a stored backtest.
type ResultSummary struct {
	ID             int64     `json:"id"`
	StrategyID     string    `json:"strategy_id"`
	Symbol         string    `json:"symbol"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	TotalReturnPct float64   `json:"total_return_pct"`
	SharpeRatio    float64   `json:"sharpe_ratio"`
	MaxDrawdownPct float64   `json:"max_drawdown_pct"`
	TotalTrades    int       `json:"total_trades"`
	WinRate        float64   `json:"win_rate"`
	CreatedAt      time.Time `json:"created_at"`
}
