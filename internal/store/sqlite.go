package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stratbench/internal/backtest"
	"stratbench/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ ResultStore = (*SQLiteStore)(nil)

// SQLiteStore implements ResultStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS backtests (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	strategy_id      TEXT NOT NULL,
	symbol           TEXT NOT NULL,
	start_date       TEXT NOT NULL,
	end_date         TEXT NOT NULL,
	initial_capital  REAL NOT NULL,
	final_capital    REAL NOT NULL,
	total_return     REAL NOT NULL,
	total_return_pct REAL NOT NULL,
	sharpe_ratio     REAL NOT NULL,
	sortino_ratio    REAL NOT NULL,
	max_drawdown     REAL NOT NULL,
	max_drawdown_pct REAL NOT NULL,
	total_trades     INTEGER NOT NULL,
	winning_trades   INTEGER NOT NULL,
	losing_trades    INTEGER NOT NULL,
	win_rate         REAL NOT NULL,
	avg_win          REAL NOT NULL,
	avg_loss         REAL NOT NULL,
	profit_factor    REAL NOT NULL,
	created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS backtest_trades (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	backtest_id INTEGER NOT NULL REFERENCES backtests(id) ON DELETE CASCADE,
	entry_time  TEXT NOT NULL,
	entry_price REAL NOT NULL,
	exit_time   TEXT NOT NULL,
	exit_price  REAL NOT NULL,
	quantity    INTEGER NOT NULL,
	side        TEXT NOT NULL,
	pnl         REAL NOT NULL,
	pnl_pct     REAL NOT NULL,
	reason      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_backtest_trades_backtest
	ON backtest_trades(backtest_id);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, ensures the
// schema exists, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveResult persists the result summary and its completed trades in one
// transaction. The equity curve is not stored.
func (s *SQLiteStore) SaveResult(ctx context.Context, res *backtest.Result) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	r, err := tx.ExecContext(ctx, `
		INSERT INTO backtests (
			strategy_id, symbol, start_date, end_date,
			initial_capital, final_capital, total_return, total_return_pct,
			sharpe_ratio, sortino_ratio, max_drawdown, max_drawdown_pct,
			total_trades, winning_trades, losing_trades,
			win_rate, avg_win, avg_loss, profit_factor, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.StrategyID, res.Symbol, res.StartDate, res.EndDate,
		res.InitialCapital, res.FinalCapital, res.TotalReturn, res.TotalReturnPct,
		res.SharpeRatio, res.SortinoRatio, res.MaxDrawdown, res.MaxDrawdownPct,
		res.TotalTrades, res.WinningTrades, res.LosingTrades,
		res.WinRate, res.AvgWin, res.AvgLoss, res.ProfitFactor,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting backtest: %w", err)
	}
	id, err := r.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, t := range res.Trades {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO backtest_trades (
				backtest_id, entry_time, entry_price, exit_time, exit_price,
				quantity, side, pnl, pnl_pct, reason
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id,
			t.EntryTime.UTC().Format(time.RFC3339Nano), t.EntryPrice,
			t.ExitTime.UTC().Format(time.RFC3339Nano), t.ExitPrice,
			t.Quantity, string(t.Side), t.PnL, t.PnLPct, t.Reason,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting trade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetResult retrieves a stored result by id, including its trades.
func (s *SQLiteStore) GetResult(ctx context.Context, id int64) (*backtest.Result, error) {
	var res backtest.Result
	err := s.db.QueryRowContext(ctx, `
		SELECT strategy_id, symbol, start_date, end_date,
			initial_capital, final_capital, total_return, total_return_pct,
			sharpe_ratio, sortino_ratio, max_drawdown, max_drawdown_pct,
			total_trades, winning_trades, losing_trades,
			win_rate, avg_win, avg_loss, profit_factor
		FROM backtests WHERE id = ?`, id,
	).Scan(
		&res.StrategyID, &res.Symbol, &res.StartDate, &res.EndDate,
		&res.InitialCapital, &res.FinalCapital, &res.TotalReturn, &res.TotalReturnPct,
		&res.SharpeRatio, &res.SortinoRatio, &res.MaxDrawdown, &res.MaxDrawdownPct,
		&res.TotalTrades, &res.WinningTrades, &res.LosingTrades,
		&res.WinRate, &res.AvgWin, &res.AvgLoss, &res.ProfitFactor,
	)
	if err != nil {
		return nil, fmt.Errorf("reading backtest %d: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_time, entry_price, exit_time, exit_price,
			quantity, side, pnl, pnl_pct, reason
		FROM backtest_trades WHERE backtest_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t                   domain.Trade
			entryTime, exitTime string
			side                string
		)
		if err := rows.Scan(
			&entryTime, &t.EntryPrice, &exitTime, &t.ExitPrice,
			&t.Quantity, &side, &t.PnL, &t.PnLPct, &t.Reason,
		); err != nil {
			return nil, err
		}
		if t.EntryTime, err = time.Parse(time.RFC3339Nano, entryTime); err != nil {
			return nil, fmt.Errorf("parsing entry time: %w", err)
		}
		if t.ExitTime, err = time.Parse(time.RFC3339Nano, exitTime); err != nil {
			return nil, fmt.Errorf("parsing exit time: %w", err)
		}
		t.Side = domain.Side(side)
		res.Trades = append(res.Trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListResults returns the most recent result summaries, newest first.
func (s *SQLiteStore) ListResults(ctx context.Context, limit int) ([]ResultSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, strategy_id, symbol, start_date, end_date,
			total_return_pct, sharpe_ratio, max_drawdown_pct,
			total_trades, win_rate, created_at
		FROM backtests ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []ResultSummary
	for rows.Next() {
		var (
			sum       ResultSummary
			createdAt string
		)
		if err := rows.Scan(
			&sum.ID, &sum.StrategyID, &sum.Symbol, &sum.StartDate, &sum.EndDate,
			&sum.TotalReturnPct, &sum.SharpeRatio, &sum.MaxDrawdownPct,
			&sum.TotalTrades, &sum.WinRate, &createdAt,
		); err != nil {
			return nil, err
		}
		if sum.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}
