// Package domain holds the shared types that flow between the market data
// layer, strategies, and the backtest engine.
package domain

import "time"

// Bar is one OHLCV observation for a fixed time interval. Bars arrive from a
// data provider ordered by Timestamp with no duplicates; gaps are not
// validated here.
type Bar struct {
	Symbol     string    `json:"symbol,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	Volume     int64     `json:"volume"`
	TradeCount int64     `json:"trade_count,omitempty"`
	VWAP       float64   `json:"vwap,omitempty"`
}

// Action is a strategy's per-bar trading decision.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Signal is produced once per bar by a strategy. Confidence is advisory only:
// the backtest engine carries it into the report but never bases execution
// on it.
type Signal struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     Action    `json:"action"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason"`
	Price      float64   `json:"price,omitempty"`
	Quantity   int64     `json:"quantity,omitempty"`
}

// Side identifies the direction of a trade. Only long positions are
// supported.
type Side string

const SideLong Side = "long"

// Trade is one round trip executed by the backtest engine. While a position
// is open the exit fields are zero; the engine force-closes any open position
// on the final bar, so every Trade in a report is complete.
type Trade struct {
	EntryTime  time.Time `json:"entry_time"`
	EntryPrice float64   `json:"entry_price"`
	ExitTime   time.Time `json:"exit_time"`
	ExitPrice  float64   `json:"exit_price"`
	Quantity   int64     `json:"quantity"`
	Side       Side      `json:"side"`
	PnL        float64   `json:"pnl"`
	PnLPct     float64   `json:"pnl_pct"`
	Reason     string    `json:"reason"`
}

// EquityPoint is one sample of the equity curve. Drawdown is the fractional
// decline from the running peak, always >= 0.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
	Drawdown  float64   `json:"drawdown"`
}
