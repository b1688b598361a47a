package stratbench

import "time"

// Params carries strategy-specific parameters as they appear in request
// bodies. Numeric values may be int or float64; the server normalizes them.
type Params map[string]any

// Signal is one per-bar strategy decision. Action is "buy", "sell" or
// "hold".
type Signal struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason"`
	Price      float64   `json:"price,omitempty"`
	Quantity   int64     `json:"quantity,omitempty"`
}

// Trade is one completed round trip from a backtest.
type Trade struct {
	EntryTime  time.Time `json:"entry_time"`
	EntryPrice float64   `json:"entry_price"`
	ExitTime   time.Time `json:"exit_time"`
	ExitPrice  float64   `json:"exit_price"`
	Quantity   int64     `json:"quantity"`
	Side       string    `json:"side"`
	PnL        float64   `json:"pnl"`
	PnLPct     float64   `json:"pnl_pct"`
	Reason     string    `json:"reason"`
}

// EquityPoint is one sample of a backtest's equity curve.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
	Drawdown  float64   `json:"drawdown"`
}

// BacktestResult is the full report of a completed backtest run.
type BacktestResult struct {
	StrategyID     string        `json:"strategy_id"`
	Symbol         string        `json:"symbol"`
	StartDate      string        `json:"start_date"`
	EndDate        string        `json:"end_date"`
	InitialCapital float64       `json:"initial_capital"`
	FinalCapital   float64       `json:"final_capital"`
	TotalReturn    float64       `json:"total_return"`
	TotalReturnPct float64       `json:"total_return_pct"`
	SharpeRatio    float64       `json:"sharpe_ratio"`
	SortinoRatio   float64       `json:"sortino_ratio"`
	MaxDrawdown    float64       `json:"max_drawdown"`
	MaxDrawdownPct float64       `json:"max_drawdown_pct"`
	TotalTrades    int           `json:"total_trades"`
	WinningTrades  int           `json:"winning_trades"`
	LosingTrades   int           `json:"losing_trades"`
	WinRate        float64       `json:"win_rate"`
	AvgWin         float64       `json:"avg_win"`
	AvgLoss        float64       `json:"avg_loss"`
	ProfitFactor   float64       `json:"profit_factor"`
	Trades         []Trade       `json:"trades"`
	EquityCurve    []EquityPoint `json:"equity_curve"`
}

// BacktestSummary is the listing row for a stored backtest.
type BacktestSummary struct {
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

// IndicatorSnapshot is one bar annotated with the standard indicator set.
// Indicator values are null inside their warm-up window.
type IndicatorSnapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`

	SMA10 *float64 `json:"sma_10"`
	SMA20 *float64 `json:"sma_20"`
	SMA50 *float64 `json:"sma_50"`
	EMA12 *float64 `json:"ema_12"`
	EMA26 *float64 `json:"ema_26"`

	RSI *float64 `json:"rsi"`

	MACD          *float64 `json:"macd"`
	MACDSignal    *float64 `json:"macd_signal"`
	MACDHistogram *float64 `json:"macd_histogram"`

	BBUpper  *float64 `json:"bb_upper"`
	BBMiddle *float64 `json:"bb_middle"`
	BBLower  *float64 `json:"bb_lower"`

	VWAP *float64 `json:"vwap"`
	ATR  *float64 `json:"atr"`

	StochK *float64 `json:"stoch_k"`
	StochD *float64 `json:"stoch_d"`
}

// IndicatorInfo describes one available indicator.
type IndicatorInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
}

// StrategyInfo describes one registered strategy.
type StrategyInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// NewsSignal is a per-symbol trading signal derived from headline sentiment
// and volume activity.
type NewsSignal struct {
	Symbol         string    `json:"symbol"`
	Timestamp      time.Time `json:"timestamp"`
	SentimentScore float64   `json:"sentiment_score"`
	SentimentLabel string    `json:"sentiment_label"`
	NewsCount      int       `json:"news_count"`
	VolumeScore    float64   `json:"volume_score"`
	Action         string    `json:"action"`
	Confidence     float64   `json:"confidence"`
	Reason         string    `json:"reason"`
}

// SimulatedTrade is one paper trade from a forward-test simulation.
type SimulatedTrade struct {
	Symbol         string  `json:"symbol"`
	Action         string  `json:"action"`
	EntryPrice     float64 `json:"entry_price"`
	ExitPrice      float64 `json:"exit_price"`
	PnL            float64 `json:"pnl"`
	PnLDollars     float64 `json:"pnl_dollars"`
	SentimentScore float64 `json:"sentiment_score"`
}

// ForwardTestResult summarizes one simulated forward-test session.
type ForwardTestResult struct {
	SignalDate       string           `json:"signal_date"`
	TradeDate        string           `json:"trade_date"`
	Signals          []NewsSignal     `json:"signals"`
	SimulatedTrades  []SimulatedTrade `json:"simulated_trades"`
	CumulativeReturn float64          `json:"cumulative_return"`
	TotalTrades      int              `json:"total_trades"`
	WinningTrades    int              `json:"winning_trades"`
}

// IndicatorsRequest asks for the standard indicator set over a date range.
type IndicatorsRequest struct {
	Symbol    string `json:"symbol"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Timeframe string `json:"timeframe"`
}

// IndicatorsResponse returns per-bar indicator snapshots.
type IndicatorsResponse struct {
	Symbol    string              `json:"symbol"`
	StartDate string              `json:"start_date"`
	EndDate   string              `json:"end_date"`
	Timeframe string              `json:"timeframe"`
	Data      []IndicatorSnapshot `json:"data"`
}

// IndicatorListResponse lists the available indicators.
type IndicatorListResponse struct {
	Indicators []IndicatorInfo `json:"indicators"`
}

// StrategyListResponse lists the registered strategies.
type StrategyListResponse struct {
	Strategies []StrategyInfo `json:"strategies"`
}

// StrategyRunRequest executes a strategy over a date range without
// simulating fills.
type StrategyRunRequest struct {
	Symbol     string `json:"symbol"`
	StrategyID string `json:"strategy_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Parameters Params `json:"parameters,omitempty"`
	Timeframe  string `json:"timeframe"`
}

// StrategyRunResponse returns the per-bar signals and their counts.
type StrategyRunResponse struct {
	StrategyID   string   `json:"strategy_id"`
	Symbol       string   `json:"symbol"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Signals      []Signal `json:"signals"`
	TotalSignals int      `json:"total_signals"`
	BuySignals   int      `json:"buy_signals"`
	SellSignals  int      `json:"sell_signals"`
	HoldSignals  int      `json:"hold_signals"`
}

// BacktestRequest runs a full backtest.
type BacktestRequest struct {
	Symbol         string  `json:"symbol"`
	StrategyID     string  `json:"strategy_id"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	InitialCapital float64 `json:"initial_capital"`
	Commission     float64 `json:"commission"`
	Parameters     Params  `json:"parameters,omitempty"`
	Timeframe      string  `json:"timeframe"`
}

// BacktestRunResponse wraps a result with its persisted id (0 when result
// persistence is not configured).
type BacktestRunResponse struct {
	ID int64 `json:"id,omitempty"`
	*BacktestResult
}

// BacktestListResponse lists persisted backtest summaries.
type BacktestListResponse struct {
	Backtests []BacktestSummary `json:"backtests"`
}

// NewsArticleInput is one headline submitted for signal generation.
type NewsArticleInput struct {
	Symbol   string `json:"symbol"`
	Headline string `json:"headline"`
}

// NewsSignalsRequest scores submitted headlines into trading signals, and
// optionally simulates the next session.
type NewsSignalsRequest struct {
	Articles        []NewsArticleInput `json:"articles"`
	TopN            int                `json:"top_n"`
	Simulate        bool               `json:"simulate"`
	CapitalPerTrade float64            `json:"capital_per_trade"`
}

// NewsSignalsResponse returns generated signals and, when simulation was
// requested, the forward-test result.
type NewsSignalsResponse struct {
	Signals     []NewsSignal       `json:"signals"`
	ForwardTest *ForwardTestResult `json:"forward_test,omitempty"`
}
