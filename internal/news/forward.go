package news

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"stratbench/internal/domain"
	"stratbench/internal/util"
)

// NewsSignal is a per-symbol trading signal derived from headline sentiment
// and volume activity.
type NewsSignal struct {
	Symbol         string    `json:"symbol"`
	Timestamp      time.Time `json:"timestamp"`
	SentimentScore float64   `json:"sentiment_score"` // -1 to 1
	SentimentLabel string    `json:"sentiment_label"`
	NewsCount      int       `json:"news_count"`
	VolumeScore    float64   `json:"volume_score"`
	Action         string    `json:"action"` // buy, sell, hold
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

// ForwardTester scores daily headlines per symbol and simulates next-session
// paper trades. The analyzer and random source are injected so callers
// control the sentiment backend and simulation determinism.
type ForwardTester struct {
	dir      string
	analyzer Analyzer
	rng      *rand.Rand
	log      *slog.Logger
}

// NewForwardTester creates a ForwardTester writing result files under dir.
func NewForwardTester(dir string, analyzer Analyzer, rng *rand.Rand) (*ForwardTester, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results dir: %w", err)
	}
	return &ForwardTester{
		dir:      dir,
		analyzer: analyzer,
		rng:      rng,
		log:      slog.Default().With("component", "news-forward"),
	}, nil
}

// GenerateSignals aggregates articles by symbol, scores average sentiment
// and recent volume activity, and returns the highest-confidence signals
// (up to 2·topN, covering both the bullish and bearish tails).
func (ft *ForwardTester) GenerateSignals(articles []Article, marketData map[string][]domain.Bar, topN int) []NewsSignal {
	bySymbol := make(map[string][]Article)
	for _, a := range articles {
		if a.Symbol != "" {
			bySymbol[a.Symbol] = append(bySymbol[a.Symbol], a)
		}
	}

	now := time.Now().UTC()
	var signals []NewsSignal
	for symbol, items := range bySymbol {
		var scoreSum, confSum float64
		for _, item := range items {
			s := ft.analyzer.Analyze(item.Headline)
			scoreSum += s.Score
			confSum += s.Confidence
		}
		avgScore := scoreSum / float64(len(items))
		avgConf := confSum / float64(len(items))

		volumeScore := 1.0
		if bars := marketData[symbol]; len(bars) > 20 {
			recent := meanVolume(bars[len(bars)-5:])
			base := meanVolume(bars[len(bars)-20:])
			if base > 0 {
				volumeScore = recent / base
			}
		}

		var action string
		var confidence float64
		switch {
		case avgScore > 0.3 && volumeScore > 1.2:
			action = "buy"
			confidence = math.Min((math.Abs(avgScore)+volumeScore-1)/2, 1.0)
		case avgScore < -0.3:
			action = "sell"
			confidence = math.Min(math.Abs(avgScore)*avgConf, 1.0)
		default:
			action = "hold"
			confidence = 0.5
		}

		signals = append(signals, NewsSignal{
			Symbol:         symbol,
			Timestamp:      now,
			SentimentScore: avgScore,
			SentimentLabel: sentimentLabel(avgScore),
			NewsCount:      len(items),
			VolumeScore:    volumeScore,
			Action:         action,
			Confidence:     confidence,
			Reason: fmt.Sprintf("%d news items, avg sentiment=%.2f, vol_ratio=%.2fx",
				len(items), avgScore, volumeScore),
		})
	}

	// Confidence-descending, symbol as tiebreak for stable output.
	sort.Slice(signals, func(i, j int) bool {
		if signals[i].Confidence != signals[j].Confidence {
			return signals[i].Confidence > signals[j].Confidence
		}
		return signals[i].Symbol < signals[j].Symbol
	})
	if len(signals) > topN*2 {
		signals = signals[:topN*2]
	}
	return signals
}

type signalsFile struct {
	Date      string       `json:"date"`
	Timestamp time.Time    `json:"timestamp"`
	Signals   []NewsSignal `json:"signals"`
}

// SaveSignals writes the signals for the given date (YYYY-MM-DD).
func (ft *ForwardTester) SaveSignals(signals []NewsSignal, date string) error {
	path := filepath.Join(ft.dir, "signals_"+date+".json")
	if err := writeJSONFile(path, signalsFile{
		Date:      date,
		Timestamp: time.Now().UTC(),
		Signals:   signals,
	}); err != nil {
		return fmt.Errorf("saving signals: %w", err)
	}
	ft.log.Info("signals saved", "path", path, "count", len(signals))
	return nil
}

// LoadSignals reads previously saved signals for a date. A missing file
// yields (nil, nil).
func (ft *ForwardTester) LoadSignals(date string) ([]NewsSignal, error) {
	data, err := os.ReadFile(filepath.Join(ft.dir, "signals_"+date+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var f signalsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing signals file: %w", err)
	}
	return f.Signals, nil
}

// SimulateForwardTest paper-trades each actionable signal: entry at the
// symbol's last known close, exit at a randomly perturbed next-session
// price. The result is persisted under the signal date.
func (ft *ForwardTester) SimulateForwardTest(signals []NewsSignal, marketData map[string][]domain.Bar, capitalPerTrade float64) (*ForwardTestResult, error) {
	if capitalPerTrade <= 0 {
		capitalPerTrade = 1000
	}

	var trades []SimulatedTrade
	var totalReturn float64
	winning := 0

	for _, sig := range signals {
		if sig.Action != "buy" && sig.Action != "sell" {
			continue
		}
		bars := marketData[sig.Symbol]
		if len(bars) < 2 {
			continue
		}

		entry := bars[len(bars)-1].Close
		// Simulated next-session move: ~1% drift, 2% noise.
		exit := entry * (1 + 0.01 + ft.rng.NormFloat64()*0.02)

		pnl := (exit - entry) / entry
		if sig.Action == "sell" {
			pnl = (entry - exit) / entry
		}
		pnlDollars := pnl * capitalPerTrade
		totalReturn += pnlDollars
		if pnl > 0 {
			winning++
		}

		trades = append(trades, SimulatedTrade{
			Symbol:         sig.Symbol,
			Action:         sig.Action,
			EntryPrice:     entry,
			ExitPrice:      exit,
			PnL:            pnl,
			PnLDollars:     pnlDollars,
			SentimentScore: sig.SentimentScore,
		})
	}

	now := time.Now().UTC()
	result := &ForwardTestResult{
		SignalDate:       now.Format("2006-01-02"),
		TradeDate:        util.NextTradingDay(now).Format("2006-01-02"),
		Signals:          signals,
		SimulatedTrades:  trades,
		CumulativeReturn: totalReturn,
		TotalTrades:      len(trades),
		WinningTrades:    winning,
	}

	path := filepath.Join(ft.dir, "forward_test_"+result.SignalDate+".json")
	if err := writeJSONFile(path, result); err != nil {
		return nil, fmt.Errorf("saving forward test: %w", err)
	}
	return result, nil
}

// GetLatestResults returns the most recent forward-test result, or
// (nil, nil) if none exist yet.
func (ft *ForwardTester) GetLatestResults() (*ForwardTestResult, error) {
	paths, err := filepath.Glob(filepath.Join(ft.dir, "forward_test_*.json"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))

	data, err := os.ReadFile(paths[0])
	if err != nil {
		return nil, err
	}
	var result ForwardTestResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing forward test file: %w", err)
	}
	return &result, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func meanVolume(bars []domain.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	var sum float64
	for _, b := range bars {
		sum += float64(b.Volume)
	}
	return sum / float64(len(bars))
}
