package news

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"stratbench/internal/domain"
)

func TestKeywordAnalyzer(t *testing.T) {
	a := KeywordAnalyzer{}
	tests := []struct {
		name      string
		text      string
		wantLabel string
		wantScore float64
	}{
		{"bullish", "Shares surge after earnings beat", "positive", 1},
		{"bearish", "Stock drops on revenue miss and weak guidance", "negative", -1},
		{"no keywords", "Company announces annual meeting", "neutral", 0},
		{"mixed", "Stock gains after low guidance", "neutral", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.text)
			if got.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", got.Label, tt.wantLabel)
			}
			if math.Abs(got.Score-tt.wantScore) > 1e-9 {
				t.Errorf("score = %v, want %v", got.Score, tt.wantScore)
			}
			if got.Confidence < 0 || got.Confidence > 1 {
				t.Errorf("confidence %v out of range", got.Confidence)
			}
		})
	}
}

func TestStripHTML(t *testing.T) {
	in := "<p>Shares <b>surge</b> on &amp; earnings</p>"
	want := "Shares surge on & earnings"
	if got := StripHTML(in); got != want {
		t.Errorf("StripHTML = %q, want %q", got, want)
	}
}

func articlesFor(symbol string, headlines ...string) []Article {
	now := time.Now()
	arts := make([]Article, len(headlines))
	for i, h := range headlines {
		arts[i] = Article{Symbol: symbol, Time: now, Source: "test", Headline: h}
	}
	return arts
}

func volumeBars(n int, recent int64, base int64) []domain.Bar {
	bars := make([]domain.Bar, n)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		vol := base
		if i >= n-5 {
			vol = recent
		}
		bars[i] = domain.Bar{
			Symbol:    "BULL",
			Timestamp: start.AddDate(0, 0, i),
			Close:     100,
			Volume:    vol,
		}
	}
	return bars
}

func newTester(t *testing.T) *ForwardTester {
	t.Helper()
	ft, err := NewForwardTester(t.TempDir(), KeywordAnalyzer{}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	return ft
}

func TestGenerateSignals(t *testing.T) {
	ft := newTester(t)

	var articles []Article
	articles = append(articles, articlesFor("BULL",
		"Shares surge on strong profit growth",
		"Analyst upgrade, stock rallies to new high")...)
	articles = append(articles, articlesFor("BEAR",
		"Stock drops after earnings miss",
		"Weak outlook triggers analyst downgrade")...)
	articles = append(articles, articlesFor("MEH", "Quarterly report published")...)

	market := map[string][]domain.Bar{
		"BULL": volumeBars(30, 5000, 1000),
	}

	signals := ft.GenerateSignals(articles, market, 5)
	if len(signals) != 3 {
		t.Fatalf("got %d signals, want 3", len(signals))
	}

	byStock := make(map[string]NewsSignal)
	for _, s := range signals {
		byStock[s.Symbol] = s
	}

	bull := byStock["BULL"]
	if bull.Action != "buy" {
		t.Errorf("BULL action = %q, want buy (score=%v, vol=%v)", bull.Action, bull.SentimentScore, bull.VolumeScore)
	}
	if bull.VolumeScore <= 1.2 {
		t.Errorf("BULL volume score = %v, want > 1.2", bull.VolumeScore)
	}
	if bull.NewsCount != 2 {
		t.Errorf("BULL news count = %d, want 2", bull.NewsCount)
	}

	bear := byStock["BEAR"]
	if bear.Action != "sell" {
		t.Errorf("BEAR action = %q, want sell", bear.Action)
	}
	if bear.SentimentLabel != "negative" {
		t.Errorf("BEAR label = %q", bear.SentimentLabel)
	}

	if byStock["MEH"].Action != "hold" {
		t.Errorf("MEH action = %q, want hold", byStock["MEH"].Action)
	}
}

func TestGenerateSignalsTruncatesToTopN(t *testing.T) {
	ft := newTester(t)
	var articles []Article
	symbols := []string{"A", "B", "C", "D", "E", "F"}
	for _, s := range symbols {
		articles = append(articles, articlesFor(s, "No relevant keywords here")...)
	}
	signals := ft.GenerateSignals(articles, nil, 2)
	if len(signals) != 4 {
		t.Errorf("got %d signals, want 4 (2·topN)", len(signals))
	}
}

func TestSaveLoadSignals(t *testing.T) {
	ft := newTester(t)

	signals := ft.GenerateSignals(articlesFor("BULL", "Profit surge and rally"), nil, 5)
	if err := ft.SaveSignals(signals, "2024-03-01"); err != nil {
		t.Fatal(err)
	}

	loaded, err := ft.LoadSignals("2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != len(signals) {
		t.Fatalf("loaded %d signals, want %d", len(loaded), len(signals))
	}
	if loaded[0].Symbol != "BULL" || loaded[0].Reason != signals[0].Reason {
		t.Errorf("loaded signal mismatch: %+v", loaded[0])
	}

	missing, err := ft.LoadSignals("1999-01-01")
	if err != nil || missing != nil {
		t.Errorf("missing date: signals=%v err=%v, want nil/nil", missing, err)
	}
}

func TestSimulateForwardTest(t *testing.T) {
	ft := newTester(t)

	signals := []NewsSignal{
		{Symbol: "BULL", Action: "buy", SentimentScore: 0.8, Confidence: 0.9},
		{Symbol: "BEAR", Action: "sell", SentimentScore: -0.7, Confidence: 0.8},
		{Symbol: "MEH", Action: "hold", Confidence: 0.5},
		{Symbol: "GONE", Action: "buy", Confidence: 0.9}, // no market data
	}
	market := map[string][]domain.Bar{
		"BULL": volumeBars(30, 1000, 1000),
		"BEAR": volumeBars(30, 1000, 1000),
	}

	res, err := ft.SimulateForwardTest(signals, market, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalTrades != 2 {
		t.Fatalf("trades = %d, want 2 (hold and missing-data signals skipped)", res.TotalTrades)
	}
	var sum float64
	for _, tr := range res.SimulatedTrades {
		if tr.EntryPrice != 100 {
			t.Errorf("%s entry = %v, want last close 100", tr.Symbol, tr.EntryPrice)
		}
		sum += tr.PnLDollars
	}
	if math.Abs(sum-res.CumulativeReturn) > 1e-9 {
		t.Errorf("cumulative return %v != trade sum %v", res.CumulativeReturn, sum)
	}

	latest, err := ft.GetLatestResults()
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.TotalTrades != res.TotalTrades {
		t.Errorf("latest results = %+v, want persisted run", latest)
	}
}

func TestSimulationIsDeterministicPerSeed(t *testing.T) {
	signals := []NewsSignal{{Symbol: "BULL", Action: "buy", Confidence: 0.9}}
	market := map[string][]domain.Bar{"BULL": volumeBars(30, 1000, 1000)}

	run := func() float64 {
		ft, err := NewForwardTester(t.TempDir(), KeywordAnalyzer{}, rand.New(rand.NewSource(42)))
		if err != nil {
			t.Fatal(err)
		}
		res, err := ft.SimulateForwardTest(signals, market, 1000)
		if err != nil {
			t.Fatal(err)
		}
		return res.SimulatedTrades[0].ExitPrice
	}
	if a, b := run(), run(); a != b {
		t.Errorf("same seed produced different exits: %v vs %v", a, b)
	}
}

func TestGetLatestResultsEmpty(t *testing.T) {
	ft := newTester(t)
	res, err := ft.GetLatestResults()
	if err != nil || res != nil {
		t.Errorf("empty dir: res=%v err=%v, want nil/nil", res, err)
	}
}
