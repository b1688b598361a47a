// One-shot tool: fetch today's news for the configured watch symbols, score
// headlines into trading signals, and optionally simulate the next session.
//
// Usage:
//
//	go build -o bin/stratbench-news ./cmd/stratbench-news/
//	bin/stratbench-news [-simulate] [-capital 1000] [-top 5] [-latest]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	alpacamd "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"stratbench/internal/config"
	"stratbench/internal/domain"
	"stratbench/internal/marketdata"
	"stratbench/internal/news"
	"stratbench/internal/store"
	"stratbench/internal/util"
)

func main() {
	simulate := flag.Bool("simulate", false, "simulate the next session after generating signals")
	capital := flag.Float64("capital", 1000, "capital per simulated trade")
	topN := flag.Int("top", 0, "number of top signals to act on (0 = config default)")
	latest := flag.Bool("latest", false, "print the latest forward test result and exit")
	flag.Parse()

	cfgPath := "config/stratbench.yaml"
	if p := os.Getenv("STRATBENCH_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	if cfg.News.ResultsDir == "" {
		log.Fatal("news.results_dir not configured")
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	tester, err := news.NewForwardTester(cfg.News.ResultsDir, news.KeywordAnalyzer{}, rng)
	if err != nil {
		log.Fatalf("creating forward tester: %v", err)
	}

	if *latest {
		result, err := tester.GetLatestResults()
		if err != nil {
			log.Fatalf("reading results: %v", err)
		}
		if result == nil {
			log.Fatal("no forward test results found")
		}
		printJSON(result)
		return
	}

	if len(cfg.News.Symbols) == 0 {
		log.Fatal("news.symbols not configured")
	}

	var mdc *alpacamd.Client
	if cfg.Alpaca.APIKey != "" {
		mdc = alpacamd.NewClient(alpacamd.ClientOpts{
			APIKey:    cfg.Alpaca.APIKey,
			APISecret: cfg.Alpaca.APISecret,
		})
	}

	ctx := context.Background()
	now := time.Now().UTC()
	limiter := util.NewRateLimiter(cfg.News.RateLimitPerMin)

	articles, err := news.FetchAll(ctx, mdc, cfg.News.Symbols, now.AddDate(0, 0, -1), now, limiter)
	if err != nil {
		log.Fatalf("fetching news: %v", err)
	}
	logger.Info("fetched news", "articles", len(articles), "symbols", len(cfg.News.Symbols))

	var provider marketdata.Provider
	if cfg.Alpaca.APIKey != "" {
		provider = marketdata.NewAlpacaProvider(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL, cfg.Alpaca.Feed)
	} else {
		provider = marketdata.NewStoreProvider(store.NewParquetStore(cfg.Storage.DataDir))
	}

	marketData := make(map[string][]domain.Bar, len(cfg.News.Symbols))
	for _, sym := range cfg.News.Symbols {
		bars, err := provider.GetBars(ctx, sym, now.AddDate(0, 0, -45), now, "1Day")
		if err != nil {
			logger.Warn("fetching bars", "symbol", sym, "error", err)
			continue
		}
		marketData[sym] = bars
	}

	n := *topN
	if n <= 0 {
		n = cfg.News.TopN
	}
	signals := tester.GenerateSignals(articles, marketData, n)
	date := now.Format("2006-01-02")
	if err := tester.SaveSignals(signals, date); err != nil {
		log.Fatalf("saving signals: %v", err)
	}
	logger.Info("signals generated", "count", len(signals), "date", date)

	if *simulate {
		result, err := tester.SimulateForwardTest(signals, marketData, *capital)
		if err != nil {
			log.Fatalf("simulating forward test: %v", err)
		}
		printJSON(result)
		return
	}
	printJSON(signals)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("encoding output: %v", err)
	}
}
