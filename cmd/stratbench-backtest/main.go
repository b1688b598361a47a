// One-shot tool: run a single backtest from the command line and print the
// result as JSON.
//
// Usage:
//
//	go build -o bin/stratbench-backtest ./cmd/stratbench-backtest/
//	bin/stratbench-backtest -symbol AAPL -strategy sma_crossover \
//	    -start 2024-01-01 -end 2024-06-30 [-capital 10000] [-commission 0] [-save]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"stratbench/internal/backtest"
	"stratbench/internal/config"
	"stratbench/internal/marketdata"
	"stratbench/internal/store"
	"stratbench/internal/strategy"
	"stratbench/internal/strategy/builtins"
	"stratbench/internal/util"
)

func main() {
	symbol := flag.String("symbol", "", "ticker symbol (required)")
	strategyID := flag.String("strategy", "sma_crossover", "strategy id")
	start := flag.String("start", "", "start date YYYY-MM-DD (required)")
	end := flag.String("end", "", "end date YYYY-MM-DD (required)")
	capital := flag.Float64("capital", 0, "initial capital (0 = config default)")
	commission := flag.Float64("commission", -1, "commission rate (-1 = config default)")
	timeframe := flag.String("timeframe", "1Day", "bar timeframe")
	paramsJSON := flag.String("params", "", "strategy parameters as JSON object")
	save := flag.Bool("save", false, "persist the result to the configured SQLite store")
	flag.Parse()

	if *symbol == "" || *start == "" || *end == "" {
		flag.Usage()
		os.Exit(2)
	}

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

	startT, err := time.Parse("2006-01-02", *start)
	if err != nil {
		log.Fatalf("invalid -start: %v", err)
	}
	endT, err := time.Parse("2006-01-02", *end)
	if err != nil {
		log.Fatalf("invalid -end: %v", err)
	}
	endT = endT.Add(24*time.Hour - time.Second)

	var params strategy.Params
	if *paramsJSON != "" {
		if err := json.Unmarshal([]byte(*paramsJSON), &params); err != nil {
			log.Fatalf("invalid -params: %v", err)
		}
	}

	var provider marketdata.Provider
	if cfg.Alpaca.APIKey != "" {
		provider = marketdata.NewAlpacaProvider(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL, cfg.Alpaca.Feed)
	} else {
		provider = marketdata.NewStoreProvider(store.NewParquetStore(cfg.Storage.DataDir))
	}

	ctx := context.Background()
	bars, err := provider.GetBars(ctx, *symbol, startT, endT, *timeframe)
	if err != nil {
		log.Fatalf("fetching bars: %v", err)
	}
	if len(bars) == 0 {
		log.Fatalf("no data for %s between %s and %s", *symbol, *start, *end)
	}

	initialCapital := *capital
	if initialCapital <= 0 {
		initialCapital = cfg.Backtest.InitialCapital
	}
	commissionRate := *commission
	if commissionRate < 0 {
		commissionRate = cfg.Backtest.Commission
	}

	res, err := backtest.RunStrategy(builtins.NewRegistry(), backtest.Config{
		Symbol:         *symbol,
		StartDate:      *start,
		EndDate:        *end,
		InitialCapital: initialCapital,
		Commission:     commissionRate,
		StrategyID:     *strategyID,
		Parameters:     params,
	}, bars)
	if err != nil {
		log.Fatalf("backtest failed: %v", err)
	}

	if *save {
		if cfg.Storage.SQLitePath == "" {
			log.Fatal("-save requires storage.sqlite_path in config")
		}
		db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening result store: %v", err)
		}
		defer db.Close()
		id, err := db.SaveResult(ctx, res)
		if err != nil {
			log.Fatalf("saving result: %v", err)
		}
		logger.Info("result saved", "id", id)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatalf("encoding result: %v", err)
	}
}
