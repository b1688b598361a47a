// stratbench-server serves the REST API for indicators, strategy runs,
// backtests and news signals.
//
// Market data comes from Alpaca when credentials are configured, otherwise
// from the local parquet archive. Backtest results persist to SQLite when a
// path is configured.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stratbench/internal/config"
	"stratbench/internal/httpapi"
	"stratbench/internal/marketdata"
	"stratbench/internal/news"
	"stratbench/internal/store"
	"stratbench/internal/strategy/builtins"
	"stratbench/internal/util"
)

func main() {
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

	var provider marketdata.Provider
	if cfg.Alpaca.APIKey != "" {
		provider = marketdata.NewAlpacaProvider(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL, cfg.Alpaca.Feed)
		logger.Info("market data source", "provider", "alpaca", "feed", cfg.Alpaca.Feed)
	} else {
		provider = marketdata.NewStoreProvider(store.NewParquetStore(cfg.Storage.DataDir))
		logger.Info("market data source", "provider", "parquet", "dataDir", cfg.Storage.DataDir)
	}

	var results store.ResultStore
	if cfg.Storage.SQLitePath != "" {
		db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening result store: %v", err)
		}
		defer db.Close()
		results = db
	}

	var forward *news.ForwardTester
	if cfg.News.ResultsDir != "" {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		forward, err = news.NewForwardTester(cfg.News.ResultsDir, news.KeywordAnalyzer{}, rng)
		if err != nil {
			log.Fatalf("creating forward tester: %v", err)
		}
	}

	api := httpapi.NewServer(provider, builtins.NewRegistry(), results, forward, cfg.Backtest.InitialCapital, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	logger.Info("stratbench-server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
	logger.Info("stratbench-server stopped")
}
