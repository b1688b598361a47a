// Package httpapi serves the REST API for indicators, strategies,
// backtests and news signals.
package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"stratbench/internal/backtest"
	"stratbench/internal/domain"
	"stratbench/internal/indicators"
	"stratbench/internal/marketdata"
	"stratbench/internal/news"
	"stratbench/internal/store"
	"stratbench/internal/strategy"
	"stratbench/pkg/stratbench"
)

const dateLayout = "2006-01-02"

// Server serves the HTTP API. The results store and forward tester are
// optional; the corresponding endpoints report 503 when not configured.
type Server struct {
	provider marketdata.Provider
	registry *strategy.Registry
	results  store.ResultStore
	forward  *news.ForwardTester
	log      *slog.Logger

	// Default applied when a backtest request omits initial capital.
	initialCapital float64
}

// NewServer creates an API server. results and forward may be nil.
func NewServer(
	provider marketdata.Provider,
	registry *strategy.Registry,
	results store.ResultStore,
	forward *news.ForwardTester,
	initialCapital float64,
	log *slog.Logger,
) *Server {
	if initialCapital <= 0 {
		initialCapital = 10000
	}
	return &Server{
		provider:       provider,
		registry:       registry,
		results:        results,
		forward:        forward,
		initialCapital: initialCapital,
		log:            log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/indicators", s.handleListIndicators)
	mux.HandleFunc("POST /api/indicators/calculate", s.handleCalculateIndicators)
	mux.HandleFunc("GET /api/strategies", s.handleListStrategies)
	mux.HandleFunc("GET /api/strategies/{id}", s.handleStrategyInfo)
	mux.HandleFunc("POST /api/strategy/run", s.handleStrategyRun)
	mux.HandleFunc("POST /api/backtest/run", s.handleBacktestRun)
	mux.HandleFunc("GET /api/backtests", s.handleListBacktests)
	mux.HandleFunc("GET /api/backtests/{id}", s.handleGetBacktest)
	mux.HandleFunc("POST /api/news/signals", s.handleNewsSignals)
	mux.HandleFunc("GET /api/news/latest", s.handleNewsLatest)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// parseDateRange validates a symbol and date pair. The end date is extended
// to the end of its day so that intraday bars on the last day are included.
func parseDateRange(symbol, startDate, endDate string) (start, end time.Time, err error) {
	if symbol == "" {
		return start, end, errors.New("symbol required")
	}
	start, err = time.Parse(dateLayout, startDate)
	if err != nil {
		return start, end, fmt.Errorf("invalid start_date %q", startDate)
	}
	end, err = time.Parse(dateLayout, endDate)
	if err != nil {
		return start, end, fmt.Errorf("invalid end_date %q", endDate)
	}
	if end.Before(start) {
		return start, end, errors.New("end_date before start_date")
	}
	return start, end.Add(24*time.Hour - time.Second), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

var indicatorCatalog = []stratbench.IndicatorInfo{
	{ID: "sma", Name: "Simple Moving Average", Description: "Average close over a fixed window", Parameters: []string{"period"}},
	{ID: "ema", Name: "Exponential Moving Average", Description: "Recency-weighted moving average", Parameters: []string{"period"}},
	{ID: "rsi", Name: "Relative Strength Index", Description: "Momentum oscillator in the 0-100 range", Parameters: []string{"period"}},
	{ID: "macd", Name: "MACD", Description: "Moving average convergence divergence with signal line and histogram", Parameters: []string{"fast_period", "slow_period", "signal_period"}},
	{ID: "bollinger", Name: "Bollinger Bands", Description: "Moving average with standard deviation bands", Parameters: []string{"period", "num_std"}},
	{ID: "vwap", Name: "VWAP", Description: "Volume-weighted average price", Parameters: nil},
	{ID: "atr", Name: "Average True Range", Description: "Volatility measure from true range", Parameters: []string{"period"}},
	{ID: "stochastic", Name: "Stochastic Oscillator", Description: "Close position within the recent high-low range", Parameters: []string{"k_period", "d_period"}},
}

func (s *Server) handleListIndicators(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, stratbench.IndicatorListResponse{Indicators: indicatorCatalog})
}

func (s *Server) handleCalculateIndicators(w http.ResponseWriter, r *http.Request) {
	var req stratbench.IndicatorsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	start, end, err := parseDateRange(req.Symbol, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bars, err := s.provider.GetBars(r.Context(), req.Symbol, start, end, req.Timeframe)
	if err != nil {
		s.log.Error("fetching bars", "symbol", req.Symbol, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch market data")
		return
	}
	if len(bars) == 0 {
		writeError(w, http.StatusNotFound, "No data available for the given period")
		return
	}
	writeJSON(w, stratbench.IndicatorsResponse{
		Symbol:    req.Symbol,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Timeframe: req.Timeframe,
		Data:      toSnapshots(indicators.All(bars)),
	})
}

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	infos := s.registry.List()
	out := make([]stratbench.StrategyInfo, len(infos))
	for i, info := range infos {
		out[i] = stratbench.StrategyInfo{ID: info.ID, Description: info.Description}
	}
	writeJSON(w, stratbench.StrategyListResponse{Strategies: out})
}

func (s *Server) handleStrategyInfo(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	strat, err := s.registry.New(id, nil)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Strategy '%s' not found", id))
		return
	}
	writeJSON(w, stratbench.StrategyInfo{ID: id, Description: strat.Description()})
}

func (s *Server) handleStrategyRun(w http.ResponseWriter, r *http.Request) {
	var req stratbench.StrategyRunRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	start, end, err := parseDateRange(req.Symbol, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	strat, err := s.registry.New(req.StrategyID, strategy.Params(req.Parameters))
	if err != nil {
		var nfe *strategy.NotFoundError
		if errors.As(err, &nfe) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Strategy '%s' not found", req.StrategyID))
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bars, err := s.provider.GetBars(r.Context(), req.Symbol, start, end, req.Timeframe)
	if err != nil {
		s.log.Error("fetching bars", "symbol", req.Symbol, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch market data")
		return
	}
	if len(bars) == 0 {
		writeError(w, http.StatusNotFound, "No data available for the given period")
		return
	}

	resp := stratbench.StrategyRunResponse{
		StrategyID: req.StrategyID,
		Symbol:     req.Symbol,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Signals:    make([]stratbench.Signal, 0, len(bars)),
	}
	for i := range bars {
		sig := strat.Analyze(bars, i)
		resp.Signals = append(resp.Signals, toSignal(sig))
		switch sig.Action {
		case domain.ActionBuy:
			resp.BuySignals++
		case domain.ActionSell:
			resp.SellSignals++
		default:
			resp.HoldSignals++
		}
	}
	resp.TotalSignals = len(resp.Signals)
	writeJSON(w, resp)
}

func (s *Server) handleBacktestRun(w http.ResponseWriter, r *http.Request) {
	var req stratbench.BacktestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	start, end, err := parseDateRange(req.Symbol, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.InitialCapital < 0 || req.Commission < 0 {
		writeError(w, http.StatusBadRequest, "initial_capital and commission must be non-negative")
		return
	}
	if req.InitialCapital == 0 {
		req.InitialCapital = s.initialCapital
	}
	if !s.registry.Has(req.StrategyID) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Strategy '%s' not found", req.StrategyID))
		return
	}

	bars, err := s.provider.GetBars(r.Context(), req.Symbol, start, end, req.Timeframe)
	if err != nil {
		s.log.Error("fetching bars", "symbol", req.Symbol, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch market data")
		return
	}
	if len(bars) == 0 {
		writeError(w, http.StatusNotFound, "No data available for the given period")
		return
	}

	cfg := backtest.Config{
		Symbol:         req.Symbol,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		InitialCapital: req.InitialCapital,
		Commission:     req.Commission,
		StrategyID:     req.StrategyID,
		Parameters:     strategy.Params(req.Parameters),
	}
	res, err := backtest.RunStrategy(s.registry, cfg, bars)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := stratbench.BacktestRunResponse{BacktestResult: toBacktestResult(res)}
	if s.results != nil {
		id, err := s.results.SaveResult(r.Context(), res)
		if err != nil {
			s.log.Error("saving backtest result", "error", err)
		} else {
			resp.ID = id
		}
	}
	writeJSON(w, resp)
}

func (s *Server) handleListBacktests(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeError(w, http.StatusServiceUnavailable, "result storage not configured")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	summaries, err := s.results.ListResults(r.Context(), limit)
	if err != nil {
		s.log.Error("listing backtests", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list backtests")
		return
	}
	writeJSON(w, stratbench.BacktestListResponse{Backtests: toSummaries(summaries)})
}

func (s *Server) handleGetBacktest(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeError(w, http.StatusServiceUnavailable, "result storage not configured")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid backtest id")
		return
	}
	res, err := s.results.GetResult(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("backtest %d not found", id))
			return
		}
		s.log.Error("reading backtest", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read backtest")
		return
	}
	writeJSON(w, toBacktestResult(res))
}

func (s *Server) handleNewsSignals(w http.ResponseWriter, r *http.Request) {
	if s.forward == nil {
		writeError(w, http.StatusServiceUnavailable, "news forward testing not configured")
		return
	}
	var req stratbench.NewsSignalsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if len(req.Articles) == 0 {
		writeError(w, http.StatusBadRequest, "articles required")
		return
	}
	if req.TopN <= 0 {
		req.TopN = 5
	}

	now := time.Now().UTC()
	articles := make([]news.Article, 0, len(req.Articles))
	symbols := make(map[string]bool)
	for _, a := range req.Articles {
		if a.Symbol == "" || a.Headline == "" {
			writeError(w, http.StatusBadRequest, "each article needs a symbol and a headline")
			return
		}
		articles = append(articles, news.Article{
			Symbol:   a.Symbol,
			Time:     now,
			Headline: a.Headline,
		})
		symbols[a.Symbol] = true
	}

	// Recent bars feed the volume score; symbols without data still get
	// signals, just without volume confirmation.
	marketData := make(map[string][]domain.Bar, len(symbols))
	for sym := range symbols {
		bars, err := s.provider.GetBars(r.Context(), sym, now.AddDate(0, 0, -45), now, "1Day")
		if err != nil {
			s.log.Warn("fetching bars for news signals", "symbol", sym, "error", err)
			continue
		}
		marketData[sym] = bars
	}

	signals := s.forward.GenerateSignals(articles, marketData, req.TopN)
	date := now.Format(dateLayout)
	if err := s.forward.SaveSignals(signals, date); err != nil {
		s.log.Error("saving news signals", "date", date, "error", err)
	}

	resp := stratbench.NewsSignalsResponse{Signals: toNewsSignals(signals)}
	if req.Simulate {
		capital := req.CapitalPerTrade
		if capital <= 0 {
			capital = 1000
		}
		result, err := s.forward.SimulateForwardTest(signals, marketData, capital)
		if err != nil {
			s.log.Error("simulating forward test", "error", err)
			writeError(w, http.StatusInternalServerError, "forward test simulation failed")
			return
		}
		resp.ForwardTest = toForwardResult(result)
	}
	writeJSON(w, resp)
}

func (s *Server) handleNewsLatest(w http.ResponseWriter, r *http.Request) {
	if s.forward == nil {
		writeError(w, http.StatusServiceUnavailable, "news forward testing not configured")
		return
	}
	result, err := s.forward.GetLatestResults()
	if err != nil {
		s.log.Error("reading forward test results", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read forward test results")
		return
	}
	if result == nil {
		writeError(w, http.StatusNotFound, "No forward test results found")
		return
	}
	writeJSON(w, toForwardResult(result))
}
