// Package stratbench provides a Go SDK for the stratbench server API. It
// defines the request and response types the server speaks, so it has no
// dependencies beyond the standard library.
package stratbench

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a running stratbench server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL
// (e.g. "http://localhost:8080").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := resp.Status
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// ListIndicators returns the available indicators.
func (c *Client) ListIndicators(ctx context.Context) ([]IndicatorInfo, error) {
	var resp IndicatorListResponse
	if err := c.do(ctx, http.MethodGet, "/api/indicators", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Indicators, nil
}

// CalculateIndicators computes per-bar indicator snapshots for a symbol.
func (c *Client) CalculateIndicators(ctx context.Context, req IndicatorsRequest) (*IndicatorsResponse, error) {
	var resp IndicatorsResponse
	if err := c.do(ctx, http.MethodPost, "/api/indicators/calculate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListStrategies returns the registered strategies.
func (c *Client) ListStrategies(ctx context.Context) ([]StrategyInfo, error) {
	var resp StrategyListResponse
	if err := c.do(ctx, http.MethodGet, "/api/strategies", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Strategies, nil
}

// GetStrategy returns one strategy's description.
func (c *Client) GetStrategy(ctx context.Context, id string) (*StrategyInfo, error) {
	var resp StrategyInfo
	if err := c.do(ctx, http.MethodGet, "/api/strategies/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunStrategy generates signals without simulating fills.
func (c *Client) RunStrategy(ctx context.Context, req StrategyRunRequest) (*StrategyRunResponse, error) {
	var resp StrategyRunResponse
	if err := c.do(ctx, http.MethodPost, "/api/strategy/run", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunBacktest runs a full backtest on the server.
func (c *Client) RunBacktest(ctx context.Context, req BacktestRequest) (*BacktestRunResponse, error) {
	var resp BacktestRunResponse
	if err := c.do(ctx, http.MethodPost, "/api/backtest/run", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListBacktests returns stored backtest summaries, newest first.
func (c *Client) ListBacktests(ctx context.Context, limit int) ([]BacktestSummary, error) {
	path := "/api/backtests"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var resp BacktestListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Backtests, nil
}

// GetBacktest retrieves a stored backtest result by id.
func (c *Client) GetBacktest(ctx context.Context, id int64) (*BacktestResult, error) {
	var resp BacktestResult
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/backtests/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateNewsSignals scores headlines into trading signals.
func (c *Client) GenerateNewsSignals(ctx context.Context, req NewsSignalsRequest) (*NewsSignalsResponse, error) {
	var resp NewsSignalsResponse
	if err := c.do(ctx, http.MethodPost, "/api/news/signals", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LatestForwardTest returns the most recent news forward test result.
func (c *Client) LatestForwardTest(ctx context.Context) (*ForwardTestResult, error) {
	var resp ForwardTestResult
	if err := c.do(ctx, http.MethodGet, "/api/news/latest", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
