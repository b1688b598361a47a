package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	alpacamd "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"stratbench/internal/domain"
	"stratbench/internal/util"
)

// Compile-time interface check.
var _ Provider = (*AlpacaProvider)(nil)

// AlpacaProvider fetches bars from the Alpaca market-data API.
type AlpacaProvider struct {
	client *alpacamd.Client
	feed   string
	log    *slog.Logger
}

// NewAlpacaProvider creates an AlpacaProvider with the given credentials.
// dataURL and feed are optional; feed defaults to "sip".
func NewAlpacaProvider(apiKey, apiSecret, dataURL, feed string) *AlpacaProvider {
	opts := alpacamd.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	if feed == "" {
		feed = "sip"
	}
	return &AlpacaProvider{
		client: alpacamd.NewClient(opts),
		feed:   feed,
		log:    slog.Default().With("provider", "alpaca"),
	}
}

// GetBars fetches bars for one symbol, retrying transient API failures.
func (p *AlpacaProvider) GetBars(ctx context.Context, symbol string, start, end time.Time, timeframe string) ([]domain.Bar, error) {
	tf, err := parseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}

	var raw []alpacamd.Bar
	err = util.Retry(ctx, 3, 500*time.Millisecond, func() error {
		var apiErr error
		raw, apiErr = p.client.GetBars(symbol, alpacamd.GetBarsRequest{
			TimeFrame: tf,
			Start:     start,
			End:       end,
			Feed:      alpacamd.Feed(p.feed),
		})
		return apiErr
	})
	if err != nil {
		return nil, fmt.Errorf("GetBars %s: %w", symbol, err)
	}

	bars := make([]domain.Bar, 0, len(raw))
	for _, ab := range raw {
		bars = append(bars, domain.Bar{
			Symbol:     strings.ToUpper(symbol),
			Timestamp:  ab.Timestamp,
			Open:       ab.Open,
			High:       ab.High,
			Low:        ab.Low,
			Close:      ab.Close,
			Volume:     int64(ab.Volume),
			TradeCount: int64(ab.TradeCount),
			VWAP:       ab.VWAP,
		})
	}
	p.log.Debug("fetched bars", "symbol", symbol, "count", len(bars), "timeframe", timeframe)
	return bars, nil
}
