// Package marketdata provides bar-history providers backing backtest runs:
// the Alpaca market-data API for live fetches and the local Parquet store for
// offline runs.
package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	alpacamd "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"stratbench/internal/domain"
)

// Provider supplies ordered bar history for a symbol. An empty result means
// "no data"; callers treat that as a fatal precondition for a run.
type Provider interface {
	GetBars(ctx context.Context, symbol string, start, end time.Time, timeframe string) ([]domain.Bar, error)
}

// parseTimeframe converts a timeframe string such as "1Day", "5Min", or
// "1Hour" to the Alpaca representation.
func parseTimeframe(s string) (alpacamd.TimeFrame, error) {
	switch s {
	case "", "1Day":
		return alpacamd.OneDay, nil
	case "1Min":
		return alpacamd.OneMin, nil
	case "1Hour":
		return alpacamd.OneHour, nil
	}

	units := []struct {
		suffix string
		unit   alpacamd.TimeFrameUnit
	}{
		{"Min", alpacamd.Min},
		{"Hour", alpacamd.Hour},
		{"Day", alpacamd.Day},
		{"Week", alpacamd.Week},
		{"Month", alpacamd.Month},
	}
	for _, u := range units {
		if num, ok := strings.CutSuffix(s, u.suffix); ok {
			n, err := strconv.Atoi(num)
			if err != nil || n <= 0 {
				break
			}
			return alpacamd.NewTimeFrame(n, u.unit), nil
		}
	}
	return alpacamd.TimeFrame{}, fmt.Errorf("invalid timeframe %q", s)
}
