package marketdata

import (
	"context"
	"time"

	"stratbench/internal/domain"
	"stratbench/internal/store"
)

// Compile-time interface check.
var _ Provider = (*StoreProvider)(nil)

// StoreProvider serves bars from a local BarStore. The store holds daily
// bars only, so the timeframe argument is ignored.
type StoreProvider struct {
	bars store.BarStore
}

// NewStoreProvider wraps a BarStore as a Provider.
func NewStoreProvider(bars store.BarStore) *StoreProvider {
	return &StoreProvider{bars: bars}
}

func (p *StoreProvider) GetBars(ctx context.Context, symbol string, start, end time.Time, _ string) ([]domain.Bar, error) {
	return p.bars.ReadBars(ctx, symbol, start, end)
}
