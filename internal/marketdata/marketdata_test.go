package marketdata

import (
	"context"
	"testing"
	"time"

	alpacamd "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"stratbench/internal/domain"
)

func TestParseTimeframe(t *testing.T) {
	tests := []struct {
		in   string
		want alpacamd.TimeFrame
	}{
		{"", alpacamd.OneDay},
		{"1Day", alpacamd.OneDay},
		{"1Min", alpacamd.OneMin},
		{"5Min", alpacamd.NewTimeFrame(5, alpacamd.Min)},
		{"15Min", alpacamd.NewTimeFrame(15, alpacamd.Min)},
		{"1Hour", alpacamd.OneHour},
		{"1Week", alpacamd.NewTimeFrame(1, alpacamd.Week)},
		{"1Month", alpacamd.NewTimeFrame(1, alpacamd.Month)},
	}
	for _, tt := range tests {
		got, err := parseTimeframe(tt.in)
		if err != nil {
			t.Errorf("parseTimeframe(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseTimeframe(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseTimeframeInvalid(t *testing.T) {
	for _, in := range []string{"bogus", "0Min", "-5Min", "Min", "2Fortnight"} {
		if _, err := parseTimeframe(in); err == nil {
			t.Errorf("parseTimeframe(%q) succeeded, want error", in)
		}
	}
}

// fakeBarStore is an in-memory BarStore for provider tests.
type fakeBarStore struct {
	bars map[string][]domain.Bar
}

func (f *fakeBarStore) WriteBars(_ context.Context, bars []domain.Bar) error {
	if f.bars == nil {
		f.bars = make(map[string][]domain.Bar)
	}
	for _, b := range bars {
		f.bars[b.Symbol] = append(f.bars[b.Symbol], b)
	}
	return nil
}

func (f *fakeBarStore) ReadBars(_ context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	var out []domain.Bar
	for _, b := range f.bars[symbol] {
		if !b.Timestamp.Before(start) && !b.Timestamp.After(end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBarStore) ListSymbols(_ context.Context) ([]string, error) { return nil, nil }

func TestStoreProvider(t *testing.T) {
	ctx := context.Background()
	fs := &fakeBarStore{}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var seed []domain.Bar
	for i := 0; i < 5; i++ {
		seed = append(seed, domain.Bar{
			Symbol:    "AAPL",
			Timestamp: start.AddDate(0, 0, i),
			Close:     float64(100 + i),
		})
	}
	if err := fs.WriteBars(ctx, seed); err != nil {
		t.Fatal(err)
	}

	p := NewStoreProvider(fs)
	got, err := p.GetBars(ctx, "AAPL", start.AddDate(0, 0, 1), start.AddDate(0, 0, 3), "1Day")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d bars, want 3", len(got))
	}

	got, err = p.GetBars(ctx, "MSFT", start, start, "1Day")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("unknown symbol returned %d bars, want 0", len(got))
	}
}
