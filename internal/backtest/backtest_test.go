package backtest

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"stratbench/internal/domain"
	"stratbench/internal/strategy"
	"stratbench/internal/strategy/builtins"
)

// scripted emits a fixed action at chosen indexes and holds everywhere else.
type scripted struct {
	actions map[int]domain.Action
}

var _ strategy.Strategy = (*scripted)(nil)

func (s *scripted) Name() string        { return "scripted" }
func (s *scripted) Description() string { return "scripted test strategy" }

func (s *scripted) Analyze(bars []domain.Bar, index int) domain.Signal {
	action, ok := s.actions[index]
	if !ok {
		action = domain.ActionHold
	}
	return domain.Signal{
		Timestamp: bars[index].Timestamp,
		Action:    action,
		Price:     bars[index].Close,
	}
}

func barsFromCloses(closes []float64) []domain.Bar {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{
			Symbol:    "TEST",
			Timestamp: base.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func cfg(capital, commission float64) Config {
	return Config{
		Symbol:         "TEST",
		StartDate:      "2024-01-02",
		EndDate:        "2024-01-31",
		InitialCapital: capital,
		Commission:     commission,
		StrategyID:     "scripted",
	}
}

func TestEmptyInputFailsBeforeMutation(t *testing.T) {
	e := NewEngine(cfg(1000, 0), &scripted{})
	if _, err := e.Run(nil); !errors.Is(err, ErrNoData) {
		t.Fatalf("Run(nil) error = %v, want ErrNoData", err)
	}
	// The failed run must not have consumed the engine.
	res, err := e.Run(barsFromCloses([]float64{10, 11}))
	if err != nil {
		t.Fatalf("Run after empty-input failure: %v", err)
	}
	if res.FinalCapital != 1000 {
		t.Errorf("final capital = %v, want 1000", res.FinalCapital)
	}
}

func TestEngineIsSingleUse(t *testing.T) {
	e := NewEngine(cfg(1000, 0), &scripted{})
	bars := barsFromCloses([]float64{10, 11, 12})
	if _, err := e.Run(bars); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Run(bars); err == nil {
		t.Fatal("second Run on same engine succeeded, want error")
	}
}

func TestAllHoldIsNeutral(t *testing.T) {
	bars := barsFromCloses([]float64{10, 12, 8, 15, 11})
	res, err := NewEngine(cfg(1000, 0.01), &scripted{}).Run(bars)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalTrades != 0 {
		t.Errorf("trades = %d, want 0", res.TotalTrades)
	}
	if res.FinalCapital != 1000 {
		t.Errorf("final capital = %v, want 1000", res.FinalCapital)
	}
	if res.SharpeRatio != 0 || res.SortinoRatio != 0 {
		t.Errorf("flat equity should zero the ratios, got sharpe=%v sortino=%v",
			res.SharpeRatio, res.SortinoRatio)
	}
	if res.ProfitFactor != 0 {
		t.Errorf("profit factor = %v, want 0 with no trades", res.ProfitFactor)
	}
}

func TestEquityCurveInvariants(t *testing.T) {
	bars := barsFromCloses([]float64{10, 12, 9, 14, 7, 13, 11})
	res, err := NewEngine(cfg(1000, 0), &scripted{actions: map[int]domain.Action{
		1: domain.ActionBuy,
		3: domain.ActionSell,
		4: domain.ActionBuy,
	}}).Run(bars)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.EquityCurve) != len(bars) {
		t.Fatalf("curve length = %d, want %d", len(res.EquityCurve), len(bars))
	}
	peak := res.InitialCapital
	for i, p := range res.EquityCurve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if p.Drawdown < 0 {
			t.Errorf("point %d: negative drawdown %v", i, p.Drawdown)
		}
		want := (peak - p.Equity) / peak
		if math.Abs(p.Drawdown-want) > 1e-12 {
			t.Errorf("point %d: drawdown = %v, want %v", i, p.Drawdown, want)
		}
	}
}

func TestCommissionFreeRoundTrip(t *testing.T) {
	bars := barsFromCloses([]float64{10, 10, 13, 13})
	res, err := NewEngine(cfg(1000, 0), &scripted{actions: map[int]domain.Action{
		1: domain.ActionBuy,
		2: domain.ActionSell,
	}}).Run(bars)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalTrades != 1 {
		t.Fatalf("trades = %d, want 1", res.TotalTrades)
	}
	tr := res.Trades[0]
	if tr.Quantity != 100 {
		t.Errorf("quantity = %d, want 100", tr.Quantity)
	}
	if !tr.ExitTime.After(tr.EntryTime) {
		t.Errorf("exit time %v not after entry time %v", tr.ExitTime, tr.EntryTime)
	}
	wantPnL := (13.0 - 10.0) * 100
	if tr.PnL != wantPnL {
		t.Errorf("pnl = %v, want %v", tr.PnL, wantPnL)
	}
	if want := 1000 + wantPnL; res.FinalCapital != want {
		t.Errorf("final capital = %v, want %v", res.FinalCapital, want)
	}
	if res.WinningTrades != 1 || res.LosingTrades != 0 {
		t.Errorf("win/loss counts = %d/%d, want 1/0", res.WinningTrades, res.LosingTrades)
	}
	// Profit factor with no losing trades divides by the conventional 1.
	if res.ProfitFactor != wantPnL {
		t.Errorf("profit factor = %v, want %v", res.ProfitFactor, wantPnL)
	}
}

func TestCommissionChargedBothSides(t *testing.T) {
	bars := barsFromCloses([]float64{13, 13, 15, 15})
	res, err := NewEngine(cfg(1000, 0.01), &scripted{actions: map[int]domain.Action{
		1: domain.ActionBuy,
		2: domain.ActionSell,
	}}).Run(bars)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalTrades != 1 {
		t.Fatalf("trades = %d, want 1", res.TotalTrades)
	}
	tr := res.Trades[0]
	// floor(1000/13) = 76 shares; entry cost 988 + 9.88 commission fits.
	if tr.Quantity != 76 {
		t.Fatalf("quantity = %d, want 76", tr.Quantity)
	}
	exitCommission := 0.01 * 76 * 15
	wantPnL := (15.0-13.0)*76 - 2*exitCommission
	if math.Abs(tr.PnL-wantPnL) > 1e-9 {
		t.Errorf("pnl = %v, want %v", tr.PnL, wantPnL)
	}
}

func TestSizingFailureIsNoOp(t *testing.T) {
	bars := barsFromCloses([]float64{5000, 5000, 5000})
	res, err := NewEngine(cfg(1000, 0), &scripted{actions: map[int]domain.Action{
		1: domain.ActionBuy,
	}}).Run(bars)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalTrades != 0 {
		t.Errorf("trades = %d, want 0 when no share is affordable", res.TotalTrades)
	}
	if res.FinalCapital != 1000 {
		t.Errorf("final capital = %v, want 1000", res.FinalCapital)
	}
}

func TestForcedCloseAtEnd(t *testing.T) {
	bars := barsFromCloses([]float64{10, 10, 11, 12})
	res, err := NewEngine(cfg(1000, 0), &scripted{actions: map[int]domain.Action{
		1: domain.ActionBuy,
	}}).Run(bars)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalTrades != 1 {
		t.Fatalf("trades = %d, want 1 (forced close)", res.TotalTrades)
	}
	tr := res.Trades[0]
	if tr.Reason != "End of backtest period" {
		t.Errorf("close reason = %q", tr.Reason)
	}
	if tr.ExitPrice != 12 {
		t.Errorf("exit price = %v, want final close 12", tr.ExitPrice)
	}
}

func TestSMACrossoverScenario(t *testing.T) {
	bars := barsFromCloses([]float64{10, 10, 10, 12, 14, 16, 10})
	strat, err := builtins.NewSMACrossover(strategy.Params{"short_period": 2, "long_period": 3})
	if err != nil {
		t.Fatal(err)
	}
	c := cfg(1000, 0)
	c.StrategyID = "sma_crossover"
	res, err := NewEngine(c, strat).Run(bars)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalTrades != 1 {
		t.Fatalf("trades = %d, want 1", res.TotalTrades)
	}
	tr := res.Trades[0]
	// SMA(2) first exceeds SMA(3) at the 12 close.
	if tr.EntryPrice != 12 {
		t.Errorf("entry price = %v, want 12", tr.EntryPrice)
	}
	if tr.Quantity != 83 { // floor(1000 / 12)
		t.Errorf("quantity = %d, want 83", tr.Quantity)
	}
	if tr.ExitPrice != 10 {
		t.Errorf("exit price = %v, want 10", tr.ExitPrice)
	}
	want := 1000 + 83*(10.0-12.0)
	if res.FinalCapital != want {
		t.Errorf("final capital = %v, want %v", res.FinalCapital, want)
	}
}

func TestIdempotence(t *testing.T) {
	bars := barsFromCloses([]float64{10, 11, 9, 13, 12, 15, 8, 14, 16, 13})
	reg := builtins.NewRegistry()
	c := Config{
		Symbol:         "TEST",
		StartDate:      "2024-01-02",
		EndDate:        "2024-01-11",
		InitialCapital: 1000,
		StrategyID:     "sma_crossover",
		Parameters:     strategy.Params{"short_period": 2, "long_period": 3},
	}

	run := func() []byte {
		res, err := RunStrategy(reg, c, bars)
		if err != nil {
			t.Fatal(err)
		}
		b, err := json.Marshal(res)
		if err != nil {
			t.Fatal(err)
		}
		return b
	}
	if first, second := run(), run(); !bytes.Equal(first, second) {
		t.Error("identical runs produced different results")
	}
}

func TestRunStrategyUnknownID(t *testing.T) {
	reg := builtins.NewRegistry()
	c := cfg(1000, 0)
	c.StrategyID = "no_such_strategy"
	_, err := RunStrategy(reg, c, barsFromCloses([]float64{10, 11}))
	var nf *strategy.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
}
