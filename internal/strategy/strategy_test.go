package strategy

import (
	"errors"
	"fmt"
	"testing"

	"stratbench/internal/domain"
)

// stub is a minimal Strategy implementation used in registry tests.
type stub struct {
	name string
}

func (s *stub) Name() string        { return s.name }
func (s *stub) Description() string { return "stub strategy " + s.name }
func (s *stub) Analyze(bars []domain.Bar, index int) domain.Signal {
	return domain.Signal{Timestamp: bars[index].Timestamp, Action: domain.ActionHold}
}

func stubCtor(name string) Constructor {
	return func(Params) (Strategy, error) {
		return &stub{name: name}, nil
	}
}

func TestRegistryNew(t *testing.T) {
	r := NewRegistry()
	r.Register("alpha", stubCtor("alpha"))

	s, err := r.New("alpha", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Name() != "alpha" {
		t.Errorf("Name() = %q, want %q", s.Name(), "alpha")
	}
}

func TestRegistryNewNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.New("missing", nil)
	if err == nil {
		t.Fatal("New should fail for an unregistered id")
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error should be *NotFoundError, got %T", err)
	}
	if nf.ID != "missing" {
		t.Errorf("NotFoundError.ID = %q, want %q", nf.ID, "missing")
	}
}

func TestRegistryNewValidationError(t *testing.T) {
	r := NewRegistry()
	r.Register("broken", func(Params) (Strategy, error) {
		return nil, fmt.Errorf("fast period must be less than slow period")
	})

	_, err := r.New("broken", Params{"fast_period": 30, "slow_period": 10})
	if err == nil {
		t.Fatal("New should surface constructor validation errors")
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	r.Register("beta", stubCtor("beta"))
	r.Register("alpha", stubCtor("alpha"))

	infos := r.List()
	if len(infos) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(infos))
	}
	if infos[0].ID != "alpha" || infos[1].ID != "beta" {
		t.Errorf("List not sorted by id: %+v", infos)
	}
	if infos[0].Description == "" {
		t.Error("List entries should carry a description")
	}
}

func TestParamsGetters(t *testing.T) {
	p := Params{
		"period":    float64(14), // JSON numbers decode as float64
		"threshold": 2.5,
		"count":     7,
		"enabled":   true,
	}

	if got := p.Int("period", 0); got != 14 {
		t.Errorf("Int(period) = %d, want 14", got)
	}
	if got := p.Int("count", 0); got != 7 {
		t.Errorf("Int(count) = %d, want 7", got)
	}
	if got := p.Int("absent", 30); got != 30 {
		t.Errorf("Int(absent) = %d, want default 30", got)
	}
	if got := p.Float("threshold", 0); got != 2.5 {
		t.Errorf("Float(threshold) = %v, want 2.5", got)
	}
	if got := p.Float("period", 0); got != 14 {
		t.Errorf("Float(period) = %v, want 14", got)
	}
	if got := p.Bool("enabled", false); !got {
		t.Error("Bool(enabled) = false, want true")
	}
	if got := p.Bool("absent", true); !got {
		t.Error("Bool(absent) should fall back to default true")
	}

	var nilParams Params
	if got := nilParams.Int("anything", 5); got != 5 {
		t.Errorf("nil Params Int = %d, want default 5", got)
	}
}
