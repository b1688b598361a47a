// Package strategy defines the Strategy contract shared by all trading
// strategies and a Registry that maps strategy ids to constructors.
package strategy

import (
	"fmt"
	"sort"

	"stratbench/internal/domain"
)

// Strategy converts a price history into a per-bar trading decision.
//
// Analyze is called once per bar with the full series; index marks the
// current bar and strategies may look backward arbitrarily far but never
// forward. Implementations carry private position state across calls, so an
// instance is bound to a single backtest run: construct a fresh one per run
// and never share an instance across goroutines.
type Strategy interface {
	// Name returns the registry id of the strategy (e.g. "sma_crossover").
	Name() string

	// Description returns a human-readable summary including the effective
	// parameter values.
	Description() string

	// Analyze inspects bars[:index+1] and returns the decision for
	// bars[index]. While index is below the strategy's minimum lookback it
	// returns a hold signal with confidence 0.
	Analyze(bars []domain.Bar, index int) domain.Signal
}

// Constructor builds a strategy instance from a parameter set, validating it
// and failing fast with a descriptive error on invalid combinations.
type Constructor func(Params) (Strategy, error)

// Info describes a registered strategy for listing endpoints.
type Info struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// NotFoundError is returned when a strategy id has no registered constructor.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("strategy %q not found", e.ID)
}

// Registry maps strategy ids to constructors.
type Registry struct {
	ctors map[string]Constructor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		ctors: make(map[string]Constructor),
	}
}

// Register adds a constructor under the given id, replacing any previous
// registration.
func (r *Registry) Register(id string, ctor Constructor) {
	r.ctors[id] = ctor
}

// Has reports whether an id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.ctors[id]
	return ok
}

// New constructs a fresh strategy instance for the given id and parameters.
// Unknown ids produce a *NotFoundError; invalid parameters surface the
// constructor's validation error.
func (r *Registry) New(id string, params Params) (Strategy, error) {
	ctor, ok := r.ctors[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	s, err := ctor(params)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", id, err)
	}
	return s, nil
}

// List describes every registered strategy, constructed with default
// parameters, sorted by id.
func (r *Registry) List() []Info {
	ids := make([]string, 0, len(r.ctors))
	for id := range r.ctors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	infos := make([]Info, 0, len(ids))
	for _, id := range ids {
		s, err := r.ctors[id](nil)
		if err != nil {
			// Defaults are always valid for builtins; skip anything broken.
			continue
		}
		infos = append(infos, Info{ID: id, Description: s.Description()})
	}
	return infos
}
