// Package strategy defines the Strategy interface for trading strategies and
// provides a Registry for constructing them by name from sweep parameters.
package strategy

import (
	"fmt"
	"sort"

	"aitrader/internal/domain"
)

// Strategy evaluates a bounded lookback window of bars and produces at most
// one intent per bar. Implementations must be pure functions of the window
// plus the carried position state, so that replays are bit-identical.
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	Name() string

	// Warmup returns the number of bars required before Evaluate may emit an
	// intent. Until the window reaches this length, callers skip evaluation.
	Warmup() int

	// Evaluate inspects the window (oldest first, current bar last) together
	// with the current position and returns the desired action, or nil.
	Evaluate(window []domain.Bar, pos domain.Position) *domain.Intent
}

// Factory builds a strategy instance from sweep parameters.
type Factory func(p Params) (Strategy, error)

// Registry holds named strategy factories. Construction by name keeps the
// strategy set closed: unknown names fail at configuration time, not mid-run.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the given name, replacing any previous entry.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// New constructs the named strategy with the given parameters.
func (r *Registry) New(name string, p Params) (Strategy, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (registered: %v)", name, r.List())
	}
	return f(p)
}

// List returns the sorted names of all registered factories.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
