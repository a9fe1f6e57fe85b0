// Package feature holds the static catalogue of wallet security controls:
// their scoring weights, premium gating, and score-inversion flags.
package feature

import (
	"errors"
	"sync"
)

// Definition is one row of the catalogue. Weight is a scoring weight only,
// never a priority; Inverted means enabling the feature reduces the security
// score (auto-sign-in).
type Definition struct {
	ID          string
	Weight      int
	PremiumOnly bool
	Inverted    bool
}

// Registry maps feature IDs to their catalogue definitions. The feature set
// is fixed at build time: register everything, then [Registry.Freeze].
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]Definition
	order  []string
	frozen bool
}

// NewRegistry creates an empty feature [Registry].
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]Definition),
	}
}

// Register adds a feature definition. Must be called before [Registry.Freeze].
func (r *Registry) Register(def Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return errors.New("registry frozen")
	}
	if def.ID == "" {
		return errors.New("feature id cannot be empty")
	}
	if def.Weight <= 0 {
		return errors.New("feature weight must be > 0")
	}
	if _, exists := r.byID[def.ID]; exists {
		return errors.New("feature already registered")
	}

	r.byID[def.ID] = def
	r.order = append(r.order, def.ID)

	return nil
}

// Lookup returns the definition for the given feature ID, or false if the
// feature is not in the catalogue.
func (r *Registry) Lookup(id string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.byID[id]
	return def, ok
}

// Freeze prevents further registrations. Must be called before the registry
// is used for gating or scoring.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of registered features.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// IDs returns all feature IDs in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// IsToggleAllowed reports whether the user may toggle the feature. The only
// gate is premium exclusivity: premium-only features are locked for
// non-premium users, and the toggle must be a silent no-op.
func (r *Registry) IsToggleAllowed(id string, userIsPremium bool) bool {
	def, ok := r.Lookup(id)
	if !ok {
		return false
	}
	return !def.PremiumOnly || userIsPremium
}
