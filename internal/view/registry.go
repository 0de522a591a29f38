package view

import (
	"fmt"
	"sort"
	"sync"

	"pricedash/domain/core"
)

// Registry stores views by id and rejects duplicates.
type Registry struct {
	mu    sync.RWMutex
	views map[string]View
}

// NewRegistry creates an empty registry, optionally pre-filled.
func NewRegistry(views ...View) (*Registry, error) {
	r := &Registry{views: make(map[string]View)}
	for _, v := range views {
		if err := r.Register(v); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a view by its ID().
func (r *Registry) Register(v View) error {
	if v == nil {
		return fmt.Errorf("view: view is required")
	}
	id, err := core.ParseViewID(v.ID())
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.views[string(id)]; exists {
		return core.NewDuplicateViewError(string(id))
	}
	r.views[string(id)] = v
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(v View) {
	if err := r.Register(v); err != nil {
		panic(err)
	}
}

// Get retrieves a view by id.
func (r *Registry) Get(id string) (View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[id]
	return v, ok
}

// Has reports whether a view is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// List returns the registered ids sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.views))
	for id := range r.views {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
