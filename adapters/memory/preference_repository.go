// Package memory keeps preferences in process memory for single-instance deployments and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"pricedash/domain/core"
	"pricedash/ports"
)

// PreferenceRepository is a map-backed preference store
type PreferenceRepository struct {
	mu     sync.RWMutex
	scopes map[string]map[string]json.RawMessage
}

var _ ports.PreferenceRepository = (*PreferenceRepository)(nil)

// NewPreferenceRepository creates an empty store
func NewPreferenceRepository() *PreferenceRepository {
	return &PreferenceRepository{scopes: make(map[string]map[string]json.RawMessage)}
}

func (r *PreferenceRepository) Get(ctx context.Context, scope, key string) (json.RawMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.scopes[scope][key]
	if !ok {
		return nil, core.ErrPrefNotFound
	}
	return append(json.RawMessage(nil), value...), nil
}

func (r *PreferenceRepository) Set(ctx context.Context, scope, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("preference %s: value is not valid JSON", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scopes[scope] == nil {
		r.scopes[scope] = make(map[string]json.RawMessage)
	}
	r.scopes[scope][key] = append(json.RawMessage(nil), value...)
	return nil
}

func (r *PreferenceRepository) Remove(ctx context.Context, scope, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.scopes[scope], key)
	if len(r.scopes[scope]) == 0 {
		delete(r.scopes, scope)
	}
	return nil
}

func (r *PreferenceRepository) Clear(ctx context.Context, scope string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.scopes, scope)
	return nil
}
