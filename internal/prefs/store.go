// Package prefs stores small JSON preference values per browser session,
// the server-side stand-in for the dashboard's local storage.
package prefs

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"pricedash/domain/core"
	"pricedash/internal"
	"pricedash/ports"
)

// Store marshals values to JSON on top of a PreferenceRepository.
type Store struct {
	repo   ports.PreferenceRepository
	logger *internal.Logger
}

// NewStore creates a preference store
func NewStore(repo ports.PreferenceRepository, logger *internal.Logger) *Store {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Store{repo: repo, logger: logger}
}

// Scope binds the store to one session.
func (s *Store) Scope(scope string) *Scoped {
	return &Scoped{store: s, scope: scope}
}

// Scoped is a Store bound to one session scope.
type Scoped struct {
	store *Store
	scope string
}

// Get decodes the stored value into out. It reports false when nothing usable is
// stored; read and decode failures are logged and treated as missing.
func (s *Scoped) Get(ctx context.Context, key string, out interface{}) bool {
	raw, err := s.store.repo.Get(ctx, s.scope, key)
	if err != nil {
		if !stderrors.Is(err, core.ErrPrefNotFound) {
			s.store.logger.Error("[Prefs] Error reading %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.store.logger.Error("[Prefs] Error decoding %s: %v", key, err)
		return false
	}
	return true
}

// GetString returns a string preference or def.
func (s *Scoped) GetString(ctx context.Context, key, def string) string {
	var v string
	if s.Get(ctx, key, &v) {
		return v
	}
	return def
}

// Set stores value as JSON.
func (s *Scoped) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.store.repo.Set(ctx, s.scope, key, raw); err != nil {
		s.store.logger.Error("[Prefs] Error saving %s: %v", key, err)
		return err
	}
	return nil
}

// Remove deletes one key.
func (s *Scoped) Remove(ctx context.Context, key string) error {
	return s.store.repo.Remove(ctx, s.scope, key)
}

// Clear deletes every key of the scope.
func (s *Scoped) Clear(ctx context.Context) error {
	return s.store.repo.Clear(ctx, s.scope)
}
