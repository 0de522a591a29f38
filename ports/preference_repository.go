package ports

import (
	"context"
	"encoding/json"
)

// PreferenceRepository persists JSON preference values per scope (one scope per browser session).
type PreferenceRepository interface {
	// Get returns the stored value, or core.ErrPrefNotFound
	Get(ctx context.Context, scope, key string) (json.RawMessage, error)

	// Set stores or replaces a value
	Set(ctx context.Context, scope, key string, value json.RawMessage) error

	// Remove deletes one key; removing a missing key is not an error
	Remove(ctx context.Context, scope, key string) error

	// Clear deletes every key of a scope
	Clear(ctx context.Context, scope string) error
}
