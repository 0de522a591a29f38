package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pricedash/domain/core"
	"pricedash/ports"
)

// PreferenceRepository stores preference values in the preferences table
type PreferenceRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ ports.PreferenceRepository = (*PreferenceRepository)(nil)

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db, now: time.Now}
}

// Get retrieves a value, or core.ErrPrefNotFound
func (r *PreferenceRepository) Get(ctx context.Context, scope, key string) (json.RawMessage, error) {
	query := r.db.Rebind(`
		SELECT pref_value
		FROM preferences
		WHERE scope = ? AND pref_key = ?`)

	var value string
	err := r.db.QueryRowContext(ctx, query, scope, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrPrefNotFound
		}
		return nil, fmt.Errorf("failed to get preference %s: %w", key, err)
	}

	return json.RawMessage(value), nil
}

// Set saves or updates a value
func (r *PreferenceRepository) Set(ctx context.Context, scope, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("preference %s: value is not valid JSON", key)
	}

	query := r.db.Rebind(`
		INSERT INTO preferences (scope, pref_key, pref_value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (scope, pref_key) DO UPDATE SET
			pref_value = excluded.pref_value,
			updated_at = excluded.updated_at`)

	if _, err := r.db.ExecContext(ctx, query, scope, key, string(value), r.now().UTC()); err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	return nil
}

// Remove deletes one key
func (r *PreferenceRepository) Remove(ctx context.Context, scope, key string) error {
	query := r.db.Rebind(`DELETE FROM preferences WHERE scope = ? AND pref_key = ?`)
	if _, err := r.db.ExecContext(ctx, query, scope, key); err != nil {
		return fmt.Errorf("failed to remove preference %s: %w", key, err)
	}
	return nil
}

// Clear deletes every key of a scope
func (r *PreferenceRepository) Clear(ctx context.Context, scope string) error {
	query := r.db.Rebind(`DELETE FROM preferences WHERE scope = ?`)
	if _, err := r.db.ExecContext(ctx, query, scope); err != nil {
		return fmt.Errorf("failed to clear preferences: %w", err)
	}
	return nil
}

// DeleteStale removes preferences not updated since maxAge, returning the count
func (r *PreferenceRepository) DeleteStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := r.now().Add(-maxAge).UTC()
	query := r.db.Rebind(`DELETE FROM preferences WHERE updated_at < ?`)

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup preferences: %w", err)
	}
	return result.RowsAffected()
}
