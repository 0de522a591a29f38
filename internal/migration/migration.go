package migration

import (
	"context"

	"pricedash/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations.
// Statements stay within the SQL subset shared by sqlite and postgres.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createPreferencesTable(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create preferences table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create indexes")
	}

	if err := r.recordVersion(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to record schema version")
	}

	return nil
}

func (r *MigrationRunner) createPreferencesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS preferences (
			scope VARCHAR(64) NOT NULL,
			pref_key VARCHAR(128) NOT NULL,
			pref_value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (scope, pref_key)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_preferences_updated_at ON preferences (updated_at)
	`)
	return err
}

func (r *MigrationRunner) recordVersion(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version VARCHAR(32) PRIMARY KEY
		)
	`); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, db.Rebind(`
		INSERT INTO schema_version (version) VALUES (?)
		ON CONFLICT (version) DO NOTHING
	`), r.version)
	return err
}
