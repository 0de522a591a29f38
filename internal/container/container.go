// Package container wires the application dependencies from configuration.
package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pricedash/adapters/api"
	"pricedash/adapters/memory"
	"pricedash/adapters/sqlstore"
	"pricedash/internal"
	"pricedash/internal/config"
	"pricedash/internal/prefs"
	"pricedash/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Backend client
	API *api.Client

	// Preferences
	PrefRepo ports.PreferenceRepository
	Prefs    *prefs.Store
}

// New creates a container with the backend client. Storage is set up by InitStorage.
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	apiCfg := api.DefaultConfig()
	apiCfg.BaseURL = cfg.API.BaseURL
	apiCfg.Timeout = cfg.API.Timeout
	client, err := api.NewClient(apiCfg, logger)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config: cfg,
		Logger: logger,
		API:    client,
	}, nil
}

// InitStorage opens the preference backend selected by DB_DRIVER.
func (c *Container) InitStorage(ctx context.Context) error {
	switch c.Config.Database.Driver {
	case "memory":
		c.PrefRepo = memory.NewPreferenceRepository()
	default:
		db, err := sqlstore.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
		if err != nil {
			return err
		}
		c.DB = db
		c.PrefRepo = sqlstore.NewPreferenceRepository(db)
	}
	c.Prefs = prefs.NewStore(c.PrefRepo, c.Logger)
	c.Logger.Info("[Container] Preference storage: %s", c.Config.Database.Driver)
	return nil
}

// Shutdown releases the database connection.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		c.DB = nil
	}
	return nil
}
