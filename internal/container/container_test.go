package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricedash/adapters/memory"
	"pricedash/adapters/sqlstore"
	"pricedash/internal/config"
)

func testConfig(driver, url string) *config.Config {
	return &config.Config{
		API:      config.APIConfig{BaseURL: "http://127.0.0.1:8000"},
		Database: config.DatabaseConfig{Driver: driver, URL: url},
	}
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestMemoryStorage(t *testing.T) {
	c, err := New(testConfig("memory", ""), nil)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", c.API.BaseURL())

	require.NoError(t, c.InitStorage(context.Background()))
	assert.IsType(t, &memory.PreferenceRepository{}, c.PrefRepo)
	assert.Nil(t, c.DB)
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestSQLiteStorage(t *testing.T) {
	ctx := context.Background()
	c, err := New(testConfig("sqlite", ":memory:"), nil)
	require.NoError(t, err)
	require.NoError(t, c.InitStorage(ctx))
	assert.IsType(t, &sqlstore.PreferenceRepository{}, c.PrefRepo)

	scoped := c.Prefs.Scope("s1")
	require.NoError(t, scoped.Set(ctx, "theme", "dark"))
	assert.Equal(t, "dark", scoped.GetString(ctx, "theme", "light"))

	require.NoError(t, c.Shutdown(ctx))
	assert.Nil(t, c.DB)
}
