package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricedash/domain/core"
)

func TestPreferenceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPreferenceRepository()

	_, err := repo.Get(ctx, "s", "theme")
	assert.ErrorIs(t, err, core.ErrPrefNotFound)

	require.NoError(t, repo.Set(ctx, "s", "theme", json.RawMessage(`"dark"`)))
	got, err := repo.Get(ctx, "s", "theme")
	require.NoError(t, err)
	assert.Equal(t, `"dark"`, string(got))

	got[0] = 'x'
	again, _ := repo.Get(ctx, "s", "theme")
	assert.Equal(t, `"dark"`, string(again), "stored value must not alias caller buffers")

	require.NoError(t, repo.Remove(ctx, "s", "theme"))
	_, err = repo.Get(ctx, "s", "theme")
	assert.ErrorIs(t, err, core.ErrPrefNotFound)

	require.NoError(t, repo.Set(ctx, "s", "a", json.RawMessage(`1`)))
	require.NoError(t, repo.Clear(ctx, "s"))
	_, err = repo.Get(ctx, "s", "a")
	assert.ErrorIs(t, err, core.ErrPrefNotFound)

	assert.Error(t, repo.Set(ctx, "s", "bad", json.RawMessage(`nope`)))
}
