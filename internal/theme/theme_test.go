package theme

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricedash/adapters/memory"
	"pricedash/internal/dom"
	"pricedash/internal/prefs"
)

func TestToggle(t *testing.T) {
	ctx := context.Background()
	p := prefs.NewStore(memory.NewPreferenceRepository(), nil).Scope("s")
	doc := dom.MustParse(`<html><body><span id="theme-toggle-dark-icon"></span><span id="theme-toggle-light-icon"></span></body></html>`)

	assert.Equal(t, Light, Current(ctx, p))

	got, err := Toggle(ctx, p, doc)
	require.NoError(t, err)
	assert.Equal(t, Dark, got)
	assert.True(t, doc.Root().HasClass("dark"))
	assert.False(t, doc.ByID("theme-toggle-dark-icon").HasClass("hidden"))
	assert.True(t, doc.ByID("theme-toggle-light-icon").HasClass("hidden"))

	got, err = Toggle(ctx, p, doc)
	require.NoError(t, err)
	assert.Equal(t, Light, got)
	assert.False(t, doc.Root().HasClass("dark"))
	assert.Equal(t, Light, Current(ctx, p))
}

func TestApplyWithoutIcons(t *testing.T) {
	doc := dom.MustParse(`<html><body></body></html>`)
	Apply(doc, Dark)
	assert.True(t, doc.Root().HasClass("dark"))
}
