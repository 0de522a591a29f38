// Package theme manages the light/dark preference and applies it to a document.
package theme

import (
	"context"

	"pricedash/internal/dom"
	"pricedash/internal/prefs"
)

// Theme is "light" or "dark".
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"

	prefKey = "theme"
)

// Current returns the stored theme, Light when none is stored.
func Current(ctx context.Context, p *prefs.Scoped) Theme {
	if Theme(p.GetString(ctx, prefKey, string(Light))) == Dark {
		return Dark
	}
	return Light
}

// Toggle flips the stored theme, applies it to doc and returns it.
func Toggle(ctx context.Context, p *prefs.Scoped, doc *dom.Document) (Theme, error) {
	next := Dark
	if Current(ctx, p) == Dark {
		next = Light
	}
	if err := p.Set(ctx, prefKey, string(next)); err != nil {
		return Current(ctx, p), err
	}
	Apply(doc, next)
	return next, nil
}

// Apply sets the dark class on <html> and swaps the toggle icons.
func Apply(doc *dom.Document, t Theme) {
	if root := doc.Root(); root != nil {
		root.ToggleClass("dark", t == Dark)
	}
	if icon := doc.ByID("theme-toggle-dark-icon"); icon != nil {
		icon.SetHidden(t != Dark)
	}
	if icon := doc.ByID("theme-toggle-light-icon"); icon != nil {
		icon.SetHidden(t == Dark)
	}
}
