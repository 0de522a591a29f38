// Package view defines the contract between the router and the pages it shows.
package view

import (
	"context"
	"html/template"
	"sync/atomic"

	"pricedash/internal"
	"pricedash/internal/dom"
)

// View is one page of the dashboard.
type View interface {
	ID() string
	Title() string
	Subtitle() string
	// Render returns the page markup placed into the view container.
	Render() (template.HTML, error)
}

// Initializer is implemented by views that load data after rendering.
// Init runs on its own goroutine; ctx is cancelled when the user navigates away.
type Initializer interface {
	Init(ctx context.Context, vc *Context) error
}

// Token identifies one navigation. It stays valid until the next navigation commits.
type Token struct {
	epoch   uint64
	current *atomic.Uint64
}

// NewToken binds an epoch to the counter that supersedes it.
func NewToken(epoch uint64, current *atomic.Uint64) Token {
	return Token{epoch: epoch, current: current}
}

// Epoch returns the navigation number the token was issued for.
func (t Token) Epoch() uint64 { return t.epoch }

// Valid reports whether no later navigation has committed.
func (t Token) Valid() bool {
	return t.current != nil && t.current.Load() == t.epoch
}

// Context is what a view's Init may touch.
type Context struct {
	ViewID string
	Doc    *dom.Document
	Token  Token
	Logger *internal.Logger
}

// ByID returns the element when it exists and the navigation is still current.
// Init code writes only through elements obtained here.
func (vc *Context) ByID(id string) *dom.Element {
	if !vc.Token.Valid() {
		return nil
	}
	return vc.Doc.ByID(id)
}

// Stale reports whether the navigation was superseded.
func (vc *Context) Stale() bool {
	return !vc.Token.Valid()
}
