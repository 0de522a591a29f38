// Package router switches the dashboard between registered views and keeps
// the title, navigation links, history and view container in step.
package router

import (
	"context"
	stderrors "errors"
	"fmt"
	"html"
	"html/template"
	"sync"
	"sync/atomic"

	"pricedash/domain/core"
	"pricedash/internal"
	"pricedash/internal/dom"
	"pricedash/internal/errors"
	"pricedash/internal/view"
)

// Element ids and classes the router writes to.
const (
	ContainerID = "view-container"
	TitleID     = "view-title"
	SubtitleID  = "view-subtitle"
	LinkAttr    = "data-view"
	ActiveClass = "active"
	EnterClass  = "view-enter"
	ErrorClass  = "view-error"
	DefaultView = "overview"
)

// Router owns the current view of one document.
type Router struct {
	doc         *dom.Document
	registry    *view.Registry
	logger      *internal.Logger
	defaultView string
	base        context.Context

	mu      sync.Mutex
	current string
	cancel  context.CancelFunc
	epoch   atomic.Uint64
	wg      sync.WaitGroup
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger.
func WithLogger(logger *internal.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

// WithDefaultView sets the view used when bootstrapping without a known fragment.
func WithDefaultView(id string) Option {
	return func(r *Router) { r.defaultView = id }
}

// WithContext sets the parent of every view initialization context.
func WithContext(ctx context.Context) Option {
	return func(r *Router) { r.base = ctx }
}

// New creates a router and subscribes it to the document's popstate events.
func New(doc *dom.Document, registry *view.Registry, opts ...Option) *Router {
	r := &Router{
		doc:         doc,
		registry:    registry,
		logger:      internal.DefaultLogger,
		defaultView: DefaultView,
		base:        context.Background(),
	}
	for _, opt := range opts {
		opt(r)
	}
	doc.History().OnPopState(func(e dom.Entry) { r.PopState(e.State) })
	return r
}

// Current returns the id of the view on screen, "" before the first navigation.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Epoch returns the number of committed navigations.
func (r *Router) Epoch() uint64 {
	return r.epoch.Load()
}

// Navigate shows viewID. Unregistered ids and the current view are ignored;
// the return value reports whether a navigation happened.
func (r *Router) Navigate(viewID string, recordHistory bool) bool {
	v, ok := r.registry.Get(viewID)
	if !ok {
		r.logger.Debug("[Router] Ignoring navigation to unregistered view %q", viewID)
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == viewID {
		return false
	}

	r.current = viewID
	if r.cancel != nil {
		r.cancel()
	}
	epoch := r.epoch.Add(1)
	ctx, cancel := context.WithCancel(r.base)
	r.cancel = cancel

	if el := r.doc.ByID(TitleID); el != nil {
		el.SetText(v.Title())
	}
	if el := r.doc.ByID(SubtitleID); el != nil {
		el.SetText(v.Subtitle())
	}
	for _, link := range r.doc.ElementsWithAttr(LinkAttr) {
		target, _ := link.Attr(LinkAttr)
		link.ToggleClass(ActiveClass, target == viewID)
	}
	if recordHistory {
		r.doc.History().Push(entryFor(v))
	}

	r.logger.Debug("[Router] Navigating to %s (epoch %d)", viewID, epoch)

	container := r.doc.ByID(ContainerID)
	if container == nil {
		r.logger.Warn("[Router] No #%s in document; %s not rendered", ContainerID, viewID)
		return true
	}
	container.RemoveClass(EnterClass)

	markup, err := safeRender(v)
	if err != nil {
		r.logger.Error("[Router] Error loading view %s: %v", viewID, err)
		_ = container.SetInnerHTML(errorMarkup(viewID, ""))
		return true
	}
	if err := container.SetInnerHTML(string(markup)); err != nil {
		r.logger.Error("[Router] Error loading view %s: %v", viewID, err)
		_ = container.SetInnerHTML(errorMarkup(viewID, ""))
		return true
	}
	container.AddClass(EnterClass)

	if init, ok := v.(view.Initializer); ok {
		vc := &view.Context{
			ViewID: viewID,
			Doc:    r.doc,
			Token:  view.NewToken(epoch, &r.epoch),
			Logger: r.logger,
		}
		r.wg.Add(1)
		go r.runInit(ctx, init, vc)
	}
	return true
}

// PopState follows a history move without recording a new entry.
func (r *Router) PopState(viewID string) bool {
	return r.Navigate(viewID, false)
}

// Bootstrap shows the view named by a URL fragment, or the default view when
// the fragment is empty or unknown. No history entry is pushed; the current
// entry is rewritten so a later back move can return here.
func (r *Router) Bootstrap(fragment string) bool {
	target := r.defaultView
	if id, err := core.ParseViewID(fragment); err == nil && r.registry.Has(string(id)) {
		target = string(id)
	}
	if !r.Navigate(target, false) {
		return false
	}
	if v, ok := r.registry.Get(target); ok {
		r.doc.History().Replace(entryFor(v))
	}
	return true
}

// Wait blocks until every running view initialization has returned.
func (r *Router) Wait() {
	r.wg.Wait()
}

// Close cancels the current view's initialization and waits for it.
func (r *Router) Close() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.epoch.Add(1)
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Router) runInit(ctx context.Context, init view.Initializer, vc *view.Context) {
	defer r.wg.Done()

	err := safeInit(ctx, init, vc)
	if err == nil {
		return
	}
	if stderrors.Is(err, context.Canceled) || vc.Stale() {
		r.logger.Debug("[Router] Dropping result of superseded %s init: %v", vc.ViewID, err)
		return
	}
	r.logger.Error("[Router] Error initializing view %s: %v", vc.ViewID, err)

	r.mu.Lock()
	defer r.mu.Unlock()
	if el := vc.ByID(ContainerID); el != nil {
		_ = el.SetInnerHTML(errorMarkup(vc.ViewID, errors.UserMessage(err)))
	}
}

func safeRender(v view.View) (markup template.HTML, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("render panicked: %v", rec)
		}
	}()
	return v.Render()
}

func safeInit(ctx context.Context, init view.Initializer, vc *view.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("init panicked: %v", rec)
		}
	}()
	return init.Init(ctx, vc)
}

func errorMarkup(viewID, detail string) string {
	out := fmt.Sprintf(`<div class="%s" role="alert">Error loading view: %s`, ErrorClass, html.EscapeString(viewID))
	if detail != "" {
		out += `<p class="view-error-detail">` + html.EscapeString(detail) + `</p>`
	}
	return out + `</div>`
}

func entryFor(v view.View) dom.Entry {
	return dom.Entry{State: v.ID(), Title: v.Title(), URL: "#" + v.ID()}
}
