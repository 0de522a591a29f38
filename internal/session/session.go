// Package session keeps one live dashboard per browser: its document, router,
// form controller and toasts, with document changes streamed to a publisher.
package session

import (
	"context"
	"sync/atomic"
	"time"

	"pricedash/internal"
	"pricedash/internal/dom"
	"pricedash/internal/form"
	"pricedash/internal/notify"
	"pricedash/internal/prefs"
	"pricedash/internal/router"
	"pricedash/internal/theme"
	"pricedash/internal/timing"
	"pricedash/internal/views"
	"pricedash/ports"
)

// Publisher receives the patches a session produces.
type Publisher interface {
	Publish(sessionID string, patches []dom.Patch)
}

// Config is what every session is built from.
type Config struct {
	Shell            string
	API              ports.HousePriceAPI
	Prefs            *prefs.Store
	DefaultView      string
	ToastTTL         time.Duration
	PatchDebounce    time.Duration
	DistributionBins int
	IdleExpiry       time.Duration
	Logger           *internal.Logger
}

// Session is one browser's dashboard.
type Session struct {
	ID     string
	Doc    *dom.Document
	Router *router.Router
	Form   *form.Controller
	Notify *notify.Center
	Prefs  *prefs.Scoped
	Views  *views.Set

	publisher Publisher
	trigger   func()
	stopFlush func()
	cancel    context.CancelFunc
	lastSeen  atomic.Int64
	closed    atomic.Bool
}

func newSession(ctx context.Context, id string, cfg Config, pub Publisher) (*Session, error) {
	doc, err := dom.Parse(cfg.Shell)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger.With("session", id)
	scoped := cfg.Prefs.Scope(id)
	theme.Apply(doc, theme.Current(ctx, scoped))

	center := notify.NewCenter(doc, cfg.ToastTTL)
	ctrl := form.NewController(doc, nil, cfg.API, center, logger)
	set, err := views.New(views.Deps{
		API:              cfg.API,
		Form:             ctrl,
		DistributionBins: cfg.DistributionBins,
		Logger:           logger,
	})
	if err != nil {
		return nil, err
	}

	base, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:        id,
		Doc:       doc,
		Form:      ctrl,
		Notify:    center,
		Prefs:     scoped,
		Views:     set,
		publisher: pub,
		cancel:    cancel,
	}
	s.Router = router.New(doc, set.Registry,
		router.WithLogger(logger),
		router.WithDefaultView(cfg.DefaultView),
		router.WithContext(base))

	if cfg.PatchDebounce > 0 {
		s.trigger, s.stopFlush = timing.Debounce(s.Flush, cfg.PatchDebounce)
	} else {
		s.trigger, s.stopFlush = s.Flush, func() {}
	}
	doc.OnChange(s.trigger)
	s.Touch(time.Now())
	return s, nil
}

// Page returns the full current document. Pending patches are dropped since
// the page already contains them.
func (s *Session) Page() string {
	s.Doc.Flush()
	return s.Doc.HTML()
}

// Flush publishes whatever changed since the last flush.
func (s *Session) Flush() {
	if s.closed.Load() || s.publisher == nil {
		return
	}
	if patches := s.Doc.Flush(); len(patches) > 0 {
		s.publisher.Publish(s.ID, patches)
	}
}

// Touch records activity.
func (s *Session) Touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// LastSeen returns the last recorded activity.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// ToggleTheme flips and persists the theme.
func (s *Session) ToggleTheme(ctx context.Context) (theme.Theme, error) {
	return theme.Toggle(ctx, s.Prefs, s.Doc)
}

// PredictIn opens the prediction form with a neighborhood selected.
func (s *Session) PredictIn(neighborhood string) {
	if s.Router.Current() == s.Views.Predict.ID() {
		s.Form.SetNeighborhood(neighborhood)
		return
	}
	s.Views.Predict.Preselect(neighborhood)
	s.Router.Navigate(s.Views.Predict.ID(), true)
}

// Close stops pending work. The session must not be used afterwards.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.stopFlush()
	s.cancel()
	s.Router.Close()
	s.Notify.Close()
}
