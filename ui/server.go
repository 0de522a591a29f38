// Package ui serves the dashboard shell, the per-session patch stream and the
// endpoints the shell forwards user input to.
package ui

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pricedash/internal"
	"pricedash/internal/api"
	"pricedash/internal/config"
	"pricedash/internal/prefs"
	"pricedash/internal/session"
	"pricedash/ports"
)

//go:embed templates/*.html static
var embeddedFiles embed.FS

// AppTitle is shown in the browser tab and the sidebar.
const AppTitle = "Ames House Prices"

// navLink is one sidebar entry.
type navLink struct {
	ID    string
	Label string
}

var navLinks = []navLink{
	{ID: "overview", Label: "Overview"},
	{ID: "predict", Label: "Predict"},
	{ID: "analytics", Label: "Analytics"},
	{ID: "model", Label: "Model"},
}

// Server represents the dashboard web server
type Server struct {
	router    *gin.Engine
	templates *template.Template
	api       ports.HousePriceAPI
	hub       *api.SSEHub
	sessions  *session.Manager
	logger    *internal.Logger
}

// Options carries the server's collaborators.
type Options struct {
	Config *config.Config
	API    ports.HousePriceAPI
	Prefs  *prefs.Store
	Logger *internal.Logger
}

// NewServer builds the server, its templates and session manager.
func NewServer(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = internal.DefaultLogger
	}
	if opts.Config.Server.GinMode != "" {
		gin.SetMode(opts.Config.Server.GinMode)
	}

	templates, err := template.ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}
	s := &Server{
		router:    gin.New(),
		templates: templates,
		api:       opts.API,
		hub:       api.NewSSEHub(opts.Logger),
		logger:    opts.Logger,
	}

	shell, err := s.renderShell()
	if err != nil {
		s.hub.Close()
		return nil, err
	}
	ui := opts.Config.UI
	s.sessions = session.NewManager(session.Config{
		Shell:            shell,
		API:              opts.API,
		Prefs:            opts.Prefs,
		DefaultView:      ui.DefaultView,
		ToastTTL:         ui.ToastTTL,
		PatchDebounce:    ui.PatchDebounce,
		DistributionBins: ui.DistributionBins,
		IdleExpiry:       ui.SessionIdleExpiry,
		Logger:           opts.Logger,
	}, s.hub)

	s.router.Use(gin.Logger(), gin.Recovery())
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/", s.handleIndex)

	scoped := s.router.Group("/", s.requireSession())
	scoped.GET("/events", s.handleEvents)

	scoped.POST("/nav/boot", s.handleBoot)
	scoped.POST("/nav/pop", s.handlePop)
	scoped.POST("/nav/:view", s.handleNavigate)

	scoped.POST("/form/step", s.handleStep)
	scoped.POST("/form/submit", s.handleSubmit)
	scoped.POST("/form/reset", s.handleReset)
	scoped.POST("/form/prefill", s.handlePrefill)
	scoped.POST("/map/predict", s.handlePredictIn)
	scoped.POST("/theme/toggle", s.handleThemeToggle)

	s.router.GET("/export/:file", s.handleExport)
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sessions.Run(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[Server] Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("[Server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// streams only end once the hub closes, so close it before waiting on handlers
	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Close ends every stream and session.
func (s *Server) Close() {
	s.hub.Close()
	s.sessions.Close()
}
