package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/weather-stories/internal/app"
	"github.com/couchcryptid/weather-stories/internal/feature/stories"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AppStore is the root store as seen by the control routes.
type AppStore interface {
	State() app.State
	Send(app.Action)
}

// StorySessions opens and closes the slideshow.
type StorySessions interface {
	Open(city string) *stories.Session
	Current() *stories.Session
	Close() bool
}

// Deps are the collaborators behind the routes.
type Deps struct {
	Ready   sharedobs.ReadinessChecker
	App     AppStore
	Stories StorySessions

	// TimeZone renders sunrise, sunset and update times. Nil means time.Local.
	TimeZone *time.Location
}

// Server exposes health, readiness, metrics and the app control routes.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the health, metrics and /v1 routes.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/state", s.handleState)
	mux.HandleFunc("POST /v1/authorization", s.handleAuthorization)
	mux.HandleFunc("POST /v1/retry", s.handleRetry)
	mux.HandleFunc("POST /v1/alert/{response}", s.handleAlert)

	mux.HandleFunc("POST /v1/stories", s.handleOpenStories)
	mux.HandleFunc("GET /v1/stories", s.handleGetStories)
	mux.HandleFunc("DELETE /v1/stories", s.handleCloseStories)
	mux.HandleFunc("POST /v1/stories/{action}", s.handleStoriesAction)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}

func accepted(w http.ResponseWriter, action string) {
	sharedobs.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "action": action})
}
