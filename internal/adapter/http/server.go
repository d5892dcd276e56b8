package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/meteo-relay/internal/display"
	"github.com/couchcryptid/meteo-relay/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxRevealBody bounds the reveal request body.
const maxRevealBody = 1 << 10

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker = sharedobs.ReadinessChecker

// DisplaySource exposes the current presentation state.
type DisplaySource interface {
	Snapshot() display.State
}

// Revealer decodes the latest token for a correct passphrase.
type Revealer interface {
	AttemptReveal(passphrase string) (string, error)
}

// Deps groups the collaborators the server exposes.
type Deps struct {
	Ready   ReadinessChecker
	Display DisplaySource
	Reveal  Revealer

	// RevealLimit is the number of reveal attempts allowed per IP per minute.
	RevealLimit int
}

// Server exposes health, metrics, display and reveal HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api/v1 routes.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(deps.Ready))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/display", handleDisplay(deps.Display))
		r.With(revealRateLimit(deps.RevealLimit)).Post("/reveal", s.handleReveal(deps.Reveal))
	})

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

func handleDisplay(src DisplaySource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		sharedobs.WriteJSON(w, http.StatusOK, src.Snapshot())
	}
}

type revealRequest struct {
	Passphrase string `json:"passphrase"`
}

func (s *Server) handleReveal(rev Revealer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req revealRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRevealBody)).Decode(&req); err != nil {
			sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		phrase, err := rev.AttemptReveal(req.Passphrase)
		switch {
		case errors.Is(err, domain.ErrAccessDenied):
			sharedobs.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		case errors.Is(err, domain.ErrNothingToShow):
			sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case err != nil:
			s.logger.Error("reveal failed", "error", err)
			sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		default:
			sharedobs.WriteJSON(w, http.StatusOK, map[string]string{"meaning": phrase})
		}
	}
}

// revealRateLimit limits reveal attempts per client IP over a one-minute window.
func revealRateLimit(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = 10
	}
	window := time.Minute
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			sharedobs.WriteJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate_limit_exceeded"})
		}),
	)
}
