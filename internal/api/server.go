// Package api implements the HTTP layer for the guide delivery service.
// Handlers are methods on *Server. Each handler file owns one endpoint and
// only imports the dependencies it actually uses.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nyashahama/guide-delivery-backend/internal/delivery"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string
}

// Server holds all shared dependencies.
type Server struct {
	// workflow runs both delivery pipelines. Stubs for the gateway and the
	// email sender are injected through delivery.New in tests.
	workflow *delivery.Workflow

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.ListenAndServe.
func NewServer(wf *delivery.Workflow, cfg Config, logger *slog.Logger) http.Handler {
	s := &Server{
		workflow: wf,
		cfg:      cfg,
		logger:   logger,
	}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(30 * time.Second))

	// Both endpoints are POST-only; anything else gets a JSON 405 and never
	// reaches a handler (so no external call can happen).
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondErr(w, http.StatusMethodNotAllowed, "허용되지 않은 메서드입니다.")
	})

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ── API ───────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		r.Post("/confirm-payment", s.handleConfirmPayment)
		r.Post("/send-download", s.handleSendDownload)
	})

	return r
}
