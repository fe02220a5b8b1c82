// Package server provides the HTTP exposition server for the exporter daemon.
// It serves the registry's metrics page alongside health probes, and wires
// the request ID, tracing, and self-metrics middleware around every handler.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/maxdrift/promex/internal/observability/metrics"
	"github.com/maxdrift/promex/internal/observability/tracing"
	"github.com/maxdrift/promex/internal/requestid"
	"github.com/maxdrift/promex/pkg/promex"
)

// HealthResponse represents a simple health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// PushHealthResponse represents the health of the push delivery path.
type PushHealthResponse struct {
	Healthy bool   `json:"healthy"`
	Circuit string `json:"circuit,omitempty"`
}

// Config holds the exposition server configuration.
type Config struct {
	// Addr is the listen address, e.g. ":9090".
	Addr string

	// PushHealth reports whether the push delivery path is healthy.
	// Nil means pushing is disabled and /health/push returns 200.
	PushHealth func() (healthy bool, circuit string)
}

// Server serves the metrics page and health probes.
type Server struct {
	cfg    Config
	logger *slog.Logger
	http   *http.Server
}

// New builds the exposition server around reg. Self-metrics middleware is
// applied when self is non-nil.
func New(cfg Config, reg *promex.Registry, self *metrics.Self, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/health/push", pushHealthHandler(cfg.PushHealth))

	var handler http.Handler = mux
	if self != nil {
		handler = self.Middleware(handler)
	}
	handler = tracing.Middleware(handler)
	handler = requestid.Middleware(handler)

	return &Server{
		cfg:    cfg,
		logger: logger,
		http: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Handler returns the fully wrapped handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run starts the server and blocks until ctx is canceled, then shuts
// down gracefully. In-flight requests get five seconds to complete.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("exposition server starting", slog.String("addr", s.cfg.Addr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("exposition server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("exposition server shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("exposition server shutdown: %w", err)
	}
	s.logger.Info("exposition server stopped")
	return <-errCh
}

// healthHandler handles GET /health requests (liveness probe).
// Always returns 200 OK with {"status": "healthy"}.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "healthy"})
}

// pushHealthHandler creates a handler for GET /health/push (readiness probe).
// Returns 503 when the push circuit breaker is open, 200 otherwise.
func pushHealthHandler(pushHealth func() (bool, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		healthy := true
		circuit := ""
		if pushHealth != nil {
			healthy, circuit = pushHealth()
		}

		statusCode := http.StatusOK
		if !healthy {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(PushHealthResponse{
			Healthy: healthy,
			Circuit: circuit,
		})
	}
}
