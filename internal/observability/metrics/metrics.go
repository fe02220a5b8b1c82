// Package metrics provides the exporter daemon's own instrumentation.
// All series are registered through the promex facade, so the daemon
// exercises the same API it serves to applications.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/maxdrift/promex/pkg/promex"
)

// Self bundles the daemon's self-metrics. All handles are resolved
// against a single registry so they appear on the same scrape page as
// the application metrics loaded from declarations.
type Self struct {
	requests     *promex.Counter
	requestTime  *promex.Summary
	pushes       *promex.Counter
	pushTime     *promex.Summary
	declarations *promex.Gauge
}

// NewSelf registers the daemon's self-metrics on reg.
// Declare is used rather than New so that restarting components
// sharing the registry stays safe.
func NewSelf(reg *promex.Registry) (*Self, error) {
	specs := []struct {
		declare func() (bool, error)
	}{
		{func() (bool, error) {
			return reg.DeclareCounter(promex.Spec{
				Name:   "promexd_http_requests_total",
				Help:   "Total number of HTTP requests served.",
				Labels: []string{"method", "path", "status"},
			})
		}},
		{func() (bool, error) {
			return reg.DeclareSummary(promex.Spec{
				Name:       "promexd_http_request_duration_seconds",
				Help:       "HTTP request latency.",
				Labels:     []string{"method", "path"},
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			})
		}},
		{func() (bool, error) {
			return reg.DeclareCounter(promex.Spec{
				Name:   "promexd_push_attempts_total",
				Help:   "Pushgateway delivery attempts by outcome.",
				Labels: []string{"status"},
			})
		}},
		{func() (bool, error) {
			return reg.DeclareSummary(promex.Spec{
				Name:       "promexd_push_duration_seconds",
				Help:       "Pushgateway delivery latency.",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			})
		}},
		{func() (bool, error) {
			return reg.DeclareGauge(promex.Spec{
				Name: "promexd_declared_metrics",
				Help: "Number of metrics registered from declaration files.",
			})
		}},
	}

	for _, s := range specs {
		if _, err := s.declare(); err != nil {
			return nil, fmt.Errorf("register self metrics: %w", err)
		}
	}

	self := &Self{}
	var err error
	if self.requests, err = reg.Counter("promexd_http_requests_total"); err != nil {
		return nil, err
	}
	if self.requestTime, err = reg.Summary("promexd_http_request_duration_seconds"); err != nil {
		return nil, err
	}
	if self.pushes, err = reg.Counter("promexd_push_attempts_total"); err != nil {
		return nil, err
	}
	if self.pushTime, err = reg.Summary("promexd_push_duration_seconds"); err != nil {
		return nil, err
	}
	if self.declarations, err = reg.Gauge("promexd_declared_metrics"); err != nil {
		return nil, err
	}
	return self, nil
}

// RecordRequest records one served HTTP request.
func (s *Self) RecordRequest(method, path string, status int, elapsed time.Duration) {
	_ = s.requests.Inc(method, path, strconv.Itoa(status))
	_ = s.requestTime.ObserveDuration(elapsed, method, path)
}

// RecordPush records one Pushgateway delivery attempt.
func (s *Self) RecordPush(err error, elapsed time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	_ = s.pushes.Inc(status)
	_ = s.pushTime.ObserveDuration(elapsed)
}

// SetDeclaredMetrics records how many metrics the declaration files produced.
func (s *Self) SetDeclaredMetrics(n int) {
	_ = s.declarations.Set(float64(n))
}

// statusRecorder captures the response status for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware instruments an HTTP handler with request count and latency.
func (s *Self) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.RecordRequest(r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
