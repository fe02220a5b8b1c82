// Package observability provides production-grade observability infrastructure
// for the exporter daemon, including structured logging, self-metrics, and
// OpenTelemetry tracing.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: The daemon's own metrics, registered through the promex facade
//   - tracing: OpenTelemetry tracing middleware for the exposition server
//
// Example usage:
//
//	import (
//	    "github.com/maxdrift/promex/internal/observability/logging"
//	    "github.com/maxdrift/promex/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("daemon started")
//
//	    self, _ := metrics.NewSelf(reg)
//	    self.SetDeclaredMetrics(7)
//	}
package observability
