// Package tracing provides OpenTelemetry tracing integration.
//
// The middleware extracts W3C Trace Context from incoming requests,
// opens a server span per request, and reflects the trace ID back to
// the client in the X-Trace-Id header.
//
// Example usage:
//
//	import "github.com/maxdrift/promex/internal/observability/tracing"
//
//	mux := http.NewServeMux()
//	mux.Handle("/metrics", reg.Handler())
//	handler := tracing.Middleware(mux)
//
//	func scheduledPush(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "push-cycle")
//	    defer span.End()
//	    // ... deliver metrics ...
//	}
package tracing
