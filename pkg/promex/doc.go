// Package promex provides a name-addressed facade over the Prometheus
// client library.
//
// The upstream client addresses metrics through held vec references.
// This package keeps a per-registry index from metric name to its vec,
// so callers can declare a metric once (in code or from a configuration
// file) and then observe it anywhere by name and ordered label values:
//
//	reg := promex.NewRegistry()
//	_, err := reg.DeclareSummary(promex.Spec{
//	    Name:   "http_request_duration_seconds",
//	    Help:   "HTTP request duration",
//	    Labels: []string{"method", "path"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s, _ := reg.Summary("http_request_duration_seconds")
//	_ = s.ObserveDuration(time.Since(start), "GET", "/articles")
//
// Summaries, counters, gauges, and histograms share the same convention:
// spec validation at declaration time, typed handles for observation,
// per-series removal, reset, and value read-back.
//
// Duration-valued metrics carry a duration unit (inferred from the
// conventional name suffix, e.g. "_seconds", or set explicitly in the
// Spec). ObserveDuration converts a time.Duration with that unit, so the
// exposed sum is always in the declared unit.
package promex
