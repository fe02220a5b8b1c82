package promex

import (
	"fmt"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type metricKind int

const (
	kindSummary metricKind = iota
	kindCounter
	kindGauge
	kindHistogram
)

// String returns the kind name used in error messages.
func (k metricKind) String() string {
	switch k {
	case kindSummary:
		return "summary"
	case kindCounter:
		return "counter"
	case kindGauge:
		return "gauge"
	case kindHistogram:
		return "histogram"
	default:
		return "unknown"
	}
}

// vec is the slice of the client library's vec API the registry needs
// uniformly across metric kinds. Every metric is stored as a vec (with
// zero label names when the spec declares none), so per-series removal
// and reset behave the same for all kinds.
type vec interface {
	prometheus.Collector
	DeleteLabelValues(lvs ...string) bool
	Reset()
}

// metricEntry is the per-name index record.
type metricEntry struct {
	kind   metricKind
	labels []string
	unit   DurationUnit
	vec    vec
}

// checkArity validates a positional label-value list against the
// declared label names.
func (e *metricEntry) checkArity(name string, lvs []string) error {
	if len(lvs) != len(e.labels) {
		return fmt.Errorf("%w: metric %q declares %d label(s), got %d value(s)",
			ErrLabelArity, name, len(e.labels), len(lvs))
	}
	return nil
}

// Registry is a name-addressed metric registry backed by a dedicated
// prometheus.Registry. All methods are safe for concurrent use.
//
// Using a dedicated underlying registry (instead of the client library's
// global default) keeps instances isolated: tests get fresh registries,
// and multiple registries can coexist in one process without name
// collisions.
type Registry struct {
	mu      sync.RWMutex
	reg     *prometheus.Registry
	metrics map[string]*metricEntry
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithGoCollector attaches the client library's Go runtime collector
// (goroutines, GC, memory) to the registry.
func WithGoCollector() Option {
	return func(r *Registry) {
		r.reg.MustRegister(collectors.NewGoCollector())
	}
}

// WithProcessCollector attaches the client library's process collector
// (CPU, memory, file descriptors) to the registry.
func WithProcessCollector() Option {
	return func(r *Registry) {
		r.reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		reg:     prometheus.NewRegistry(),
		metrics: make(map[string]*metricEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// defaultRegistry backs the package-level convenience functions.
var defaultRegistry = NewRegistry()

// Default returns the package-level registry used by the top-level
// convenience functions.
func Default() *Registry {
	return defaultRegistry
}

// Gatherer exposes the underlying registry for scrape handlers and
// push encoders.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Names returns the sorted names of all metrics registered through this
// registry's facade. Metrics attached directly to the underlying
// registry (runtime collectors) are not included.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes the named metric and all its series from the
// registry. It reports whether the metric existed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.metrics[name]
	if !ok {
		return false
	}
	delete(r.metrics, name)
	r.reg.Unregister(entry.vec)
	return true
}

// register indexes a freshly built vec under spec.Name. When declare is
// true an existing metric with the same kind and labels is returned
// as-is; any other collision is ErrAlreadyExists.
func (r *Registry) register(kind metricKind, spec Spec, unit DurationUnit, build func() vec, declare bool) (*metricEntry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.metrics[spec.Name]; ok {
		if !declare {
			return nil, false, fmt.Errorf("%w: %q", ErrAlreadyExists, spec.Name)
		}
		if existing.kind != kind {
			return nil, false, fmt.Errorf("%w: %q is already registered as a %s",
				ErrAlreadyExists, spec.Name, existing.kind)
		}
		if !labelsEqual(existing.labels, spec.Labels) {
			return nil, false, fmt.Errorf("%w: %q is already registered with labels %v",
				ErrAlreadyExists, spec.Name, existing.labels)
		}
		return existing, false, nil
	}

	v := build()
	if err := r.reg.Register(v); err != nil {
		// A collector registered outside the facade can still own the name.
		return nil, false, fmt.Errorf("%w: %q: %v", ErrAlreadyExists, spec.Name, err)
	}

	entry := &metricEntry{
		kind:   kind,
		labels: append([]string(nil), spec.Labels...),
		unit:   unit,
		vec:    v,
	}
	r.metrics[spec.Name] = entry
	return entry, true, nil
}

// entry resolves a name to its index record, enforcing the metric kind.
func (r *Registry) entry(name string, kind metricKind) (*metricEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
	if entry.kind != kind {
		return nil, fmt.Errorf("%w: %q is a %s, not a %s", ErrUnknownMetric, name, entry.kind, kind)
	}
	return entry, nil
}
