package promex

// Package-level convenience functions operating on the Default registry,
// for programs that neither need isolation nor multiple registries.

// NewSummary registers a new summary with the Default registry.
func NewSummary(spec Spec) (*Summary, error) { return defaultRegistry.NewSummary(spec) }

// DeclareSummary declares a summary with the Default registry.
func DeclareSummary(spec Spec) (bool, error) { return defaultRegistry.DeclareSummary(spec) }

// GetSummary resolves a summary from the Default registry.
func GetSummary(name string) (*Summary, error) { return defaultRegistry.Summary(name) }

// NewCounter registers a new counter with the Default registry.
func NewCounter(spec Spec) (*Counter, error) { return defaultRegistry.NewCounter(spec) }

// DeclareCounter declares a counter with the Default registry.
func DeclareCounter(spec Spec) (bool, error) { return defaultRegistry.DeclareCounter(spec) }

// GetCounter resolves a counter from the Default registry.
func GetCounter(name string) (*Counter, error) { return defaultRegistry.Counter(name) }

// NewGauge registers a new gauge with the Default registry.
func NewGauge(spec Spec) (*Gauge, error) { return defaultRegistry.NewGauge(spec) }

// DeclareGauge declares a gauge with the Default registry.
func DeclareGauge(spec Spec) (bool, error) { return defaultRegistry.DeclareGauge(spec) }

// GetGauge resolves a gauge from the Default registry.
func GetGauge(name string) (*Gauge, error) { return defaultRegistry.Gauge(name) }

// NewHistogram registers a new histogram with the Default registry.
func NewHistogram(spec Spec) (*Histogram, error) { return defaultRegistry.NewHistogram(spec) }

// DeclareHistogram declares a histogram with the Default registry.
func DeclareHistogram(spec Spec) (bool, error) { return defaultRegistry.DeclareHistogram(spec) }

// GetHistogram resolves a histogram from the Default registry.
func GetHistogram(name string) (*Histogram, error) { return defaultRegistry.Histogram(name) }
