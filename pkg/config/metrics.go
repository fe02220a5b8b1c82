// Package config provides environment and file based configuration
// loading for promex-instrumented programs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/maxdrift/promex/pkg/promex"
)

// MetricDecl is the file representation of the fields shared by all
// metric kinds.
type MetricDecl struct {
	Name        string            `yaml:"name"`
	Help        string            `yaml:"help"`
	Labels      []string          `yaml:"labels"`
	ConstLabels map[string]string `yaml:"const_labels"`
}

// SummaryDecl declares a summary metric in a declaration file.
type SummaryDecl struct {
	MetricDecl `yaml:",inline"`

	// DurationUnit names the unit for duration observations
	// ("seconds", "milliseconds", ...). Empty infers from the name.
	DurationUnit string `yaml:"duration_unit"`

	// Objectives maps quantile targets to allowed absolute errors.
	Objectives map[float64]float64 `yaml:"objectives"`

	// MaxAge is a Go duration string bounding the quantile window.
	MaxAge string `yaml:"max_age"`

	// AgeBuckets is the number of sliding-window buckets.
	AgeBuckets uint32 `yaml:"age_buckets"`
}

// HistogramDecl declares a histogram metric in a declaration file.
type HistogramDecl struct {
	MetricDecl `yaml:",inline"`

	DurationUnit string    `yaml:"duration_unit"`
	Buckets      []float64 `yaml:"buckets"`
}

// Declarations is the parsed content of a metric declaration file:
//
//	metrics:
//	  summaries:
//	    - name: http_request_duration_seconds
//	      help: HTTP request duration
//	      labels: [method, path]
//	      objectives: {0.5: 0.05, 0.95: 0.01, 0.99: 0.001}
//	  counters:
//	    - name: http_requests_total
//	      help: Total HTTP requests
//	      labels: [method, path, status]
type Declarations struct {
	Metrics struct {
		Summaries  []SummaryDecl   `yaml:"summaries"`
		Counters   []MetricDecl    `yaml:"counters"`
		Gauges     []MetricDecl    `yaml:"gauges"`
		Histograms []HistogramDecl `yaml:"histograms"`
	} `yaml:"metrics"`
}

// LoadDeclarations reads and parses a metric declaration file.
// The path is expected to come from a trusted source (command-line
// argument or deployment config), not user input.
func LoadDeclarations(path string) (*Declarations, error) {
	// #nosec G304 -- path is provided by trusted source (CLI arg or config), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration file: %w", err)
	}
	return ParseDeclarations(data)
}

// ParseDeclarations parses declaration file content.
func ParseDeclarations(data []byte) (*Declarations, error) {
	var decls Declarations
	if err := yaml.Unmarshal(data, &decls); err != nil {
		return nil, fmt.Errorf("failed to parse declaration file: %w", err)
	}
	return &decls, nil
}

// Apply declares every metric in the file against the registry.
// Declaration is idempotent, so applying the same file twice (or a file
// overlapping metrics already declared in code with matching specs) is
// safe. The first invalid declaration aborts with its error.
func (d *Declarations) Apply(reg *promex.Registry) error {
	for _, decl := range d.Metrics.Summaries {
		spec, err := decl.spec()
		if err != nil {
			return fmt.Errorf("summary %q: %w", decl.Name, err)
		}
		if _, err := reg.DeclareSummary(spec); err != nil {
			return fmt.Errorf("summary %q: %w", decl.Name, err)
		}
	}

	for _, decl := range d.Metrics.Counters {
		if _, err := reg.DeclareCounter(decl.spec()); err != nil {
			return fmt.Errorf("counter %q: %w", decl.Name, err)
		}
	}

	for _, decl := range d.Metrics.Gauges {
		if _, err := reg.DeclareGauge(decl.spec()); err != nil {
			return fmt.Errorf("gauge %q: %w", decl.Name, err)
		}
	}

	for _, decl := range d.Metrics.Histograms {
		spec, err := decl.spec()
		if err != nil {
			return fmt.Errorf("histogram %q: %w", decl.Name, err)
		}
		if _, err := reg.DeclareHistogram(spec); err != nil {
			return fmt.Errorf("histogram %q: %w", decl.Name, err)
		}
	}

	return nil
}

func (d MetricDecl) spec() promex.Spec {
	return promex.Spec{
		Name:        d.Name,
		Help:        d.Help,
		Labels:      d.Labels,
		ConstLabels: d.ConstLabels,
	}
}

func (d SummaryDecl) spec() (promex.Spec, error) {
	unit, err := promex.ParseDurationUnit(d.DurationUnit)
	if err != nil {
		return promex.Spec{}, err
	}

	var maxAge time.Duration
	if d.MaxAge != "" {
		maxAge, err = time.ParseDuration(d.MaxAge)
		if err != nil {
			return promex.Spec{}, fmt.Errorf("invalid max_age: %w", err)
		}
		if err := ValidateNonNegativeDuration(maxAge); err != nil {
			return promex.Spec{}, fmt.Errorf("invalid max_age: %w", err)
		}
	}

	spec := d.MetricDecl.spec()
	spec.DurationUnit = unit
	spec.Objectives = d.Objectives
	spec.MaxAge = maxAge
	spec.AgeBuckets = d.AgeBuckets
	return spec, nil
}

func (d HistogramDecl) spec() (promex.Spec, error) {
	unit, err := promex.ParseDurationUnit(d.DurationUnit)
	if err != nil {
		return promex.Spec{}, err
	}

	spec := d.MetricDecl.spec()
	spec.DurationUnit = unit
	spec.Buckets = d.Buckets
	return spec, nil
}
