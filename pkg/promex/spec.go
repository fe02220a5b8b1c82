package promex

import (
	"regexp"
	"strings"
	"time"
)

// Name and label patterns from the Prometheus data model.
var (
	metricNameRE = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)
	labelNameRE  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// Spec declares a metric: its identity, dimensionality, and per-kind
// tuning. A single Spec type serves all four metric kinds; fields that do
// not apply to the kind being declared are ignored by it.
type Spec struct {
	// Name is the full metric name (for example
	// "http_request_duration_seconds"). Required.
	Name string

	// Help is the help text exposed with the metric. Required.
	Help string

	// Labels are the variable label names, in the order label values are
	// passed to observation calls.
	Labels []string

	// ConstLabels are labels with fixed values attached to every series
	// of the metric.
	ConstLabels map[string]string

	// DurationUnit is the unit applied by ObserveDuration. When left
	// unspecified it is inferred from the name suffix, defaulting to
	// seconds. An explicit unit conflicting with the suffix is a spec
	// error.
	DurationUnit DurationUnit

	// Objectives are the summary quantile targets (quantile -> allowed
	// absolute error). Only meaningful for summaries. Nil declares a
	// summary without quantiles, exposing count and sum only.
	Objectives map[float64]float64

	// MaxAge is how long summary observations stay relevant for quantile
	// estimation. Zero uses the client library default.
	MaxAge time.Duration

	// AgeBuckets is the number of buckets the summary's sliding window is
	// divided into. Zero uses the client library default.
	AgeBuckets uint32

	// Buckets are the histogram bucket upper bounds. Only meaningful for
	// histograms. Nil uses the client library defaults.
	Buckets []float64
}

// validate checks the spec against the Prometheus data model. reserved
// holds label names the metric kind claims for itself ("quantile" for
// summaries, "le" for histograms).
func (s Spec) validate(reserved ...string) error {
	if s.Name == "" {
		return specErrorf(ErrInvalidName, "name", "name is required")
	}
	if !metricNameRE.MatchString(s.Name) {
		return specErrorf(ErrInvalidName, "name", "%q does not match %s", s.Name, metricNameRE)
	}
	if s.Help == "" {
		return specErrorf(ErrInvalidHelp, "help", "help is required")
	}

	seen := make(map[string]struct{}, len(s.Labels))
	for _, label := range s.Labels {
		if err := validateLabelName(label, reserved); err != nil {
			return err
		}
		if _, dup := seen[label]; dup {
			return specErrorf(ErrInvalidLabels, "labels", "duplicate label %q", label)
		}
		seen[label] = struct{}{}
	}

	for label := range s.ConstLabels {
		if err := validateLabelName(label, reserved); err != nil {
			return err
		}
		if _, dup := seen[label]; dup {
			return specErrorf(ErrInvalidLabels, "const_labels",
				"label %q declared both variable and const", label)
		}
	}

	return nil
}

func validateLabelName(label string, reserved []string) error {
	if !labelNameRE.MatchString(label) {
		return specErrorf(ErrInvalidLabels, "labels", "%q does not match %s", label, labelNameRE)
	}
	if strings.HasPrefix(label, "__") {
		return specErrorf(ErrInvalidLabels, "labels", "%q uses the reserved __ prefix", label)
	}
	for _, r := range reserved {
		if label == r {
			return specErrorf(ErrInvalidLabels, "labels", "%q is reserved for this metric kind", label)
		}
	}
	return nil
}

// labelsEqual reports whether two declared label lists are identical,
// order included. Observation calls pass values positionally, so order is
// part of the metric's contract.
func labelsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
