package promex

import (
	"fmt"

	dto "github.com/prometheus/client_model/go"
)

// SummaryValue is a point-in-time read of one summary series.
type SummaryValue struct {
	// Count is the number of observations.
	Count uint64
	// Sum is the sum of observed values, in the metric's declared unit
	// for duration observations.
	Sum float64
	// Quantiles maps the declared quantile targets to their current
	// estimates. Empty when the summary was declared without objectives.
	Quantiles map[float64]float64
}

// HistogramValue is a point-in-time read of one histogram series.
type HistogramValue struct {
	Count uint64
	Sum   float64
	// Buckets maps each upper bound to its cumulative count.
	Buckets map[float64]uint64
}

// series gathers the registry and returns the dto metric for the given
// name and positional label values. The read goes through the collect
// path rather than the write path, so it never creates the series it is
// asked about.
func (r *Registry) series(name string, labels, lvs []string) (*dto.Metric, error) {
	families, err := r.reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather registry: %w", err)
	}

	var family *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == name {
			family = f
			break
		}
	}
	if family == nil {
		// Registered but never observed vecs gather no family.
		return nil, fmt.Errorf("%w: %q", ErrNoSeries, name)
	}

	want := make(map[string]string, len(labels))
	for i, label := range labels {
		want[label] = lvs[i]
	}

	for _, m := range family.GetMetric() {
		if matchesLabels(m, want) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q%v", ErrNoSeries, name, lvs)
}

// matchesLabels reports whether the dto metric carries every wanted
// label with the wanted value. Const labels present on the series but
// absent from want are ignored; they are shared by every series of the
// metric and cannot disambiguate.
func matchesLabels(m *dto.Metric, want map[string]string) bool {
	got := make(map[string]string, len(m.GetLabel()))
	for _, pair := range m.GetLabel() {
		got[pair.GetName()] = pair.GetValue()
	}
	for name, value := range want {
		if got[name] != value {
			return false
		}
	}
	return true
}
