package promex

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Summary is a handle on one registered summary metric. Handles are
// cheap, stateless views over the registry entry and may be stored or
// re-resolved by name at will.
type Summary struct {
	reg   *Registry
	name  string
	entry *metricEntry
	vec   *prometheus.SummaryVec

	// created records whether the constructing call registered the
	// metric, for Declare's return value.
	created bool
}

// NewSummary registers a new summary. It fails with ErrAlreadyExists if
// the name is taken, and with a spec error if the spec is invalid.
func (r *Registry) NewSummary(spec Spec) (*Summary, error) {
	return r.registerSummary(spec, false)
}

// DeclareSummary registers a summary if it does not exist yet. The
// boolean reports whether this call created it. Declaring an existing
// summary with matching kind and labels is a no-op; a mismatch is
// ErrAlreadyExists. This is the operation configuration-driven setups
// use: every component can declare the metrics it observes without
// coordinating which one starts first.
func (r *Registry) DeclareSummary(spec Spec) (bool, error) {
	s, err := r.registerSummary(spec, true)
	if err != nil {
		return false, err
	}
	return s.created, nil
}

func (r *Registry) registerSummary(spec Spec, declare bool) (*Summary, error) {
	// "quantile" is how the summary exposes its estimates.
	if err := spec.validate("quantile"); err != nil {
		return nil, err
	}
	unit, err := resolveDurationUnit(spec.Name, spec.DurationUnit)
	if err != nil {
		return nil, err
	}

	build := func() vec {
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:        spec.Name,
			Help:        spec.Help,
			ConstLabels: prometheus.Labels(spec.ConstLabels),
			Objectives:  spec.Objectives,
			MaxAge:      spec.MaxAge,
			AgeBuckets:  spec.AgeBuckets,
		}, spec.Labels)
	}

	entry, created, err := r.register(kindSummary, spec, unit, build, declare)
	if err != nil {
		return nil, err
	}
	return &Summary{
		reg:     r,
		name:    spec.Name,
		entry:   entry,
		vec:     entry.vec.(*prometheus.SummaryVec),
		created: created,
	}, nil
}

// Summary resolves a registered summary by name.
func (r *Registry) Summary(name string) (*Summary, error) {
	entry, err := r.entry(name, kindSummary)
	if err != nil {
		return nil, err
	}
	return &Summary{
		reg:   r,
		name:  name,
		entry: entry,
		vec:   entry.vec.(*prometheus.SummaryVec),
	}, nil
}

// Name returns the metric name the handle addresses.
func (s *Summary) Name() string {
	return s.name
}

// Observe records v for the series addressed by the label values.
func (s *Summary) Observe(v float64, lvs ...string) error {
	if err := s.entry.checkArity(s.name, lvs); err != nil {
		return err
	}
	obs, err := s.vec.GetMetricWithLabelValues(lvs...)
	if err != nil {
		return err
	}
	obs.Observe(v)
	return nil
}

// ObserveDuration records d converted with the metric's duration unit.
func (s *Summary) ObserveDuration(d time.Duration, lvs ...string) error {
	return s.Observe(s.entry.unit.Convert(d), lvs...)
}

// StartTimer starts a timer whose ObserveDuration records the elapsed
// time into this summary series.
func (s *Summary) StartTimer(lvs ...string) (*Timer, error) {
	if err := s.entry.checkArity(s.name, lvs); err != nil {
		return nil, err
	}
	return newTimer(func(d time.Duration) {
		// Arity is validated above; the write cannot fail for this series.
		_ = s.ObserveDuration(d, lvs...)
	}), nil
}

// Remove deletes the series addressed by the label values. It reports
// whether a series existed.
func (s *Summary) Remove(lvs ...string) (bool, error) {
	if err := s.entry.checkArity(s.name, lvs); err != nil {
		return false, err
	}
	return s.vec.DeleteLabelValues(lvs...), nil
}

// Reset deletes every series of the summary. The metric itself stays
// registered.
func (s *Summary) Reset() {
	s.vec.Reset()
}

// Value reads back the current count, sum, and quantile estimates of the
// series addressed by the label values. Reading a never-observed series
// is ErrNoSeries.
func (s *Summary) Value(lvs ...string) (SummaryValue, error) {
	if err := s.entry.checkArity(s.name, lvs); err != nil {
		return SummaryValue{}, err
	}
	m, err := s.reg.series(s.name, s.entry.labels, lvs)
	if err != nil {
		return SummaryValue{}, err
	}

	summary := m.GetSummary()
	value := SummaryValue{
		Count:     summary.GetSampleCount(),
		Sum:       summary.GetSampleSum(),
		Quantiles: make(map[float64]float64, len(summary.GetQuantile())),
	}
	for _, q := range summary.GetQuantile() {
		value.Quantiles[q.GetQuantile()] = q.GetValue()
	}
	return value, nil
}
