package promex

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Histogram is a handle on one registered histogram metric.
type Histogram struct {
	reg   *Registry
	name  string
	entry *metricEntry
	vec   *prometheus.HistogramVec

	created bool
}

// NewHistogram registers a new histogram. It fails with ErrAlreadyExists
// if the name is taken.
func (r *Registry) NewHistogram(spec Spec) (*Histogram, error) {
	return r.registerHistogram(spec, false)
}

// DeclareHistogram registers a histogram if it does not exist yet. The
// boolean reports whether this call created it.
func (r *Registry) DeclareHistogram(spec Spec) (bool, error) {
	h, err := r.registerHistogram(spec, true)
	if err != nil {
		return false, err
	}
	return h.created, nil
}

func (r *Registry) registerHistogram(spec Spec, declare bool) (*Histogram, error) {
	// "le" is how the histogram exposes its buckets.
	if err := spec.validate("le"); err != nil {
		return nil, err
	}
	unit, err := resolveDurationUnit(spec.Name, spec.DurationUnit)
	if err != nil {
		return nil, err
	}

	build := func() vec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        spec.Name,
			Help:        spec.Help,
			ConstLabels: prometheus.Labels(spec.ConstLabels),
			Buckets:     spec.Buckets,
		}, spec.Labels)
	}

	entry, created, err := r.register(kindHistogram, spec, unit, build, declare)
	if err != nil {
		return nil, err
	}
	return &Histogram{
		reg:     r,
		name:    spec.Name,
		entry:   entry,
		vec:     entry.vec.(*prometheus.HistogramVec),
		created: created,
	}, nil
}

// Histogram resolves a registered histogram by name.
func (r *Registry) Histogram(name string) (*Histogram, error) {
	entry, err := r.entry(name, kindHistogram)
	if err != nil {
		return nil, err
	}
	return &Histogram{
		reg:   r,
		name:  name,
		entry: entry,
		vec:   entry.vec.(*prometheus.HistogramVec),
	}, nil
}

// Name returns the metric name the handle addresses.
func (h *Histogram) Name() string {
	return h.name
}

// Observe records v for the series addressed by the label values.
func (h *Histogram) Observe(v float64, lvs ...string) error {
	if err := h.entry.checkArity(h.name, lvs); err != nil {
		return err
	}
	obs, err := h.vec.GetMetricWithLabelValues(lvs...)
	if err != nil {
		return err
	}
	obs.Observe(v)
	return nil
}

// ObserveDuration records d converted with the metric's duration unit.
func (h *Histogram) ObserveDuration(d time.Duration, lvs ...string) error {
	return h.Observe(h.entry.unit.Convert(d), lvs...)
}

// StartTimer starts a timer whose ObserveDuration records the elapsed
// time into this histogram series.
func (h *Histogram) StartTimer(lvs ...string) (*Timer, error) {
	if err := h.entry.checkArity(h.name, lvs); err != nil {
		return nil, err
	}
	return newTimer(func(d time.Duration) {
		_ = h.ObserveDuration(d, lvs...)
	}), nil
}

// Remove deletes the series addressed by the label values. It reports
// whether a series existed.
func (h *Histogram) Remove(lvs ...string) (bool, error) {
	if err := h.entry.checkArity(h.name, lvs); err != nil {
		return false, err
	}
	return h.vec.DeleteLabelValues(lvs...), nil
}

// Reset deletes every series of the histogram.
func (h *Histogram) Reset() {
	h.vec.Reset()
}

// Value reads back the current count, sum, and cumulative bucket counts
// of the series addressed by the label values.
func (h *Histogram) Value(lvs ...string) (HistogramValue, error) {
	if err := h.entry.checkArity(h.name, lvs); err != nil {
		return HistogramValue{}, err
	}
	m, err := h.reg.series(h.name, h.entry.labels, lvs)
	if err != nil {
		return HistogramValue{}, err
	}

	histogram := m.GetHistogram()
	value := HistogramValue{
		Count:   histogram.GetSampleCount(),
		Sum:     histogram.GetSampleSum(),
		Buckets: make(map[float64]uint64, len(histogram.GetBucket())),
	}
	for _, b := range histogram.GetBucket() {
		value.Buckets[b.GetUpperBound()] = b.GetCumulativeCount()
	}
	return value, nil
}
