package promex

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Gauge is a handle on one registered gauge metric.
type Gauge struct {
	reg   *Registry
	name  string
	entry *metricEntry
	vec   *prometheus.GaugeVec

	created bool
}

// NewGauge registers a new gauge. It fails with ErrAlreadyExists if the
// name is taken.
func (r *Registry) NewGauge(spec Spec) (*Gauge, error) {
	return r.registerGauge(spec, false)
}

// DeclareGauge registers a gauge if it does not exist yet. The boolean
// reports whether this call created it.
func (r *Registry) DeclareGauge(spec Spec) (bool, error) {
	g, err := r.registerGauge(spec, true)
	if err != nil {
		return false, err
	}
	return g.created, nil
}

func (r *Registry) registerGauge(spec Spec, declare bool) (*Gauge, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	build := func() vec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        spec.Name,
			Help:        spec.Help,
			ConstLabels: prometheus.Labels(spec.ConstLabels),
		}, spec.Labels)
	}

	entry, created, err := r.register(kindGauge, spec, UnitUnspecified, build, declare)
	if err != nil {
		return nil, err
	}
	return &Gauge{
		reg:     r,
		name:    spec.Name,
		entry:   entry,
		vec:     entry.vec.(*prometheus.GaugeVec),
		created: created,
	}, nil
}

// Gauge resolves a registered gauge by name.
func (r *Registry) Gauge(name string) (*Gauge, error) {
	entry, err := r.entry(name, kindGauge)
	if err != nil {
		return nil, err
	}
	return &Gauge{
		reg:   r,
		name:  name,
		entry: entry,
		vec:   entry.vec.(*prometheus.GaugeVec),
	}, nil
}

// Name returns the metric name the handle addresses.
func (g *Gauge) Name() string {
	return g.name
}

// with resolves the series for the label values.
func (g *Gauge) with(lvs []string) (prometheus.Gauge, error) {
	if err := g.entry.checkArity(g.name, lvs); err != nil {
		return nil, err
	}
	return g.vec.GetMetricWithLabelValues(lvs...)
}

// Set sets the series addressed by the label values to v.
func (g *Gauge) Set(v float64, lvs ...string) error {
	gauge, err := g.with(lvs)
	if err != nil {
		return err
	}
	gauge.Set(v)
	return nil
}

// Inc increments the series by one.
func (g *Gauge) Inc(lvs ...string) error {
	gauge, err := g.with(lvs)
	if err != nil {
		return err
	}
	gauge.Inc()
	return nil
}

// Dec decrements the series by one.
func (g *Gauge) Dec(lvs ...string) error {
	gauge, err := g.with(lvs)
	if err != nil {
		return err
	}
	gauge.Dec()
	return nil
}

// Add adds v to the series. Unlike counters, gauges accept negative
// deltas.
func (g *Gauge) Add(v float64, lvs ...string) error {
	gauge, err := g.with(lvs)
	if err != nil {
		return err
	}
	gauge.Add(v)
	return nil
}

// Sub subtracts v from the series.
func (g *Gauge) Sub(v float64, lvs ...string) error {
	return g.Add(-v, lvs...)
}

// SetToCurrentTime sets the series to the current Unix time in seconds.
func (g *Gauge) SetToCurrentTime(lvs ...string) error {
	gauge, err := g.with(lvs)
	if err != nil {
		return err
	}
	gauge.SetToCurrentTime()
	return nil
}

// Remove deletes the series addressed by the label values. It reports
// whether a series existed.
func (g *Gauge) Remove(lvs ...string) (bool, error) {
	if err := g.entry.checkArity(g.name, lvs); err != nil {
		return false, err
	}
	return g.vec.DeleteLabelValues(lvs...), nil
}

// Reset deletes every series of the gauge.
func (g *Gauge) Reset() {
	g.vec.Reset()
}

// Value reads back the current value of the series addressed by the
// label values.
func (g *Gauge) Value(lvs ...string) (float64, error) {
	if err := g.entry.checkArity(g.name, lvs); err != nil {
		return 0, err
	}
	m, err := g.reg.series(g.name, g.entry.labels, lvs)
	if err != nil {
		return 0, err
	}
	return m.GetGauge().GetValue(), nil
}
