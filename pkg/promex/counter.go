package promex

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Counter is a handle on one registered counter metric.
type Counter struct {
	reg   *Registry
	name  string
	entry *metricEntry
	vec   *prometheus.CounterVec

	created bool
}

// NewCounter registers a new counter. It fails with ErrAlreadyExists if
// the name is taken.
func (r *Registry) NewCounter(spec Spec) (*Counter, error) {
	return r.registerCounter(spec, false)
}

// DeclareCounter registers a counter if it does not exist yet. The
// boolean reports whether this call created it.
func (r *Registry) DeclareCounter(spec Spec) (bool, error) {
	c, err := r.registerCounter(spec, true)
	if err != nil {
		return false, err
	}
	return c.created, nil
}

func (r *Registry) registerCounter(spec Spec, declare bool) (*Counter, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	build := func() vec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        spec.Name,
			Help:        spec.Help,
			ConstLabels: prometheus.Labels(spec.ConstLabels),
		}, spec.Labels)
	}

	entry, created, err := r.register(kindCounter, spec, UnitUnspecified, build, declare)
	if err != nil {
		return nil, err
	}
	return &Counter{
		reg:     r,
		name:    spec.Name,
		entry:   entry,
		vec:     entry.vec.(*prometheus.CounterVec),
		created: created,
	}, nil
}

// Counter resolves a registered counter by name.
func (r *Registry) Counter(name string) (*Counter, error) {
	entry, err := r.entry(name, kindCounter)
	if err != nil {
		return nil, err
	}
	return &Counter{
		reg:   r,
		name:  name,
		entry: entry,
		vec:   entry.vec.(*prometheus.CounterVec),
	}, nil
}

// Name returns the metric name the handle addresses.
func (c *Counter) Name() string {
	return c.name
}

// Inc increments the series addressed by the label values by one.
func (c *Counter) Inc(lvs ...string) error {
	return c.Add(1, lvs...)
}

// Add increments the series by v. Counters only go up; a negative v is
// ErrInvalidValue (the client library would panic).
func (c *Counter) Add(v float64, lvs ...string) error {
	if v < 0 {
		return fmt.Errorf("%w: counter %q cannot decrease (add %v)", ErrInvalidValue, c.name, v)
	}
	if err := c.entry.checkArity(c.name, lvs); err != nil {
		return err
	}
	counter, err := c.vec.GetMetricWithLabelValues(lvs...)
	if err != nil {
		return err
	}
	counter.Add(v)
	return nil
}

// Remove deletes the series addressed by the label values. It reports
// whether a series existed.
func (c *Counter) Remove(lvs ...string) (bool, error) {
	if err := c.entry.checkArity(c.name, lvs); err != nil {
		return false, err
	}
	return c.vec.DeleteLabelValues(lvs...), nil
}

// Reset deletes every series of the counter.
func (c *Counter) Reset() {
	c.vec.Reset()
}

// Value reads back the current value of the series addressed by the
// label values.
func (c *Counter) Value(lvs ...string) (float64, error) {
	if err := c.entry.checkArity(c.name, lvs); err != nil {
		return 0, err
	}
	m, err := c.reg.series(c.name, c.entry.labels, lvs)
	if err != nil {
		return 0, err
	}
	return m.GetCounter().GetValue(), nil
}
