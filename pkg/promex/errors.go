package promex

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by registry and metric operations.
var (
	// ErrInvalidName indicates a metric name that does not match the
	// Prometheus data model.
	ErrInvalidName = errors.New("invalid metric name")

	// ErrInvalidHelp indicates missing help text.
	ErrInvalidHelp = errors.New("invalid metric help")

	// ErrInvalidLabels indicates a malformed or reserved label name.
	ErrInvalidLabels = errors.New("invalid metric labels")

	// ErrInvalidValue indicates a value the metric kind cannot accept,
	// such as a negative counter increment.
	ErrInvalidValue = errors.New("invalid metric value")

	// ErrUnknownMetric indicates a lookup for a name that was never
	// registered, or that was registered as a different kind.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrLabelArity indicates a label-value count that does not match the
	// declared label names.
	ErrLabelArity = errors.New("label value count mismatch")

	// ErrAlreadyExists indicates a registration under a name that is
	// already taken by an incompatible metric.
	ErrAlreadyExists = errors.New("metric already exists")

	// ErrNoSeries indicates a value read for a label set that has never
	// been observed.
	ErrNoSeries = errors.New("no series for label values")
)

// SpecError describes a spec validation failure with the offending field.
// It wraps one of the sentinel errors above so callers can branch with
// errors.Is while still logging the detail.
type SpecError struct {
	Field   string
	Message string
	Err     error
}

// Error returns a formatted message for the spec error.
func (e *SpecError) Error() string {
	return fmt.Sprintf("invalid spec field %q: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error.
func (e *SpecError) Unwrap() error {
	return e.Err
}

func specErrorf(sentinel error, field, format string, args ...any) error {
	return &SpecError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Err:     sentinel,
	}
}
