package promex

import (
	"fmt"
	"strings"
	"time"
)

// DurationUnit is the unit used to convert time.Duration observations
// before they are handed to the underlying collector.
type DurationUnit int

// Supported duration units, from finest to coarsest.
const (
	// UnitUnspecified lets the unit be inferred from the metric name
	// suffix, falling back to seconds.
	UnitUnspecified DurationUnit = iota
	UnitNanoseconds
	UnitMicroseconds
	UnitMilliseconds
	UnitSeconds
	UnitMinutes
	UnitHours
	UnitDays
)

// String returns the canonical unit name, which is also the conventional
// metric-name suffix for the unit.
func (u DurationUnit) String() string {
	switch u {
	case UnitNanoseconds:
		return "nanoseconds"
	case UnitMicroseconds:
		return "microseconds"
	case UnitMilliseconds:
		return "milliseconds"
	case UnitSeconds:
		return "seconds"
	case UnitMinutes:
		return "minutes"
	case UnitHours:
		return "hours"
	case UnitDays:
		return "days"
	default:
		return "unspecified"
	}
}

// Convert expresses d in the unit as a float64.
// UnitUnspecified converts as seconds.
func (u DurationUnit) Convert(d time.Duration) float64 {
	switch u {
	case UnitNanoseconds:
		return float64(d.Nanoseconds())
	case UnitMicroseconds:
		return float64(d) / float64(time.Microsecond)
	case UnitMilliseconds:
		return float64(d) / float64(time.Millisecond)
	case UnitMinutes:
		return d.Minutes()
	case UnitHours:
		return d.Hours()
	case UnitDays:
		return d.Hours() / 24
	default:
		return d.Seconds()
	}
}

// ParseDurationUnit parses a unit name as used in configuration files.
// Accepted values match DurationUnit.String.
func ParseDurationUnit(s string) (DurationUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return UnitUnspecified, nil
	case "nanoseconds":
		return UnitNanoseconds, nil
	case "microseconds":
		return UnitMicroseconds, nil
	case "milliseconds":
		return UnitMilliseconds, nil
	case "seconds":
		return UnitSeconds, nil
	case "minutes":
		return UnitMinutes, nil
	case "hours":
		return UnitHours, nil
	case "days":
		return UnitDays, nil
	default:
		return UnitUnspecified, fmt.Errorf("unknown duration unit %q", s)
	}
}

// InferDurationUnit derives the unit from the conventional metric-name
// suffix ("http_request_duration_seconds" infers seconds). Names without
// a unit suffix infer UnitUnspecified.
func InferDurationUnit(name string) DurationUnit {
	for _, u := range []DurationUnit{
		UnitNanoseconds,
		UnitMicroseconds,
		UnitMilliseconds,
		UnitSeconds,
		UnitMinutes,
		UnitHours,
		UnitDays,
	} {
		if strings.HasSuffix(name, "_"+u.String()) {
			return u
		}
	}
	return UnitUnspecified
}

// resolveDurationUnit reconciles the declared unit against the metric
// name suffix. An explicit unit that contradicts the suffix is rejected:
// exposing a sum in milliseconds under a "_seconds" name misleads every
// consumer of the scrape output.
func resolveDurationUnit(name string, declared DurationUnit) (DurationUnit, error) {
	inferred := InferDurationUnit(name)

	if declared == UnitUnspecified {
		if inferred != UnitUnspecified {
			return inferred, nil
		}
		return UnitSeconds, nil
	}

	if inferred != UnitUnspecified && inferred != declared {
		return UnitUnspecified, specErrorf(ErrInvalidName, "duration_unit",
			"unit %s conflicts with metric name suffix %q", declared, "_"+inferred.String())
	}

	return declared, nil
}
