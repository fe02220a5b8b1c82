package promex

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// timerClock is the clock used by StartTimer. Overridable for tests via
// SetTimerClock; production code never touches it.
var timerClock clockwork.Clock = clockwork.NewRealClock()

// SetTimerClock replaces the clock used by timers and returns a function
// restoring the previous one. Intended for tests that need
// deterministic elapsed times:
//
//	fake := clockwork.NewFakeClock()
//	defer promex.SetTimerClock(fake)()
func SetTimerClock(clock clockwork.Clock) (restore func()) {
	prev := timerClock
	timerClock = clock
	return func() { timerClock = prev }
}

// Timer measures the time between StartTimer and ObserveDuration and
// records it into the summary or histogram series it was started on.
type Timer struct {
	clock   clockwork.Clock
	start   time.Time
	observe func(time.Duration)
}

func newTimer(observe func(time.Duration)) *Timer {
	clock := timerClock
	return &Timer{
		clock:   clock,
		start:   clock.Now(),
		observe: observe,
	}
}

// ObserveDuration records the time elapsed since the timer started and
// returns it. It may be called multiple times; each call records the
// total elapsed time so far.
func (t *Timer) ObserveDuration() time.Duration {
	d := t.clock.Since(t.start)
	t.observe(d)
	return d
}
