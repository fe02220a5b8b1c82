package push

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler pushes metrics to the gateway on a cron schedule.
// A delivery that is still running when the next tick fires is not
// overlapped; the tick is skipped and logged.
type Scheduler struct {
	pusher  *Pusher
	cron    *cron.Cron
	spec    string
	timeout time.Duration
	running chan struct{}
}

// NewScheduler creates a scheduler that calls pusher.Push according to
// spec. The spec uses the standard five-field cron syntax and also
// accepts descriptors such as "@every 15s". timeout bounds each push;
// zero means one minute.
func NewScheduler(pusher *Pusher, spec string, timeout time.Duration) (*Scheduler, error) {
	if timeout <= 0 {
		timeout = time.Minute
	}

	s := &Scheduler{
		pusher:  pusher,
		cron:    cron.New(),
		spec:    spec,
		timeout: timeout,
		running: make(chan struct{}, 1),
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins scheduling pushes. It returns immediately.
func (s *Scheduler) Start() {
	slog.Info("push scheduler started", slog.String("schedule", s.spec))
	s.cron.Start()
}

// Stop halts the schedule and waits for an in-flight push to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	// Drain the slot so we return only after a running push completes.
	s.running <- struct{}{}
	<-s.running
	slog.Info("push scheduler stopped")
}

func (s *Scheduler) run() {
	select {
	case s.running <- struct{}{}:
	default:
		slog.Warn("previous push still in flight, skipping tick")
		return
	}
	defer func() { <-s.running }()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.pusher.Push(ctx); err != nil {
		slog.Error("scheduled push failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.Any("error", err))
		return
	}
	slog.Debug("scheduled push completed",
		slog.Duration("elapsed", time.Since(start)))
}
