// Package jobs runs the server's periodic background work: refreshing the
// event date cache and sweeping expired feed sessions.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultTimeout bounds a single job run.
const DefaultTimeout = 30 * time.Second

// Func is one unit of scheduled work.
type Func func(ctx context.Context) error

// Scheduler registers named jobs on cron schedules. Runs of the same job
// never overlap; a run still in progress when the next tick fires causes
// that tick to be skipped.
type Scheduler struct {
	cron    *cron.Cron
	log     *slog.Logger
	timeout time.Duration
}

// New constructs a stopped Scheduler. A timeout <= 0 uses DefaultTimeout.
func New(log *slog.Logger, timeout time.Duration) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DiscardLogger),
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		log:     log,
		timeout: timeout,
	}
}

// Every registers fn under name on a standard five-field cron expression or a
// descriptor such as "@every 1m".
func (s *Scheduler) Every(schedule, name string, fn Func) error {
	_, err := s.cron.AddFunc(schedule, func() { s.run(name, fn) })
	if err != nil {
		return fmt.Errorf("jobs.Scheduler.Every: %s: %w", name, err)
	}
	s.log.Info("job registered", "job", name, "schedule", schedule)
	return nil
}

// RunNow runs fn once, synchronously, with the same timeout and logging as
// a scheduled run. Used to warm caches at startup.
func (s *Scheduler) RunNow(name string, fn Func) {
	s.run(name, fn)
}

func (s *Scheduler) run(name string, fn Func) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		s.log.Warn("job failed",
			"job", name,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return
	}
	s.log.Debug("job finished", "job", name, "duration_ms", time.Since(start).Milliseconds())
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for running jobs to finish or for ctx
// to expire, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("jobs.Scheduler.Stop: %w", ctx.Err())
	}
}
