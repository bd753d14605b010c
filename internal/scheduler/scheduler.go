// Package scheduler runs the dispatcher's periodic sweeps on a cron runner.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
)

// Job is a named unit of periodic work. The context is cancelled when the
// scheduler stops.
type Job func(ctx context.Context) error

// Scheduler wraps robfig/cron with interval helpers and stop draining.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger logging.Logger
}

// New builds an idle scheduler; jobs run only after Start.
func New(logger logging.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(),
		ctx:    ctx,
		cancel: cancel,
		logger: logger.Named("scheduler"),
	}
}

// ScheduleInterval registers a job to run every interval. Failures are logged
// and do not unschedule the job.
func (s *Scheduler) ScheduleInterval(name string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return errors.InvalidParam("interval must be positive")
	}
	spec := fmt.Sprintf("@every %s", interval)
	_, err := s.cron.AddFunc(spec, func() {
		started := time.Now()
		if err := job(s.ctx); err != nil {
			s.logger.Error("scheduled job failed",
				logging.String("job", name),
				logging.Duration("elapsed", time.Since(started)),
				logging.Err(err),
			)
			return
		}
		s.logger.Debug("scheduled job done",
			logging.String("job", name),
			logging.Duration("elapsed", time.Since(started)),
		)
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to schedule job")
	}
	s.logger.Info("job scheduled",
		logging.String("job", name),
		logging.Duration("interval", interval),
	)
	return nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop cancels running jobs and waits for in-flight runs to drain.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
