package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"subcycle/internal/service"

	"github.com/robfig/cron/v3"
)

// ErrRunInProgress is returned when a renewal run is requested while another is running.
var ErrRunInProgress = errors.New("renewal run already in progress")

// Scheduler runs the renewal processor on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	runner   service.RenewalRunner
	schedule string
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time

	running sync.Mutex
}

func New(runner service.RenewalRunner, schedule string, timeout time.Duration, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:     c,
		runner:   runner,
		schedule: schedule,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the renewal job and starts the cron scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runScheduled); err != nil {
		return fmt.Errorf("failed to schedule renewal job: %w", err)
	}
	s.logger.Info("scheduled renewal job", "schedule", s.schedule)
	s.cron.Start()
	return nil
}

// Stop stops the cron scheduler. The returned context is done once a running job finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runScheduled() {
	_, err := s.RunNow(context.Background())
	switch {
	case errors.Is(err, ErrRunInProgress):
		s.logger.Warn("renewal run already in progress, skipping")
	case err != nil:
		s.logger.Error("scheduled renewal run failed", "error", err)
	}
}

// RunNow processes renewals due at the current time.
func (s *Scheduler) RunNow(ctx context.Context) (*service.RenewalReport, error) {
	return s.ProcessDue(ctx, s.now())
}

// ProcessDue runs the processor under the configured timeout. Only one run
// executes at a time; a concurrent request gets ErrRunInProgress.
func (s *Scheduler) ProcessDue(ctx context.Context, now time.Time) (*service.RenewalReport, error) {
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	return s.runner.ProcessDue(ctx, now)
}

var _ service.RenewalRunner = (*Scheduler)(nil)
