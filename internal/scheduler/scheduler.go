// Package scheduler runs the periodic maintenance jobs: the expired session
// sweep and the ACL rule refresh.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single run of any job.
const jobTimeout = 30 * time.Second

// Sweeper deletes expired sessions.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// Refresher reloads a cached rule set.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Options struct {
	SweepSchedule string
	// ACL is refreshed every ACLInterval. A nil ACL disables the job.
	ACL         Refresher
	ACLInterval time.Duration
}

type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	opts    Options
	logger  *slog.Logger
}

func New(sweeper Sweeper, opts Options, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		opts:    opts,
		logger:  logger,
	}
}

// Start registers the jobs and starts the cron runner. An invalid schedule
// is returned before anything runs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.opts.SweepSchedule, s.sweepSessions); err != nil {
		return fmt.Errorf("invalid session sweep schedule %q: %w", s.opts.SweepSchedule, err)
	}

	if s.opts.ACL != nil {
		if s.opts.ACLInterval <= 0 {
			return fmt.Errorf("ACL refresh interval must be positive, got %s", s.opts.ACLInterval)
		}
		s.cron.Schedule(cron.Every(s.opts.ACLInterval), cron.FuncJob(s.refreshACL))
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) sweepSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.logger.Error("failed to sweep sessions", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("swept expired sessions", "count", n)
	}
}

func (s *Scheduler) refreshACL() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.opts.ACL.Refresh(ctx); err != nil {
		s.logger.Error("failed to refresh ACL rules", "error", err)
	}
}
