// Package scheduler runs a job on a fixed wall-clock cadence.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Job is one scheduled run
type Job func(ctx context.Context) error

// Scheduler runs a job at every multiple of the interval. A run that is still
// in flight when the next tick is due makes that tick be skipped.
type Scheduler struct {
	interval time.Duration
	job      Job
	logger   *zap.Logger
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
}

// New creates a scheduler
func New(interval time.Duration, job Job, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		job:      job,
		logger:   logger,
		now:      time.Now,
		after:    time.After,
	}
}

// Next returns the first interval boundary strictly after t
func Next(t time.Time, interval time.Duration) time.Time {
	next := t.Truncate(interval)
	if !next.After(t) {
		next = next.Add(interval)
	}
	return next
}

// Run blocks until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))

	for {
		due := Next(s.now(), s.interval)
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case <-s.after(due.Sub(s.now())):
		}

		started := s.now()
		s.logger.Info("Running scheduled job", zap.Time("due", due))
		if err := s.job(ctx); err != nil {
			s.logger.Error("Scheduled job failed", zap.Error(err))
		}

		if elapsed := s.now().Sub(started); elapsed > s.interval {
			s.logger.Warn("Scheduled job overran its interval",
				zap.Duration("elapsed", elapsed),
				zap.Duration("interval", s.interval),
			)
		}
	}
}
