package tasks

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler repeats fetch cycles with a fixed pause between the end of one
// cycle and the start of the next.
type Scheduler struct {
	runner   CycleRunner
	interval time.Duration
	logger   *slog.Logger
	trigger  chan struct{}
}

func NewScheduler(runner CycleRunner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Run blocks until ctx is cancelled. Cancellation is a normal stop and returns nil.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		s.runner.RunCycle(ctx)

		s.logger.Debug("Sleeping until next cycle", "interval", s.interval)

		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Scheduler stopped")
			return nil
		case <-s.trigger:
			timer.Stop()
			s.logger.Info("Cycle triggered manually")
		case <-timer.C:
		}
	}
}

// Trigger wakes a sleeping scheduler so the next cycle starts immediately.
// It reports false when a trigger is already pending.
func (s *Scheduler) Trigger() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}
