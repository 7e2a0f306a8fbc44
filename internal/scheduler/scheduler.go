// Package scheduler runs the background sweep that promotes events whose
// start time has passed from upcoming to in-progress.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type EventSweeper interface {
	MarkDueInProgress(ctx context.Context, now time.Time) (int64, error)
}

type Scheduler struct {
	sched   gocron.Scheduler
	sweeper EventSweeper
}

func New(sweeper EventSweeper) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("gocron.NewScheduler -> %w", err)
	}

	return &Scheduler{sched: sched, sweeper: sweeper}, nil
}

// Start registers the status sweep and launches the scheduler's own
// goroutine. The sweep is idempotent, so overlapping or missed runs are
// harmless.
func (s *Scheduler) Start(interval time.Duration) error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.sweep),
	)
	if err != nil {
		return fmt.Errorf("s.sched.NewJob -> %w", err)
	}

	s.sched.Start()

	return nil
}

func (s *Scheduler) Stop() error {
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("s.sched.Shutdown -> %w", err)
	}

	return nil
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	promoted, err := s.sweeper.MarkDueInProgress(ctx, time.Now())
	if err != nil {
		zap.L().Error("event status sweep failed", zap.Error(err))
		return
	}

	if promoted > 0 {
		zap.L().Info("events promoted to in-progress", zap.Int64("count", promoted))
	}
}
