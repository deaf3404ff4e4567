package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper is the slice of the rental service the scheduler drives.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Scheduler runs the expiration sweep on a fixed cron period. Failures
// in one cycle are logged and swallowed; stale rentals remain matched by
// the sweep guard, so the next cycle retries naturally.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	log     *zap.Logger
}

func NewScheduler(sweeper Sweeper, spec string, log *zap.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron:    c,
		sweeper: sweeper,
		log:     log.With(zap.String("component", "scheduler")),
	}

	if _, err := c.AddFunc(spec, s.runSweep); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) runSweep() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Expiration sweep panicked", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		s.log.Error("Expiration sweep failed", zap.Error(err))
		return
	}

	if count > 0 {
		s.log.Info("Expiration sweep completed", zap.Int64("expired", count))
	}
}

// Start begins periodic sweeping.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Expiration scheduler started")
}

// Stop halts scheduling and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Expiration scheduler stopped")
}
