package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
	"github.com/iliyamo/vehicle-seat-reservation/internal/queue"
)

// DefaultSweepInterval is how often expired holds are reclaimed.
const DefaultSweepInterval = 2 * time.Minute

// Sweeper cancels expired holds, either on demand or on a cron schedule.
type Sweeper struct {
	store    ExpiredHoldStore
	interval time.Duration
	timeout  time.Duration
	cron     *cron.Cron
	deps
}

// NewSweeper returns a Sweeper that runs every interval once started.
func NewSweeper(store ExpiredHoldStore, interval time.Duration, opts ...Option) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{store: store, interval: interval, timeout: 30 * time.Second, deps: newDeps(opts)}
}

// CleanupExpiredReservations cancels every hold that expired at or before
// now.  Running it twice in a row reclaims nothing the second time.
func (s *Sweeper) CleanupExpiredReservations(ctx context.Context) (model.CleanupResult, error) {
	now := s.clock.Now()
	n, err := s.store.CancelExpired(ctx, now)
	if err != nil {
		return model.CleanupResult{}, fmt.Errorf("cleanup expired reservations: %w", err)
	}
	if n > 0 {
		s.log.WithField("reclaimed", n).Info("expired holds reclaimed")
		s.publish(ctx, queue.BookingEvent{
			Type:       queue.EventHoldsExpired,
			Count:      n,
			OccurredAt: now.UTC().Format(time.RFC3339),
		})
	}
	return model.CleanupResult{ReclaimedCount: n}, nil
}

// Start schedules the sweep.  Overlapping runs are skipped.
func (s *Sweeper) Start() error {
	if s.cron != nil {
		return nil
	}
	logger := cron.PrintfLogger(s.log)
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), s.runOnce); err != nil {
		return fmt.Errorf("schedule sweeper: %w", err)
	}
	c.Start()
	s.cron = c
	s.log.WithField("interval", s.interval.String()).Info("hold sweeper started")
	return nil
}

// Stop halts the schedule and returns a context that is done once any
// running sweep has finished.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	ctx := s.cron.Stop()
	s.cron = nil
	return ctx
}

func (s *Sweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.CleanupExpiredReservations(ctx); err != nil {
		s.log.WithError(err).Error("hold sweep failed")
	}
}
