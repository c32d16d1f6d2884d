package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
	"github.com/iliyamo/vehicle-seat-reservation/internal/queue"
)

func TestCleanupExpiredReservationsOnlyTouchesExpiredHolds(t *testing.T) {
	f := newFixture(t)
	f.mustLayout(t)
	ctx := context.Background()

	confirmed := f.mustBook(t, "A1")
	if err := f.reservations.ConfirmBooking(ctx, confirmed.BookingGroupID); err != nil {
		t.Fatal(err)
	}
	f.mustBook(t, "B1")
	f.clock.Advance(10 * time.Minute)
	f.mustBook(t, "C1")
	f.clock.Advance(5 * time.Minute)

	res, err := f.sweeper.CleanupExpiredReservations(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if res.ReclaimedCount != 1 {
		t.Fatalf("expected 1 reclaimed, got %d", res.ReclaimedCount)
	}
	if got := f.store.statusOf("A1"); got[0] != model.BookingConfirmed {
		t.Fatalf("confirmed booking touched: %v", got)
	}
	if got := f.store.statusOf("B1"); got[0] != model.BookingCancelled {
		t.Fatalf("expired hold not reclaimed: %v", got)
	}
	if got := f.store.statusOf("C1"); got[0] != model.BookingReserved {
		t.Fatalf("live hold reclaimed: %v", got)
	}

	again, err := f.sweeper.CleanupExpiredReservations(ctx)
	if err != nil || again.ReclaimedCount != 0 {
		t.Fatalf("second run should reclaim nothing: %+v %v", again, err)
	}

	types := f.events.types()
	if types[len(types)-1] != queue.EventHoldsExpired {
		t.Fatalf("expected holds.expired event, got %v", types)
	}
}

type failingExpiredStore struct{}

func (failingExpiredStore) CancelExpired(context.Context, time.Time) (int64, error) {
	return 0, errors.New("db gone")
}

func TestCleanupPropagatesStoreErrors(t *testing.T) {
	s := NewSweeper(failingExpiredStore{}, 0, WithLogger(quietLogger()))
	if _, err := s.CleanupExpiredReservations(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if s.interval != DefaultSweepInterval {
		t.Fatalf("default interval not applied: %v", s.interval)
	}
}

func TestSweeperStartStop(t *testing.T) {
	f := newFixture(t)
	if err := f.sweeper.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.sweeper.Start(); err != nil {
		t.Fatalf("second start should be a no-op: %v", err)
	}
	select {
	case <-f.sweeper.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("stop did not finish")
	}
	select {
	case <-f.sweeper.Stop().Done():
	default:
		t.Fatal("stopping a stopped sweeper should return a done context")
	}
}
