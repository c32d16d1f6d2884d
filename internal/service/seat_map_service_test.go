package service

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
)

func seatView(t *testing.T, sm model.SeatMap, number string) model.SeatView {
	t.Helper()
	for _, fl := range sm.Floors {
		for _, v := range fl.Seats {
			if v.SeatNumber == number {
				return v
			}
		}
	}
	t.Fatalf("seat %s not in map", number)
	return model.SeatView{}
}

func TestSeatMapHeldSeatIsBookedButNotConfirmed(t *testing.T) {
	f := newFixture(t)
	f.mustLayout(t)
	ctx := context.Background()

	held := f.mustBook(t, "A1")
	paid := f.mustBook(t, "B1")
	if err := f.reservations.ConfirmBooking(ctx, paid.BookingGroupID); err != nil {
		t.Fatal(err)
	}

	sm, err := f.seatMaps.BuildSeatMap(ctx, testVehicle, testSchedule, testDate)
	if err != nil {
		t.Fatalf("seat map: %v", err)
	}
	if sm.TotalSeats != 8 || sm.ConfirmedSeats != 1 || sm.AvailableSeats != 7 || sm.HeldSeats != 1 {
		t.Fatalf("unexpected counts: total=%d confirmed=%d available=%d held=%d",
			sm.TotalSeats, sm.ConfirmedSeats, sm.AvailableSeats, sm.HeldSeats)
	}

	a1 := seatView(t, sm, "A1")
	if a1.Availability != model.SeatBooked || a1.BookingStatus != model.BookingReserved {
		t.Fatalf("held seat should render booked: %+v", a1)
	}
	if a1.HoldExpiresAt == nil || !a1.HoldExpiresAt.Equal(held.ReservedUntil) {
		t.Fatalf("hold expiry not exposed: %+v", a1)
	}
	if b1 := seatView(t, sm, "B1"); b1.Availability != model.SeatBooked || b1.BookingStatus != model.BookingConfirmed {
		t.Fatalf("confirmed seat should render booked: %+v", b1)
	}
	if c1 := seatView(t, sm, "C1"); c1.Availability != model.SeatAvailable || c1.PassengerName != "" {
		t.Fatalf("free seat should be available: %+v", c1)
	}
}

func TestSeatMapTreatsExpiredHoldAsAvailable(t *testing.T) {
	f := newFixture(t)
	f.mustLayout(t)
	f.mustBook(t, "A1")
	f.clock.Advance(DefaultHoldTTL + time.Minute)

	sm, err := f.seatMaps.BuildSeatMap(context.Background(), testVehicle, testSchedule, testDate)
	if err != nil {
		t.Fatal(err)
	}
	if v := seatView(t, sm, "A1"); v.Availability != model.SeatAvailable {
		t.Fatalf("expired hold should be available: %+v", v)
	}
	if sm.HeldSeats != 0 {
		t.Fatalf("held=%d", sm.HeldSeats)
	}
	// Reads never reclaim.
	if got := f.store.statusOf("A1"); got[0] != model.BookingReserved {
		t.Fatalf("seat map mutated booking: %v", got)
	}
}

func TestSeatMapOtherTripIsIndependent(t *testing.T) {
	f := newFixture(t)
	f.mustLayout(t)
	f.mustBook(t, "A1")

	sm, err := f.seatMaps.BuildSeatMap(context.Background(), testVehicle, testSchedule, testDate.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if v := seatView(t, sm, "A1"); v.Availability != model.SeatAvailable {
		t.Fatalf("booking leaked into another date: %+v", v)
	}
}

func TestSeatMapGridAndBlockedSeats(t *testing.T) {
	f := newFixture(t)
	l := f.mustLayout(t)
	ctx := context.Background()
	var d2 string
	for _, s := range l.Seats {
		if s.SeatNumber == "D2" {
			d2 = s.ID
		}
	}
	if err := f.layouts.SetSeatStatus(ctx, d2, model.SeatInactive); err != nil {
		t.Fatal(err)
	}

	sm, err := f.seatMaps.BuildSeatMap(ctx, testVehicle, testSchedule, testDate)
	if err != nil {
		t.Fatal(err)
	}
	if len(sm.Floors) != 1 {
		t.Fatalf("expected one floor, got %d", len(sm.Floors))
	}
	fl := sm.Floors[0]
	if fl.TotalRows != 2 || fl.SeatsPerRow != 4 {
		t.Fatalf("rows=%d perRow=%d", fl.TotalRows, fl.SeatsPerRow)
	}
	want := [][]string{{"A1", "B1", "C1", "D1"}, {"A2", "B2", "C2", "D2"}}
	for r := range want {
		for c := range want[r] {
			if fl.Grid[r][c] != want[r][c] {
				t.Fatalf("grid[%d][%d] = %q, want %q", r, c, fl.Grid[r][c], want[r][c])
			}
		}
	}
	if v := seatView(t, sm, "D2"); v.Availability != model.SeatBlocked {
		t.Fatalf("inactive seat should be blocked: %+v", v)
	}
	if sm.AvailableSeats != 8 {
		t.Fatalf("available=%d", sm.AvailableSeats)
	}
}

func TestSeatMapValidation(t *testing.T) {
	f := newFixture(t)
	if _, err := f.seatMaps.BuildSeatMap(context.Background(), "", testSchedule, testDate); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.seatMaps.BuildSeatMap(context.Background(), testVehicle, testSchedule, time.Time{}); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.seatMaps.BuildSeatMap(context.Background(), testVehicle, testSchedule, testDate); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
