package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
	"github.com/iliyamo/vehicle-seat-reservation/internal/pricing"
)

const (
	testVehicle  = "bus-1"
	testSchedule = "sched-morning"
)

var testDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

type fixture struct {
	store        *memStore
	clock        *fakeClock
	events       *recordingPublisher
	layouts      *LayoutService
	reservations *ReservationService
	seatMaps     *SeatMapService
	sweeper      *Sweeper
	stats        *StatisticsService
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: newMemStore(), clock: newFakeClock(), events: &recordingPublisher{}}
	opts := []Option{
		WithClock(f.clock),
		WithIDGenerator(&seqIDs{}),
		WithEventPublisher(f.events),
		WithLogger(quietLogger()),
	}
	f.layouts = NewLayoutService(f.store, pricing.NewCalculator(100), opts...)
	f.reservations = NewReservationService(f.store, f.store, opts...)
	f.seatMaps = NewSeatMapService(f.store, f.store, opts...)
	f.sweeper = NewSweeper(f.store, time.Minute, opts...)
	f.stats = NewStatisticsService(f.store, opts...)
	return f
}

// twoRowSpec is a single-floor layout with two rows of four seats:
// A1..D1 standard and A2..D2 VIP.
func twoRowSpec(vehicleID string) model.LayoutSpec {
	row := func(n int, t model.SeatType) []model.SeatSpec {
		var out []model.SeatSpec
		for _, col := range []string{"A", "B", "C", "D"} {
			out = append(out, model.SeatSpec{
				SeatNumber: col + string(rune('0'+n)),
				Row:        n,
				Column:     col,
				SeatType:   t,
			})
		}
		return out
	}
	seats := append(row(1, model.SeatTypeStandard), row(2, model.SeatTypeVIP)...)
	return model.LayoutSpec{
		VehicleID:   vehicleID,
		Name:        "Coach 2+2",
		VehicleType: "BUS",
		TotalSeats:  len(seats),
		FloorCount:  1,
		Floors:      []model.FloorSpec{{Floor: 1, Seats: seats}},
	}
}

func (f *fixture) mustLayout(t *testing.T) model.VehicleLayout {
	t.Helper()
	l, err := f.layouts.CreateLayout(context.Background(), twoRowSpec(testVehicle))
	if err != nil {
		t.Fatalf("create layout: %v", err)
	}
	return l
}

func bookingRequest(seats ...string) model.BookingRequest {
	req := model.BookingRequest{
		VehicleID:     testVehicle,
		ScheduleID:    testSchedule,
		DepartureDate: testDate,
		DepartureTime: "08:30",
	}
	for _, s := range seats {
		req.Selections = append(req.Selections, model.SeatSelection{
			SeatNumber: s,
			Floor:      1,
			Passenger:  model.Passenger{Name: "Passenger " + s, Phone: "0800"},
		})
	}
	return req
}

func (f *fixture) mustBook(t *testing.T, seats ...string) model.BookingResult {
	t.Helper()
	res, err := f.reservations.BookSeats(context.Background(), bookingRequest(seats...))
	if err != nil {
		t.Fatalf("book %v: %v", seats, err)
	}
	return res
}
