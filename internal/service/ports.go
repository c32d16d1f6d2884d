package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
	"github.com/iliyamo/vehicle-seat-reservation/internal/queue"
)

// DefaultHoldTTL is how long a RESERVED booking blocks its seat.
const DefaultHoldTTL = 15 * time.Minute

// LayoutStore persists layouts and seats.  Implemented by
// repository.LayoutRepo.
type LayoutStore interface {
	CreateLayout(ctx context.Context, layout model.VehicleLayout, seats []model.Seat) error
	GetLayout(ctx context.Context, id string) (model.VehicleLayout, error)
	ActiveLayoutByVehicle(ctx context.Context, vehicleID string) (model.VehicleLayout, error)
	DeactivateLayout(ctx context.Context, id string) error
	SetSeatStatus(ctx context.Context, seatID string, status model.SeatStatus) error
}

// BookingStore persists seat bookings.  InsertHolds must be atomic and
// must return repository.ErrConflict when a second active booking for the
// same seat and trip would be created.  Implemented by
// repository.BookingRepo.
type BookingStore interface {
	ActiveBookingsForTrip(ctx context.Context, scheduleID string, departureDate time.Time) ([]model.SeatBooking, error)
	ListByGroup(ctx context.Context, groupID string) ([]model.SeatBooking, error)
	InsertHolds(ctx context.Context, holds []model.SeatBooking, now time.Time) error
	ConfirmGroup(ctx context.Context, groupID string, now time.Time) (int64, error)
	CancelGroup(ctx context.Context, groupID string, now time.Time) (int64, error)
}

// ExpiredHoldStore is the slice of BookingStore used by the sweeper.
type ExpiredHoldStore interface {
	CancelExpired(ctx context.Context, now time.Time) (int64, error)
}

// StatisticsStore is the read model used by the statistics aggregator.
type StatisticsStore interface {
	ConfirmedSeatCounts(ctx context.Context, vehicleID string, dr model.DateRange) ([]model.SeatCountRow, error)
}

// StatisticsCache caches aggregated statistics.  A miss returns ok=false.
type StatisticsCache interface {
	Get(ctx context.Context, key string) (stats model.SeatStatistics, ok bool, err error)
	Set(ctx context.Context, key string, stats model.SeatStatistics) error
}

// EventPublisher delivers booking lifecycle events to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// Clock is the time source used for hold expiry.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// IDGenerator produces identifiers for rows and booking groups.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator returns random (v4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, queue.BookingEvent) error { return nil }

// deps holds the collaborators shared by every service.
type deps struct {
	clock   Clock
	ids     IDGenerator
	events  EventPublisher
	log     logrus.FieldLogger
	holdTTL time.Duration
	cache   StatisticsCache
}

// Option configures a service.
type Option func(*deps)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(d *deps) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithIDGenerator overrides the identifier source.
func WithIDGenerator(g IDGenerator) Option {
	return func(d *deps) {
		if g != nil {
			d.ids = g
		}
	}
}

// WithEventPublisher sets where booking events are sent.
func WithEventPublisher(p EventPublisher) Option {
	return func(d *deps) {
		if p != nil {
			d.events = p
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(d *deps) {
		if l != nil {
			d.log = l
		}
	}
}

// WithHoldTTL overrides the default TTL for new holds.
func WithHoldTTL(ttl time.Duration) Option {
	return func(d *deps) {
		if ttl > 0 {
			d.holdTTL = ttl
		}
	}
}

// WithStatisticsCache enables caching of statistics results.
func WithStatisticsCache(c StatisticsCache) Option {
	return func(d *deps) {
		if c != nil {
			d.cache = c
		}
	}
}

func newDeps(opts []Option) deps {
	d := deps{
		clock:   SystemClock{},
		ids:     UUIDGenerator{},
		events:  noopPublisher{},
		log:     logrus.StandardLogger(),
		holdTTL: DefaultHoldTTL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// dateOnly truncates t to its calendar date in UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
