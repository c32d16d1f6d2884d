package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
	"github.com/iliyamo/vehicle-seat-reservation/internal/queue"
	"github.com/iliyamo/vehicle-seat-reservation/internal/repository"
)

// memStore is an in-memory LayoutStore and BookingStore.  InsertHolds
// enforces one RESERVED or CONFIRMED booking per (seat, schedule, date)
// the way the unique index does, and is all-or-nothing.
type memStore struct {
	mu       sync.Mutex
	layouts  map[string]model.VehicleLayout
	order    []string
	bookings []model.SeatBooking

	// beforeInsert runs (unlocked) at the start of InsertHolds.
	beforeInsert func()
	// failGroupList makes ListByGroup fail.
	failGroupList error
}

func newMemStore() *memStore {
	return &memStore{layouts: make(map[string]model.VehicleLayout)}
}

func (m *memStore) CreateLayout(_ context.Context, layout model.VehicleLayout, seats []model.Seat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.layouts[layout.ID]; ok {
		return repository.ErrConflict
	}
	seen := make(map[model.SeatKey]struct{})
	for _, s := range seats {
		if _, dup := seen[s.Key()]; dup {
			return repository.ErrConflict
		}
		seen[s.Key()] = struct{}{}
	}
	if layout.IsActive {
		for id, l := range m.layouts {
			if l.VehicleID == layout.VehicleID {
				l.IsActive = false
				m.layouts[id] = l
			}
		}
	}
	layout.Seats = append([]model.Seat(nil), seats...)
	m.layouts[layout.ID] = layout
	m.order = append(m.order, layout.ID)
	return nil
}

func (m *memStore) GetLayout(_ context.Context, id string) (model.VehicleLayout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.layouts[id]
	if !ok {
		return model.VehicleLayout{}, repository.ErrNotFound
	}
	l.Seats = append([]model.Seat(nil), l.Seats...)
	return l, nil
}

func (m *memStore) ActiveLayoutByVehicle(_ context.Context, vehicleID string) (model.VehicleLayout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		l := m.layouts[m.order[i]]
		if l.VehicleID == vehicleID && l.IsActive {
			l.Seats = append([]model.Seat(nil), l.Seats...)
			return l, nil
		}
	}
	return model.VehicleLayout{}, repository.ErrNotFound
}

func (m *memStore) DeactivateLayout(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.layouts[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.IsActive = false
	m.layouts[id] = l
	return nil
}

func (m *memStore) SetSeatStatus(_ context.Context, seatID string, status model.SeatStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, l := range m.layouts {
		for i := range l.Seats {
			if l.Seats[i].ID == seatID {
				l.Seats[i].Status = status
				m.layouts[id] = l
				return nil
			}
		}
	}
	return repository.ErrNotFound
}

func (m *memStore) ActiveBookingsForTrip(_ context.Context, scheduleID string, date time.Time) ([]model.SeatBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SeatBooking
	for _, b := range m.bookings {
		if b.ScheduleID == scheduleID && b.DepartureDate.Equal(date) &&
			(b.Status == model.BookingReserved || b.Status == model.BookingConfirmed) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) ListByGroup(_ context.Context, groupID string) ([]model.SeatBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGroupList != nil {
		return nil, m.failGroupList
	}
	var out []model.SeatBooking
	for _, b := range m.bookings {
		if b.BookingGroupID == groupID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (m *memStore) InsertHolds(_ context.Context, holds []model.SeatBooking, now time.Time) error {
	if m.beforeInsert != nil {
		m.beforeInsert()
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	sameSlot := func(b, h model.SeatBooking) bool {
		return b.VehicleSeatID == h.VehicleSeatID && b.ScheduleID == h.ScheduleID && b.DepartureDate.Equal(h.DepartureDate)
	}
	var reclaim []int
	for _, h := range holds {
		for i, b := range m.bookings {
			if !sameSlot(b, h) {
				continue
			}
			switch {
			case b.Status == model.BookingConfirmed,
				b.Status == model.BookingReserved && b.ReservedUntil.After(now):
				return fmt.Errorf("seat %s: %w", h.SeatNumber, repository.ErrConflict)
			case b.Status == model.BookingReserved:
				reclaim = append(reclaim, i)
			}
		}
	}
	for _, i := range reclaim {
		m.bookings[i].Status = model.BookingCancelled
		m.bookings[i].UpdatedAt = now
	}
	m.bookings = append(m.bookings, holds...)
	return nil
}

func (m *memStore) ConfirmGroup(_ context.Context, groupID string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i, b := range m.bookings {
		if b.BookingGroupID == groupID && b.Status == model.BookingReserved && b.ReservedUntil.After(now) {
			m.bookings[i].Status = model.BookingConfirmed
			m.bookings[i].ReservedUntil = nil
			m.bookings[i].UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (m *memStore) CancelGroup(_ context.Context, groupID string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i, b := range m.bookings {
		if b.BookingGroupID == groupID && (b.Status == model.BookingReserved || b.Status == model.BookingConfirmed) {
			m.bookings[i].Status = model.BookingCancelled
			m.bookings[i].UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (m *memStore) CancelExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i, b := range m.bookings {
		if b.Status == model.BookingReserved && !b.ReservedUntil.After(now) {
			m.bookings[i].Status = model.BookingCancelled
			m.bookings[i].UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (m *memStore) ConfirmedSeatCounts(_ context.Context, vehicleID string, dr model.DateRange) ([]model.SeatCountRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seats := make(map[string]model.Seat)
	for _, l := range m.layouts {
		if l.VehicleID != vehicleID {
			continue
		}
		for _, s := range l.Seats {
			seats[s.ID] = s
		}
	}
	type key struct {
		t model.SeatType
		p model.SeatPosition
		f int
	}
	counts := make(map[key]int)
	for _, b := range m.bookings {
		s, ok := seats[b.VehicleSeatID]
		if !ok || b.Status != model.BookingConfirmed {
			continue
		}
		if b.DepartureDate.Before(dr.From) || b.DepartureDate.After(dr.To) {
			continue
		}
		counts[key{s.SeatType, s.Position, s.Floor}]++
	}
	out := make([]model.SeatCountRow, 0, len(counts))
	for k, n := range counts {
		out = append(out, model.SeatCountRow{SeatType: k.t, Position: k.p, Floor: k.f, Count: n})
	}
	return out, nil
}

// statusOf returns the statuses of all bookings of a seat number.
func (m *memStore) statusOf(seatNumber string) []model.BookingStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.BookingStatus
	for _, b := range m.bookings {
		if b.SeatNumber == seatNumber {
			out = append(out, b.Status)
		}
	}
	return out
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}
