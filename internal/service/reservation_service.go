package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
	"github.com/iliyamo/vehicle-seat-reservation/internal/queue"
	"github.com/iliyamo/vehicle-seat-reservation/internal/repository"
)

// ReservationService holds, confirms and cancels seats.
//
// Double booking is prevented by the store: InsertHolds runs in one
// transaction against a unique index that admits a single active booking
// per seat and trip.  The availability check done here only gives early,
// descriptive errors; it is not what makes concurrent requests safe.
type ReservationService struct {
	layouts  LayoutStore
	bookings BookingStore
	deps
}

// NewReservationService wires a ReservationService.
func NewReservationService(layouts LayoutStore, bookings BookingStore, opts ...Option) *ReservationService {
	return &ReservationService{layouts: layouts, bookings: bookings, deps: newDeps(opts)}
}

// BookSeats places a temporary hold on every selected seat for one trip.
// Either all seats are held under a fresh booking group or none are.
func (s *ReservationService) BookSeats(ctx context.Context, req model.BookingRequest) (model.BookingResult, error) {
	if err := validateBookingRequest(&req); err != nil {
		return model.BookingResult{}, err
	}
	date := dateOnly(req.DepartureDate)
	groupID := s.ids.NewID()
	now := s.clock.Now()
	var owner string
	if c, ok := callerFrom(ctx); ok {
		owner = c.ID
	}

	layout, err := s.layouts.ActiveLayoutByVehicle(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.BookingResult{}, NotFoundError{Resource: "active layout for vehicle", ID: req.VehicleID, Err: err}
		}
		return model.BookingResult{}, fmt.Errorf("load layout: %w", err)
	}
	seatByKey := make(map[model.SeatKey]model.Seat, len(layout.Seats))
	for _, seat := range layout.Seats {
		if seat.Status == model.SeatActive {
			seatByKey[seat.Key()] = seat
		}
	}

	resolved := make([]model.Seat, len(req.Selections))
	for i, sel := range req.Selections {
		seat, ok := seatByKey[model.SeatKey{SeatNumber: sel.SeatNumber, Floor: sel.Floor}]
		if !ok {
			return model.BookingResult{}, NotFoundError{Resource: "seat", ID: fmt.Sprintf("%s (floor %d)", sel.SeatNumber, sel.Floor)}
		}
		resolved[i] = seat
	}

	existing, err := s.bookings.ActiveBookingsForTrip(ctx, req.ScheduleID, date)
	if err != nil {
		return model.BookingResult{}, fmt.Errorf("load bookings: %w", err)
	}
	taken := make(map[string]struct{}, len(existing))
	for _, b := range existing {
		if b.IsActive(now) {
			taken[b.VehicleSeatID] = struct{}{}
		}
	}
	var unavailable []string
	for _, seat := range resolved {
		if _, ok := taken[seat.ID]; ok {
			unavailable = append(unavailable, seat.SeatNumber)
		}
	}
	if len(unavailable) > 0 {
		return model.BookingResult{}, ConflictError{Resource: "seat", Msg: "seats not available", Seats: unavailable}
	}

	until := now.Add(s.holdTTL)
	holds := make([]model.SeatBooking, len(resolved))
	for i, seat := range resolved {
		p := req.Selections[i].Passenger
		holds[i] = model.SeatBooking{
			ID:                s.ids.NewID(),
			ScheduleID:        req.ScheduleID,
			VehicleSeatID:     seat.ID,
			BookingGroupID:    groupID,
			OwnerID:           owner,
			PassengerName:     p.Name,
			PassengerPhone:    p.Phone,
			PassengerIDNumber: p.IDNumber,
			PassengerAge:      p.Age,
			PassengerGender:   p.Gender,
			Status:            model.BookingReserved,
			DepartureDate:     date,
			DepartureTime:     req.DepartureTime,
			ReservedUntil:     &until,
			SpecialRequests:   p.SpecialRequests,
			CreatedAt:         now,
			UpdatedAt:         now,
			SeatNumber:        seat.SeatNumber,
			Floor:             seat.Floor,
		}
	}

	if err := s.bookings.InsertHolds(ctx, holds, now); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.BookingResult{}, ConflictError{Resource: "seat", Msg: "seats no longer available", Seats: seatNumbers(resolved), Err: err}
		}
		return model.BookingResult{}, fmt.Errorf("insert holds: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_group_id": groupID,
		"schedule_id":      req.ScheduleID,
		"departure_date":   date.Format(model.DateLayout),
		"seats":            len(holds),
	}).Info("seats held")

	return model.BookingResult{BookingGroupID: groupID, ReservedUntil: until, Seats: holds}, nil
}

func validateBookingRequest(req *model.BookingRequest) error {
	switch {
	case strings.TrimSpace(req.VehicleID) == "":
		return ValidationError{Field: "vehicle_id", Msg: "required"}
	case strings.TrimSpace(req.ScheduleID) == "":
		return ValidationError{Field: "schedule_id", Msg: "required"}
	case req.DepartureDate.IsZero():
		return ValidationError{Field: "departure_date", Msg: "required"}
	case len(req.Selections) == 0:
		return ValidationError{Field: "selections", Msg: "at least one seat is required"}
	}
	seen := make(map[model.SeatKey]struct{}, len(req.Selections))
	for i := range req.Selections {
		sel := &req.Selections[i]
		if sel.Floor == 0 {
			sel.Floor = 1
		}
		if strings.TrimSpace(sel.SeatNumber) == "" {
			return ValidationError{Field: "seat_number", Msg: "required"}
		}
		if strings.TrimSpace(sel.Passenger.Name) == "" {
			return ValidationError{Field: "passenger.name", Msg: fmt.Sprintf("required for seat %s", sel.SeatNumber)}
		}
		if sel.Passenger.Age != nil && *sel.Passenger.Age < 0 {
			return ValidationError{Field: "passenger.age", Msg: "must not be negative"}
		}
		k := model.SeatKey{SeatNumber: sel.SeatNumber, Floor: sel.Floor}
		if _, dup := seen[k]; dup {
			return ValidationError{Field: "selections", Msg: fmt.Sprintf("seat %s on floor %d selected twice", sel.SeatNumber, sel.Floor)}
		}
		seen[k] = struct{}{}
	}
	return nil
}

// ConfirmBooking turns every unexpired hold of the group into a confirmed
// booking.  Confirming an already confirmed group is a no-op.  A group
// whose holds expired yields a ConflictError.
func (s *ReservationService) ConfirmBooking(ctx context.Context, groupID string) error {
	if strings.TrimSpace(groupID) == "" {
		return ValidationError{Field: "booking_group_id", Msg: "required"}
	}
	now := s.clock.Now()
	n, err := s.bookings.ConfirmGroup(ctx, groupID, now)
	if err != nil {
		return fmt.Errorf("confirm booking: %w", err)
	}

	rows, err := s.bookings.ListByGroup(ctx, groupID)
	if n > 0 {
		if err != nil {
			s.log.WithError(err).WithField("booking_group_id", groupID).Warn("load confirmed group for event")
		}
		s.log.WithFields(logrus.Fields{"booking_group_id": groupID, "seats": n}).Info("booking confirmed")
		s.publish(ctx, groupEvent(queue.EventBookingConfirmed, groupID, rows, n, now))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load booking group: %w", err)
	}
	if len(rows) == 0 {
		return NotFoundError{Resource: "booking group", ID: groupID}
	}
	var reserved, confirmed int
	for _, b := range rows {
		switch b.Status {
		case model.BookingReserved:
			reserved++
		case model.BookingConfirmed:
			confirmed++
		}
	}
	switch {
	case reserved > 0:
		return ConflictError{Resource: "booking", Msg: "hold expired"}
	case confirmed > 0:
		return nil
	default:
		return ConflictError{Resource: "booking", Msg: "booking group is cancelled"}
	}
}

// CancelBooking releases every held or confirmed seat of the group.
// Cancelling an already cancelled group is a no-op.  A customer may only
// cancel groups it created.
func (s *ReservationService) CancelBooking(ctx context.Context, groupID string) error {
	if strings.TrimSpace(groupID) == "" {
		return ValidationError{Field: "booking_group_id", Msg: "required"}
	}
	rows, err := s.bookings.ListByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("load booking group: %w", err)
	}
	if len(rows) == 0 {
		return NotFoundError{Resource: "booking group", ID: groupID}
	}
	if err := authorizeGroup(ctx, groupID, rows); err != nil {
		return err
	}

	now := s.clock.Now()
	n, err := s.bookings.CancelGroup(ctx, groupID, now)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	if n > 0 {
		s.log.WithFields(logrus.Fields{"booking_group_id": groupID, "seats": n}).Info("booking cancelled")
		s.publish(ctx, groupEvent(queue.EventBookingCancelled, groupID, rows, n, now))
	}
	return nil
}

// GetBookingGroup returns every booking of a group.  A customer only sees
// groups it created.
func (s *ReservationService) GetBookingGroup(ctx context.Context, groupID string) ([]model.SeatBooking, error) {
	rows, err := s.bookings.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load booking group: %w", err)
	}
	if len(rows) == 0 {
		return nil, NotFoundError{Resource: "booking group", ID: groupID}
	}
	if err := authorizeGroup(ctx, groupID, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// publish sends ev and only logs failures; event delivery never changes
// the outcome of a booking operation.
func (d deps) publish(ctx context.Context, ev queue.BookingEvent) {
	if err := d.events.Publish(ctx, ev); err != nil {
		d.log.WithError(err).WithField("event", ev.Type).Warn("publish booking event failed")
	}
}

func groupEvent(t queue.EventType, groupID string, rows []model.SeatBooking, n int64, now time.Time) queue.BookingEvent {
	ev := queue.BookingEvent{
		Type:           t,
		BookingGroupID: groupID,
		Count:          n,
		OccurredAt:     now.UTC().Format(time.RFC3339),
	}
	for _, b := range rows {
		ev.ScheduleID = b.ScheduleID
		ev.DepartureDate = b.DepartureDate.Format(model.DateLayout)
		ev.SeatNumbers = append(ev.SeatNumbers, b.SeatNumber)
	}
	return ev
}

func seatNumbers(seats []model.Seat) []string {
	out := make([]string, len(seats))
	for i, s := range seats {
		out[i] = s.SeatNumber
	}
	return out
}
