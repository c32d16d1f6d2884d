package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
	"github.com/iliyamo/vehicle-seat-reservation/internal/repository"
)

// SeatMapService renders per-trip availability.  It only reads; expired
// holds are treated as free without being written back.
type SeatMapService struct {
	layouts  LayoutStore
	bookings BookingStore
	deps
}

// NewSeatMapService wires a SeatMapService.
func NewSeatMapService(layouts LayoutStore, bookings BookingStore, opts ...Option) *SeatMapService {
	return &SeatMapService{layouts: layouts, bookings: bookings, deps: newDeps(opts)}
}

// BuildSeatMap returns the seat map of a vehicle's active layout for one
// trip.
func (s *SeatMapService) BuildSeatMap(ctx context.Context, vehicleID, scheduleID string, departureDate time.Time) (model.SeatMap, error) {
	if strings.TrimSpace(vehicleID) == "" {
		return model.SeatMap{}, ValidationError{Field: "vehicle_id", Msg: "required"}
	}
	if strings.TrimSpace(scheduleID) == "" {
		return model.SeatMap{}, ValidationError{Field: "schedule_id", Msg: "required"}
	}
	if departureDate.IsZero() {
		return model.SeatMap{}, ValidationError{Field: "date", Msg: "required"}
	}
	date := dateOnly(departureDate)

	layout, err := s.layouts.ActiveLayoutByVehicle(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.SeatMap{}, NotFoundError{Resource: "active layout for vehicle", ID: vehicleID, Err: err}
		}
		return model.SeatMap{}, fmt.Errorf("load layout: %w", err)
	}
	bookings, err := s.bookings.ActiveBookingsForTrip(ctx, scheduleID, date)
	if err != nil {
		return model.SeatMap{}, fmt.Errorf("load bookings: %w", err)
	}

	now := s.clock.Now()
	bySeat := make(map[string]model.SeatBooking, len(bookings))
	for _, b := range bookings {
		if !b.IsActive(now) {
			continue
		}
		if prev, ok := bySeat[b.VehicleSeatID]; ok && prev.Status == model.BookingConfirmed {
			continue
		}
		bySeat[b.VehicleSeatID] = b
	}

	seats := append([]model.Seat(nil), layout.Seats...)
	sortSeats(seats)

	sm := model.SeatMap{
		VehicleID:     vehicleID,
		ScheduleID:    scheduleID,
		DepartureDate: date.Format(model.DateLayout),
		LayoutID:      layout.ID,
		LayoutName:    layout.Name,
		TotalSeats:    len(seats),
		GeneratedAt:   now,
	}

	var current *model.FloorMap
	for _, seat := range seats {
		if current == nil || current.Floor != seat.Floor {
			sm.Floors = append(sm.Floors, model.FloorMap{Floor: seat.Floor})
			current = &sm.Floors[len(sm.Floors)-1]
		}
		view := model.SeatView{
			SeatID:       seat.ID,
			SeatNumber:   seat.SeatNumber,
			Row:          seat.Row,
			Column:       seat.Column,
			SeatType:     seat.SeatType,
			Position:     seat.Position,
			Price:        seat.Price,
			Availability: model.SeatAvailable,
		}
		if b, ok := bySeat[seat.ID]; ok {
			view.Availability = model.SeatBooked
			view.BookingStatus = b.Status
			view.PassengerName = b.PassengerName
			view.BookingGroupID = b.BookingGroupID
			if b.Status == model.BookingConfirmed {
				sm.ConfirmedSeats++
			} else {
				sm.HeldSeats++
				view.HoldExpiresAt = b.ReservedUntil
			}
		} else if seat.Status == model.SeatInactive {
			view.Availability = model.SeatBlocked
		}
		current.Seats = append(current.Seats, view)
	}
	for i := range sm.Floors {
		fillGrid(&sm.Floors[i])
	}
	sm.AvailableSeats = sm.TotalSeats - sm.ConfirmedSeats
	return sm, nil
}

// fillGrid derives row counts and the row-major grid from the floor's
// seats, which must already be ordered by row and column.
func fillGrid(fm *model.FloorMap) {
	if len(fm.Seats) == 0 {
		return
	}
	width := 0
	rowOrder := make([]int, 0)
	rowIndex := make(map[int]int)
	for _, v := range fm.Seats {
		if c := model.ColumnIndex(v.Column) + 1; c > width {
			width = c
		}
		if _, ok := rowIndex[v.Row]; !ok {
			rowIndex[v.Row] = len(rowOrder)
			rowOrder = append(rowOrder, v.Row)
		}
	}
	fm.TotalRows = len(rowOrder)
	for _, v := range fm.Seats {
		if v.Row == rowOrder[0] {
			fm.SeatsPerRow++
		}
	}
	fm.Grid = make([][]string, len(rowOrder))
	for i := range fm.Grid {
		fm.Grid[i] = make([]string, width)
	}
	for _, v := range fm.Seats {
		if c := model.ColumnIndex(v.Column); c >= 0 {
			fm.Grid[rowIndex[v.Row]][c] = v.SeatNumber
		}
	}
}
