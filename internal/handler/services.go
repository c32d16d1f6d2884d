// Package handler exposes the seat inventory and reservation services over
// HTTP.  Handlers bind and validate input, call one service method and map
// its typed errors to status codes.
package handler

import (
	"context"
	"time"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
)

// LayoutService is implemented by service.LayoutService.
type LayoutService interface {
	CreateLayout(ctx context.Context, spec model.LayoutSpec) (model.VehicleLayout, error)
	GetLayout(ctx context.Context, id string) (model.VehicleLayout, error)
	DuplicateLayout(ctx context.Context, sourceID, vehicleID, name string) (model.VehicleLayout, error)
	DeactivateLayout(ctx context.Context, id string) error
	SetSeatStatus(ctx context.Context, seatID string, status model.SeatStatus) error
}

// SeatMapService is implemented by service.SeatMapService.
type SeatMapService interface {
	BuildSeatMap(ctx context.Context, vehicleID, scheduleID string, departureDate time.Time) (model.SeatMap, error)
}

// ReservationService is implemented by service.ReservationService.
type ReservationService interface {
	BookSeats(ctx context.Context, req model.BookingRequest) (model.BookingResult, error)
	ConfirmBooking(ctx context.Context, groupID string) error
	CancelBooking(ctx context.Context, groupID string) error
	GetBookingGroup(ctx context.Context, groupID string) ([]model.SeatBooking, error)
}

// StatisticsService is implemented by service.StatisticsService.
type StatisticsService interface {
	SeatStatistics(ctx context.Context, vehicleID string, dr model.DateRange) (model.SeatStatistics, error)
}

// Sweeper is implemented by service.Sweeper.
type Sweeper interface {
	CleanupExpiredReservations(ctx context.Context) (model.CleanupResult, error)
}
