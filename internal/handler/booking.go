package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
	"github.com/iliyamo/vehicle-seat-reservation/internal/service"
)

// BookingHandler serves seat maps and the hold/confirm/cancel lifecycle.
type BookingHandler struct {
	SeatMaps     SeatMapService
	Reservations ReservationService
	Log          logrus.FieldLogger
}

// NewBookingHandler panics when a service is nil.
func NewBookingHandler(seatMaps SeatMapService, reservations ReservationService, log logrus.FieldLogger) *BookingHandler {
	if seatMaps == nil || reservations == nil {
		panic("nil service passed to NewBookingHandler")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BookingHandler{SeatMaps: seatMaps, Reservations: reservations, Log: log}
}

// parseDate parses a YYYY-MM-DD query or body value.
func parseDate(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, service.ValidationError{Field: field, Msg: "required (YYYY-MM-DD)"}
	}
	t, err := time.Parse(model.DateLayout, v)
	if err != nil {
		return time.Time{}, service.ValidationError{Field: field, Msg: "must be YYYY-MM-DD"}
	}
	return t, nil
}

// SeatMap handles GET /v1/vehicles/:vehicleId/schedules/:scheduleId/seat-map?date=.
// Passenger names and booking groups are only shown to operators.
func (h *BookingHandler) SeatMap(c echo.Context) error {
	date, err := parseDate("date", c.QueryParam("date"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	sm, err := h.SeatMaps.BuildSeatMap(c.Request().Context(), c.Param("vehicleId"), c.Param("scheduleId"), date)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	redactSeatMap(c, &sm)
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, sm)
}

type bookSeatsRequest struct {
	VehicleID     string                `json:"vehicle_id" validate:"required"`
	ScheduleID    string                `json:"schedule_id" validate:"required"`
	DepartureDate string                `json:"departure_date" validate:"required,datetime=2006-01-02"`
	DepartureTime string                `json:"departure_time" validate:"omitempty,datetime=15:04"`
	Selections    []model.SeatSelection `json:"selections" validate:"required,min=1,dive"`
}

// BookSeats handles POST /v1/bookings.  It returns 201 with the booking
// group and the hold expiry, or 409 naming the seats that are taken.
func (h *BookingHandler) BookSeats(c echo.Context) error {
	var req bookSeatsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, h.Log, err)
	}
	date, err := parseDate("departure_date", req.DepartureDate)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	res, err := h.Reservations.BookSeats(callerContext(c), model.BookingRequest{
		VehicleID:     req.VehicleID,
		ScheduleID:    req.ScheduleID,
		DepartureDate: date,
		DepartureTime: req.DepartureTime,
		Selections:    req.Selections,
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// GetBookingGroup handles GET /v1/bookings/:groupId.
func (h *BookingHandler) GetBookingGroup(c echo.Context) error {
	groupID := c.Param("groupId")
	rows, err := h.Reservations.GetBookingGroup(callerContext(c), groupID)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking_group_id": groupID, "seats": rows})
}

// ConfirmBooking handles POST /v1/bookings/:groupId/confirm, normally
// called by the payment callback.  Repeating it is harmless.
func (h *BookingHandler) ConfirmBooking(c echo.Context) error {
	groupID := c.Param("groupId")
	if err := h.Reservations.ConfirmBooking(callerContext(c), groupID); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking_group_id": groupID, "status": model.BookingConfirmed})
}

// CancelBooking handles POST /v1/bookings/:groupId/cancel.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	groupID := c.Param("groupId")
	if err := h.Reservations.CancelBooking(callerContext(c), groupID); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking_group_id": groupID, "status": model.BookingCancelled})
}
