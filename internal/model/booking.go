package model

import "time"

// BookingStatus is the lifecycle state of a SeatBooking.
type BookingStatus string

const (
	BookingReserved  BookingStatus = "RESERVED"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// DateLayout is the wire and storage format of departure dates.
const DateLayout = "2006-01-02"

// SeatBooking records one seat being held, confirmed or cancelled for one
// passenger on one trip (schedule + departure date).
//
// A RESERVED row carries ReservedUntil; confirming clears it.  CONFIRMED
// and CANCELLED are terminal.
type SeatBooking struct {
	ID                string        `json:"id"`                  // seat_bookings.id
	ScheduleID        string        `json:"schedule_id"`         // seat_bookings.schedule_id
	VehicleSeatID     string        `json:"vehicle_seat_id"`     // seat_bookings.vehicle_seat_id
	BookingGroupID    string        `json:"booking_group_id"`    // seat_bookings.booking_group_id
	OwnerID           string        `json:"owner_id,omitempty"`  // seat_bookings.owner_id (token subject of the booker)
	PassengerName     string        `json:"passenger_name"`      // seat_bookings.passenger_name
	PassengerPhone    string        `json:"passenger_phone"`     // seat_bookings.passenger_phone
	PassengerIDNumber string        `json:"passenger_id_number"` // seat_bookings.passenger_id_number
	PassengerAge      *int          `json:"passenger_age,omitempty"`
	PassengerGender   string        `json:"passenger_gender,omitempty"`
	Status            BookingStatus `json:"status"`
	DepartureDate     time.Time     `json:"departure_date"`
	DepartureTime     string        `json:"departure_time"`
	ReservedUntil     *time.Time    `json:"reserved_until,omitempty"`
	SpecialRequests   string        `json:"special_requests,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`

	// Populated by joins for display only.
	SeatNumber string `json:"seat_number,omitempty"`
	Floor      int    `json:"floor,omitempty"`
}

// IsActiveHold reports whether the booking is RESERVED with a hold that
// has not yet expired at now.
func (b SeatBooking) IsActiveHold(now time.Time) bool {
	return b.Status == BookingReserved && b.ReservedUntil != nil && b.ReservedUntil.After(now)
}

// IsActive reports whether the booking blocks the seat for other
// customers: confirmed, or an unexpired hold.
func (b SeatBooking) IsActive(now time.Time) bool {
	return b.Status == BookingConfirmed || b.IsActiveHold(now)
}

// Passenger carries the traveller details of a seat selection.
type Passenger struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	IDNumber        string `json:"id_number"`
	Age             *int   `json:"age,omitempty"`
	Gender          string `json:"gender,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// SeatSelection is one seat requested in a BookSeats call.
type SeatSelection struct {
	SeatNumber string    `json:"seat_number"`
	Floor      int       `json:"floor"`
	Passenger  Passenger `json:"passenger"`
}

// BookingRequest is the input of BookSeats.  The trip is identified by
// (VehicleID, ScheduleID, DepartureDate).
type BookingRequest struct {
	VehicleID     string          `json:"vehicle_id"`
	ScheduleID    string          `json:"schedule_id"`
	DepartureDate time.Time       `json:"departure_date"`
	DepartureTime string          `json:"departure_time"`
	Selections    []SeatSelection `json:"selections"`
}

// BookingResult is returned by BookSeats.
type BookingResult struct {
	BookingGroupID string        `json:"booking_group_id"`
	ReservedUntil  time.Time     `json:"reserved_until"`
	Seats          []SeatBooking `json:"seats"`
}

// CleanupResult is returned by the expiry sweeper.
type CleanupResult struct {
	ReclaimedCount int64 `json:"reclaimed_count"`
}
