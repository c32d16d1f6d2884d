package model

import "time"

// SeatAvailability is the per-seat state rendered in a seat map.
type SeatAvailability string

const (
	SeatAvailable SeatAvailability = "AVAILABLE"
	SeatBooked    SeatAvailability = "BOOKED"
	// SeatBlocked marks inactive seats that cannot be sold.
	SeatBlocked SeatAvailability = "BLOCKED"
)

// SeatMap is a point-in-time availability view of one trip.
//
// The per-seat view is pessimistic: unexpired holds render BOOKED so a
// second customer cannot pick them.  The summary counts are optimistic:
// ConfirmedSeats only counts paid seats and AvailableSeats is
// TotalSeats - ConfirmedSeats.
type SeatMap struct {
	VehicleID      string     `json:"vehicle_id"`
	ScheduleID     string     `json:"schedule_id"`
	DepartureDate  string     `json:"departure_date"`
	LayoutID       string     `json:"layout_id"`
	LayoutName     string     `json:"layout_name"`
	TotalSeats     int        `json:"total_seats"`
	ConfirmedSeats int        `json:"confirmed_seats"`
	AvailableSeats int        `json:"available_seats"`
	HeldSeats      int        `json:"held_seats"`
	Floors         []FloorMap `json:"floors"`
	GeneratedAt    time.Time  `json:"generated_at"`
}

// FloorMap holds the seats of one floor.  Grid is row-major; an empty
// string marks a gap where no seat exists.
type FloorMap struct {
	Floor       int        `json:"floor"`
	TotalRows   int        `json:"total_rows"`
	SeatsPerRow int        `json:"seats_per_row"`
	Seats       []SeatView `json:"seats"`
	Grid        [][]string `json:"grid"`
}

// SeatView is one seat in the seat map.
type SeatView struct {
	SeatID         string           `json:"seat_id"`
	SeatNumber     string           `json:"seat_number"`
	Row            int              `json:"row"`
	Column         string           `json:"column"`
	SeatType       SeatType         `json:"seat_type"`
	Position       SeatPosition     `json:"position"`
	Price          int64            `json:"price"`
	Availability   SeatAvailability `json:"availability"`
	BookingStatus  BookingStatus    `json:"booking_status,omitempty"`
	PassengerName  string           `json:"passenger_name,omitempty"`
	BookingGroupID string           `json:"booking_group_id,omitempty"`
	HoldExpiresAt  *time.Time       `json:"hold_expires_at,omitempty"`
}
