package model

import "time"

// DateRange is an inclusive range of departure dates.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// SeatCountRow is one aggregated row of confirmed bookings.
type SeatCountRow struct {
	SeatType SeatType
	Position SeatPosition
	Floor    int
	Count    int
}

// SeatStatistics summarises confirmed bookings of a vehicle.
type SeatStatistics struct {
	VehicleID      string               `json:"vehicle_id"`
	From           string               `json:"from"`
	To             string               `json:"to"`
	BySeatType     map[SeatType]int     `json:"by_seat_type"`
	ByPosition     map[SeatPosition]int `json:"by_position"`
	ByFloor        map[int]int          `json:"by_floor"`
	TotalConfirmed int                  `json:"total_confirmed"`
}
