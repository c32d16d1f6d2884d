package model

import "time"

// SeatType classifies the comfort class of a seat.
type SeatType string

const (
	SeatTypeStandard SeatType = "STANDARD"
	SeatTypeVIP      SeatType = "VIP"
	SeatTypeSleeper  SeatType = "SLEEPER"
)

// Valid reports whether t is one of the known seat types.
func (t SeatType) Valid() bool {
	switch t {
	case SeatTypeStandard, SeatTypeVIP, SeatTypeSleeper:
		return true
	}
	return false
}

// SeatPosition describes where a seat sits within its row.
type SeatPosition string

const (
	PositionWindow SeatPosition = "WINDOW"
	PositionAisle  SeatPosition = "AISLE"
	PositionMiddle SeatPosition = "MIDDLE"
)

// Valid reports whether p is one of the known positions.
func (p SeatPosition) Valid() bool {
	switch p {
	case PositionWindow, PositionAisle, PositionMiddle:
		return true
	}
	return false
}

// SeatStatus is the operational status of a physical seat.  Seats are
// never deleted; an inactive seat simply cannot be booked.
type SeatStatus string

const (
	SeatActive   SeatStatus = "ACTIVE"
	SeatInactive SeatStatus = "INACTIVE"
)

// VehicleLayout describes one physical seating configuration of a vehicle.
//
// Fields:
//  ID           – primary key (UUID).
//  VehicleID    – vehicle owning this layout.
//  Name         – display name, e.g. "Sleeper 2+1".
//  VehicleType  – free-form vehicle type tag (BUS, COACH, ...).
//  TotalSeats   – declared seat count; always equals len(Seats).
//  IsMultiFloor – whether the layout spans more than one floor.
//  FloorCount   – number of floors used by the seats.
//  IsActive     – only one active layout exists per vehicle.
type VehicleLayout struct {
	ID           string    `json:"id"`             // vehicle_layouts.id
	VehicleID    string    `json:"vehicle_id"`     // vehicle_layouts.vehicle_id
	Name         string    `json:"name"`           // vehicle_layouts.name
	VehicleType  string    `json:"vehicle_type"`   // vehicle_layouts.vehicle_type
	TotalSeats   int       `json:"total_seats"`    // vehicle_layouts.total_seats
	IsMultiFloor bool      `json:"is_multi_floor"` // vehicle_layouts.is_multi_floor
	FloorCount   int       `json:"floor_count"`    // vehicle_layouts.floor_count
	IsActive     bool      `json:"is_active"`      // vehicle_layouts.is_active
	CreatedAt    time.Time `json:"created_at"`     // vehicle_layouts.created_at
	UpdatedAt    time.Time `json:"updated_at"`     // vehicle_layouts.updated_at
	Seats        []Seat    `json:"seats,omitempty"`
}

// Seat is one addressable slot within a layout.  (LayoutID, SeatNumber,
// Floor) is unique.
type Seat struct {
	ID         string       `json:"id"`          // vehicle_seats.id
	LayoutID   string       `json:"layout_id"`   // vehicle_seats.layout_id
	SeatNumber string       `json:"seat_number"` // vehicle_seats.seat_number
	Row        int          `json:"row"`         // vehicle_seats.row_index
	Column     string       `json:"column"`      // vehicle_seats.column_label
	Floor      int          `json:"floor"`       // vehicle_seats.floor
	SeatType   SeatType     `json:"seat_type"`   // vehicle_seats.seat_type
	Position   SeatPosition `json:"position"`    // vehicle_seats.position
	Status     SeatStatus   `json:"status"`      // vehicle_seats.status
	Price      int64        `json:"price"`       // vehicle_seats.price
	CreatedAt  time.Time    `json:"created_at"`  // vehicle_seats.created_at
	UpdatedAt  time.Time    `json:"updated_at"`  // vehicle_seats.updated_at
}

// ColumnIndex returns the zero-based index of the seat's column letter
// ("A" → 0, "B" → 1, ...).  Multi-letter columns such as "AA" continue
// the sequence after "Z".
func (s Seat) ColumnIndex() int {
	return ColumnIndex(s.Column)
}

// ColumnIndex converts a spreadsheet-style column label to a zero-based index.
// Unknown characters yield -1.
func ColumnIndex(label string) int {
	if label == "" {
		return -1
	}
	n := 0
	for _, r := range label {
		switch {
		case r >= 'A' && r <= 'Z':
			n = n*26 + int(r-'A'+1)
		case r >= 'a' && r <= 'z':
			n = n*26 + int(r-'a'+1)
		default:
			return -1
		}
	}
	return n - 1
}

// SeatKey addresses a seat inside a vehicle's active layout.
type SeatKey struct {
	SeatNumber string
	Floor      int
}

// Key returns the seat's (seat number, floor) address.
func (s Seat) Key() SeatKey { return SeatKey{SeatNumber: s.SeatNumber, Floor: s.Floor} }

// LayoutSpec is the input accepted by CreateLayout.
type LayoutSpec struct {
	VehicleID    string      `json:"vehicle_id"`
	Name         string      `json:"name"`
	VehicleType  string      `json:"vehicle_type"`
	TotalSeats   int         `json:"total_seats"`
	IsMultiFloor bool        `json:"is_multi_floor"`
	FloorCount   int         `json:"floor_count"`
	Floors       []FloorSpec `json:"floors"`
}

// FloorSpec lists the seats of one floor.
type FloorSpec struct {
	Floor int        `json:"floor"`
	Seats []SeatSpec `json:"seats"`
}

// SeatSpec describes a single seat to create.  Floor may be left zero to
// inherit the enclosing FloorSpec's floor.  Position and Price are derived
// when omitted.
type SeatSpec struct {
	SeatNumber string       `json:"seat_number"`
	Row        int          `json:"row"`
	Column     string       `json:"column"`
	Floor      int          `json:"floor,omitempty"`
	SeatType   SeatType     `json:"seat_type"`
	Position   SeatPosition `json:"position,omitempty"`
	Price      *int64       `json:"price,omitempty"`
}
