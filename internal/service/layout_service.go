package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
	"github.com/iliyamo/vehicle-seat-reservation/internal/pricing"
	"github.com/iliyamo/vehicle-seat-reservation/internal/repository"
)

// LayoutService validates and persists vehicle layouts.
type LayoutService struct {
	store  LayoutStore
	pricer pricing.Calculator
	deps
}

// NewLayoutService wires a LayoutService.
func NewLayoutService(store LayoutStore, pricer pricing.Calculator, opts ...Option) *LayoutService {
	return &LayoutService{store: store, pricer: pricer, deps: newDeps(opts)}
}

// resolvedSeat is a SeatSpec after floor inheritance and defaults.
type resolvedSeat struct {
	spec  model.SeatSpec
	floor int
	col   int
}

// CreateLayout validates spec, derives missing positions and prices and
// stores the layout together with all of its seats.  The new layout
// becomes the vehicle's active layout.
func (s *LayoutService) CreateLayout(ctx context.Context, spec model.LayoutSpec) (model.VehicleLayout, error) {
	seats, err := validateLayout(spec)
	if err != nil {
		return model.VehicleLayout{}, err
	}

	now := s.clock.Now()
	layout := model.VehicleLayout{
		ID:           s.ids.NewID(),
		VehicleID:    spec.VehicleID,
		Name:         spec.Name,
		VehicleType:  spec.VehicleType,
		TotalSeats:   spec.TotalSeats,
		IsMultiFloor: spec.IsMultiFloor,
		FloorCount:   spec.FloorCount,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	positions := derivePositions(seats)
	out := make([]model.Seat, 0, len(seats))
	for i, rs := range seats {
		pos := rs.spec.Position
		if pos == "" {
			pos = positions[i]
		}
		price := s.pricer.Price(rs.spec.SeatType, pos)
		if rs.spec.Price != nil {
			price = *rs.spec.Price
		}
		out = append(out, model.Seat{
			ID:         s.ids.NewID(),
			LayoutID:   layout.ID,
			SeatNumber: rs.spec.SeatNumber,
			Row:        rs.spec.Row,
			Column:     strings.ToUpper(rs.spec.Column),
			Floor:      rs.floor,
			SeatType:   rs.spec.SeatType,
			Position:   pos,
			Status:     model.SeatActive,
			Price:      price,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	sortSeats(out)

	if err := s.store.CreateLayout(ctx, layout, out); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.VehicleLayout{}, ConfigurationInvalidError{Field: "seats", Msg: "duplicate seat rejected by storage", Err: err}
		}
		return model.VehicleLayout{}, fmt.Errorf("create layout: %w", err)
	}
	layout.Seats = out

	s.log.WithFields(logrus.Fields{
		"layout_id":  layout.ID,
		"vehicle_id": layout.VehicleID,
		"seats":      len(out),
	}).Info("layout created")
	return layout, nil
}

// validateLayout checks the structural invariants of a layout description
// and returns the flattened seats with their floors resolved.
func validateLayout(spec model.LayoutSpec) ([]resolvedSeat, error) {
	if strings.TrimSpace(spec.VehicleID) == "" {
		return nil, ConfigurationInvalidError{Field: "vehicle_id", Msg: "required"}
	}
	if strings.TrimSpace(spec.Name) == "" {
		return nil, ConfigurationInvalidError{Field: "name", Msg: "required"}
	}
	if spec.TotalSeats <= 0 {
		return nil, ConfigurationInvalidError{Field: "total_seats", Msg: "must be positive"}
	}
	if spec.FloorCount < 1 {
		return nil, ConfigurationInvalidError{Field: "floor_count", Msg: "must be at least 1"}
	}
	if spec.IsMultiFloor != (spec.FloorCount > 1) {
		return nil, ConfigurationInvalidError{Field: "is_multi_floor", Msg: "inconsistent with floor_count"}
	}

	seats := make([]resolvedSeat, 0, spec.TotalSeats)
	for _, fs := range spec.Floors {
		for _, ss := range fs.Seats {
			floor := ss.Floor
			if floor == 0 {
				floor = fs.Floor
			}
			if fs.Floor != 0 && floor != fs.Floor {
				return nil, ConfigurationInvalidError{
					Field: "floor",
					Msg:   fmt.Sprintf("seat declared on floor %d inside floor %d", floor, fs.Floor),
					Key:   ss.SeatNumber,
				}
			}
			if ss.SeatType == "" {
				ss.SeatType = model.SeatTypeStandard
			}
			seats = append(seats, resolvedSeat{spec: ss, floor: floor, col: model.ColumnIndex(ss.Column)})
		}
	}

	if len(seats) != spec.TotalSeats {
		return nil, ConfigurationInvalidError{
			Field:    "total_seats",
			Msg:      "seat count mismatch",
			Expected: spec.TotalSeats,
			Actual:   len(seats),
		}
	}

	floors := make(map[int]struct{})
	numbers := make(map[model.SeatKey]struct{}, len(seats))
	cells := make(map[[3]int]string, len(seats))
	for _, rs := range seats {
		key := fmt.Sprintf("%s@%d", rs.spec.SeatNumber, rs.floor)
		switch {
		case strings.TrimSpace(rs.spec.SeatNumber) == "":
			return nil, ConfigurationInvalidError{Field: "seat_number", Msg: "required"}
		case rs.floor < 1 || rs.floor > spec.FloorCount:
			return nil, ConfigurationInvalidError{Field: "floor", Msg: fmt.Sprintf("out of range 1..%d", spec.FloorCount), Key: key}
		case rs.spec.Row < 1:
			return nil, ConfigurationInvalidError{Field: "row", Msg: "must be at least 1", Key: key}
		case rs.col < 0:
			return nil, ConfigurationInvalidError{Field: "column", Msg: fmt.Sprintf("invalid column %q", rs.spec.Column), Key: key}
		case !rs.spec.SeatType.Valid():
			return nil, ConfigurationInvalidError{Field: "seat_type", Msg: fmt.Sprintf("unknown seat type %q", rs.spec.SeatType), Key: key}
		case rs.spec.Position != "" && !rs.spec.Position.Valid():
			return nil, ConfigurationInvalidError{Field: "position", Msg: fmt.Sprintf("unknown position %q", rs.spec.Position), Key: key}
		case rs.spec.Price != nil && *rs.spec.Price < 0:
			return nil, ConfigurationInvalidError{Field: "price", Msg: "must not be negative", Key: key}
		}

		sk := model.SeatKey{SeatNumber: rs.spec.SeatNumber, Floor: rs.floor}
		if _, dup := numbers[sk]; dup {
			return nil, ConfigurationInvalidError{Field: "seat_number", Msg: "duplicate seat", Key: key}
		}
		numbers[sk] = struct{}{}

		cell := [3]int{rs.floor, rs.spec.Row, rs.col}
		if other, dup := cells[cell]; dup {
			return nil, ConfigurationInvalidError{
				Field: "position",
				Msg:   fmt.Sprintf("seats %s and %s share row %d column %s", other, rs.spec.SeatNumber, rs.spec.Row, rs.spec.Column),
				Key:   key,
			}
		}
		cells[cell] = rs.spec.SeatNumber
		floors[rs.floor] = struct{}{}
	}

	if len(floors) != spec.FloorCount {
		return nil, ConfigurationInvalidError{
			Field:    "floor_count",
			Msg:      "distinct floors mismatch",
			Expected: spec.FloorCount,
			Actual:   len(floors),
		}
	}
	return seats, nil
}

// derivePositions computes the default position of every seat from its
// place within its (floor, row).  The result is indexed like seats.
func derivePositions(seats []resolvedSeat) []model.SeatPosition {
	type rowKey struct{ floor, row int }
	rows := make(map[rowKey][]int)
	for i, rs := range seats {
		k := rowKey{rs.floor, rs.spec.Row}
		rows[k] = append(rows[k], i)
	}
	out := make([]model.SeatPosition, len(seats))
	for _, idx := range rows {
		sort.Slice(idx, func(a, b int) bool { return seats[idx[a]].col < seats[idx[b]].col })
		for i, seatIdx := range idx {
			out[seatIdx] = DerivePosition(i, len(idx))
		}
	}
	return out
}

// DerivePosition returns the position of the i-th seat (by column order)
// in a row of n seats.  The outermost seats are windows; in rows wider
// than three the seats next to them are aisles; everything else is middle.
func DerivePosition(i, n int) model.SeatPosition {
	switch {
	case i == 0 || i == n-1:
		return model.PositionWindow
	case n > 3 && (i == 1 || i == n-2):
		return model.PositionAisle
	default:
		return model.PositionMiddle
	}
}

// sortSeats orders seats by floor, row and column.
func sortSeats(seats []model.Seat) {
	sort.SliceStable(seats, func(i, j int) bool {
		a, b := seats[i], seats[j]
		if a.Floor != b.Floor {
			return a.Floor < b.Floor
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.ColumnIndex() < b.ColumnIndex()
	})
}

// GetLayout returns a layout with its seats.
func (s *LayoutService) GetLayout(ctx context.Context, id string) (model.VehicleLayout, error) {
	l, err := s.store.GetLayout(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.VehicleLayout{}, NotFoundError{Resource: "layout", ID: id, Err: err}
		}
		return model.VehicleLayout{}, fmt.Errorf("get layout: %w", err)
	}
	return l, nil
}

// DuplicateLayout copies an existing layout onto another vehicle.  Seat
// positions and prices are carried over as explicit values so that manual
// overrides on the template survive.  An empty name keeps the source name.
func (s *LayoutService) DuplicateLayout(ctx context.Context, sourceID, vehicleID, name string) (model.VehicleLayout, error) {
	src, err := s.GetLayout(ctx, sourceID)
	if err != nil {
		return model.VehicleLayout{}, err
	}
	if name == "" {
		name = src.Name
	}

	byFloor := make(map[int][]model.SeatSpec)
	for _, seat := range src.Seats {
		price := seat.Price
		byFloor[seat.Floor] = append(byFloor[seat.Floor], model.SeatSpec{
			SeatNumber: seat.SeatNumber,
			Row:        seat.Row,
			Column:     seat.Column,
			Floor:      seat.Floor,
			SeatType:   seat.SeatType,
			Position:   seat.Position,
			Price:      &price,
		})
	}
	floorNums := make([]int, 0, len(byFloor))
	for f := range byFloor {
		floorNums = append(floorNums, f)
	}
	sort.Ints(floorNums)

	spec := model.LayoutSpec{
		VehicleID:    vehicleID,
		Name:         name,
		VehicleType:  src.VehicleType,
		TotalSeats:   src.TotalSeats,
		IsMultiFloor: src.IsMultiFloor,
		FloorCount:   src.FloorCount,
	}
	for _, f := range floorNums {
		spec.Floors = append(spec.Floors, model.FloorSpec{Floor: f, Seats: byFloor[f]})
	}
	return s.CreateLayout(ctx, spec)
}

// DeactivateLayout retires a layout.  Its seats and bookings are kept.
func (s *LayoutService) DeactivateLayout(ctx context.Context, id string) error {
	if err := s.store.DeactivateLayout(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundError{Resource: "layout", ID: id, Err: err}
		}
		return fmt.Errorf("deactivate layout: %w", err)
	}
	s.log.WithField("layout_id", id).Info("layout deactivated")
	return nil
}

// SetSeatStatus takes a seat in or out of service.
func (s *LayoutService) SetSeatStatus(ctx context.Context, seatID string, status model.SeatStatus) error {
	if status != model.SeatActive && status != model.SeatInactive {
		return ValidationError{Field: "status", Msg: fmt.Sprintf("must be %s or %s", model.SeatActive, model.SeatInactive)}
	}
	if err := s.store.SetSeatStatus(ctx, seatID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundError{Resource: "seat", ID: seatID, Err: err}
		}
		return fmt.Errorf("set seat status: %w", err)
	}
	return nil
}
