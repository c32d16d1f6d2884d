package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
)

// LayoutRepo provides data access to vehicle_layouts and vehicle_seats.
// Layouts and seats are never deleted; deactivation flips is_active or
// status so that historical seat_bookings keep resolving.
type LayoutRepo struct {
	db *sql.DB
}

// NewLayoutRepo returns a new LayoutRepo bound to the provided database.
func NewLayoutRepo(db *sql.DB) *LayoutRepo { return &LayoutRepo{db: db} }

const layoutColumns = `id, vehicle_id, name, vehicle_type, total_seats, is_multi_floor, floor_count, is_active, created_at, updated_at`

const seatColumns = `id, layout_id, seat_number, row_index, column_label, floor, seat_type, position, status, price, created_at, updated_at`

// CreateLayout inserts the layout and all of its seats in one transaction.
// Any previously active layout of the same vehicle is deactivated first so
// that a vehicle has at most one active layout.  A duplicate
// (layout, seat number, floor) key surfaces as ErrConflict.
func (r *LayoutRepo) CreateLayout(ctx context.Context, layout model.VehicleLayout, seats []model.Seat) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin layout tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if layout.IsActive {
		if _, err := tx.ExecContext(ctx,
			`UPDATE vehicle_layouts SET is_active = 0, updated_at = ? WHERE vehicle_id = ? AND is_active = 1`,
			layout.UpdatedAt.UTC(), layout.VehicleID,
		); err != nil {
			return fmt.Errorf("deactivate previous layouts: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO vehicle_layouts (`+layoutColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		layout.ID, layout.VehicleID, layout.Name, layout.VehicleType, layout.TotalSeats,
		layout.IsMultiFloor, layout.FloorCount, layout.IsActive, layout.CreatedAt.UTC(), layout.UpdatedAt.UTC(),
	); err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("layout %s: %w", layout.ID, ErrConflict)
		}
		return fmt.Errorf("insert layout: %w", err)
	}

	if err := insertSeatsTx(ctx, tx, seats); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit layout: %w", err)
	}
	committed = true
	return nil
}

// insertSeatsTx inserts all seats in a single multi-row statement.
func insertSeatsTx(ctx context.Context, tx *sql.Tx, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO vehicle_seats (` + seatColumns + `) VALUES `)
	args := make([]interface{}, 0, len(seats)*12)
	for i, s := range seats {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, s.ID, s.LayoutID, s.SeatNumber, s.Row, s.Column, s.Floor,
			string(s.SeatType), string(s.Position), string(s.Status), s.Price, s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("duplicate seat: %w", ErrConflict)
		}
		return fmt.Errorf("insert seats: %w", err)
	}
	return nil
}

// GetLayout returns the layout with its seats ordered by floor, row and
// column.  ErrNotFound is returned when no layout has the given ID.
func (r *LayoutRepo) GetLayout(ctx context.Context, id string) (model.VehicleLayout, error) {
	return r.loadLayout(ctx, `SELECT `+layoutColumns+` FROM vehicle_layouts WHERE id = ?`, id)
}

// ActiveLayoutByVehicle returns the active layout of a vehicle, seats
// included.  ErrNotFound is returned when the vehicle has none.
func (r *LayoutRepo) ActiveLayoutByVehicle(ctx context.Context, vehicleID string) (model.VehicleLayout, error) {
	return r.loadLayout(ctx,
		`SELECT `+layoutColumns+` FROM vehicle_layouts WHERE vehicle_id = ? AND is_active = 1 ORDER BY created_at DESC LIMIT 1`,
		vehicleID)
}

func (r *LayoutRepo) loadLayout(ctx context.Context, query string, arg interface{}) (model.VehicleLayout, error) {
	var l model.VehicleLayout
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&l.ID, &l.VehicleID, &l.Name, &l.VehicleType, &l.TotalSeats,
		&l.IsMultiFloor, &l.FloorCount, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.VehicleLayout{}, ErrNotFound
	}
	if err != nil {
		return model.VehicleLayout{}, fmt.Errorf("load layout: %w", err)
	}
	seats, err := r.listSeats(ctx, l.ID)
	if err != nil {
		return model.VehicleLayout{}, err
	}
	l.Seats = seats
	return l, nil
}

// listSeats orders columns by label length first so that "AA" sorts after "Z".
func (r *LayoutRepo) listSeats(ctx context.Context, layoutID string) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+seatColumns+` FROM vehicle_seats WHERE layout_id = ?
		 ORDER BY floor, row_index, CHAR_LENGTH(column_label), column_label`,
		layoutID)
	if err != nil {
		return nil, fmt.Errorf("query seats: %w", err)
	}
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		var seatType, position, status string
		if err := rows.Scan(&s.ID, &s.LayoutID, &s.SeatNumber, &s.Row, &s.Column, &s.Floor,
			&seatType, &position, &status, &s.Price, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		s.SeatType = model.SeatType(seatType)
		s.Position = model.SeatPosition(position)
		s.Status = model.SeatStatus(status)
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seats: %w", err)
	}
	return seats, nil
}

// DeactivateLayout soft-deactivates a layout.  Deactivating an inactive
// layout is a no-op; an unknown ID yields ErrNotFound.
func (r *LayoutRepo) DeactivateLayout(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE vehicle_layouts SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate layout: %w", err)
	}
	return r.requireRow(ctx, res, `SELECT 1 FROM vehicle_layouts WHERE id = ?`, id)
}

// SetSeatStatus flips a seat between ACTIVE and INACTIVE.
func (r *LayoutRepo) SetSeatStatus(ctx context.Context, seatID string, status model.SeatStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE vehicle_seats SET status = ? WHERE id = ?`, string(status), seatID)
	if err != nil {
		return fmt.Errorf("update seat status: %w", err)
	}
	return r.requireRow(ctx, res, `SELECT 1 FROM vehicle_seats WHERE id = ?`, seatID)
}

// requireRow distinguishes "nothing changed" from "no such row": MySQL
// reports zero affected rows when an UPDATE writes identical values.
func (r *LayoutRepo) requireRow(ctx context.Context, res sql.Result, existsQuery string, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	var one int
	err = r.db.QueryRowContext(ctx, existsQuery, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check existence: %w", err)
	}
	return nil
}
