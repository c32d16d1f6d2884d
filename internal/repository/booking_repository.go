package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
)

// BookingRepo provides data access to the seat_bookings table.  It is the
// only writer of that table and every write is a single statement or a
// single transaction, so a booking is never left between states.
//
// All timestamps are passed in by the caller (UTC) rather than read from
// the database clock; this keeps hold expiry consistent with the service
// clock.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingSelect = `SELECT b.id, b.schedule_id, b.vehicle_seat_id, b.booking_group_id, b.owner_id,
       b.passenger_name, b.passenger_phone, b.passenger_id_number, b.passenger_age, b.passenger_gender,
       b.status, b.departure_date, b.departure_time, b.reserved_until, b.special_requests,
       b.created_at, b.updated_at, s.seat_number, s.floor
FROM seat_bookings b
JOIN vehicle_seats s ON s.id = b.vehicle_seat_id`

// ActiveBookingsForTrip returns every RESERVED or CONFIRMED booking of the
// trip.  Expired holds are included; callers decide liveness with
// SeatBooking.IsActive so that reads never mutate rows.
func (r *BookingRepo) ActiveBookingsForTrip(ctx context.Context, scheduleID string, departureDate time.Time) ([]model.SeatBooking, error) {
	return r.query(ctx,
		bookingSelect+`
WHERE b.schedule_id = ? AND b.departure_date = ? AND b.status IN ('RESERVED', 'CONFIRMED')
ORDER BY b.created_at, b.id`,
		scheduleID, departureDate.Format(model.DateLayout))
}

// ListByGroup returns all bookings created by one BookSeats call.
func (r *BookingRepo) ListByGroup(ctx context.Context, groupID string) ([]model.SeatBooking, error) {
	return r.query(ctx, bookingSelect+`
WHERE b.booking_group_id = ?
ORDER BY s.floor, s.seat_number`, groupID)
}

// InsertHolds atomically creates a batch of RESERVED bookings.  All holds
// must belong to the same trip.
//
// Within the transaction, RESERVED rows of the requested seats whose hold
// expired at or before now are cancelled first so they release their slot
// in uq_bookings_active_seat.  The batch is then written with one
// multi-row INSERT; if any seat already has an active booking the unique
// index rejects the statement, the transaction rolls back and ErrConflict
// is returned.  Either every hold is created or none is.
//
// The transaction runs at READ COMMITTED so the reclaim UPDATE takes no
// gap locks; concurrent holds on the same trip would otherwise deadlock
// on their INSERTs.  A deadlock or lock wait timeout that still happens is
// reported as ErrConflict like a duplicate key.
func (r *BookingRepo) InsertHolds(ctx context.Context, holds []model.SeatBooking, now time.Time) error {
	if len(holds) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin hold tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	first := holds[0]
	seatIDs := make([]interface{}, 0, len(holds))
	for _, h := range holds {
		seatIDs = append(seatIDs, h.VehicleSeatID)
	}
	reclaim := `UPDATE seat_bookings SET status = 'CANCELLED', updated_at = ?
WHERE schedule_id = ? AND departure_date = ? AND status = 'RESERVED' AND reserved_until <= ?
  AND vehicle_seat_id IN (` + placeholders(len(seatIDs)) + `)`
	args := append([]interface{}{now.UTC(), first.ScheduleID, first.DepartureDate.Format(model.DateLayout), now.UTC()}, seatIDs...)
	if _, err := tx.ExecContext(ctx, reclaim, args...); err != nil {
		if isLockConflict(err) {
			return fmt.Errorf("reclaim expired holds: %v: %w", err, ErrConflict)
		}
		return fmt.Errorf("reclaim expired holds: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO seat_bookings (id, schedule_id, vehicle_seat_id, booking_group_id, owner_id,
       passenger_name, passenger_phone, passenger_id_number, passenger_age, passenger_gender,
       status, departure_date, departure_time, reserved_until, special_requests, created_at, updated_at) VALUES `)
	ins := make([]interface{}, 0, len(holds)*17)
	for i, h := range holds {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		var age interface{}
		if h.PassengerAge != nil {
			age = *h.PassengerAge
		}
		var until interface{}
		if h.ReservedUntil != nil {
			until = h.ReservedUntil.UTC()
		}
		ins = append(ins, h.ID, h.ScheduleID, h.VehicleSeatID, h.BookingGroupID, h.OwnerID,
			h.PassengerName, h.PassengerPhone, h.PassengerIDNumber, age, h.PassengerGender,
			string(h.Status), h.DepartureDate.Format(model.DateLayout), h.DepartureTime, until,
			nullIfEmpty(h.SpecialRequests), h.CreatedAt.UTC(), h.UpdatedAt.UTC())
	}
	if _, err := tx.ExecContext(ctx, sb.String(), ins...); err != nil {
		switch {
		case isDuplicateKey(err):
			return fmt.Errorf("seat already held or confirmed: %w", ErrConflict)
		case isLockConflict(err):
			return fmt.Errorf("concurrent hold on the same trip: %v: %w", err, ErrConflict)
		}
		return fmt.Errorf("insert holds: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit holds: %w", err)
	}
	committed = true
	return nil
}

// ConfirmGroup moves the group's unexpired RESERVED bookings to CONFIRMED
// and clears reserved_until.  It returns the number of rows confirmed;
// zero means nothing was pending (already confirmed, cancelled, expired or
// unknown group).
func (r *BookingRepo) ConfirmGroup(ctx context.Context, groupID string, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE seat_bookings SET status = 'CONFIRMED', reserved_until = NULL, updated_at = ?
WHERE booking_group_id = ? AND status = 'RESERVED' AND reserved_until > ?`,
		now.UTC(), groupID, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("confirm group: %w", err)
	}
	return res.RowsAffected()
}

// CancelGroup moves the group's RESERVED and CONFIRMED bookings to
// CANCELLED and returns the number of rows changed.
func (r *BookingRepo) CancelGroup(ctx context.Context, groupID string, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE seat_bookings SET status = 'CANCELLED', updated_at = ?
WHERE booking_group_id = ? AND status IN ('RESERVED', 'CONFIRMED')`,
		now.UTC(), groupID)
	if err != nil {
		return 0, fmt.Errorf("cancel group: %w", err)
	}
	return res.RowsAffected()
}

// CancelExpired cancels every RESERVED booking whose hold expired at or
// before now.  It is a single idempotent statement and returns the number
// of rows reclaimed.
func (r *BookingRepo) CancelExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE seat_bookings SET status = 'CANCELLED', updated_at = ?
WHERE status = 'RESERVED' AND reserved_until <= ?`,
		now.UTC(), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("cancel expired holds: %w", err)
	}
	return res.RowsAffected()
}

// ConfirmedSeatCounts aggregates confirmed bookings of a vehicle within
// the inclusive departure date range by seat type, position and floor.
func (r *BookingRepo) ConfirmedSeatCounts(ctx context.Context, vehicleID string, dr model.DateRange) ([]model.SeatCountRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.seat_type, s.position, s.floor, COUNT(*)
FROM seat_bookings b
JOIN vehicle_seats s ON s.id = b.vehicle_seat_id
JOIN vehicle_layouts l ON l.id = s.layout_id
WHERE l.vehicle_id = ? AND b.status = 'CONFIRMED' AND b.departure_date BETWEEN ? AND ?
GROUP BY s.seat_type, s.position, s.floor`,
		vehicleID, dr.From.Format(model.DateLayout), dr.To.Format(model.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("query seat statistics: %w", err)
	}
	defer rows.Close()
	out := make([]model.SeatCountRow, 0)
	for rows.Next() {
		var row model.SeatCountRow
		var seatType, position string
		if err := rows.Scan(&seatType, &position, &row.Floor, &row.Count); err != nil {
			return nil, fmt.Errorf("scan seat statistics: %w", err)
		}
		row.SeatType = model.SeatType(seatType)
		row.Position = model.SeatPosition(position)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seat statistics: %w", err)
	}
	return out, nil
}

func (r *BookingRepo) query(ctx context.Context, q string, args ...interface{}) ([]model.SeatBooking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()
	out := make([]model.SeatBooking, 0)
	for rows.Next() {
		var b model.SeatBooking
		var status string
		var age sql.NullInt64
		var until sql.NullTime
		var requests sql.NullString
		if err := rows.Scan(&b.ID, &b.ScheduleID, &b.VehicleSeatID, &b.BookingGroupID, &b.OwnerID,
			&b.PassengerName, &b.PassengerPhone, &b.PassengerIDNumber, &age, &b.PassengerGender,
			&status, &b.DepartureDate, &b.DepartureTime, &until, &requests,
			&b.CreatedAt, &b.UpdatedAt, &b.SeatNumber, &b.Floor); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		b.Status = model.BookingStatus(status)
		if age.Valid {
			a := int(age.Int64)
			b.PassengerAge = &a
		}
		if until.Valid {
			t := until.Time.UTC()
			b.ReservedUntil = &t
		}
		b.SpecialRequests = requests.String
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return out, nil
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// nullIfEmpty stores optional strings as NULL.
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
