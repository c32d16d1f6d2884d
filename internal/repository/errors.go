// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow the service layer to tell a
// missing row apart from a storage-level conflict without inspecting
// driver errors itself.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested layout, seat or booking
// group does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness constraint,
// most importantly the one-active-booking-per-seat-and-trip index on
// seat_bookings. Callers should treat it as "seat no longer available".
var ErrConflict = errors.New("conflict")

// MySQL server error numbers the repositories translate.
const (
	mysqlDuplicateEntry  = 1062 // ER_DUP_ENTRY
	mysqlLockWaitTimeout = 1205 // ER_LOCK_WAIT_TIMEOUT
	mysqlDeadlock        = 1213 // ER_LOCK_DEADLOCK
)

// isDuplicateKey reports whether err is a MySQL duplicate key violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// isLockConflict reports whether InnoDB aborted the statement because a
// concurrent transaction held the rows or gaps it needed.  For seat holds
// that means another writer won the race.
func isLockConflict(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == mysqlDeadlock || me.Number == mysqlLockWaitTimeout
}
