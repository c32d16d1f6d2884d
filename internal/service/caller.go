package service

import (
	"context"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
)

// Caller is the authenticated party acting on bookings.  Privileged
// callers (operators, the payment callback) may act on any booking group;
// everyone else only on groups they created.
type Caller struct {
	ID         string
	Privileged bool
}

type callerKey struct{}

// WithCaller attaches c to ctx.  Without a caller the services run as
// trusted internal code and skip ownership checks.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func callerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}

// authorizeGroup rejects a non-privileged caller that does not own every
// row of the group.  Rows without an owner are only reachable by
// privileged callers.
func authorizeGroup(ctx context.Context, groupID string, rows []model.SeatBooking) error {
	c, ok := callerFrom(ctx)
	if !ok || c.Privileged {
		return nil
	}
	for _, b := range rows {
		if b.OwnerID == "" || b.OwnerID != c.ID {
			return ForbiddenError{Resource: "booking group", ID: groupID}
		}
	}
	return nil
}
