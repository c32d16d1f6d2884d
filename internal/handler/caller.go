package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-seat-reservation/internal/middleware"
	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
	"github.com/iliyamo/vehicle-seat-reservation/internal/service"
)

// callerContext returns the request context carrying the identity set by
// middleware.JWTAuth.  Operators and the payment callback act on any
// booking group.
func callerContext(c echo.Context) context.Context {
	ctx := c.Request().Context()
	uid, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	return service.WithCaller(ctx, service.Caller{
		ID:         uid,
		Privileged: isPrivileged(role),
	})
}

func isPrivileged(role string) bool {
	return role == middleware.RoleOperator || role == middleware.RolePayment
}

// redactSeatMap strips who booked each seat.  Only operators see
// passenger names and booking groups on the seat map.
func redactSeatMap(c echo.Context, sm *model.SeatMap) {
	if role, _ := c.Get("role").(string); role == middleware.RoleOperator {
		return
	}
	for i := range sm.Floors {
		for j := range sm.Floors[i].Seats {
			sm.Floors[i].Seats[j].PassengerName = ""
			sm.Floors[i].Seats[j].BookingGroupID = ""
		}
	}
}
