// Package router registers the HTTP routes and their middleware.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-seat-reservation/internal/config"
	"github.com/iliyamo/vehicle-seat-reservation/internal/handler"
	"github.com/iliyamo/vehicle-seat-reservation/internal/middleware"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Layouts  *handler.LayoutHandler
	Bookings *handler.BookingHandler
	Reports  *handler.ReportHandler
	DB       handler.Pinger
}

// Options carries the middleware settings.  A nil Redis client turns
// rate limiting and response caching into pass-throughs.
type Options struct {
	JWTSecret      string
	RequestTimeout time.Duration
	Redis          *redis.Client
	RateLimit      config.RateLimitConfig
	Cache          config.CacheConfig
	Log            logrus.FieldLogger
}

// New builds the echo instance with global middleware and every route.
func New(h Handlers, opts Options) *echo.Echo {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(opts.Log))
	if opts.RequestTimeout > 0 {
		e.Use(middleware.Timeout(opts.RequestTimeout))
	}

	RegisterRoutes(e, h.DB)
	RegisterLayouts(e, h.Layouts, opts)
	RegisterBookings(e, h.Bookings, opts)
	RegisterReports(e, h.Reports, opts)
	return e
}

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterLayouts registers layout and seat management.  Reading a layout
// is public and response-cached; changes need the OPERATOR role and evict
// the cached layouts once they succeed.
func RegisterLayouts(e *echo.Echo, l *handler.LayoutHandler, opts Options) {
	e.GET("/v1/layouts/:id", l.GetLayout, middleware.ResponseCache(opts.Cache, opts.Redis))

	g := e.Group("/v1",
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RequireRole(middleware.RoleOperator),
		middleware.EvictCache(opts.Cache, opts.Redis, opts.Log),
	)
	g.POST("/layouts", l.CreateLayout)
	g.POST("/layouts/:id/duplicate", l.DuplicateLayout)
	g.DELETE("/layouts/:id", l.DeactivateLayout)
	g.PATCH("/seats/:id/status", l.SetSeatStatus)
}

// RegisterBookings registers the seat map and the booking lifecycle.  The
// seat map is public and never cached; an operator token unlocks passenger
// details on it.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, opts Options) {
	e.GET("/v1/vehicles/:vehicleId/schedules/:scheduleId/seat-map", b.SeatMap, middleware.OptionalJWTAuth(opts.JWTSecret))

	auth := middleware.JWTAuth(opts.JWTSecret)
	customers := middleware.RequireRole(middleware.RoleCustomer, middleware.RoleOperator)
	payments := middleware.RequireRole(middleware.RolePayment, middleware.RoleOperator)

	g := e.Group("/v1/bookings", auth)
	g.POST("", b.BookSeats, customers, middleware.NewTokenBucket(opts.RateLimit, opts.Redis, opts.Log))
	g.GET("/:groupId", b.GetBookingGroup, customers)
	g.POST("/:groupId/confirm", b.ConfirmBooking, payments)
	g.POST("/:groupId/cancel", b.CancelBooking, customers)
}

// RegisterReports registers operator statistics and maintenance.
func RegisterReports(e *echo.Echo, r *handler.ReportHandler, opts Options) {
	g := e.Group("/v1",
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RequireRole(middleware.RoleOperator),
	)
	g.GET("/vehicles/:vehicleId/seat-statistics", r.SeatStatistics)
	g.POST("/admin/reservations/cleanup", r.CleanupReservations)
}
