package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
)

// ReportHandler serves operator-only statistics and maintenance.
type ReportHandler struct {
	Stats   StatisticsService
	Sweeper Sweeper
	Log     logrus.FieldLogger
}

func NewReportHandler(stats StatisticsService, sweeper Sweeper, log logrus.FieldLogger) *ReportHandler {
	if stats == nil || sweeper == nil {
		panic("nil service passed to NewReportHandler")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ReportHandler{Stats: stats, Sweeper: sweeper, Log: log}
}

// SeatStatistics handles GET /v1/vehicles/:vehicleId/seat-statistics?from=&to=.
func (h *ReportHandler) SeatStatistics(c echo.Context) error {
	from, err := parseDate("from", c.QueryParam("from"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	to, err := parseDate("to", c.QueryParam("to"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	stats, err := h.Stats.SeatStatistics(c.Request().Context(), c.Param("vehicleId"), model.DateRange{From: from, To: to})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// CleanupReservations handles POST /v1/admin/reservations/cleanup.
func (h *ReportHandler) CleanupReservations(c echo.Context) error {
	res, err := h.Sweeper.CleanupExpiredReservations(c.Request().Context())
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}
