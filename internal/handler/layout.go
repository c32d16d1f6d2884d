package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
)

// LayoutHandler serves layout and seat management for operators.
type LayoutHandler struct {
	Layouts LayoutService
	Log     logrus.FieldLogger
}

// NewLayoutHandler panics when svc is nil.
func NewLayoutHandler(svc LayoutService, log logrus.FieldLogger) *LayoutHandler {
	if svc == nil {
		panic("nil layout service passed to NewLayoutHandler")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LayoutHandler{Layouts: svc, Log: log}
}

// CreateLayout handles POST /v1/layouts.
func (h *LayoutHandler) CreateLayout(c echo.Context) error {
	var spec model.LayoutSpec
	if err := c.Bind(&spec); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	layout, err := h.Layouts.CreateLayout(c.Request().Context(), spec)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, layout)
}

// GetLayout handles GET /v1/layouts/:id.
func (h *LayoutHandler) GetLayout(c echo.Context) error {
	layout, err := h.Layouts.GetLayout(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, layout)
}

type duplicateLayoutRequest struct {
	VehicleID string `json:"vehicle_id" validate:"required"`
	Name      string `json:"name"`
}

// DuplicateLayout handles POST /v1/layouts/:id/duplicate.
func (h *LayoutHandler) DuplicateLayout(c echo.Context) error {
	var req duplicateLayoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, h.Log, err)
	}
	layout, err := h.Layouts.DuplicateLayout(c.Request().Context(), c.Param("id"), req.VehicleID, req.Name)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, layout)
}

// DeactivateLayout handles DELETE /v1/layouts/:id.  Nothing is deleted;
// the layout stops being the vehicle's active layout.
func (h *LayoutHandler) DeactivateLayout(c echo.Context) error {
	if err := h.Layouts.DeactivateLayout(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type seatStatusRequest struct {
	Status model.SeatStatus `json:"status" validate:"required,oneof=ACTIVE INACTIVE"`
}

// SetSeatStatus handles PATCH /v1/seats/:id/status.
func (h *LayoutHandler) SetSeatStatus(c echo.Context) error {
	var req seatStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, h.Log, err)
	}
	if err := h.Layouts.SetSeatStatus(c.Request().Context(), c.Param("id"), req.Status); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
