package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-seat-reservation/internal/service"
)

// writeError maps service errors to HTTP responses.  Unknown errors are
// logged and reported as a generic 500.
func writeError(c echo.Context, log logrus.FieldLogger, err error) error {
	var (
		validation service.ValidationError
		invalid    service.ConfigurationInvalidError
		notFound   service.NotFoundError
		conflict   service.ConflictError
		forbidden  service.ForbiddenError
	)
	switch {
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Error(), "field": validation.Field})
	case errors.As(err, &invalid):
		body := echo.Map{"error": invalid.Error(), "field": invalid.Field}
		if invalid.Expected != 0 || invalid.Actual != 0 {
			body["expected"] = invalid.Expected
			body["actual"] = invalid.Actual
		}
		if invalid.Key != "" {
			body["key"] = invalid.Key
		}
		return c.JSON(http.StatusUnprocessableEntity, body)
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFound.Error()})
	case errors.As(err, &forbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": forbidden.Error()})
	case errors.As(err, &conflict):
		body := echo.Map{"error": conflict.Error()}
		if len(conflict.Seats) > 0 {
			body["seats"] = conflict.Seats
		}
		return c.JSON(http.StatusConflict, body)
	case errors.Is(err, context.DeadlineExceeded):
		log.WithError(err).WithField("path", c.Path()).Warn("request timed out")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "request timed out"})
	default:
		log.WithError(err).WithField("path", c.Path()).Error("request failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
