package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-seat-reservation/internal/service"
)

// RequestValidator plugs go-playground/validator into echo.Context.Validate.
type RequestValidator struct {
	v *validator.Validate
}

// NewValidator returns the validator registered on the echo instance.
func NewValidator() *RequestValidator {
	return &RequestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator.
func (r *RequestValidator) Validate(i interface{}) error {
	return r.v.Struct(i)
}

// bindAndValidate decodes the body into dst and runs struct validation.
// Failures come back as service.ValidationError.
func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return service.ValidationError{Field: "body", Msg: "invalid request body"}
	}
	if err := c.Validate(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return service.ValidationError{
				Field: strings.ToLower(fe.Field()),
				Msg:   fmt.Sprintf("failed %q validation", fe.Tag()),
			}
		}
		return service.ValidationError{Field: "body", Msg: err.Error()}
	}
	return nil
}
