package service

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationInvalidError reports an internally inconsistent layout
// description.  Expected/Actual carry the mismatching counts when the
// problem is a count; Key names the offending seat for duplicates.
type ConfigurationInvalidError struct {
	Field    string
	Msg      string
	Expected int
	Actual   int
	Key      string
	Err      error
}

func (e ConfigurationInvalidError) Error() string {
	var b strings.Builder
	b.WriteString("configuration invalid")
	if e.Field != "" {
		b.WriteString(": " + e.Field)
	}
	if e.Msg != "" {
		b.WriteString(": " + e.Msg)
	}
	if e.Expected != 0 || e.Actual != 0 {
		fmt.Fprintf(&b, " (expected %d, got %d)", e.Expected, e.Actual)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " [%s]", e.Key)
	}
	return b.String()
}

func (e ConfigurationInvalidError) Unwrap() error { return e.Err }

// NotFoundError reports a missing layout, seat, vehicle or booking group.
type NotFoundError struct {
	Resource string
	ID       string
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource != "" && e.ID != "":
		return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
	case e.Resource != "":
		return fmt.Sprintf("%s not found", e.Resource)
	default:
		return "not found"
	}
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ConflictError reports seats that are no longer available, either found
// by the availability check or rejected by the storage constraint.  It is
// retryable after the caller reloads the seat map.
type ConflictError struct {
	Resource string
	Msg      string
	Seats    []string
	Err      error
}

func (e ConflictError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "conflict"
	}
	if e.Resource != "" {
		msg = e.Resource + " conflict: " + msg
	}
	if len(e.Seats) > 0 {
		msg += " [" + strings.Join(e.Seats, ", ") + "]"
	}
	return msg
}

func (e ConflictError) Unwrap() error { return e.Err }

// ValidationError reports a malformed request.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Field != "" && e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

// ForbiddenError reports a caller acting on a booking group it does not
// own.
type ForbiddenError struct {
	Resource string
	ID       string
}

func (e ForbiddenError) Error() string {
	if e.Resource == "" {
		return "forbidden"
	}
	return fmt.Sprintf("%s %s belongs to another customer", e.Resource, e.ID)
}

func IsConfigurationInvalid(err error) bool {
	var target ConfigurationInvalidError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}
