// Package apperr defines the error taxonomy shared by the domain services
// and the HTTP boundary. Services return typed errors; the echo error
// handler maps each type to a fixed status code and a field-keyed JSON body
// (field name, or a synthetic key such as "conflicting_slots", to a list of
// human-readable messages).
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Fields maps a field name (or synthetic key) to its error messages.
type Fields map[string][]string

// AuthenticationError signals that no valid principal was presented.
type AuthenticationError struct{}

func (e *AuthenticationError) Error() string { return "authentication required" }

// PermissionError signals that the principal lacks rights for the action,
// either at collection or object level.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	if e.Reason == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Reason
}

// NotFoundError signals that a referenced resource does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// ValidationError carries one or more field-level validation failures.
type ValidationError struct {
	Fields Fields
}

func (e *ValidationError) Error() string {
	for field, msgs := range e.Fields {
		if len(msgs) > 0 {
			return fmt.Sprintf("validation failed: %s: %s", field, msgs[0])
		}
	}
	return "validation failed"
}

// AuthenticationRequired returns the canonical unauthenticated error.
func AuthenticationRequired() error { return &AuthenticationError{} }

// PermissionDenied returns a PermissionError with an optional reason.
func PermissionDenied(reason string) error { return &PermissionError{Reason: reason} }

// NotFound returns a NotFoundError for the named resource.
func NotFound(resource string) error { return &NotFoundError{Resource: resource} }

// Validation returns a ValidationError for the given fields.
func Validation(fields Fields) error { return &ValidationError{Fields: fields} }

// FieldError returns a single-field ValidationError.
func FieldError(field string, messages ...string) error {
	return &ValidationError{Fields: Fields{field: messages}}
}

// SlotConflict returns the booking-conflict error. The slot list holds the
// 12-hour formatted times of every existing appointment on the requested
// date.
func SlotConflict(slots []string) error {
	return &ValidationError{Fields: Fields{"conflicting_slots": slots}}
}

// DuplicateAvatar returns the error for creating a second avatar for a user.
func DuplicateAvatar() error {
	return &ValidationError{Fields: Fields{"avatar": {"Avatar already exists for this user."}}}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// HTTPErrorHandler returns an echo error handler that maps the taxonomy to
// status codes: 401 AuthenticationError, 403 PermissionError,
// 400 ValidationError, 404 NotFoundError. Anything else is a 500, logged
// with its request id.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		var body interface{} = Fields{"detail": {"Internal server error."}}

		var (
			authErr *AuthenticationError
			permErr *PermissionError
			valErr  *ValidationError
			nfErr   *NotFoundError
			httpErr *echo.HTTPError
		)
		switch {
		case errors.As(err, &authErr):
			status = http.StatusUnauthorized
			body = Fields{"user": {"Invalid user."}}
		case errors.As(err, &permErr):
			status = http.StatusForbidden
			msg := "You do not have permission to perform this action."
			if permErr.Reason != "" {
				msg = permErr.Reason
			}
			body = Fields{"detail": {msg}}
		case errors.As(err, &valErr):
			status = http.StatusBadRequest
			body = valErr.Fields
		case errors.As(err, &nfErr):
			status = http.StatusNotFound
			body = Fields{"detail": {"Not found."}}
		case errors.As(err, &httpErr):
			status = httpErr.Code
			body = Fields{"detail": {fmt.Sprintf("%v", httpErr.Message)}}
		default:
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("path", c.Request().URL.Path).
				Msg("unhandled error")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("failed to write error response")
		}
	}
}
