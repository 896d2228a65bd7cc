// Package apperror defines the error taxonomy shared by services and the
// HTTP surface.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vidstream/backend/internal/repositories"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrRevokedOrStale  = errors.New("credential revoked or stale")
	ErrConflict        = errors.New("conflict")
	ErrUpload          = errors.New("media upload failed")
	ErrDelete          = errors.New("media delete failed")
	ErrUnavailable     = errors.New("dependency unavailable")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // safe to show to clients
	Field   string // optional input field at fault
	Cause   error  // underlying failure, logged but never rendered
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func InvalidInput(field, message string) *AppError {
	return &AppError{Err: ErrInvalidInput, Message: message, Field: field}
}

func NotFound(resource, id string) *AppError {
	msg := fmt.Sprintf("%s not found", resource)
	if id != "" {
		msg = fmt.Sprintf("%s not found with id %s", resource, id)
	}
	return &AppError{Err: ErrNotFound, Message: msg}
}

func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

func Unauthenticated(message string) *AppError {
	return &AppError{Err: ErrUnauthenticated, Message: message}
}

func RevokedOrStale(message string) *AppError {
	return &AppError{Err: ErrRevokedOrStale, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

func UploadFailed(asset string, cause error) *AppError {
	return &AppError{Err: ErrUpload, Message: fmt.Sprintf("failed to upload %s", asset), Cause: cause}
}

func DeleteFailed(asset string, cause error) *AppError {
	return &AppError{Err: ErrDelete, Message: fmt.Sprintf("failed to delete %s", asset), Cause: cause}
}

func Unavailable(cause error) *AppError {
	return &AppError{Err: ErrUnavailable, Message: "service temporarily unavailable", Cause: cause}
}

// FromStore translates a repository error into the taxonomy. Errors that
// are not repository sentinels are returned wrapped and map to 500.
func FromStore(err error, resource, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return NotFound(resource, id)
	case errors.Is(err, repositories.ErrConflict):
		return Conflict(fmt.Sprintf("%s already exists", resource))
	case errors.Is(err, repositories.ErrUnavailable):
		return Unavailable(err)
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s store: %w", resource, err)
}

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrRevokedOrStale):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUpload), errors.Is(err, ErrDelete):
		return http.StatusBadGateway
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the text that may be shown to a client for err.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

// FieldOf returns the offending input field of err, if any.
func FieldOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
