// internal/common/apperr/errors.go
// Error kinds shared by the discovery and moderation modules.
// Domain packages wrap these with %w so handlers can map them with errors.Is.

package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrSelfAction = errors.New("action not allowed on yourself")
	ErrForbidden  = errors.New("admin privileges required")

	// ErrConflict means a concurrent update on the same entity won the race.
	// Callers may retry.
	ErrConflict = errors.New("concurrent update conflict")
)

// HTTPStatus maps an error to the status code the API responds with
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSelfAction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable reports whether the caller can safely retry the operation
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
