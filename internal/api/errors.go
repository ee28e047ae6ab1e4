package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/cityinfo-api/internal/api/shared"
	"github.com/phrazzld/cityinfo-api/internal/domain"
	"github.com/phrazzld/cityinfo-api/internal/store"
)

// UnexpectedFaultMessage is the only detail a client sees for a server error.
const UnexpectedFaultMessage = "An unexpected fault happened. Try again later."

// errSaveFailed is reported when the store accepted a commit but reported it
// did not succeed.
var errSaveFailed = errors.New("save changes reported failure")

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrCityNotFound),
		errors.Is(err, store.ErrPointOfInterestNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrInvalidBody):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return UnexpectedFaultMessage
	}

	switch {
	case errors.Is(err, store.ErrCityNotFound):
		return "City not found"
	case errors.Is(err, store.ErrPointOfInterestNotFound):
		return "Point of interest not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"
	case errors.Is(err, domain.ErrValidation):
		return shared.ValidationTitle
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity"
	case errors.Is(err, shared.ErrInvalidBody):
		return "Invalid request format"
	default:
		return UnexpectedFaultMessage
	}
}

// handleError writes the response for err. Not-found errors produce an
// empty 404, validation errors a validation problem, anything else an opaque
// error body with the detail logged server-side.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)

	var verr *domain.ValidationError
	switch {
	case status == http.StatusNotFound:
		shared.RespondNotFound(w, r, GetSafeErrorMessage(err))
	case errors.As(err, &verr) && verr.HasErrors():
		shared.RespondWithValidationError(w, r, verr)
	default:
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
	}
}

// asValidationError returns err as a *domain.ValidationError, wrapping any
// other error under a generic key.
func asValidationError(err error) *domain.ValidationError {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return domain.NewValidationError("request", err.Error())
}
