package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/cityinfo-api/internal/api/shared"
	"github.com/phrazzld/cityinfo-api/internal/domain"
	"github.com/phrazzld/cityinfo-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "nil error",
			err:            nil,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "city not found",
			err:            store.ErrCityNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "wrapped point of interest not found",
			err:            fmt.Errorf("lookup: %w", store.ErrPointOfInterestNotFound),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "validation error",
			err:            domain.NewValidationError("name", "required"),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid entity",
			err:            store.NewStoreError("point_of_interest", "insert", store.ErrInvalidEntity),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid body",
			err:            fmt.Errorf("%w: unexpected EOF", shared.ErrInvalidBody),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown error",
			err:            errors.New("connection reset"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStatus, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: UnexpectedFaultMessage},
		{name: "city not found", err: store.ErrCityNotFound, expected: "City not found"},
		{name: "point of interest not found", err: store.ErrPointOfInterestNotFound, expected: "Point of interest not found"},
		{name: "validation", err: domain.NewValidationError("name", "required"), expected: shared.ValidationTitle},
		{name: "invalid body", err: shared.ErrInvalidBody, expected: "Invalid request format"},
		{
			name:     "internal detail is hidden",
			err:      errors.New(`pq: relation "cities" does not exist at /var/lib/db`),
			expected: UnexpectedFaultMessage,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestAsValidationError(t *testing.T) {
	verr := domain.NewValidationError("id", "bad")
	assert.Same(t, verr, asValidationError(fmt.Errorf("wrapped: %w", verr)))

	other := asValidationError(errors.New("boom"))
	assert.Equal(t, map[string][]string{"request": {"boom"}}, other.Fields)
}
