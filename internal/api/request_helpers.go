package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/cityinfo-api/internal/api/shared"
	"github.com/phrazzld/cityinfo-api/internal/domain"
)

// getPathID extracts a positive integer ID from the URL path parameters.
//
// Parameters:
//   - r: The HTTP request
//   - paramName: The name of the path parameter to extract
//
// Returns:
//   - (id, nil): The parsed ID if valid
//   - (0, error): A *domain.ValidationError if the parameter is missing or not an integer
func getPathID(r *http.Request, paramName string) (int, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, fmt.Sprintf("The %s field is required.", paramName))
	}

	id, err := strconv.Atoi(pathParam)
	if err != nil {
		return 0, domain.NewValidationError(paramName, fmt.Sprintf("The value '%s' is not valid.", pathParam))
	}

	return id, nil
}

// handlePathIDs extracts each named path ID in order. It writes a validation
// problem and returns false if any of them is invalid.
func handlePathIDs(w http.ResponseWriter, r *http.Request, paramNames ...string) ([]int, bool) {
	ids := make([]int, 0, len(paramNames))
	verr := &domain.ValidationError{}
	for _, name := range paramNames {
		id, err := getPathID(r, name)
		if err != nil {
			verr.Merge(asValidationError(err))
			continue
		}
		ids = append(ids, id)
	}
	if verr.HasErrors() {
		shared.RespondWithValidationError(w, r, verr)
		return nil, false
	}
	return ids, true
}

// queryInt parses an optional positive integer query parameter. present is
// false when the parameter is absent.
func queryInt(r *http.Request, name string, verr *domain.ValidationError) (value int, present bool) {
	q := r.URL.Query()
	if !q.Has(name) {
		return 0, false
	}
	raw := q.Get(name)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		verr.Add(name, fmt.Sprintf("The value '%s' is not valid for %s.", raw, name))
		return 0, true
	}
	return n, true
}

// queryBool parses an optional boolean query parameter, defaulting to false.
func queryBool(r *http.Request, name string, verr *domain.ValidationError) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		verr.Add(name, fmt.Sprintf("The value '%s' is not valid for %s.", raw, name))
		return false
	}
	return b
}
