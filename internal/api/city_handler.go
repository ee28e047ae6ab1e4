package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/phrazzld/cityinfo-api/internal/api/shared"
	"github.com/phrazzld/cityinfo-api/internal/domain"
	"github.com/phrazzld/cityinfo-api/internal/platform/logger"
	"github.com/phrazzld/cityinfo-api/internal/store"
)

// PaginationHeader carries the paging metadata of a filtered city listing.
const PaginationHeader = "X-Pagination"

// CityHandler handles city-related HTTP requests
type CityHandler struct {
	repos  store.RepositoryFactory
	logger *slog.Logger
}

// NewCityHandler creates a new CityHandler
func NewCityHandler(repos store.RepositoryFactory, logger *slog.Logger) *CityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CityHandler{
		repos:  repos,
		logger: logger.With(slog.String("component", "city_handler")),
	}
}

// GetCities handles GET /api/cities requests.
//
// Without query parameters every city is returned in the reduced view. When
// any of name, searchQuery, pageNumber or pageSize is given the listing is
// filtered and paged, and the paging metadata is sent in the X-Pagination
// header.
func (h *CityHandler) GetCities(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	filter, filtered, verr := parseCityFilter(r)
	if verr.HasErrors() {
		shared.RespondWithValidationError(w, r, verr)
		return
	}

	repo := h.repos.NewRepository()

	if !filtered {
		cities, err := repo.GetCities(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		shared.Respond(w, r, http.StatusOK, shared.List("Cities", ToCityWithoutPointsOfInterestDtos(cities)))
		return
	}

	cities, meta, err := repo.SearchCities(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}

	header, err := json.Marshal(meta)
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set(PaginationHeader, string(header))

	log.Debug("filtered cities",
		slog.String("name", filter.Name),
		slog.String("search_query", filter.SearchQuery),
		slog.Int("total", meta.TotalItemCount))

	shared.Respond(w, r, http.StatusOK, shared.List("Cities", ToCityWithoutPointsOfInterestDtos(cities)))
}

// GetCity handles GET /api/cities/{id} requests. The full view is returned
// when includePointsOfInterest is true, the reduced view otherwise.
func (h *CityHandler) GetCity(w http.ResponseWriter, r *http.Request) {
	ids, ok := handlePathIDs(w, r, "id")
	if !ok {
		return
	}

	verr := &domain.ValidationError{}
	include := queryBool(r, "includePointsOfInterest", verr)
	if verr.HasErrors() {
		shared.RespondWithValidationError(w, r, verr)
		return
	}

	city, err := h.repos.NewRepository().GetCity(r.Context(), ids[0], include)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if include {
		shared.Respond(w, r, http.StatusOK, ToCityDto(*city))
		return
	}
	shared.Respond(w, r, http.StatusOK, ToCityWithoutPointsOfInterestDto(*city))
}

// parseCityFilter reads the listing query parameters. filtered reports
// whether any of them was supplied.
func parseCityFilter(r *http.Request) (store.CityFilter, bool, *domain.ValidationError) {
	q := r.URL.Query()
	verr := &domain.ValidationError{}

	filter := store.CityFilter{
		Name:        q.Get("name"),
		SearchQuery: q.Get("searchQuery"),
	}
	pageNumber, hasPageNumber := queryInt(r, "pageNumber", verr)
	pageSize, hasPageSize := queryInt(r, "pageSize", verr)
	filter.PageNumber = pageNumber
	filter.PageSize = pageSize

	filtered := q.Has("name") || q.Has("searchQuery") || hasPageNumber || hasPageSize
	return filter, filtered, verr
}
