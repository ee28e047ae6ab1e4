package store

import (
	"context"
	"math"
	"strings"

	"github.com/phrazzld/cityinfo-api/internal/domain"
)

// Paging defaults for filtered city listings.
const (
	// DefaultPageSize is used when the caller does not ask for a page size.
	DefaultPageSize = 10

	// MaxPageSize caps the number of cities returned by one filtered listing.
	MaxPageSize = 20
)

// CityFilter selects and pages cities. Name matches exactly after trimming;
// SearchQuery matches as a case-sensitive substring of the name or the
// description. Both conditions combine conjunctively when both are set.
type CityFilter struct {
	Name        string
	SearchQuery string
	PageNumber  int
	PageSize    int
}

// Normalize trims the text criteria and applies paging defaults and the page
// size cap. The page number is capped so Offset cannot overflow; such a page
// is always past the end of the listing. It never fails; callers validate raw
// input before building a filter.
func (f CityFilter) Normalize() CityFilter {
	f.Name = strings.TrimSpace(f.Name)
	f.SearchQuery = strings.TrimSpace(f.SearchQuery)
	if f.PageNumber < 1 {
		f.PageNumber = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if maxPage := math.MaxInt/f.PageSize + 1; f.PageNumber > maxPage {
		f.PageNumber = maxPage
	}
	return f
}

// Offset returns the number of rows to skip for the filter's page.
func (f CityFilter) Offset() int {
	return (f.PageNumber - 1) * f.PageSize
}

// Matches reports whether city satisfies the filter's text criteria. It is
// used by stores that filter in process.
func (f CityFilter) Matches(city domain.City) bool {
	if f.Name != "" && city.Name != f.Name {
		return false
	}
	if f.SearchQuery != "" {
		inName := strings.Contains(city.Name, f.SearchQuery)
		inDescription := city.Description != nil && strings.Contains(*city.Description, f.SearchQuery)
		if !inName && !inDescription {
			return false
		}
	}
	return true
}

// PaginationMetadata describes one page of a filtered listing.
type PaginationMetadata struct {
	TotalItemCount int `json:"totalItemCount"`
	TotalPageCount int `json:"totalPageCount"`
	PageSize       int `json:"pageSize"`
	CurrentPage    int `json:"currentPage"`
}

// NewPaginationMetadata computes page counts for total items under filter f.
func NewPaginationMetadata(total int, f CityFilter) PaginationMetadata {
	pages := 0
	if f.PageSize > 0 {
		pages = int(math.Ceil(float64(total) / float64(f.PageSize)))
	}
	return PaginationMetadata{
		TotalItemCount: total,
		TotalPageCount: pages,
		PageSize:       f.PageSize,
		CurrentPage:    f.PageNumber,
	}
}

// CityInfoRepository is a request-scoped unit of work over cities and their
// points of interest.
//
// Reads go directly to the underlying store. AddPointOfInterestForCity,
// DeletePointOfInterest and edits made to entities returned by
// GetPointOfInterestForCity stay pending until SaveChanges applies them in
// one step. A repository must not be shared between requests.
type CityInfoRepository interface {
	// GetCities returns every city ordered by name, without points of interest.
	GetCities(ctx context.Context) ([]domain.City, error)

	// SearchCities returns one page of cities matching filter, ordered by name,
	// along with the paging metadata. The filter is normalized first.
	SearchCities(ctx context.Context, filter CityFilter) ([]domain.City, PaginationMetadata, error)

	// GetCity returns the city with the given ID. Its PointsOfInterest is
	// populated (possibly empty) only when includePointsOfInterest is true.
	// Returns ErrCityNotFound if the city does not exist.
	GetCity(ctx context.Context, cityID int, includePointsOfInterest bool) (*domain.City, error)

	// CityExists reports whether a city with the given ID exists.
	CityExists(ctx context.Context, cityID int) (bool, error)

	// GetPointsOfInterestForCity returns the city's points of interest ordered by ID.
	GetPointsOfInterestForCity(ctx context.Context, cityID int) ([]domain.PointOfInterest, error)

	// GetPointOfInterestForCity returns the point of interest with poiID only
	// if it belongs to cityID; otherwise it returns ErrPointOfInterestNotFound.
	// The returned entity is tracked: field edits are written by SaveChanges.
	GetPointOfInterestForCity(ctx context.Context, cityID, poiID int) (*domain.PointOfInterest, error)

	// AddPointOfInterestForCity attaches poi to the city. It is silently
	// ignored when the city does not exist; callers check existence first.
	// poi.ID is assigned by SaveChanges.
	AddPointOfInterestForCity(ctx context.Context, cityID int, poi *domain.PointOfInterest) error

	// DeletePointOfInterest marks poi for removal. It does not commit.
	DeletePointOfInterest(poi *domain.PointOfInterest)

	// SaveChanges commits the pending additions, edits and removals and
	// reports whether the underlying commit succeeded.
	SaveChanges(ctx context.Context) (bool, error)
}

// RepositoryFactory creates request-scoped repositories over one store.
type RepositoryFactory interface {
	NewRepository() CityInfoRepository
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
