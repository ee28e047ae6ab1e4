package store

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/phrazzld/cityinfo-api/internal/domain"
)

const allCitiesKey = "cities:all"

type cachedSearch struct {
	cities   []domain.City
	metadata PaginationMetadata
}

// CachedRepositoryFactory decorates a RepositoryFactory so that city listings
// are served from an in-process cache. Cities are read-only through the API,
// so listings are only expired by time. Point of interest operations are
// passed through untouched.
type CachedRepositoryFactory struct {
	next  RepositoryFactory
	cache *cache.Cache
}

// NewCachedRepositoryFactory wraps next with a listing cache whose entries
// live for ttl.
func NewCachedRepositoryFactory(next RepositoryFactory, ttl time.Duration) *CachedRepositoryFactory {
	return &CachedRepositoryFactory{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// NewRepository implements RepositoryFactory.
func (f *CachedRepositoryFactory) NewRepository() CityInfoRepository {
	return &cachedRepository{
		CityInfoRepository: f.next.NewRepository(),
		cache:              f.cache,
	}
}

// Ping forwards to the wrapped store when it supports health checks.
func (f *CachedRepositoryFactory) Ping(ctx context.Context) error {
	if p, ok := f.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

type cachedRepository struct {
	CityInfoRepository
	cache *cache.Cache
}

func (r *cachedRepository) GetCities(ctx context.Context) ([]domain.City, error) {
	if v, found := r.cache.Get(allCitiesKey); found {
		return cloneCities(v.([]domain.City)), nil
	}

	cities, err := r.CityInfoRepository.GetCities(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(allCitiesKey, cloneCities(cities))
	return cities, nil
}

func (r *cachedRepository) SearchCities(
	ctx context.Context,
	filter CityFilter,
) ([]domain.City, PaginationMetadata, error) {
	filter = filter.Normalize()
	key := fmt.Sprintf("cities:search:%q:%q:%d:%d",
		filter.Name, filter.SearchQuery, filter.PageNumber, filter.PageSize)

	if v, found := r.cache.Get(key); found {
		hit := v.(cachedSearch)
		return cloneCities(hit.cities), hit.metadata, nil
	}

	cities, metadata, err := r.CityInfoRepository.SearchCities(ctx, filter)
	if err != nil {
		return nil, PaginationMetadata{}, err
	}
	r.cache.SetDefault(key, cachedSearch{cities: cloneCities(cities), metadata: metadata})
	return cities, metadata, nil
}

func cloneCities(in []domain.City) []domain.City {
	out := make([]domain.City, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
