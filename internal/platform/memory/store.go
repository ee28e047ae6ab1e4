package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/phrazzld/cityinfo-api/internal/domain"
	"github.com/phrazzld/cityinfo-api/internal/platform/logger"
	"github.com/phrazzld/cityinfo-api/internal/store"
)

// Store owns the in-memory city collection. Point of interest IDs are
// assigned as the maximum existing ID across all cities plus one.
type Store struct {
	mu     sync.RWMutex
	cities []domain.City
	logger *slog.Logger
}

// NewStore creates a store holding a copy of cities.
// If logger is nil, a default logger will be used.
func NewStore(cities []domain.City, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		cities: make([]domain.City, len(cities)),
		logger: logger.With(slog.String("component", "memory_store")),
	}
	for i, c := range cities {
		c = c.Clone()
		if c.PointsOfInterest == nil {
			c.PointsOfInterest = []domain.PointOfInterest{}
		}
		for j := range c.PointsOfInterest {
			c.PointsOfInterest[j].CityID = c.ID
		}
		s.cities[i] = c
	}
	return s
}

// Ensure Store implements the factory and health interfaces.
var (
	_ store.RepositoryFactory = (*Store)(nil)
	_ store.Pinger            = (*Store)(nil)
)

// NewRepository implements store.RepositoryFactory.
func (s *Store) NewRepository() store.CityInfoRepository {
	return &Repository{store: s}
}

// Ping implements store.Pinger. The in-memory store is always available.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// cityIndex returns the position of the city in s.cities, or -1.
// Callers must hold s.mu.
func (s *Store) cityIndex(cityID int) int {
	for i := range s.cities {
		if s.cities[i].ID == cityID {
			return i
		}
	}
	return -1
}

// nextPointOfInterestID returns the max ID over all cities plus one.
// Callers must hold s.mu for writing.
func (s *Store) nextPointOfInterestID() int {
	maxID := 0
	for _, c := range s.cities {
		for _, p := range c.PointsOfInterest {
			if p.ID > maxID {
				maxID = p.ID
			}
		}
	}
	return maxID + 1
}

// sortedCities returns copies of all cities ordered by name, without points of
// interest. Callers must hold s.mu.
func (s *Store) sortedCities() []domain.City {
	out := make([]domain.City, 0, len(s.cities))
	for _, c := range s.cities {
		c := c.Clone()
		c.PointsOfInterest = nil
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

type trackedPointOfInterest struct {
	entity   *domain.PointOfInterest
	original domain.PointOfInterest
}

type pendingAddition struct {
	cityID int
	poi    *domain.PointOfInterest
}

// Repository is a request-scoped unit of work over a Store.
type Repository struct {
	store   *Store
	tracked []trackedPointOfInterest
	added   []pendingAddition
	deleted []*domain.PointOfInterest
}

// Ensure Repository implements store.CityInfoRepository interface
var _ store.CityInfoRepository = (*Repository)(nil)

// GetCities implements store.CityInfoRepository.GetCities
func (r *Repository) GetCities(ctx context.Context) ([]domain.City, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.sortedCities(), nil
}

// SearchCities implements store.CityInfoRepository.SearchCities
func (r *Repository) SearchCities(
	ctx context.Context,
	filter store.CityFilter,
) ([]domain.City, store.PaginationMetadata, error) {
	filter = filter.Normalize()

	r.store.mu.RLock()
	all := r.store.sortedCities()
	r.store.mu.RUnlock()

	matched := make([]domain.City, 0, len(all))
	for _, c := range all {
		if filter.Matches(c) {
			matched = append(matched, c)
		}
	}

	metadata := store.NewPaginationMetadata(len(matched), filter)
	start := filter.Offset()
	if start < 0 || start >= len(matched) {
		return []domain.City{}, metadata, nil
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], metadata, nil
}

// GetCity implements store.CityInfoRepository.GetCity
func (r *Repository) GetCity(ctx context.Context, cityID int, includePointsOfInterest bool) (*domain.City, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	i := r.store.cityIndex(cityID)
	if i < 0 {
		return nil, store.ErrCityNotFound
	}

	city := r.store.cities[i].Clone()
	if !includePointsOfInterest {
		city.PointsOfInterest = nil
	}
	return &city, nil
}

// CityExists implements store.CityInfoRepository.CityExists
func (r *Repository) CityExists(ctx context.Context, cityID int) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.cityIndex(cityID) >= 0, nil
}

// GetPointsOfInterestForCity implements store.CityInfoRepository.GetPointsOfInterestForCity
func (r *Repository) GetPointsOfInterestForCity(ctx context.Context, cityID int) ([]domain.PointOfInterest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	i := r.store.cityIndex(cityID)
	if i < 0 {
		return []domain.PointOfInterest{}, nil
	}

	out := make([]domain.PointOfInterest, len(r.store.cities[i].PointsOfInterest))
	for j, p := range r.store.cities[i].PointsOfInterest {
		out[j] = p.Clone()
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

// GetPointOfInterestForCity implements store.CityInfoRepository.GetPointOfInterestForCity
func (r *Repository) GetPointOfInterestForCity(
	ctx context.Context,
	cityID, poiID int,
) (*domain.PointOfInterest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	i := r.store.cityIndex(cityID)
	if i < 0 {
		return nil, store.ErrPointOfInterestNotFound
	}
	for _, p := range r.store.cities[i].PointsOfInterest {
		if p.ID == poiID {
			entity := p.Clone()
			r.tracked = append(r.tracked, trackedPointOfInterest{entity: &entity, original: p.Clone()})
			return &entity, nil
		}
	}
	return nil, store.ErrPointOfInterestNotFound
}

// AddPointOfInterestForCity implements store.CityInfoRepository.AddPointOfInterestForCity
func (r *Repository) AddPointOfInterestForCity(ctx context.Context, cityID int, poi *domain.PointOfInterest) error {
	exists, err := r.CityExists(ctx, cityID)
	if err != nil || !exists {
		return err
	}
	poi.CityID = cityID
	r.added = append(r.added, pendingAddition{cityID: cityID, poi: poi})
	return nil
}

// DeletePointOfInterest implements store.CityInfoRepository.DeletePointOfInterest
func (r *Repository) DeletePointOfInterest(poi *domain.PointOfInterest) {
	if poi != nil {
		r.deleted = append(r.deleted, poi)
	}
}

// SaveChanges implements store.CityInfoRepository.SaveChanges
// All pending changes are applied under one write lock.
func (r *Repository) SaveChanges(ctx context.Context) (bool, error) {
	log := logger.FromContextOrDefault(ctx, r.store.logger)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	removed := make(map[*domain.PointOfInterest]bool, len(r.deleted))
	for _, poi := range r.deleted {
		removed[poi] = true
		r.store.removePointOfInterest(poi.CityID, poi.ID)
	}

	for _, t := range r.tracked {
		if removed[t.entity] || t.original.Equal(*t.entity) {
			continue
		}
		r.store.updatePointOfInterest(*t.entity)
	}

	for _, a := range r.added {
		i := r.store.cityIndex(a.cityID)
		if i < 0 {
			continue
		}
		a.poi.ID = r.store.nextPointOfInterestID()
		a.poi.CityID = a.cityID
		r.store.cities[i].PointsOfInterest = append(r.store.cities[i].PointsOfInterest, a.poi.Clone())
	}

	log.Debug("in-memory changes saved",
		slog.Int("added", len(r.added)),
		slog.Int("deleted", len(r.deleted)),
		slog.Int("tracked", len(r.tracked)))

	r.tracked, r.added, r.deleted = nil, nil, nil
	return true, nil
}

// removePointOfInterest deletes the point of interest from its city.
// Callers must hold s.mu for writing.
func (s *Store) removePointOfInterest(cityID, poiID int) {
	i := s.cityIndex(cityID)
	if i < 0 {
		return
	}
	pois := s.cities[i].PointsOfInterest
	for j := range pois {
		if pois[j].ID == poiID {
			s.cities[i].PointsOfInterest = append(pois[:j:j], pois[j+1:]...)
			return
		}
	}
}

// updatePointOfInterest copies the editable fields of poi onto the stored copy.
// Callers must hold s.mu for writing.
func (s *Store) updatePointOfInterest(poi domain.PointOfInterest) {
	i := s.cityIndex(poi.CityID)
	if i < 0 {
		return
	}
	for j := range s.cities[i].PointsOfInterest {
		stored := &s.cities[i].PointsOfInterest[j]
		if stored.ID == poi.ID {
			stored.Name = poi.Name
			stored.Description = poi.Clone().Description
			return
		}
	}
}
