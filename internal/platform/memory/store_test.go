package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/cityinfo-api/internal/domain"
	"github.com/phrazzld/cityinfo-api/internal/store"
)

func newTestStore() *Store {
	return NewStore([]domain.City{
		{
			ID: 1, Name: "Paris", Description: domain.StringPtr("The one with the cathedral."),
			PointsOfInterest: []domain.PointOfInterest{
				{ID: 1, Name: "Eiffel Tower", Description: domain.StringPtr("Wrought-iron tower.")},
				{ID: 2, Name: "Louvre"},
			},
		},
		{
			ID: 2, Name: "New York City", Description: domain.StringPtr("The one with that big park."),
			PointsOfInterest: []domain.PointOfInterest{
				{ID: 3, Name: "Central Park"},
			},
		},
		{ID: 3, Name: "Antwerp"},
	}, nil)
}

func TestSeededStore(t *testing.T) {
	t.Parallel()

	s := NewSeededStore(nil)
	repo := s.NewRepository()
	ctx := context.Background()

	cities, err := repo.GetCities(ctx)
	require.NoError(t, err)
	assert.Len(t, cities, 10)

	total := 0
	for _, c := range cities {
		pois, err := repo.GetPointsOfInterestForCity(ctx, c.ID)
		require.NoError(t, err)
		total += len(pois)
		for _, p := range pois {
			assert.Equal(t, c.ID, p.CityID)
		}
	}
	assert.Equal(t, 20, total)
}

func TestGetCitiesSortedByName(t *testing.T) {
	t.Parallel()

	cities, err := newTestStore().NewRepository().GetCities(context.Background())
	require.NoError(t, err)

	names := make([]string, len(cities))
	for i, c := range cities {
		names[i] = c.Name
		assert.Nil(t, c.PointsOfInterest)
	}
	assert.Equal(t, []string{"Antwerp", "New York City", "Paris"}, names)
}

func TestSearchCities(t *testing.T) {
	t.Parallel()

	repo := newTestStore().NewRepository()
	ctx := context.Background()

	t.Run("exact name after trim", func(t *testing.T) {
		cities, md, err := repo.SearchCities(ctx, store.CityFilter{Name: " Paris "})
		require.NoError(t, err)
		require.Len(t, cities, 1)
		assert.Equal(t, "Paris", cities[0].Name)
		assert.Equal(t, 1, md.TotalItemCount)
	})

	t.Run("search query in description", func(t *testing.T) {
		cities, _, err := repo.SearchCities(ctx, store.CityFilter{SearchQuery: "park"})
		require.NoError(t, err)
		require.Len(t, cities, 1)
		assert.Equal(t, "New York City", cities[0].Name)
	})

	t.Run("search query is case sensitive", func(t *testing.T) {
		cities, _, err := repo.SearchCities(ctx, store.CityFilter{SearchQuery: "PARK"})
		require.NoError(t, err)
		assert.Empty(t, cities)
	})

	t.Run("paging skips and takes", func(t *testing.T) {
		cities, md, err := repo.SearchCities(ctx, store.CityFilter{PageNumber: 2, PageSize: 2})
		require.NoError(t, err)
		require.Len(t, cities, 1)
		assert.Equal(t, "Paris", cities[0].Name)
		assert.Equal(t, store.PaginationMetadata{
			TotalItemCount: 3, TotalPageCount: 2, PageSize: 2, CurrentPage: 2,
		}, md)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		cities, _, err := repo.SearchCities(ctx, store.CityFilter{PageNumber: 9, PageSize: 2})
		require.NoError(t, err)
		assert.NotNil(t, cities)
		assert.Empty(t, cities)
	})
}

func TestGetCity(t *testing.T) {
	t.Parallel()

	repo := newTestStore().NewRepository()
	ctx := context.Background()

	city, err := repo.GetCity(ctx, 1, false)
	require.NoError(t, err)
	assert.Nil(t, city.PointsOfInterest)

	city, err = repo.GetCity(ctx, 1, true)
	require.NoError(t, err)
	assert.Len(t, city.PointsOfInterest, 2)

	city, err = repo.GetCity(ctx, 3, true)
	require.NoError(t, err)
	assert.NotNil(t, city.PointsOfInterest, "included collection is empty, not absent")
	assert.Empty(t, city.PointsOfInterest)

	_, err = repo.GetCity(ctx, 42, true)
	assert.True(t, errors.Is(err, store.ErrCityNotFound))
}

func TestGetPointOfInterestForCityScopesByCity(t *testing.T) {
	t.Parallel()

	repo := newTestStore().NewRepository()
	ctx := context.Background()

	poi, err := repo.GetPointOfInterestForCity(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Louvre", poi.Name)

	_, err = repo.GetPointOfInterestForCity(ctx, 2, 2)
	assert.True(t, errors.Is(err, store.ErrPointOfInterestNotFound), "poi 2 belongs to city 1")

	_, err = repo.GetPointOfInterestForCity(ctx, 99, 1)
	assert.True(t, errors.Is(err, store.ErrPointOfInterestNotFound))
}

func TestTrackedEditsApplyOnlyOnSave(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	ctx := context.Background()
	repo := s.NewRepository()

	poi, err := repo.GetPointOfInterestForCity(ctx, 1, 1)
	require.NoError(t, err)
	poi.Name = "La Tour Eiffel"
	poi.Description = nil

	before, err := s.NewRepository().GetPointOfInterestForCity(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Eiffel Tower", before.Name)

	ok, err := repo.SaveChanges(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	after, err := s.NewRepository().GetPointOfInterestForCity(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "La Tour Eiffel", after.Name)
	assert.Nil(t, after.Description)
}

func TestAddPointOfInterestAssignsMaxPlusOne(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	ctx := context.Background()
	repo := s.NewRepository()

	poi := domain.NewPointOfInterest("Musée d'Orsay", nil)
	require.NoError(t, repo.AddPointOfInterestForCity(ctx, 1, poi))
	assert.Zero(t, poi.ID, "id is assigned on save")

	_, err := repo.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, poi.ID)
	assert.Equal(t, 1, poi.CityID)

	pois, err := s.NewRepository().GetPointsOfInterestForCity(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, pois, 3)
}

func TestAddPointOfInterestToMissingCityIsIgnored(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	ctx := context.Background()
	repo := s.NewRepository()

	poi := domain.NewPointOfInterest("Nowhere", nil)
	require.NoError(t, repo.AddPointOfInterestForCity(ctx, 42, poi))
	ok, err := repo.SaveChanges(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, poi.ID)
}

func TestDeletePointOfInterest(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	ctx := context.Background()
	repo := s.NewRepository()

	poi, err := repo.GetPointOfInterestForCity(ctx, 2, 3)
	require.NoError(t, err)
	poi.Name = "edited before delete"
	repo.DeletePointOfInterest(poi)

	_, err = s.NewRepository().GetPointOfInterestForCity(ctx, 2, 3)
	require.NoError(t, err, "delete is pending until save")

	_, err = repo.SaveChanges(ctx)
	require.NoError(t, err)

	_, err = s.NewRepository().GetPointOfInterestForCity(ctx, 2, 3)
	assert.True(t, errors.Is(err, store.ErrPointOfInterestNotFound))
}

func TestConcurrentCreationsAssignDistinctIDs(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	ctx := context.Background()

	const n = 50
	ids := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			repo := s.NewRepository()
			poi := domain.NewPointOfInterest("poi", nil)
			cityID := i%3 + 1
			if err := repo.AddPointOfInterestForCity(ctx, cityID, poi); err != nil {
				t.Error(err)
				return
			}
			if _, err := repo.SaveChanges(ctx); err != nil {
				t.Error(err)
				return
			}
			ids[i] = poi.ID
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool, n)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		assert.Greater(t, id, 3)
		seen[id] = true
	}
}
