package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/cityinfo-api/internal/domain"
	"github.com/phrazzld/cityinfo-api/internal/platform/logger"
	"github.com/phrazzld/cityinfo-api/internal/store"
)

// DBTX is the subset of *pgxpool.Pool used by the store. It is satisfied by
// pgxmock pools in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var (
	cityColumns            = []string{"id", "name", "description"}
	pointOfInterestColumns = []string{"id", "city_id", "name", "description"}
)

// Store is the PostgreSQL-backed city store.
type Store struct {
	db     DBTX
	logger *slog.Logger
}

// NewStore creates a store over db, which should be initialized and managed
// by the caller. If logger is nil, a default logger will be used.
func NewStore(db DBTX, logger *slog.Logger) *Store {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		db:     db,
		logger: logger.With(slog.String("component", "postgres_city_store")),
	}
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

// Ping implements store.Pinger.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
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
	query, args, err := psql.Select(cityColumns...).From("cities").OrderBy("name", "id").ToSql()
	if err != nil {
		return nil, store.NewStoreError("city", "list", err)
	}
	return r.queryCities(ctx, "list", query, args)
}

// SearchCities implements store.CityInfoRepository.SearchCities
func (r *Repository) SearchCities(
	ctx context.Context,
	filter store.CityFilter,
) ([]domain.City, store.PaginationMetadata, error) {
	log := logger.FromContextOrDefault(ctx, r.store.logger)
	filter = filter.Normalize()

	countQuery, countArgs, err := applyCityFilter(psql.Select("COUNT(*)").From("cities"), filter).ToSql()
	if err != nil {
		return nil, store.PaginationMetadata{}, store.NewStoreError("city", "search", err)
	}

	var total int
	if err := r.store.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		log.Error("failed to count cities",
			slog.String("error", err.Error()),
			slog.String("name", filter.Name),
			slog.String("search_query", filter.SearchQuery))
		return nil, store.PaginationMetadata{}, store.NewStoreError("city", "search", MapError(err))
	}

	pageQuery, pageArgs, err := applyCityFilter(psql.Select(cityColumns...).From("cities"), filter).
		OrderBy("name", "id").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(filter.Offset())).
		ToSql()
	if err != nil {
		return nil, store.PaginationMetadata{}, store.NewStoreError("city", "search", err)
	}

	cities, err := r.queryCities(ctx, "search", pageQuery, pageArgs)
	if err != nil {
		return nil, store.PaginationMetadata{}, err
	}

	log.Debug("cities searched",
		slog.Int("total", total),
		slog.Int("page", filter.PageNumber),
		slog.Int("returned", len(cities)))
	return cities, store.NewPaginationMetadata(total, filter), nil
}

// applyCityFilter adds the filter's text criteria. Substring matching uses
// strpos so the search term is never interpreted as a LIKE pattern.
func applyCityFilter(b squirrel.SelectBuilder, filter store.CityFilter) squirrel.SelectBuilder {
	if filter.Name != "" {
		b = b.Where(squirrel.Eq{"name": filter.Name})
	}
	if filter.SearchQuery != "" {
		b = b.Where(squirrel.Or{
			squirrel.Expr("strpos(name, ?) > 0", filter.SearchQuery),
			squirrel.And{
				squirrel.NotEq{"description": nil},
				squirrel.Expr("strpos(description, ?) > 0", filter.SearchQuery),
			},
		})
	}
	return b
}

func (r *Repository) queryCities(ctx context.Context, operation, query string, args []any) ([]domain.City, error) {
	log := logger.FromContextOrDefault(ctx, r.store.logger)

	rows, err := r.store.db.Query(ctx, query, args...)
	if err != nil {
		log.Error("failed to query cities",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("city", operation, MapError(err))
	}
	defer rows.Close()

	cities := []domain.City{}
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, store.NewStoreError("city", operation, err)
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("city", operation, MapError(err))
	}
	return cities, nil
}

// GetCity implements store.CityInfoRepository.GetCity
func (r *Repository) GetCity(ctx context.Context, cityID int, includePointsOfInterest bool) (*domain.City, error) {
	log := logger.FromContextOrDefault(ctx, r.store.logger)

	query, args, err := psql.Select(cityColumns...).From("cities").Where(squirrel.Eq{"id": cityID}).ToSql()
	if err != nil {
		return nil, store.NewStoreError("city", "get", err)
	}

	var city domain.City
	err = r.store.db.QueryRow(ctx, query, args...).Scan(&city.ID, &city.Name, &city.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debug("city not found", slog.Int("city_id", cityID))
		return nil, store.ErrCityNotFound
	}
	if err != nil {
		log.Error("failed to get city",
			slog.Int("city_id", cityID),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("city", "get", MapError(err))
	}

	if includePointsOfInterest {
		city.PointsOfInterest, err = r.GetPointsOfInterestForCity(ctx, cityID)
		if err != nil {
			return nil, err
		}
	}
	return &city, nil
}

// CityExists implements store.CityInfoRepository.CityExists
func (r *Repository) CityExists(ctx context.Context, cityID int) (bool, error) {
	query, args, err := psql.Select("1").
		Prefix("SELECT EXISTS (").
		From("cities").
		Where(squirrel.Eq{"id": cityID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, store.NewStoreError("city", "exists", err)
	}

	var exists bool
	if err := r.store.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, store.NewStoreError("city", "exists", MapError(err))
	}
	return exists, nil
}

// GetPointsOfInterestForCity implements store.CityInfoRepository.GetPointsOfInterestForCity
func (r *Repository) GetPointsOfInterestForCity(ctx context.Context, cityID int) ([]domain.PointOfInterest, error) {
	query, args, err := psql.Select(pointOfInterestColumns...).
		From("points_of_interest").
		Where(squirrel.Eq{"city_id": cityID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, store.NewStoreError("point_of_interest", "list", err)
	}

	rows, err := r.store.db.Query(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("point_of_interest", "list", MapError(err))
	}
	defer rows.Close()

	pois := []domain.PointOfInterest{}
	for rows.Next() {
		var p domain.PointOfInterest
		if err := rows.Scan(&p.ID, &p.CityID, &p.Name, &p.Description); err != nil {
			return nil, store.NewStoreError("point_of_interest", "list", err)
		}
		pois = append(pois, p)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("point_of_interest", "list", MapError(err))
	}
	return pois, nil
}

// GetPointOfInterestForCity implements store.CityInfoRepository.GetPointOfInterestForCity
func (r *Repository) GetPointOfInterestForCity(
	ctx context.Context,
	cityID, poiID int,
) (*domain.PointOfInterest, error) {
	query, args, err := psql.Select(pointOfInterestColumns...).
		From("points_of_interest").
		Where(squirrel.Eq{"id": poiID, "city_id": cityID}).
		ToSql()
	if err != nil {
		return nil, store.NewStoreError("point_of_interest", "get", err)
	}

	var p domain.PointOfInterest
	err = r.store.db.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CityID, &p.Name, &p.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrPointOfInterestNotFound
	}
	if err != nil {
		return nil, store.NewStoreError("point_of_interest", "get", MapError(err))
	}

	r.tracked = append(r.tracked, trackedPointOfInterest{entity: &p, original: p.Clone()})
	return &p, nil
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
// Pending removals, edits and additions run in one transaction. IDs of added
// points of interest are assigned only after the commit succeeds.
func (r *Repository) SaveChanges(ctx context.Context) (bool, error) {
	log := logger.FromContextOrDefault(ctx, r.store.logger)

	ids := make([]int, len(r.added))
	err := RunInTransaction(logger.WithLogger(ctx, log), r.store.db, func(ctx context.Context, tx pgx.Tx) error {
		removed := make(map[*domain.PointOfInterest]bool, len(r.deleted))
		for _, poi := range r.deleted {
			removed[poi] = true
			query, args, err := psql.Delete("points_of_interest").
				Where(squirrel.Eq{"id": poi.ID, "city_id": poi.CityID}).
				ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return fmt.Errorf("delete point of interest %d: %w", poi.ID, err)
			}
		}

		for _, t := range r.tracked {
			if removed[t.entity] || t.original.Equal(*t.entity) {
				continue
			}
			query, args, err := psql.Update("points_of_interest").
				Set("name", t.entity.Name).
				Set("description", t.entity.Description).
				Where(squirrel.Eq{"id": t.entity.ID, "city_id": t.original.CityID}).
				ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return fmt.Errorf("update point of interest %d: %w", t.entity.ID, err)
			}
		}

		for i, a := range r.added {
			query, args, err := psql.Insert("points_of_interest").
				Columns("city_id", "name", "description").
				Values(a.cityID, a.poi.Name, a.poi.Description).
				Suffix("RETURNING id").
				ToSql()
			if err != nil {
				return err
			}
			if err := tx.QueryRow(ctx, query, args...).Scan(&ids[i]); err != nil {
				return fmt.Errorf("insert point of interest for city %d: %w", a.cityID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to save changes", slog.String("error", err.Error()))
		return false, store.NewStoreError("point_of_interest", "save", MapError(err))
	}

	for i, a := range r.added {
		a.poi.ID = ids[i]
		a.poi.CityID = a.cityID
	}

	log.Debug("changes saved",
		slog.Int("added", len(r.added)),
		slog.Int("deleted", len(r.deleted)),
		slog.Int("tracked", len(r.tracked)))

	r.tracked, r.added, r.deleted = nil, nil, nil
	return true, nil
}
