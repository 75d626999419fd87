package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/course-planner/internal/persistence"
)

// LocationRepository implements persistence.LocationRepository using SQLite.
type LocationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewLocationRepository creates a new SQLite location repository.
func NewLocationRepository(pool *ConnectionPool) *LocationRepository {
	return &LocationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateCampus inserts a new campus.
func (r *LocationRepository) CreateCampus(ctx context.Context, campus persistence.Campus) error {
	if campus.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	campus.CreatedAt = now
	campus.UpdatedAt = now

	_, err := r.helper.Exec(ctx,
		"INSERT INTO campuses (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		campus.ID, campus.Name, formatTime(campus.CreatedAt), formatTime(campus.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// GetCampus retrieves a campus by ID.
func (r *LocationRepository) GetCampus(ctx context.Context, id string) (persistence.Campus, error) {
	if id == "" {
		return persistence.Campus{}, persistence.ErrNotFound
	}

	var campus persistence.Campus
	var createdAt, updatedAt string

	err := r.helper.QueryRow(ctx,
		"SELECT id, name, created_at, updated_at FROM campuses WHERE id = ?", id,
	).Scan(&campus.ID, &campus.Name, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Campus{}, persistence.ErrNotFound
		}
		return persistence.Campus{}, r.mapper.MapError(err)
	}

	if campus.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.Campus{}, err
	}
	if campus.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.Campus{}, err
	}
	return campus, nil
}

// ListCampuses returns all campuses ordered by name.
func (r *LocationRepository) ListCampuses(ctx context.Context) ([]persistence.Campus, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT id, name, created_at, updated_at FROM campuses ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var campuses []persistence.Campus
	for rows.Next() {
		var campus persistence.Campus
		var createdAt, updatedAt string
		if err := rows.Scan(&campus.ID, &campus.Name, &createdAt, &updatedAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if campus.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if campus.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		campuses = append(campuses, campus)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return campuses, nil
}

// CreateBuilding inserts a new building.
func (r *LocationRepository) CreateBuilding(ctx context.Context, building persistence.Building) error {
	if building.ID == "" || building.CampusID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	building.CreatedAt = now
	building.UpdatedAt = now

	_, err := r.helper.Exec(ctx,
		"INSERT INTO buildings (id, campus_id, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		building.ID, building.CampusID, building.Name,
		formatTime(building.CreatedAt), formatTime(building.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// GetBuilding retrieves a building by ID.
func (r *LocationRepository) GetBuilding(ctx context.Context, id string) (persistence.Building, error) {
	if id == "" {
		return persistence.Building{}, persistence.ErrNotFound
	}

	var building persistence.Building
	var createdAt, updatedAt string

	err := r.helper.QueryRow(ctx,
		"SELECT id, campus_id, name, created_at, updated_at FROM buildings WHERE id = ?", id,
	).Scan(&building.ID, &building.CampusID, &building.Name, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Building{}, persistence.ErrNotFound
		}
		return persistence.Building{}, r.mapper.MapError(err)
	}

	if building.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.Building{}, err
	}
	if building.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.Building{}, err
	}
	return building, nil
}

// ListBuildings returns all buildings ordered by name.
func (r *LocationRepository) ListBuildings(ctx context.Context) ([]persistence.Building, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT id, campus_id, name, created_at, updated_at FROM buildings ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var buildings []persistence.Building
	for rows.Next() {
		var building persistence.Building
		var createdAt, updatedAt string
		if err := rows.Scan(&building.ID, &building.CampusID, &building.Name, &createdAt, &updatedAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if building.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if building.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		buildings = append(buildings, building)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return buildings, nil
}
