package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/course-planner/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateRoom inserts a new room.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.BuildingID == "" {
		return persistence.ErrConstraintViolation
	}
	if room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now

	_, err := r.helper.Exec(ctx,
		`INSERT INTO rooms (id, building_id, name, capacity, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		room.ID, room.BuildingID, room.Name, room.Capacity,
		formatTime(room.CreatedAt), formatTime(room.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateRoom updates an existing room.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	room.UpdatedAt = time.Now().UTC()

	result, err := r.helper.Exec(ctx,
		`UPDATE rooms SET building_id = ?, name = ?, capacity = ?, updated_at = ? WHERE id = ?`,
		room.BuildingID, room.Name, room.Capacity, formatTime(room.UpdatedAt), room.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}

	var room persistence.Room
	var createdAt, updatedAt string

	err := r.helper.QueryRow(ctx,
		"SELECT id, building_id, name, capacity, created_at, updated_at FROM rooms WHERE id = ?", id,
	).Scan(&room.ID, &room.BuildingID, &room.Name, &room.Capacity, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Room{}, persistence.ErrNotFound
		}
		return persistence.Room{}, r.mapper.MapError(err)
	}

	if room.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.Room{}, err
	}
	if room.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.Room{}, err
	}
	return room, nil
}

// ListRooms returns all rooms ordered by name then ID.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT id, building_id, name, capacity, created_at, updated_at FROM rooms ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		var room persistence.Room
		var createdAt, updatedAt string
		if err := rows.Scan(&room.ID, &room.BuildingID, &room.Name, &room.Capacity, &createdAt, &updatedAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if room.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if room.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return rooms, nil
}

// ListRoomLocations returns every room joined with its building and campus
// names, ordered by campus then display name.
func (r *RoomRepository) ListRoomLocations(ctx context.Context) ([]persistence.RoomLocation, error) {
	query := `
		SELECT r.id, c.name, b.name, r.name, b.name || ' ' || r.name, r.capacity
		FROM rooms r
		JOIN buildings b ON b.id = r.building_id
		JOIN campuses c ON c.id = b.campus_id
		ORDER BY c.name ASC, b.name ASC, r.name ASC
	`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var locations []persistence.RoomLocation
	for rows.Next() {
		var loc persistence.RoomLocation
		if err := rows.Scan(&loc.ID, &loc.Campus, &loc.Building, &loc.Name, &loc.DisplayName, &loc.Capacity); err != nil {
			return nil, r.mapper.MapError(err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return locations, nil
}

// DeleteRoom removes a room by ID. The RESTRICT reference from meetings makes
// the delete fail with ErrForeignKeyViolation while bookings exist.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
