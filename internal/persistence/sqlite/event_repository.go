package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/course-planner/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite.
type EventRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateNonClassParent inserts a new non-class parent.
func (r *EventRepository) CreateNonClassParent(ctx context.Context, parent persistence.NonClassParent) error {
	if parent.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	parent.CreatedAt = now
	parent.UpdatedAt = now

	_, err := r.helper.Exec(ctx,
		"INSERT INTO non_class_parents (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)",
		parent.ID, parent.Title, formatTime(parent.CreatedAt), formatTime(parent.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateNonClassParent updates an existing non-class parent.
func (r *EventRepository) UpdateNonClassParent(ctx context.Context, parent persistence.NonClassParent) error {
	if parent.ID == "" {
		return persistence.ErrConstraintViolation
	}

	parent.UpdatedAt = time.Now().UTC()

	result, err := r.helper.Exec(ctx,
		"UPDATE non_class_parents SET title = ?, updated_at = ? WHERE id = ?",
		parent.Title, formatTime(parent.UpdatedAt), parent.ID,
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

// GetNonClassParent retrieves a non-class parent by ID.
func (r *EventRepository) GetNonClassParent(ctx context.Context, id string) (persistence.NonClassParent, error) {
	if id == "" {
		return persistence.NonClassParent{}, persistence.ErrNotFound
	}

	var parent persistence.NonClassParent
	var createdAt, updatedAt string

	err := r.helper.QueryRow(ctx,
		"SELECT id, title, created_at, updated_at FROM non_class_parents WHERE id = ?", id,
	).Scan(&parent.ID, &parent.Title, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.NonClassParent{}, persistence.ErrNotFound
		}
		return persistence.NonClassParent{}, r.mapper.MapError(err)
	}

	if parent.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.NonClassParent{}, err
	}
	if parent.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.NonClassParent{}, err
	}
	return parent, nil
}

// ListNonClassParents returns all non-class parents ordered by title.
func (r *EventRepository) ListNonClassParents(ctx context.Context) ([]persistence.NonClassParent, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT id, title, created_at, updated_at FROM non_class_parents ORDER BY title ASC, id ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var parents []persistence.NonClassParent
	for rows.Next() {
		var parent persistence.NonClassParent
		var createdAt, updatedAt string
		if err := rows.Scan(&parent.ID, &parent.Title, &createdAt, &updatedAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if parent.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if parent.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		parents = append(parents, parent)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return parents, nil
}

// DeleteNonClassParent removes a non-class parent, cascading to its events
// and their meetings.
func (r *EventRepository) DeleteNonClassParent(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM non_class_parents WHERE id = ?", id)
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

// CreateNonClassEvent inserts a new non-class event.
func (r *EventRepository) CreateNonClassEvent(ctx context.Context, event persistence.NonClassEvent) error {
	if event.ID == "" || event.ParentID == "" || event.SemesterID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := r.helper.Exec(ctx,
		"INSERT INTO non_class_events (id, parent_id, semester_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		event.ID, event.ParentID, event.SemesterID,
		formatTime(event.CreatedAt), formatTime(event.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// GetNonClassEvent retrieves a non-class event by ID.
func (r *EventRepository) GetNonClassEvent(ctx context.Context, id string) (persistence.NonClassEvent, error) {
	if id == "" {
		return persistence.NonClassEvent{}, persistence.ErrNotFound
	}

	var event persistence.NonClassEvent
	var createdAt, updatedAt string

	err := r.helper.QueryRow(ctx,
		"SELECT id, parent_id, semester_id, created_at, updated_at FROM non_class_events WHERE id = ?", id,
	).Scan(&event.ID, &event.ParentID, &event.SemesterID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.NonClassEvent{}, persistence.ErrNotFound
		}
		return persistence.NonClassEvent{}, r.mapper.MapError(err)
	}

	if event.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.NonClassEvent{}, err
	}
	if event.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.NonClassEvent{}, err
	}
	return event, nil
}

// ListNonClassEvents returns the events scheduled in a semester. An empty
// semesterID lists every event.
func (r *EventRepository) ListNonClassEvents(ctx context.Context, semesterID string) ([]persistence.NonClassEvent, error) {
	query := "SELECT id, parent_id, semester_id, created_at, updated_at FROM non_class_events"
	args := make([]any, 0, 1)
	if semesterID != "" {
		query += " WHERE semester_id = ?"
		args = append(args, semesterID)
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var events []persistence.NonClassEvent
	for rows.Next() {
		var event persistence.NonClassEvent
		var createdAt, updatedAt string
		if err := rows.Scan(&event.ID, &event.ParentID, &event.SemesterID, &createdAt, &updatedAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if event.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if event.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return events, nil
}

// DeleteNonClassEvent removes a non-class event by ID, cascading to its
// meetings.
func (r *EventRepository) DeleteNonClassEvent(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM non_class_events WHERE id = ?", id)
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
