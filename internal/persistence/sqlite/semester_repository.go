package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/course-planner/internal/booking"
	"github.com/example/course-planner/internal/persistence"
)

// SemesterRepository implements persistence.SemesterRepository using SQLite.
type SemesterRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSemesterRepository creates a new SQLite semester repository.
func NewSemesterRepository(pool *ConnectionPool) *SemesterRepository {
	return &SemesterRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateSemester inserts a new semester.
func (r *SemesterRepository) CreateSemester(ctx context.Context, semester persistence.Semester) error {
	if semester.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	semester.CreatedAt = now
	semester.UpdatedAt = now

	_, err := r.helper.Exec(ctx,
		"INSERT INTO semesters (id, year, term, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		semester.ID, semester.Year, string(semester.Term),
		formatTime(semester.CreatedAt), formatTime(semester.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// GetSemester retrieves a semester by ID.
func (r *SemesterRepository) GetSemester(ctx context.Context, id string) (persistence.Semester, error) {
	if id == "" {
		return persistence.Semester{}, persistence.ErrNotFound
	}
	return r.scanSemester(r.helper.QueryRow(ctx,
		"SELECT id, year, term, created_at, updated_at FROM semesters WHERE id = ?", id))
}

// GetSemesterByTerm retrieves the semester for a (year, term) pair.
func (r *SemesterRepository) GetSemesterByTerm(ctx context.Context, year int, term booking.Term) (persistence.Semester, error) {
	return r.scanSemester(r.helper.QueryRow(ctx,
		"SELECT id, year, term, created_at, updated_at FROM semesters WHERE year = ? AND term = ?",
		year, string(term)))
}

func (r *SemesterRepository) scanSemester(row *sql.Row) (persistence.Semester, error) {
	var semester persistence.Semester
	var term, createdAt, updatedAt string

	err := row.Scan(&semester.ID, &semester.Year, &term, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Semester{}, persistence.ErrNotFound
		}
		return persistence.Semester{}, r.mapper.MapError(err)
	}

	if semester.Term, err = booking.ParseTerm(term); err != nil {
		return persistence.Semester{}, fmt.Errorf("failed to parse term: %w", err)
	}
	if semester.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.Semester{}, err
	}
	if semester.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.Semester{}, err
	}
	return semester, nil
}

// ListSemesters returns all semesters ordered by year then term.
func (r *SemesterRepository) ListSemesters(ctx context.Context) ([]persistence.Semester, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT id, year, term, created_at, updated_at FROM semesters ORDER BY year ASC, term ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var semesters []persistence.Semester
	for rows.Next() {
		var semester persistence.Semester
		var term, createdAt, updatedAt string
		if err := rows.Scan(&semester.ID, &semester.Year, &term, &createdAt, &updatedAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if semester.Term, err = booking.ParseTerm(term); err != nil {
			return nil, fmt.Errorf("failed to parse term: %w", err)
		}
		if semester.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if semester.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		semesters = append(semesters, semester)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return semesters, nil
}

// DeleteSemester removes a semester by ID, cascading to course instances and
// non-class events scheduled in it.
func (r *SemesterRepository) DeleteSemester(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM semesters WHERE id = ?", id)
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
