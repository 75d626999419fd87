package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/course-planner/internal/persistence"
)

// CourseRepository implements persistence.CourseRepository using SQLite.
type CourseRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewCourseRepository creates a new SQLite course repository.
func NewCourseRepository(pool *ConnectionPool) *CourseRepository {
	return &CourseRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateCourse inserts a new course.
func (r *CourseRepository) CreateCourse(ctx context.Context, course persistence.Course) error {
	if course.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	var title sql.NullString
	if course.Title != nil {
		title = sql.NullString{String: *course.Title, Valid: true}
	}

	_, err := r.helper.Exec(ctx,
		"INSERT INTO courses (id, prefix, number, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		course.ID, course.Prefix, course.Number, title,
		formatTime(course.CreatedAt), formatTime(course.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateCourse updates an existing course.
func (r *CourseRepository) UpdateCourse(ctx context.Context, course persistence.Course) error {
	if course.ID == "" {
		return persistence.ErrConstraintViolation
	}

	course.UpdatedAt = time.Now().UTC()

	var title sql.NullString
	if course.Title != nil {
		title = sql.NullString{String: *course.Title, Valid: true}
	}

	result, err := r.helper.Exec(ctx,
		"UPDATE courses SET prefix = ?, number = ?, title = ?, updated_at = ? WHERE id = ?",
		course.Prefix, course.Number, title, formatTime(course.UpdatedAt), course.ID,
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

// GetCourse retrieves a course by ID.
func (r *CourseRepository) GetCourse(ctx context.Context, id string) (persistence.Course, error) {
	if id == "" {
		return persistence.Course{}, persistence.ErrNotFound
	}

	var course persistence.Course
	var title sql.NullString
	var createdAt, updatedAt string

	err := r.helper.QueryRow(ctx,
		"SELECT id, prefix, number, title, created_at, updated_at FROM courses WHERE id = ?", id,
	).Scan(&course.ID, &course.Prefix, &course.Number, &title, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Course{}, persistence.ErrNotFound
		}
		return persistence.Course{}, r.mapper.MapError(err)
	}

	if title.Valid {
		course.Title = &title.String
	}
	if course.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.Course{}, err
	}
	if course.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.Course{}, err
	}
	return course, nil
}

// ListCourses returns all courses ordered by prefix then number.
func (r *CourseRepository) ListCourses(ctx context.Context) ([]persistence.Course, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT id, prefix, number, title, created_at, updated_at FROM courses ORDER BY prefix ASC, number ASC, id ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var courses []persistence.Course
	for rows.Next() {
		var course persistence.Course
		var title sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&course.ID, &course.Prefix, &course.Number, &title, &createdAt, &updatedAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if title.Valid {
			course.Title = &title.String
		}
		if course.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if course.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return courses, nil
}

// DeleteCourse removes a course by ID, cascading to its instances and their
// meetings.
func (r *CourseRepository) DeleteCourse(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM courses WHERE id = ?", id)
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

// CreateCourseInstance inserts a new course instance.
func (r *CourseRepository) CreateCourseInstance(ctx context.Context, instance persistence.CourseInstance) error {
	if instance.ID == "" || instance.CourseID == "" || instance.SemesterID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	instance.CreatedAt = now
	instance.UpdatedAt = now

	_, err := r.helper.Exec(ctx,
		"INSERT INTO course_instances (id, course_id, semester_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		instance.ID, instance.CourseID, instance.SemesterID,
		formatTime(instance.CreatedAt), formatTime(instance.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// GetCourseInstance retrieves a course instance by ID.
func (r *CourseRepository) GetCourseInstance(ctx context.Context, id string) (persistence.CourseInstance, error) {
	if id == "" {
		return persistence.CourseInstance{}, persistence.ErrNotFound
	}

	var instance persistence.CourseInstance
	var createdAt, updatedAt string

	err := r.helper.QueryRow(ctx,
		"SELECT id, course_id, semester_id, created_at, updated_at FROM course_instances WHERE id = ?", id,
	).Scan(&instance.ID, &instance.CourseID, &instance.SemesterID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.CourseInstance{}, persistence.ErrNotFound
		}
		return persistence.CourseInstance{}, r.mapper.MapError(err)
	}

	if instance.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.CourseInstance{}, err
	}
	if instance.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.CourseInstance{}, err
	}
	return instance, nil
}

// ListCourseInstances returns the instances scheduled in a semester. An empty
// semesterID lists every instance.
func (r *CourseRepository) ListCourseInstances(ctx context.Context, semesterID string) ([]persistence.CourseInstance, error) {
	query := "SELECT id, course_id, semester_id, created_at, updated_at FROM course_instances"
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

	var instances []persistence.CourseInstance
	for rows.Next() {
		var instance persistence.CourseInstance
		var createdAt, updatedAt string
		if err := rows.Scan(&instance.ID, &instance.CourseID, &instance.SemesterID, &createdAt, &updatedAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if instance.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if instance.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return instances, nil
}

// DeleteCourseInstance removes a course instance by ID, cascading to its
// meetings.
func (r *CourseRepository) DeleteCourseInstance(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM course_instances WHERE id = ?", id)
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
