package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/course-planner/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateUser inserts a new user.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.Email == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.helper.Exec(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash, boolToInt(user.IsAdmin),
		formatTime(user.CreatedAt), formatTime(user.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateUser updates an existing user.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.Email == "" {
		return persistence.ErrConstraintViolation
	}

	user.UpdatedAt = time.Now().UTC()

	result, err := r.helper.Exec(ctx,
		`UPDATE users SET email = ?, display_name = ?, password_hash = ?, is_admin = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email, user.DisplayName, user.PasswordHash, boolToInt(user.IsAdmin),
		formatTime(user.UpdatedAt), user.ID,
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

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	return r.scanUser(r.helper.QueryRow(ctx,
		`SELECT id, email, display_name, password_hash, is_admin, created_at, updated_at
		 FROM users WHERE id = ?`, id))
}

// GetUserByEmail retrieves a user by email address.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	if email == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	return r.scanUser(r.helper.QueryRow(ctx,
		`SELECT id, email, display_name, password_hash, is_admin, created_at, updated_at
		 FROM users WHERE email = ?`, email))
}

func (r *UserRepository) scanUser(row *sql.Row) (persistence.User, error) {
	var user persistence.User
	var isAdmin int
	var createdAt, updatedAt string

	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash,
		&isAdmin, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, r.mapper.MapError(err)
	}

	user.IsAdmin = isAdmin == 1
	if user.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}

// ListUsers returns all users ordered by email.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.helper.Query(ctx,
		`SELECT id, email, display_name, password_hash, is_admin, created_at, updated_at
		 FROM users ORDER BY email ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		var user persistence.User
		var isAdmin int
		var createdAt, updatedAt string
		if err := rows.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash,
			&isAdmin, &createdAt, &updatedAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		user.IsAdmin = isAdmin == 1
		if user.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if user.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return users, nil
}

// DeleteUser removes a user by ID, cascading to their sessions.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM users WHERE id = ?", id)
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

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
