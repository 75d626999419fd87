package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/course-planner/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateSession inserts a new session and returns the stored value.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" || session.UserID == "" || session.Token == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := r.helper.Exec(ctx,
		`INSERT INTO sessions (id, user_id, token, expires_at, created_at, updated_at, revoked_at)
		 VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		session.ID, session.UserID, session.Token,
		formatTime(session.ExpiresAt), formatTime(session.CreatedAt), formatTime(session.UpdatedAt),
	)
	if err != nil {
		return persistence.Session{}, r.mapper.MapError(err)
	}
	return session, nil
}

// GetSession retrieves a session by its token.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return r.scanSession(r.helper.QueryRow(ctx,
		`SELECT id, user_id, token, expires_at, created_at, updated_at, revoked_at
		 FROM sessions WHERE token = ?`, token))
}

func (r *SessionRepository) scanSession(row *sql.Row) (persistence.Session, error) {
	var session persistence.Session
	var expiresAt, createdAt, updatedAt string
	var revokedAt sql.NullString

	err := row.Scan(&session.ID, &session.UserID, &session.Token,
		&expiresAt, &createdAt, &updatedAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, r.mapper.MapError(err)
	}

	if session.ExpiresAt, err = parseTime(expiresAt, "expires_at"); err != nil {
		return persistence.Session{}, err
	}
	if session.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return persistence.Session{}, err
	}
	if session.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return persistence.Session{}, err
	}
	if revokedAt.Valid {
		parsed, err := parseTime(revokedAt.String, "revoked_at")
		if err != nil {
			return persistence.Session{}, err
		}
		session.RevokedAt = &parsed
	}
	return session, nil
}

// RevokeSession marks a session revoked and returns the updated value.
// Revoking an already revoked session keeps the original revocation time.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	revokedAt = revokedAt.UTC()

	result, err := r.helper.Exec(ctx,
		`UPDATE sessions SET revoked_at = ?, updated_at = ?
		 WHERE token = ? AND revoked_at IS NULL`,
		formatTime(revokedAt), formatTime(revokedAt), token,
	)
	if err != nil {
		return persistence.Session{}, r.mapper.MapError(err)
	}
	if _, err := result.RowsAffected(); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return r.GetSession(ctx, token)
}

// DeleteExpiredSessions removes every session expired before the reference
// time.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.helper.Exec(ctx,
		"DELETE FROM sessions WHERE expires_at < ?", formatTime(reference.UTC()))
	return r.mapper.MapError(err)
}
