// Package sqlite implements the persistence repositories on SQLite via the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"log/slog"

	"github.com/example/course-planner/internal/persistence/sqlite/migration"
)

// Storage bundles the connection pool with one repository per aggregate.
type Storage struct {
	pool *ConnectionPool

	Locations *LocationRepository
	Rooms     *RoomRepository
	Semesters *SemesterRepository
	Courses   *CourseRepository
	Events    *EventRepository
	Meetings  *MeetingRepository
	Users     *UserRepository
	Sessions  *SessionRepository
}

// Open connects to the database identified by dsn and wires the
// repositories. Migrations are not applied; call Migrate before use.
func Open(dsn string) (*Storage, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}

	return &Storage{
		pool:      pool,
		Locations: NewLocationRepository(pool),
		Rooms:     NewRoomRepository(pool),
		Semesters: NewSemesterRepository(pool),
		Courses:   NewCourseRepository(pool),
		Events:    NewEventRepository(pool),
		Meetings:  NewMeetingRepository(pool),
		Users:     NewUserRepository(pool),
		Sessions:  NewSessionRepository(pool),
	}, nil
}

// Migrate brings the schema up to the current version.
func (s *Storage) Migrate(ctx context.Context, logger *slog.Logger) error {
	manager := migration.NewManager(s.pool.DB(), Migrations, logger)
	_, err := manager.Up(ctx)
	return err
}

// Close releases the underlying database handle.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Ping verifies the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
