package persistence

import (
	"context"
	"time"

	"github.com/example/course-planner/internal/booking"
)

// LocationRepository stores campuses and buildings.
type LocationRepository interface {
	CreateCampus(ctx context.Context, campus Campus) error
	GetCampus(ctx context.Context, id string) (Campus, error)
	ListCampuses(ctx context.Context) ([]Campus, error)
	CreateBuilding(ctx context.Context, building Building) error
	GetBuilding(ctx context.Context, id string) (Building, error)
	ListBuildings(ctx context.Context) ([]Building, error)
}

// RoomRepository exposes CRUD operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	// ListRoomLocations returns every room joined with its building and
	// campus names, ordered by campus then display name.
	ListRoomLocations(ctx context.Context) ([]RoomLocation, error)
	// DeleteRoom removes a room. Rooms referenced by meetings are never
	// deleted; the delete fails with ErrForeignKeyViolation.
	DeleteRoom(ctx context.Context, id string) error
}

// SemesterRepository stores semesters.
type SemesterRepository interface {
	CreateSemester(ctx context.Context, semester Semester) error
	GetSemester(ctx context.Context, id string) (Semester, error)
	GetSemesterByTerm(ctx context.Context, year int, term booking.Term) (Semester, error)
	ListSemesters(ctx context.Context) ([]Semester, error)
	DeleteSemester(ctx context.Context, id string) error
}

// CourseRepository stores courses and their per-semester instances.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course Course) error
	UpdateCourse(ctx context.Context, course Course) error
	GetCourse(ctx context.Context, id string) (Course, error)
	ListCourses(ctx context.Context) ([]Course, error)
	DeleteCourse(ctx context.Context, id string) error

	CreateCourseInstance(ctx context.Context, instance CourseInstance) error
	GetCourseInstance(ctx context.Context, id string) (CourseInstance, error)
	ListCourseInstances(ctx context.Context, semesterID string) ([]CourseInstance, error)
	// DeleteCourseInstance removes the instance and cascades to its meetings.
	DeleteCourseInstance(ctx context.Context, id string) error
}

// EventRepository stores non-class parents and their per-semester events.
type EventRepository interface {
	CreateNonClassParent(ctx context.Context, parent NonClassParent) error
	UpdateNonClassParent(ctx context.Context, parent NonClassParent) error
	GetNonClassParent(ctx context.Context, id string) (NonClassParent, error)
	ListNonClassParents(ctx context.Context) ([]NonClassParent, error)
	DeleteNonClassParent(ctx context.Context, id string) error

	CreateNonClassEvent(ctx context.Context, event NonClassEvent) error
	GetNonClassEvent(ctx context.Context, id string) (NonClassEvent, error)
	ListNonClassEvents(ctx context.Context, semesterID string) ([]NonClassEvent, error)
	// DeleteNonClassEvent removes the event and cascades to its meetings.
	DeleteNonClassEvent(ctx context.Context, id string) error
}

// MeetingRepository stores meetings and serves the derived booking index.
type MeetingRepository interface {
	CreateMeeting(ctx context.Context, meeting Meeting) error
	UpdateMeeting(ctx context.Context, meeting Meeting) error
	GetMeeting(ctx context.Context, id string) (Meeting, error)
	ListMeetingsForParent(ctx context.Context, parentID string) ([]Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error

	// ListBookings projects every meeting of the given semester into a
	// booking record, joining the room's display name and the owning
	// parent's title. The projection is recomputed on every call and never
	// cached.
	ListBookings(ctx context.Context, year int, term booking.Term) ([]booking.Record, error)

	// RoomHasMeetings reports whether any meeting references the room.
	RoomHasMeetings(ctx context.Context, roomID string) (bool, error)
}

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
