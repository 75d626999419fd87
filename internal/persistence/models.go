package persistence

import (
	"time"

	"github.com/example/course-planner/internal/booking"
)

// Campus represents a physical campus of the institution.
type Campus struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Building represents a building on a campus.
type Building struct {
	ID        string
	CampusID  string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Room represents a bookable room within a building.
type Room struct {
	ID         string
	BuildingID string
	Name       string
	Capacity   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RoomLocation is the read model for room listings: a room joined with its
// building and campus names. DisplayName is "<building> <room>".
type RoomLocation struct {
	ID          string
	Campus      string
	Building    string
	Name        string
	DisplayName string
	Capacity    int
}

// Semester represents one term of a calendar year.
type Semester struct {
	ID        string
	Year      int
	Term      booking.Term
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Course represents a catalog course identified by prefix and number.
type Course struct {
	ID        string
	Prefix    string
	Number    string
	Title     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CourseInstance represents a course offered in one semester.
type CourseInstance struct {
	ID         string
	CourseID   string
	SemesterID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NonClassParent groups recurring non-class events under one title, the
// non-course analogue of Course.
type NonClassParent struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NonClassEvent represents a non-class booking series within one semester.
type NonClassEvent struct {
	ID         string
	ParentID   string
	SemesterID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Meeting represents a single weekly slot in a room. Exactly one of
// CourseInstanceID and NonClassEventID is set.
type Meeting struct {
	ID               string
	RoomID           string
	Day              booking.Day
	Start            booking.TimeOfDay
	End              booking.TimeOfDay
	CourseInstanceID *string
	NonClassEventID  *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// User represents an administrator account.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
