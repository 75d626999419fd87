package application

import "time"

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// CampusInput captures caller provided campus fields.
type CampusInput struct {
	Name string
}

// BuildingInput captures caller provided building fields.
type BuildingInput struct {
	CampusID string
	Name     string
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	BuildingID string
	Name       string
	Capacity   int
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Input     RoomInput
}

// SemesterInput captures caller provided semester fields. Term is the raw
// caller token and is validated by the service.
type SemesterInput struct {
	Year int
	Term string
}

// CourseInput captures caller provided course fields.
type CourseInput struct {
	Prefix string
	Number string
	Title  *string
}

// CreateCourseParams wraps the data required to create a course.
type CreateCourseParams struct {
	Principal Principal
	Input     CourseInput
}

// UpdateCourseParams wraps the data required to update a course.
type UpdateCourseParams struct {
	Principal Principal
	CourseID  string
	Input     CourseInput
}

// CourseInstanceInput captures caller provided course instance fields.
type CourseInstanceInput struct {
	CourseID   string
	SemesterID string
}

// NonClassParentInput captures caller provided non-class parent fields.
type NonClassParentInput struct {
	Title string
}

// NonClassEventInput captures caller provided non-class event fields.
type NonClassEventInput struct {
	ParentID   string
	SemesterID string
}

// MeetingInput captures caller provided meeting fields. Day, Start and End are
// raw caller tokens and are validated by the service. Exactly one of
// CourseInstanceID and NonClassEventID must be set.
type MeetingInput struct {
	RoomID           string
	Day              string
	Start            string
	End              string
	CourseInstanceID *string
	NonClassEventID  *string
}

// SaveMeetingParams wraps the data required to create or update a meeting.
// An empty MeetingID creates a new meeting.
type SaveMeetingParams struct {
	Principal Principal
	MeetingID string
	Input     MeetingInput
}

// AvailabilityParams describes one availability question. Term, Day, Start and
// End are raw caller tokens and are validated by the service. ExcludeParentID
// drops bookings owned by that course instance or non-class event, so an
// edited meeting does not collide with its own slot.
type AvailabilityParams struct {
	Principal       Principal
	Year            int
	Term            string
	Day             string
	Start           string
	End             string
	ExcludeParentID string
}

// RoomBookingsParams narrows an availability question to a single room.
type RoomBookingsParams struct {
	AvailabilityParams
	RoomID string
}

/// RoomAvailability is one row of the full-catalog availability listing: a
// room with the titles of meetings that would conflict with the queried slot.
// MeetingTitles is empty, never nil, for a free room.
type RoomAvailability struct {
	ID            string
	Campus        string
	Building      string
	Name          string
	DisplayName   string
	Capacity      int
	MeetingTitles []string
}

// RoomBookings lists the conflicting meeting titles for one queried room.
type RoomBookings struct {
	RoomID        string
	MeetingTitles []string
}

// UserInput captures caller provided user attributes.
type UserInput struct {
	Email       string
	DisplayName string
	Password    string
	IsAdmin     bool
}

// User represents an administrator account exposed by the application services.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update a user.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}
