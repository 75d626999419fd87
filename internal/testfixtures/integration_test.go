package testfixtures

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/course-planner/internal/application"
	"github.com/example/course-planner/internal/persistence"
	"github.com/example/course-planner/internal/persistence/sqlite"
)

type storageParentResolver struct {
	storage *sqlite.Storage
}

func (p storageParentResolver) GetCourseInstance(ctx context.Context, id string) (persistence.CourseInstance, error) {
	return p.storage.Courses.GetCourseInstance(ctx, id)
}

func (p storageParentResolver) GetNonClassEvent(ctx context.Context, id string) (persistence.NonClassEvent, error) {
	return p.storage.Events.GetNonClassEvent(ctx, id)
}

// TestPlannerEndToEnd drives the planning flow through the real services and
// SQLite storage: build the catalog, schedule meetings, and query availability.
func TestPlannerEndToEnd(t *testing.T) {
	ctx := context.Background()
	storage := NewStorage(t)
	ids := NewIDGenerator("fx")
	admin := application.Principal{UserID: "admin", IsAdmin: true}

	rooms := application.NewRoomService(storage.Locations, storage.Rooms, storage.Meetings, ids.NextFunc())
	semesters := application.NewSemesterService(storage.Semesters, ids.NextFunc())
	courses := application.NewCourseService(storage.Courses, storage.Semesters, ids.NextFunc())
	events := application.NewEventService(storage.Events, storage.Semesters, ids.NextFunc())
	meetings := application.NewMeetingService(storage.Meetings, storage.Rooms, storageParentResolver{storage}, ids.NextFunc())
	availability := application.NewAvailabilityService(storage.Meetings, storage.Rooms)

	campus, err := rooms.CreateCampus(ctx, admin, application.CampusInput{Name: "East"})
	if err != nil {
		t.Fatalf("CreateCampus failed: %v", err)
	}
	building, err := rooms.CreateBuilding(ctx, admin, application.BuildingInput{CampusID: campus.ID, Name: "Science Center"})
	if err != nil {
		t.Fatalf("CreateBuilding failed: %v", err)
	}
	room, err := rooms.CreateRoom(ctx, application.CreateRoomParams{
		Principal: admin,
		Input:     application.RoomInput{BuildingID: building.ID, Name: "2121", Capacity: 40},
	})
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	semester, err := semesters.CreateSemester(ctx, admin, application.SemesterInput{Year: 2026, Term: "FALL"})
	if err != nil {
		t.Fatalf("CreateSemester failed: %v", err)
	}

	course, err := courses.CreateCourse(ctx, application.CreateCourseParams{
		Principal: admin,
		Input:     application.CourseInput{Prefix: "sec", Number: "2121"},
	})
	if err != nil {
		t.Fatalf("CreateCourse failed: %v", err)
	}
	instance, err := courses.ScheduleCourse(ctx, admin, application.CourseInstanceInput{
		CourseID:   course.ID,
		SemesterID: semester.ID,
	})
	if err != nil {
		t.Fatalf("ScheduleCourse failed: %v", err)
	}

	parent, err := events.CreateParent(ctx, admin, application.NonClassParentInput{Title: "Reading Group"})
	if err != nil {
		t.Fatalf("CreateParent failed: %v", err)
	}
	event, err := events.ScheduleEvent(ctx, admin, application.NonClassEventInput{
		ParentID:   parent.ID,
		SemesterID: semester.ID,
	})
	if err != nil {
		t.Fatalf("ScheduleEvent failed: %v", err)
	}

	if _, err := meetings.SaveMeeting(ctx, application.SaveMeetingParams{
		Principal: admin,
		Input: application.MeetingInput{
			RoomID:           room.ID,
			Day:              "TUE",
			Start:            "13:00",
			End:              "14:15",
			CourseInstanceID: &instance.ID,
		},
	}); err != nil {
		t.Fatalf("SaveMeeting for course failed: %v", err)
	}
	if _, err := meetings.SaveMeeting(ctx, application.SaveMeetingParams{
		Principal: admin,
		Input: application.MeetingInput{
			RoomID:          room.ID,
			Day:             "TUE",
			Start:           "13:30",
			End:             "15:00",
			NonClassEventID: &event.ID,
		},
	}); err != nil {
		t.Fatalf("SaveMeeting for event failed: %v", err)
	}

	if _, err := meetings.SaveMeeting(ctx, application.SaveMeetingParams{
		Principal: admin,
		Input: application.MeetingInput{
			RoomID:          room.ID,
			Day:             "MON",
			Start:           "09:00",
			End:             "17:00",
			NonClassEventID: &event.ID,
		},
	}); err != nil {
		t.Fatalf("SaveMeeting for a full-day slot failed: %v", err)
	}

	query := application.AvailabilityParams{
		Principal: admin,
		Year:      2026,
		Term:      "FALL",
		Day:       "TUE",
		Start:     "13:00",
		End:       "14:15",
	}

	listing, err := availability.ListRoomsWithAvailability(ctx, query)
	if err != nil {
		t.Fatalf("ListRoomsWithAvailability failed: %v", err)
	}
	if len(listing) != 1 {
		t.Fatalf("expected 1 room, got %d", len(listing))
	}
	if listing[0].DisplayName != "Science Center 2121" {
		t.Errorf("unexpected display name %q", listing[0].DisplayName)
	}
	wantTitles := map[string]bool{"SEC 2121": true, "Reading Group": true}
	if len(listing[0].MeetingTitles) != 2 {
		t.Fatalf("expected 2 conflicting titles, got %v", listing[0].MeetingTitles)
	}
	for _, title := range listing[0].MeetingTitles {
		if !wantTitles[title] {
			t.Errorf("unexpected title %q", title)
		}
	}

	excluded := query
	excluded.ExcludeParentID = instance.ID
	bookings, err := availability.CheckRoomBookings(ctx, application.RoomBookingsParams{
		AvailabilityParams: excluded,
		RoomID:             room.ID,
	})
	if err != nil {
		t.Fatalf("CheckRoomBookings failed: %v", err)
	}
	if len(bookings.MeetingTitles) != 1 || bookings.MeetingTitles[0] != "Reading Group" {
		t.Errorf("expected the excluded course slot to drop out, got %v", bookings.MeetingTitles)
	}

	if _, err := events.UpdateParent(ctx, admin, parent.ID, application.NonClassParentInput{Title: "Faculty Reading Group"}); err != nil {
		t.Fatalf("UpdateParent failed: %v", err)
	}
	bookings, err = availability.CheckRoomBookings(ctx, application.RoomBookingsParams{
		AvailabilityParams: excluded,
		RoomID:             room.ID,
	})
	if err != nil {
		t.Fatalf("CheckRoomBookings after rename failed: %v", err)
	}
	if len(bookings.MeetingTitles) != 1 || bookings.MeetingTitles[0] != "Faculty Reading Group" {
		t.Errorf("expected the renamed title in results, got %v", bookings.MeetingTitles)
	}

	if err := rooms.DeleteRoom(ctx, admin, room.ID); !errors.Is(err, application.ErrRoomInUse) {
		t.Fatalf("expected ErrRoomInUse for a booked room, got %v", err)
	}
}

// TestSessionLifecycleEndToEnd covers account creation, login and session
// expiry against the real stores with a controlled clock.
func TestSessionLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	storage := NewStorage(t)
	ids := NewIDGenerator("auth")
	clock := NewClock(time.Time{})
	admin := application.Principal{UserID: "bootstrap", IsAdmin: true}

	users := application.NewUserService(storage.Users, nil, ids.NextFunc())
	auth := application.NewAuthService(storage.Users, storage.Sessions, nil, ids.NextFunc(), clock.NowFunc(), time.Hour)

	if _, err := users.CreateUser(ctx, application.CreateUserParams{
		Principal: admin,
		Input: application.UserInput{
			Email:       "registrar@example.edu",
			DisplayName: "Registrar",
			Password:    "correct horse battery",
			IsAdmin:     true,
		},
	}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	result, err := auth.Authenticate(ctx, application.AuthenticateParams{
		Email:    "Registrar@Example.edu",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	principal, err := auth.ValidateSession(ctx, result.Session.Token)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if !principal.IsAdmin {
		t.Errorf("expected admin principal, got %+v", principal)
	}

	clock.Advance(2 * time.Hour)
	if _, err := auth.ValidateSession(ctx, result.Session.Token); !errors.Is(err, application.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired after TTL, got %v", err)
	}
}
