package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/example/course-planner/internal/booking"
	"github.com/example/course-planner/internal/persistence"
)

func mustTimeOfDay(t *testing.T, value string) booking.TimeOfDay {
	t.Helper()
	parsed, err := booking.ParseTimeOfDay(value)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q) failed: %v", value, err)
	}
	return parsed
}

func seedSemester(t *testing.T, storage *Storage, year int, term booking.Term) string {
	t.Helper()
	ctx := context.Background()

	if existing, err := storage.Semesters.GetSemesterByTerm(ctx, year, term); err == nil {
		return existing.ID
	}

	id := fmt.Sprintf("sem-%d-%s", year, term)
	err := storage.Semesters.CreateSemester(ctx, persistence.Semester{ID: id, Year: year, Term: term})
	if err != nil {
		t.Fatalf("CreateSemester failed: %v", err)
	}
	return id
}

// seedCourseInstance creates a course and schedules it in the given semester,
// returning the instance ID.
func seedCourseInstance(t *testing.T, storage *Storage, year int, term booking.Term, prefix, number string) string {
	t.Helper()
	ctx := context.Background()

	semesterID := seedSemester(t, storage, year, term)
	courseID := fmt.Sprintf("course-%s-%s", prefix, number)
	err := storage.Courses.CreateCourse(ctx, persistence.Course{ID: courseID, Prefix: prefix, Number: number})
	if err != nil && !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("CreateCourse failed: %v", err)
	}

	instanceID := fmt.Sprintf("ci-%s-%s-%d-%s", prefix, number, year, term)
	err = storage.Courses.CreateCourseInstance(ctx, persistence.CourseInstance{
		ID:         instanceID,
		CourseID:   courseID,
		SemesterID: semesterID,
	})
	if err != nil {
		t.Fatalf("CreateCourseInstance failed: %v", err)
	}
	return instanceID
}

// seedNonClassEvent creates a titled non-class parent and schedules it in the
// given semester, returning the event ID.
func seedNonClassEvent(t *testing.T, storage *Storage, year int, term booking.Term, title string) string {
	t.Helper()
	ctx := context.Background()

	semesterID := seedSemester(t, storage, year, term)
	parentID := "parent-" + title
	err := storage.Events.CreateNonClassParent(ctx, persistence.NonClassParent{ID: parentID, Title: title})
	if err != nil && !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("CreateNonClassParent failed: %v", err)
	}

	eventID := fmt.Sprintf("event-%s-%d-%s", title, year, term)
	err = storage.Events.CreateNonClassEvent(ctx, persistence.NonClassEvent{
		ID:         eventID,
		ParentID:   parentID,
		SemesterID: semesterID,
	})
	if err != nil {
		t.Fatalf("CreateNonClassEvent failed: %v", err)
	}
	return eventID
}

func TestMeetingRepository_CreateAndGet(t *testing.T) {
	storage, cleanup := setupStorageTest(t)
	defer cleanup()

	ctx := context.Background()
	seedRoom(t, storage, "East", "Science Center", "2121")
	instanceID := seedCourseInstance(t, storage, 2026, booking.Fall, "SEC", "2121")

	meeting := persistence.Meeting{
		ID:               "m1",
		RoomID:           "2121",
		Day:              booking.Tuesday,
		Start:            mustTimeOfDay(t, "13:00:00"),
		End:              mustTimeOfDay(t, "14:15:00"),
		CourseInstanceID: &instanceID,
	}
	if err := storage.Meetings.CreateMeeting(ctx, meeting); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	retrieved, err := storage.Meetings.GetMeeting(ctx, "m1")
	if err != nil {
		t.Fatalf("GetMeeting failed: %v", err)
	}
	if retrieved.Day != booking.Tuesday {
		t.Errorf("Expected day TUE, got %s", retrieved.Day)
	}
	if retrieved.Start.String() != "13:00:00" {
		t.Errorf("Expected start 13:00:00, got %s", retrieved.Start)
	}
	if retrieved.CourseInstanceID == nil || *retrieved.CourseInstanceID != instanceID {
		t.Errorf("Expected course instance %s, got %v", instanceID, retrieved.CourseInstanceID)
	}
	if retrieved.NonClassEventID != nil {
		t.Errorf("Expected nil non-class event, got %v", *retrieved.NonClassEventID)
	}
}

func TestMeetingRepository_CreateMeeting_RequiresExactlyOneParent(t *testing.T) {
	storage, cleanup := setupStorageTest(t)
	defer cleanup()

	ctx := context.Background()
	seedRoom(t, storage, "East", "Science Center", "2121")
	instanceID := seedCourseInstance(t, storage, 2026, booking.Fall, "SEC", "2121")
	eventID := seedNonClassEvent(t, storage, 2026, booking.Fall, "Reading Group")

	base := persistence.Meeting{
		ID:     "m1",
		RoomID: "2121",
		Day:    booking.Monday,
		Start:  mustTimeOfDay(t, "09:00:00"),
		End:    mustTimeOfDay(t, "10:00:00"),
	}

	orphan := base
	if err := storage.Meetings.CreateMeeting(ctx, orphan); err == nil {
		t.Fatal("Expected error for meeting with no parent, got nil")
	}

	both := base
	both.CourseInstanceID = &instanceID
	both.NonClassEventID = &eventID
	if err := storage.Meetings.CreateMeeting(ctx, both); err == nil {
		t.Fatal("Expected error for meeting with two parents, got nil")
	}
}

func TestMeetingRepository_CreateMeeting_RejectsInvertedInterval(t *testing.T) {
	storage, cleanup := setupStorageTest(t)
	defer cleanup()

	ctx := context.Background()
	seedRoom(t, storage, "East", "Science Center", "2121")
	instanceID := seedCourseInstance(t, storage, 2026, booking.Fall, "SEC", "2121")

	meeting := persistence.Meeting{
		ID:               "m1",
		RoomID:           "2121",
		Day:              booking.Monday,
		Start:            mustTimeOfDay(t, "14:00:00"),
		End:              mustTimeOfDay(t, "13:00:00"),
		CourseInstanceID: &instanceID,
	}
	if err := storage.Meetings.CreateMeeting(ctx, meeting); err == nil {
		t.Fatal("Expected error for end before start, got nil")
	}
}

func TestMeetingRepository_ListBookings(t *testing.T) {
	storage, cleanup := setupStorageTest(t)
	defer cleanup()

	ctx := context.Background()
	seedRoom(t, storage, "East", "Science Center", "2121")
	seedRoom(t, storage, "East", "Academic Commons", "209a")
	instanceID := seedCourseInstance(t, storage, 2026, booking.Fall, "SEC", "2121")
	eventID := seedNonClassEvent(t, storage, 2026, booking.Fall, "Reading Group")
	springInstance := seedCourseInstance(t, storage, 2026, booking.Spring, "CS", "50")

	meetings := []persistence.Meeting{
		{ID: "m1", RoomID: "2121", Day: booking.Tuesday,
			Start: mustTimeOfDay(t, "13:00:00"), End: mustTimeOfDay(t, "14:15:00"),
			CourseInstanceID: &instanceID},
		{ID: "m2", RoomID: "209a", Day: booking.Wednesday,
			Start: mustTimeOfDay(t, "16:00:00"), End: mustTimeOfDay(t, "17:00:00"),
			NonClassEventID: &eventID},
		{ID: "m3", RoomID: "2121", Day: booking.Monday,
			Start: mustTimeOfDay(t, "09:00:00"), End: mustTimeOfDay(t, "10:00:00"),
			CourseInstanceID: &springInstance},
	}
	for _, meeting := range meetings {
		if err := storage.Meetings.CreateMeeting(ctx, meeting); err != nil {
			t.Fatalf("CreateMeeting failed for %s: %v", meeting.ID, err)
		}
	}

	records, err := storage.Meetings.ListBookings(ctx, 2026, booking.Fall)
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}

	// The spring meeting is outside the queried semester.
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	byRoom := make(map[string]booking.Record)
	for _, record := range records {
		byRoom[record.RoomID] = record
	}

	course := byRoom["2121"]
	if course.Title != "SEC 2121" {
		t.Errorf("Expected course title 'SEC 2121', got '%s'", course.Title)
	}
	if course.RoomName != "Science Center 2121" {
		t.Errorf("Expected room name 'Science Center 2121', got '%s'", course.RoomName)
	}
	if course.Parent.Kind != booking.ParentCourseInstance {
		t.Errorf("Expected course instance parent, got %s", course.Parent.Kind)
	}
	if course.Parent.ID != instanceID {
		t.Errorf("Expected parent ID %s, got %s", instanceID, course.Parent.ID)
	}
	if course.Interval.Start.String() != "13:00:00" || course.Interval.End.String() != "14:15:00" {
		t.Errorf("Unexpected interval %s-%s", course.Interval.Start, course.Interval.End)
	}

	event := byRoom["209a"]
	if event.Title != "Reading Group" {
		t.Errorf("Expected event title 'Reading Group', got '%s'", event.Title)
	}
	if event.Parent.Kind != booking.ParentNonClassEvent {
		t.Errorf("Expected non-class event parent, got %s", event.Parent.Kind)
	}
	if event.Day != booking.Wednesday {
		t.Errorf("Expected day WED, got %s", event.Day)
	}
}

func TestMeetingRepository_ListBookings_EmptySemester(t *testing.T) {
	storage, cleanup := setupStorageTest(t)
	defer cleanup()

	records, err := storage.Meetings.ListBookings(context.Background(), 2026, booking.Fall)
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestMeetingRepository_DeleteParentCascades(t *testing.T) {
	storage, cleanup := setupStorageTest(t)
	defer cleanup()

	ctx := context.Background()
	seedRoom(t, storage, "East", "Science Center", "2121")
	instanceID := seedCourseInstance(t, storage, 2026, booking.Fall, "SEC", "2121")

	meeting := persistence.Meeting{
		ID:               "m1",
		RoomID:           "2121",
		Day:              booking.Thursday,
		Start:            mustTimeOfDay(t, "13:00:00"),
		End:              mustTimeOfDay(t, "14:15:00"),
		CourseInstanceID: &instanceID,
	}
	if err := storage.Meetings.CreateMeeting(ctx, meeting); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	if err := storage.Courses.DeleteCourseInstance(ctx, instanceID); err != nil {
		t.Fatalf("DeleteCourseInstance failed: %v", err)
	}

	_, err := storage.Meetings.GetMeeting(ctx, "m1")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected meeting to cascade away, got %v", err)
	}
}

func TestMeetingRepository_ListMeetingsForParent(t *testing.T) {
	storage, cleanup := setupStorageTest(t)
	defer cleanup()

	ctx := context.Background()
	seedRoom(t, storage, "East", "Science Center", "2121")
	instanceID := seedCourseInstance(t, storage, 2026, booking.Fall, "SEC", "2121")
	eventID := seedNonClassEvent(t, storage, 2026, booking.Fall, "Reading Group")

	meetings := []persistence.Meeting{
		{ID: "m1", RoomID: "2121", Day: booking.Thursday,
			Start: mustTimeOfDay(t, "13:00:00"), End: mustTimeOfDay(t, "14:15:00"),
			CourseInstanceID: &instanceID},
		{ID: "m2", RoomID: "2121", Day: booking.Tuesday,
			Start: mustTimeOfDay(t, "13:00:00"), End: mustTimeOfDay(t, "14:15:00"),
			CourseInstanceID: &instanceID},
		{ID: "m3", RoomID: "2121", Day: booking.Friday,
			Start: mustTimeOfDay(t, "16:00:00"), End: mustTimeOfDay(t, "17:00:00"),
			NonClassEventID: &eventID},
	}
	for _, meeting := range meetings {
		if err := storage.Meetings.CreateMeeting(ctx, meeting); err != nil {
			t.Fatalf("CreateMeeting failed for %s: %v", meeting.ID, err)
		}
	}

	owned, err := storage.Meetings.ListMeetingsForParent(ctx, instanceID)
	if err != nil {
		t.Fatalf("ListMeetingsForParent failed: %v", err)
	}
	if len(owned) != 2 {
		t.Fatalf("Expected 2 meetings for instance, got %d", len(owned))
	}
	for _, meeting := range owned {
		if meeting.CourseInstanceID == nil || *meeting.CourseInstanceID != instanceID {
			t.Errorf("Meeting %s not owned by expected instance", meeting.ID)
		}
	}
}

func TestMeetingRepository_LateDaySlots(t *testing.T) {
	storage, cleanup := setupStorageTest(t)
	defer cleanup()

	ctx := context.Background()
	seedRoom(t, storage, "East", "Science Center", "2121")
	instanceID := seedCourseInstance(t, storage, 2026, booking.Fall, "SEC", "2121")

	meetings := []persistence.Meeting{
		{ID: "m1", RoomID: "2121", Day: booking.Monday,
			Start: mustTimeOfDay(t, "17:00:00"), End: mustTimeOfDay(t, "18:00:00"),
			CourseInstanceID: &instanceID},
		{ID: "m2", RoomID: "2121", Day: booking.Monday,
			Start: mustTimeOfDay(t, "09:00:00"), End: mustTimeOfDay(t, "17:00:00"),
			CourseInstanceID: &instanceID},
		{ID: "m3", RoomID: "2121", Day: booking.Monday,
			Start: mustTimeOfDay(t, "16:00:00"), End: mustTimeOfDay(t, "17:00:00"),
			CourseInstanceID: &instanceID},
	}
	for _, meeting := range meetings {
		if err := storage.Meetings.CreateMeeting(ctx, meeting); err != nil {
			t.Fatalf("CreateMeeting failed for %s: %v", meeting.ID, err)
		}
	}

	retrieved, err := storage.Meetings.GetMeeting(ctx, "m2")
	if err != nil {
		t.Fatalf("GetMeeting failed: %v", err)
	}
	if retrieved.Start.String() != "09:00:00" || retrieved.End.String() != "17:00:00" {
		t.Errorf("Unexpected interval %s-%s", retrieved.Start, retrieved.End)
	}

	owned, err := storage.Meetings.ListMeetingsForParent(ctx, instanceID)
	if err != nil {
		t.Fatalf("ListMeetingsForParent failed: %v", err)
	}
	want := []string{"m2", "m3", "m1"}
	if len(owned) != len(want) {
		t.Fatalf("Expected %d meetings, got %d", len(want), len(owned))
	}
	for i, meeting := range owned {
		if meeting.ID != want[i] {
			t.Errorf("Expected %s at position %d, got %s", want[i], i, meeting.ID)
		}
	}
}

func TestMeetingRepository_RoomHasMeetings(t *testing.T) {
	storage, cleanup := setupStorageTest(t)
	defer cleanup()

	ctx := context.Background()
	seedRoom(t, storage, "East", "Science Center", "2121")
	seedRoom(t, storage, "East", "Science Center", "101")
	instanceID := seedCourseInstance(t, storage, 2026, booking.Fall, "SEC", "2121")

	meeting := persistence.Meeting{
		ID:               "m1",
		RoomID:           "2121",
		Day:              booking.Monday,
		Start:            mustTimeOfDay(t, "09:00:00"),
		End:              mustTimeOfDay(t, "10:00:00"),
		CourseInstanceID: &instanceID,
	}
	if err := storage.Meetings.CreateMeeting(ctx, meeting); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	has, err := storage.Meetings.RoomHasMeetings(ctx, "2121")
	if err != nil {
		t.Fatalf("RoomHasMeetings failed: %v", err)
	}
	if !has {
		t.Error("Expected room 2121 to have meetings")
	}

	has, err = storage.Meetings.RoomHasMeetings(ctx, "101")
	if err != nil {
		t.Fatalf("RoomHasMeetings failed: %v", err)
	}
	if has {
		t.Error("Expected room 101 to have no meetings")
	}
}
