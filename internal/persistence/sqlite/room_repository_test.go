package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/example/course-planner/internal/booking"
	"github.com/example/course-planner/internal/persistence"
)

func TestRoomRepository_CreateRoom(t *testing.T) {
	storage, cleanup := setupStorageTest(t)
	defer cleanup()

	ctx := context.Background()
	seedRoom(t, storage, "East", "Science Center", "209a")

	retrieved, err := storage.Rooms.GetRoom(ctx, "209a")
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if retrieved.Name != "209a" {
		t.Errorf("Expected name '209a', got '%s'", retrieved.Name)
	}
	if retrieved.Capacity != 30 {
		t.Errorf("Expected capacity 30, got %d", retrieved.Capacity)
	}
}

func TestRoomRepository_CreateRoom_InvalidCapacity(t *testing.T) {
	storage, cleanup := setupStorageTest(t)
	defer cleanup()

	ctx := context.Background()
	seedRoom(t, storage, "East", "Science Center", "209a")

	err := storage.Rooms.CreateRoom(ctx, persistence.Room{
		ID:         "210",
		BuildingID: "Science Center",
		Name:       "210",
		Capacity:   0,
	})
	if err == nil {
		t.Fatal("Expected constraint violation for zero capacity, got nil")
	}
}

func TestRoomRepository_ListRoomLocations(t *testing.T) {
	storage, cleanup := setupStorageTest(t)
	defer cleanup()

	ctx := context.Background()
	seedRoom(t, storage, "West", "Humanities Hall", "12")
	seedRoom(t, storage, "East", "Science Center", "209a")
	seedRoom(t, storage, "East", "Science Center", "101")

	locations, err := storage.Rooms.ListRoomLocations(ctx)
	if err != nil {
		t.Fatalf("ListRoomLocations failed: %v", err)
	}

	if len(locations) != 3 {
		t.Fatalf("Expected 3 locations, got %d", len(locations))
	}

	// Ordered by campus, then building, then room name.
	expected := []string{"Science Center 101", "Science Center 209a", "Humanities Hall 12"}
	for i, want := range expected {
		if locations[i].DisplayName != want {
			t.Errorf("Expected display name '%s' at index %d, got '%s'", want, i, locations[i].DisplayName)
		}
	}
	if locations[0].Campus != "East" {
		t.Errorf("Expected first campus 'East', got '%s'", locations[0].Campus)
	}
	if locations[2].Campus != "West" {
		t.Errorf("Expected last campus 'West', got '%s'", locations[2].Campus)
	}
}

func TestRoomRepository_DeleteRoom(t *testing.T) {
	storage, cleanup := setupStorageTest(t)
	defer cleanup()

	ctx := context.Background()
	seedRoom(t, storage, "East", "Science Center", "209a")

	if err := storage.Rooms.DeleteRoom(ctx, "209a"); err != nil {
		t.Fatalf("DeleteRoom failed: %v", err)
	}

	_, err := storage.Rooms.GetRoom(ctx, "209a")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestRoomRepository_DeleteRoom_RestrictedByMeetings(t *testing.T) {
	storage, cleanup := setupStorageTest(t)
	defer cleanup()

	ctx := context.Background()
	seedRoom(t, storage, "East", "Science Center", "209a")
	instanceID := seedCourseInstance(t, storage, 2026, booking.Fall, "SEC", "2121")

	meeting := persistence.Meeting{
		ID:               "m1",
		RoomID:           "209a",
		Day:              booking.Monday,
		Start:            mustTimeOfDay(t, "10:00:00"),
		End:              mustTimeOfDay(t, "11:00:00"),
		CourseInstanceID: &instanceID,
	}
	if err := storage.Meetings.CreateMeeting(ctx, meeting); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	err := storage.Rooms.DeleteRoom(ctx, "209a")
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("Expected ErrForeignKeyViolation, got %v", err)
	}

	// Room survives the failed delete.
	if _, err := storage.Rooms.GetRoom(ctx, "209a"); err != nil {
		t.Fatalf("GetRoom after restricted delete failed: %v", err)
	}
}
