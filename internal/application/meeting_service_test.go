package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/course-planner/internal/booking"
	"github.com/example/course-planner/internal/persistence"
)

type meetingStoreStub struct {
	created persistence.Meeting
	updated persistence.Meeting
	deleted string

	existing map[string]persistence.Meeting
	byParent []persistence.Meeting

	createErr error
	updateErr error
	deleteErr error
}

func (m *meetingStoreStub) CreateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = meeting
	return nil
}

func (m *meetingStoreStub) UpdateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = meeting
	return nil
}

func (m *meetingStoreStub) GetMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	meeting, ok := m.existing[id]
	if !ok {
		return persistence.Meeting{}, persistence.ErrNotFound
	}
	return meeting, nil
}

func (m *meetingStoreStub) ListMeetingsForParent(ctx context.Context, parentID string) ([]persistence.Meeting, error) {
	return m.byParent, nil
}

func (m *meetingStoreStub) DeleteMeeting(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = id
	return nil
}

type parentResolverStub struct {
	instances map[string]persistence.CourseInstance
	events    map[string]persistence.NonClassEvent
}

func (p *parentResolverStub) GetCourseInstance(ctx context.Context, id string) (persistence.CourseInstance, error) {
	instance, ok := p.instances[id]
	if !ok {
		return persistence.CourseInstance{}, persistence.ErrNotFound
	}
	return instance, nil
}

func (p *parentResolverStub) GetNonClassEvent(ctx context.Context, id string) (persistence.NonClassEvent, error) {
	event, ok := p.events[id]
	if !ok {
		return persistence.NonClassEvent{}, persistence.ErrNotFound
	}
	return event, nil
}

func meetingServiceFixture() (*MeetingService, *meetingStoreStub) {
	store := &meetingStoreStub{existing: map[string]persistence.Meeting{}}
	catalog := &roomCatalogStub{rooms: map[string]persistence.Room{
		"sci-2121": {ID: "sci-2121", Name: "2121", Capacity: 40},
	}}
	parents := &parentResolverStub{
		instances: map[string]persistence.CourseInstance{
			"ci-sec-2121": {ID: "ci-sec-2121", CourseID: "sec", SemesterID: "f26"},
		},
		events: map[string]persistence.NonClassEvent{
			"ev-reading": {ID: "ev-reading", ParentID: "reading", SemesterID: "f26"},
		},
	}
	svc := NewMeetingService(store, catalog, parents, func() string { return "generated-id" })
	return svc, store
}

func strPtr(value string) *string { return &value }

func TestMeetingService_SaveMeeting(t *testing.T) {
	validInput := func() MeetingInput {
		return MeetingInput{
			RoomID:           "sci-2121",
			Day:              "TUE",
			Start:            "13:00",
			End:              "14:15",
			CourseInstanceID: strPtr("ci-sec-2121"),
		}
	}

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc, _ := meetingServiceFixture()

		_, err := svc.SaveMeeting(context.Background(), SaveMeetingParams{
			Principal: Principal{IsAdmin: false},
			Input:     validInput(),
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("creates a meeting with a generated id", func(t *testing.T) {
		svc, store := meetingServiceFixture()

		meeting, err := svc.SaveMeeting(context.Background(), SaveMeetingParams{
			Principal: Principal{UserID: "admin", IsAdmin: true},
			Input:     validInput(),
		})
		if err != nil {
			t.Fatalf("SaveMeeting failed: %v", err)
		}
		if meeting.ID != "generated-id" {
			t.Errorf("expected generated id, got %q", meeting.ID)
		}
		if store.created.Day != booking.Tuesday {
			t.Errorf("expected TUE, got %s", store.created.Day)
		}
		if store.created.Start.String() != "13:00:00" || store.created.End.String() != "14:15:00" {
			t.Errorf("unexpected interval %s-%s", store.created.Start, store.created.End)
		}
	})

	t.Run("rejects a meeting with both parents", func(t *testing.T) {
		svc, _ := meetingServiceFixture()

		input := validInput()
		input.NonClassEventID = strPtr("ev-reading")
		_, err := svc.SaveMeeting(context.Background(), SaveMeetingParams{
			Principal: Principal{IsAdmin: true},
			Input:     input,
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["parent"]; !ok {
			t.Fatalf("expected parent validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects a meeting with no parent", func(t *testing.T) {
		svc, _ := meetingServiceFixture()

		input := validInput()
		input.CourseInstanceID = nil
		_, err := svc.SaveMeeting(context.Background(), SaveMeetingParams{
			Principal: Principal{IsAdmin: true},
			Input:     input,
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["parent"]; !ok {
			t.Fatalf("expected parent validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects a zero-length slot", func(t *testing.T) {
		svc, _ := meetingServiceFixture()

		input := validInput()
		input.End = input.Start
		_, err := svc.SaveMeeting(context.Background(), SaveMeetingParams{
			Principal: Principal{IsAdmin: true},
			Input:     input,
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["end_time"]; !ok {
			t.Fatalf("expected end_time validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects an unknown room", func(t *testing.T) {
		svc, _ := meetingServiceFixture()

		input := validInput()
		input.RoomID = "missing"
		_, err := svc.SaveMeeting(context.Background(), SaveMeetingParams{
			Principal: Principal{IsAdmin: true},
			Input:     input,
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rejects an unknown parent", func(t *testing.T) {
		svc, _ := meetingServiceFixture()

		input := validInput()
		input.CourseInstanceID = strPtr("missing")
		_, err := svc.SaveMeeting(context.Background(), SaveMeetingParams{
			Principal: Principal{IsAdmin: true},
			Input:     input,
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("updates an existing meeting in place", func(t *testing.T) {
		svc, store := meetingServiceFixture()
		store.existing["m1"] = persistence.Meeting{
			ID:               "m1",
			RoomID:           "sci-2121",
			Day:              booking.Monday,
			CourseInstanceID: strPtr("ci-sec-2121"),
		}

		input := validInput()
		input.NonClassEventID = nil
		meeting, err := svc.SaveMeeting(context.Background(), SaveMeetingParams{
			Principal: Principal{IsAdmin: true},
			MeetingID: "m1",
			Input:     input,
		})
		if err != nil {
			t.Fatalf("SaveMeeting failed: %v", err)
		}
		if meeting.ID != "m1" {
			t.Errorf("expected id m1, got %q", meeting.ID)
		}
		if store.updated.Day != booking.Tuesday {
			t.Errorf("expected updated day TUE, got %s", store.updated.Day)
		}
	})

	t.Run("overlapping slots are stored as entered", func(t *testing.T) {
		svc, store := meetingServiceFixture()

		for i := 0; i < 2; i++ {
			if _, err := svc.SaveMeeting(context.Background(), SaveMeetingParams{
				Principal: Principal{IsAdmin: true},
				Input:     validInput(),
			}); err != nil {
				t.Fatalf("SaveMeeting failed: %v", err)
			}
		}
		if store.created.RoomID != "sci-2121" {
			t.Fatalf("expected second save persisted, got %+v", store.created)
		}
	})
}

func TestMeetingService_DeleteMeeting(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc, _ := meetingServiceFixture()

		err := svc.DeleteMeeting(context.Background(), Principal{IsAdmin: false}, "m1")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("deletes for administrators", func(t *testing.T) {
		svc, store := meetingServiceFixture()

		if err := svc.DeleteMeeting(context.Background(), Principal{UserID: "admin", IsAdmin: true}, "m1"); err != nil {
			t.Fatalf("DeleteMeeting failed: %v", err)
		}
		if store.deleted != "m1" {
			t.Fatalf("expected m1 deleted, got %q", store.deleted)
		}
	})

	t.Run("maps missing meetings to ErrNotFound", func(t *testing.T) {
		svc, store := meetingServiceFixture()
		store.deleteErr = persistence.ErrNotFound

		err := svc.DeleteMeeting(context.Background(), Principal{IsAdmin: true}, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
