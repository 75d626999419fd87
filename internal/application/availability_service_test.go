package application

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/example/course-planner/internal/booking"
	"github.com/example/course-planner/internal/persistence"
)

type bookingIndexStub struct {
	records []booking.Record
	err     error

	year int
	term booking.Term
}

func (b *bookingIndexStub) ListBookings(ctx context.Context, year int, term booking.Term) ([]booking.Record, error) {
	b.year = year
	b.term = term
	if b.err != nil {
		return nil, b.err
	}
	out := make([]booking.Record, len(b.records))
	copy(out, b.records)
	return out, nil
}

type roomCatalogStub struct {
	rooms     map[string]persistence.Room
	locations []persistence.RoomLocation
	listErr   error
}

func (r *roomCatalogStub) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

func (r *roomCatalogStub) ListRoomLocations(ctx context.Context) ([]persistence.RoomLocation, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]persistence.RoomLocation, len(r.locations))
	copy(out, r.locations)
	return out, nil
}

func fallRecord(roomID, roomName, day, start, end, parentID, title string, kind booking.ParentKind) booking.Record {
	s, _ := booking.ParseTimeOfDay(start)
	e, _ := booking.ParseTimeOfDay(end)
	return booking.Record{
		RoomID:   roomID,
		RoomName: roomName,
		Year:     2026,
		Term:     booking.Fall,
		Day:      booking.Day(day),
		Interval: booking.Interval{Start: s, End: e},
		Parent:   booking.ParentRef{Kind: kind, ID: parentID},
		Title:    title,
	}
}

func availabilityFixture() *bookingIndexStub {
	return &bookingIndexStub{records: []booking.Record{
		fallRecord("sci-2121", "Science Center 2121", "TUE", "13:00:00", "14:15:00", "ci-sec-2121", "SEC 2121", booking.ParentCourseInstance),
		fallRecord("sci-2121", "Science Center 2121", "THU", "13:00:00", "14:15:00", "ci-sec-2121", "SEC 2121", booking.ParentCourseInstance),
		fallRecord("ac-209a", "Academic Commons 209a", "TUE", "13:30:00", "15:00:00", "ev-reading", "Reading Group", booking.ParentNonClassEvent),
	}}
}

func TestAvailabilityService_CheckRoomBookings(t *testing.T) {
	catalog := &roomCatalogStub{rooms: map[string]persistence.Room{
		"sci-2121": {ID: "sci-2121", Name: "2121", Capacity: 40},
		"ac-209a":  {ID: "ac-209a", Name: "209a", Capacity: 12},
	}}

	baseParams := func() RoomBookingsParams {
		return RoomBookingsParams{
			AvailabilityParams: AvailabilityParams{
				Year:  2026,
				Term:  "FALL",
				Day:   "TUE",
				Start: "13:00",
				End:   "14:00",
			},
			RoomID: "sci-2121",
		}
	}

	t.Run("returns conflicting titles for an occupied room", func(t *testing.T) {
		svc := NewAvailabilityService(availabilityFixture(), catalog)

		result, err := svc.CheckRoomBookings(context.Background(), baseParams())
		if err != nil {
			t.Fatalf("CheckRoomBookings failed: %v", err)
		}
		if !reflect.DeepEqual(result.MeetingTitles, []string{"SEC 2121"}) {
			t.Fatalf("expected [SEC 2121], got %v", result.MeetingTitles)
		}
	})

	t.Run("reports a free room with an empty title list", func(t *testing.T) {
		svc := NewAvailabilityService(availabilityFixture(), catalog)

		params := baseParams()
		params.Day = "WED"
		result, err := svc.CheckRoomBookings(context.Background(), params)
		if err != nil {
			t.Fatalf("CheckRoomBookings failed: %v", err)
		}
		if result.MeetingTitles == nil || len(result.MeetingTitles) != 0 {
			t.Fatalf("expected empty non-nil titles, got %v", result.MeetingTitles)
		}
	})

	t.Run("back-to-back slots do not conflict", func(t *testing.T) {
		svc := NewAvailabilityService(availabilityFixture(), catalog)

		params := baseParams()
		params.Start = "14:15"
		params.End = "15:15"
		result, err := svc.CheckRoomBookings(context.Background(), params)
		if err != nil {
			t.Fatalf("CheckRoomBookings failed: %v", err)
		}
		if len(result.MeetingTitles) != 0 {
			t.Fatalf("expected no conflicts for adjacent slot, got %v", result.MeetingTitles)
		}
	})

	t.Run("excluded parent does not collide with itself", func(t *testing.T) {
		svc := NewAvailabilityService(availabilityFixture(), catalog)

		params := baseParams()
		params.ExcludeParentID = "ci-sec-2121"
		result, err := svc.CheckRoomBookings(context.Background(), params)
		if err != nil {
			t.Fatalf("CheckRoomBookings failed: %v", err)
		}
		if len(result.MeetingTitles) != 0 {
			t.Fatalf("expected own slot excluded, got %v", result.MeetingTitles)
		}
	})

	t.Run("rejects an unknown room", func(t *testing.T) {
		svc := NewAvailabilityService(availabilityFixture(), catalog)

		params := baseParams()
		params.RoomID = "missing"
		_, err := svc.CheckRoomBookings(context.Background(), params)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("collects every invalid field", func(t *testing.T) {
		svc := NewAvailabilityService(availabilityFixture(), catalog)

		_, err := svc.CheckRoomBookings(context.Background(), RoomBookingsParams{
			AvailabilityParams: AvailabilityParams{
				Year:  0,
				Term:  "SUMMER",
				Day:   "SUN",
				Start: "9:00",
				End:   "25:00",
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"year", "term", "day", "start_time", "end_time", "room_id"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects an inverted interval", func(t *testing.T) {
		svc := NewAvailabilityService(availabilityFixture(), catalog)

		params := baseParams()
		params.Start = "14:00"
		params.End = "13:00"
		_, err := svc.CheckRoomBookings(context.Background(), params)

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["end_time"]; !ok {
			t.Fatalf("expected end_time validation error, got %v", vErr.FieldErrors)
		}
	})
}

func TestAvailabilityService_ListRoomsWithAvailability(t *testing.T) {
	catalog := &roomCatalogStub{
		rooms: map[string]persistence.Room{},
		locations: []persistence.RoomLocation{
			{ID: "ac-209a", Campus: "East", Building: "Academic Commons", Name: "209a", DisplayName: "Academic Commons 209a", Capacity: 12},
			{ID: "sci-2121", Campus: "East", Building: "Science Center", Name: "2121", DisplayName: "Science Center 2121", Capacity: 40},
			{ID: "hum-12", Campus: "West", Building: "Humanities Hall", Name: "12", DisplayName: "Humanities Hall 12", Capacity: 20},
		},
	}

	params := AvailabilityParams{
		Year:  2026,
		Term:  "FALL",
		Day:   "TUE",
		Start: "13:00",
		End:   "14:00",
	}

	t.Run("annotates every room, preserving catalog order", func(t *testing.T) {
		index := availabilityFixture()
		svc := NewAvailabilityService(index, catalog)

		rooms, err := svc.ListRoomsWithAvailability(context.Background(), params)
		if err != nil {
			t.Fatalf("ListRoomsWithAvailability failed: %v", err)
		}
		if len(rooms) != 3 {
			t.Fatalf("expected 3 rooms, got %d", len(rooms))
		}

		if rooms[0].ID != "ac-209a" || rooms[1].ID != "sci-2121" || rooms[2].ID != "hum-12" {
			t.Fatalf("unexpected room order: %v %v %v", rooms[0].ID, rooms[1].ID, rooms[2].ID)
		}
		if !reflect.DeepEqual(rooms[0].MeetingTitles, []string{"Reading Group"}) {
			t.Errorf("expected [Reading Group] for 209a, got %v", rooms[0].MeetingTitles)
		}
		if !reflect.DeepEqual(rooms[1].MeetingTitles, []string{"SEC 2121"}) {
			t.Errorf("expected [SEC 2121] for 2121, got %v", rooms[1].MeetingTitles)
		}
		if rooms[2].MeetingTitles == nil || len(rooms[2].MeetingTitles) != 0 {
			t.Errorf("expected empty non-nil titles for free room, got %v", rooms[2].MeetingTitles)
		}

		if index.year != 2026 || index.term != booking.Fall {
			t.Errorf("expected booking index queried for 2026 FALL, got %d %s", index.year, index.term)
		}
	})

	t.Run("queried semester bounds the index", func(t *testing.T) {
		index := availabilityFixture()
		svc := NewAvailabilityService(index, catalog)

		springParams := params
		springParams.Term = "SPRING"
		rooms, err := svc.ListRoomsWithAvailability(context.Background(), springParams)
		if err != nil {
			t.Fatalf("ListRoomsWithAvailability failed: %v", err)
		}
		if index.term != booking.Spring {
			t.Fatalf("expected SPRING query, got %s", index.term)
		}
		for _, room := range rooms {
			if len(room.MeetingTitles) != 0 {
				t.Errorf("expected no conflicts outside the booked semester, got %v for %s", room.MeetingTitles, room.ID)
			}
		}
	})

	t.Run("propagates index failures", func(t *testing.T) {
		index := &bookingIndexStub{err: errors.New("boom")}
		svc := NewAvailabilityService(index, catalog)

		_, err := svc.ListRoomsWithAvailability(context.Background(), params)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
