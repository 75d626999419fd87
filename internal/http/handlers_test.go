package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/course-planner/internal/application"
	"github.com/example/course-planner/internal/booking"
	"github.com/example/course-planner/internal/persistence"
)

type authServiceStub struct {
	result  application.AuthenticateResult
	authErr error
	revoked []string
}

func (a *authServiceStub) Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
	if a.authErr != nil {
		return application.AuthenticateResult{}, a.authErr
	}
	return a.result, nil
}

func (a *authServiceStub) RevokeSession(ctx context.Context, token string) error {
	a.revoked = append(a.revoked, token)
	return nil
}

type availabilityServiceStub struct {
	listParams    application.AvailabilityParams
	bookingParams application.RoomBookingsParams
	rooms         []application.RoomAvailability
	bookings      application.RoomBookings
	err           error
}

func (a *availabilityServiceStub) ListRoomsWithAvailability(ctx context.Context, params application.AvailabilityParams) ([]application.RoomAvailability, error) {
	a.listParams = params
	if a.err != nil {
		return nil, a.err
	}
	return a.rooms, nil
}

func (a *availabilityServiceStub) CheckRoomBookings(ctx context.Context, params application.RoomBookingsParams) (application.RoomBookings, error) {
	a.bookingParams = params
	if a.err != nil {
		return application.RoomBookings{}, a.err
	}
	return a.bookings, nil
}

type roomServiceStub struct {
	room      persistence.Room
	deleteErr error
	deleted   string
}

func (r *roomServiceStub) CreateCampus(ctx context.Context, principal application.Principal, input application.CampusInput) (persistence.Campus, error) {
	return persistence.Campus{ID: "c1", Name: input.Name}, nil
}

func (r *roomServiceStub) ListCampuses(ctx context.Context, principal application.Principal) ([]persistence.Campus, error) {
	return nil, nil
}

func (r *roomServiceStub) CreateBuilding(ctx context.Context, principal application.Principal, input application.BuildingInput) (persistence.Building, error) {
	return persistence.Building{ID: "b1", CampusID: input.CampusID, Name: input.Name}, nil
}

func (r *roomServiceStub) ListBuildings(ctx context.Context, principal application.Principal) ([]persistence.Building, error) {
	return nil, nil
}

func (r *roomServiceStub) CreateRoom(ctx context.Context, params application.CreateRoomParams) (persistence.Room, error) {
	return persistence.Room{ID: "r1", BuildingID: params.Input.BuildingID, Name: params.Input.Name, Capacity: params.Input.Capacity}, nil
}

func (r *roomServiceStub) UpdateRoom(ctx context.Context, params application.UpdateRoomParams) (persistence.Room, error) {
	return r.room, nil
}

func (r *roomServiceStub) GetRoom(ctx context.Context, principal application.Principal, roomID string) (persistence.Room, error) {
	if r.room.ID != roomID {
		return persistence.Room{}, application.ErrNotFound
	}
	return r.room, nil
}

func (r *roomServiceStub) ListRooms(ctx context.Context, principal application.Principal) ([]persistence.RoomLocation, error) {
	return nil, nil
}

func (r *roomServiceStub) DeleteRoom(ctx context.Context, principal application.Principal, roomID string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = roomID
	return nil
}

type meetingServiceStub struct {
	saved   application.SaveMeetingParams
	meeting persistence.Meeting
	err     error
}

func (m *meetingServiceStub) SaveMeeting(ctx context.Context, params application.SaveMeetingParams) (persistence.Meeting, error) {
	m.saved = params
	if m.err != nil {
		return persistence.Meeting{}, m.err
	}
	return m.meeting, nil
}

func (m *meetingServiceStub) GetMeeting(ctx context.Context, principal application.Principal, meetingID string) (persistence.Meeting, error) {
	if m.meeting.ID != meetingID {
		return persistence.Meeting{}, application.ErrNotFound
	}
	return m.meeting, nil
}

func (m *meetingServiceStub) ListMeetingsForParent(ctx context.Context, principal application.Principal, parentID string) ([]persistence.Meeting, error) {
	return []persistence.Meeting{m.meeting}, nil
}

func (m *meetingServiceStub) DeleteMeeting(ctx context.Context, principal application.Principal, meetingID string) error {
	return m.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type routerFixture struct {
	auth         *authServiceStub
	availability *availabilityServiceStub
	rooms        *roomServiceStub
	meetings     *meetingServiceStub
	handler      http.Handler
}

func newRouterFixture() *routerFixture {
	logger := testLogger()
	f := &routerFixture{
		auth: &authServiceStub{
			result: application.AuthenticateResult{
				User: application.User{ID: "u1", Email: "admin@example.edu", IsAdmin: true},
				Session: application.Session{
					Token:     "issued-token",
					ExpiresAt: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
				},
			},
		},
		availability: &availabilityServiceStub{},
		rooms:        &roomServiceStub{},
		meetings:     &meetingServiceStub{},
	}
	f.handler = NewRouter(RouterConfig{
		Auth:         NewAuthHandler(f.auth, logger),
		Rooms:        NewRoomHandler(f.rooms, logger),
		Availability: NewAvailabilityHandler(f.availability, logger),
		Meetings:     NewMeetingHandler(f.meetings, logger),
	})
	return f
}

func TestAuthHandlers(t *testing.T) {
	t.Run("login issues session token via cookie and header", func(t *testing.T) {
		f := newRouterFixture()

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"Admin@Example.edu","password":"correct horse"}`))
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("X-Session-Token"); got != "issued-token" {
			t.Errorf("expected token header, got %q", got)
		}
		cookieSet := false
		for _, cookie := range rec.Result().Cookies() {
			if cookie.Name == "session_token" && cookie.Value == "issued-token" {
				cookieSet = true
			}
		}
		if !cookieSet {
			t.Error("expected session_token cookie")
		}

		var body loginResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Token != "issued-token" {
			t.Errorf("expected issued-token, got %q", body.Token)
		}
	})

	t.Run("login rejects invalid credentials with a dedicated error code", func(t *testing.T) {
		f := newRouterFixture()
		f.auth.authErr = application.ErrInvalidCredentials

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.edu","password":"nope"}`))
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		var body errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.ErrorCode != "AUTH_INVALID_CREDENTIALS" {
			t.Errorf("expected AUTH_INVALID_CREDENTIALS, got %q", body.ErrorCode)
		}
	})

	t.Run("login rejects a malformed body", func(t *testing.T) {
		f := newRouterFixture()

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("login allows POST only", func(t *testing.T) {
		f := newRouterFixture()

		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("logout revokes the presented token and clears the cookie", func(t *testing.T) {
		f := newRouterFixture()

		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req.Header.Set("Authorization", "Bearer issued-token")
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if len(f.auth.revoked) != 1 || f.auth.revoked[0] != "issued-token" {
			t.Fatalf("expected issued-token revoked, got %v", f.auth.revoked)
		}
		cleared := false
		for _, cookie := range rec.Result().Cookies() {
			if cookie.Name == "session_token" && cookie.MaxAge < 0 {
				cleared = true
			}
		}
		if !cleared {
			t.Error("expected session cookie cleared")
		}
	})

	t.Run("logout without a token is unauthorized", func(t *testing.T) {
		f := newRouterFixture()

		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAvailabilityHandlers(t *testing.T) {
	t.Run("passes query parameters through to the service", func(t *testing.T) {
		f := newRouterFixture()
		f.availability.rooms = []application.RoomAvailability{
			{ID: "sci-2121", DisplayName: "Science Center 2121", Capacity: 40, MeetingTitles: []string{"SEC 2121"}},
			{ID: "ac-209a", DisplayName: "Science Center 209a", Capacity: 20},
		}

		req := httptest.NewRequest(http.MethodGet, "/rooms/availability?year=2026&term=FALL&day=TUE&start_time=13:00&end_time=14:15&exclude_parent=ci-1", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		params := f.availability.listParams
		if params.Year != 2026 || params.Term != "FALL" || params.Day != "TUE" {
			t.Errorf("unexpected params %+v", params)
		}
		if params.Start != "13:00" || params.End != "14:15" || params.ExcludeParentID != "ci-1" {
			t.Errorf("unexpected params %+v", params)
		}

		var body availabilityResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(body.Rooms) != 2 {
			t.Fatalf("expected 2 rooms, got %d", len(body.Rooms))
		}
		if body.Rooms[1].MeetingTitles == nil || len(body.Rooms[1].MeetingTitles) != 0 {
			t.Errorf("expected empty title list for free room, got %v", body.Rooms[1].MeetingTitles)
		}
	})

	t.Run("routes the per-room booking check", func(t *testing.T) {
		f := newRouterFixture()
		f.availability.bookings = application.RoomBookings{RoomID: "sci-2121", MeetingTitles: []string{"SEC 2121"}}

		req := httptest.NewRequest(http.MethodGet, "/rooms/sci-2121/bookings?year=2026&term=FALL&day=TUE&start_time=13:00&end_time=14:15", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if f.availability.bookingParams.RoomID != "sci-2121" {
			t.Errorf("expected room id from path, got %q", f.availability.bookingParams.RoomID)
		}

		var body roomBookingsResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(body.MeetingTitles) != 1 || body.MeetingTitles[0] != "SEC 2121" {
			t.Errorf("unexpected titles %v", body.MeetingTitles)
		}
	})

	t.Run("maps validation errors to 422 with field details", func(t *testing.T) {
		f := newRouterFixture()
		f.availability.err = &application.ValidationError{FieldErrors: map[string]string{"term": "term must be FALL or SPRING"}}

		req := httptest.NewRequest(http.MethodGet, "/rooms/availability?year=2026&term=WINTER", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		var body errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if _, ok := body.Errors["term"]; !ok {
			t.Errorf("expected term field error, got %v", body.Errors)
		}
	})

	t.Run("availability views are read only", func(t *testing.T) {
		f := newRouterFixture()

		req := httptest.NewRequest(http.MethodPost, "/rooms/availability", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}

func TestRoomHandlers(t *testing.T) {
	t.Run("create responds with the persisted room", func(t *testing.T) {
		f := newRouterFixture()

		req := httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(`{"building_id":"sci","name":" 2121 ","capacity":40}`))
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var body roomResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Room.Name != "2121" {
			t.Errorf("expected trimmed name, got %q", body.Room.Name)
		}
	})

	t.Run("delete maps a room in use to 409", func(t *testing.T) {
		f := newRouterFixture()
		f.rooms.deleteErr = application.ErrRoomInUse

		req := httptest.NewRequest(http.MethodDelete, "/rooms/sci-2121", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		var body errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.ErrorCode != "ROOM_IN_USE" {
			t.Errorf("expected ROOM_IN_USE, got %q", body.ErrorCode)
		}
	})

	t.Run("get maps an unknown room to 404", func(t *testing.T) {
		f := newRouterFixture()

		req := httptest.NewRequest(http.MethodGet, "/rooms/missing", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestMeetingHandlers(t *testing.T) {
	t.Run("create posts a new meeting", func(t *testing.T) {
		f := newRouterFixture()
		instance := "ci-1"
		f.meetings.meeting = persistence.Meeting{
			ID:               "m1",
			RoomID:           "sci-2121",
			Day:              booking.Tuesday,
			Start:            13 * 60,
			End:              14*60 + 15,
			CourseInstanceID: &instance,
		}

		req := httptest.NewRequest(http.MethodPost, "/meetings", strings.NewReader(`{"room_id":"sci-2121","day":"TUE","start_time":"13:00","end_time":"14:15","course_instance_id":"ci-1"}`))
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if f.meetings.saved.MeetingID != "" {
			t.Errorf("expected empty meeting id on create, got %q", f.meetings.saved.MeetingID)
		}

		var body meetingResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Meeting.StartTime != "13:00:00" || body.Meeting.EndTime != "14:15:00" {
			t.Errorf("unexpected times %q-%q", body.Meeting.StartTime, body.Meeting.EndTime)
		}
	})

	t.Run("update carries the path id into the service call", func(t *testing.T) {
		f := newRouterFixture()
		f.meetings.meeting = persistence.Meeting{ID: "m1", RoomID: "sci-2121", Day: booking.Tuesday}

		req := httptest.NewRequest(http.MethodPut, "/meetings/m1", strings.NewReader(`{"room_id":"sci-2121","day":"TUE","start_time":"13:00","end_time":"14:15","course_instance_id":"ci-1"}`))
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if f.meetings.saved.MeetingID != "m1" {
			t.Errorf("expected meeting id m1, got %q", f.meetings.saved.MeetingID)
		}
	})

	t.Run("listing requires a parent filter", func(t *testing.T) {
		f := newRouterFixture()

		req := httptest.NewRequest(http.MethodGet, "/meetings", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
