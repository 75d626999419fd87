package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/course-planner/internal/booking"
	"github.com/example/course-planner/internal/persistence"
)

// MeetingStore captures the meeting persistence operations needed by the service.
type MeetingStore interface {
	CreateMeeting(ctx context.Context, meeting persistence.Meeting) error
	UpdateMeeting(ctx context.Context, meeting persistence.Meeting) error
	GetMeeting(ctx context.Context, id string) (persistence.Meeting, error)
	ListMeetingsForParent(ctx context.Context, parentID string) ([]persistence.Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error
}

// ParentResolver verifies that a meeting's owning course instance or
// non-class event exists.
type ParentResolver interface {
	GetCourseInstance(ctx context.Context, id string) (persistence.CourseInstance, error)
	GetNonClassEvent(ctx context.Context, id string) (persistence.NonClassEvent, error)
}

// MeetingService orchestrates validation, authorization, and persistence for
// meetings.
//
// Saving does not reject overlapping bookings: the availability query is
// advisory, and a double booking made deliberately (or by two concurrent
// editors) is stored as entered and surfaces in later availability results.
type MeetingService struct {
	meetings    MeetingStore
	rooms       RoomCatalog
	parents     ParentResolver
	idGenerator func() string
	logger      *slog.Logger
}

// NewMeetingService constructs a meeting service with the provided dependencies.
func NewMeetingService(meetings MeetingStore, rooms RoomCatalog, parents ParentResolver, idGenerator func() string) *MeetingService {
	return NewMeetingServiceWithLogger(meetings, rooms, parents, idGenerator, nil)
}

// NewMeetingServiceWithLogger constructs a meeting service with a specified logger.
func NewMeetingServiceWithLogger(meetings MeetingStore, rooms RoomCatalog, parents ParentResolver, idGenerator func() string, logger *slog.Logger) *MeetingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &MeetingService{
		meetings:    meetings,
		rooms:       rooms,
		parents:     parents,
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

func (s *MeetingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MeetingService", operation, attrs...)
}

// SaveMeeting validates input and creates or updates a meeting for
// administrators. An empty MeetingID creates a new meeting.
func (s *MeetingService) SaveMeeting(ctx context.Context, params SaveMeetingParams) (meeting persistence.Meeting, err error) {
	if s == nil {
		err = fmt.Errorf("MeetingService is nil")
		return
	}
	if s.meetings == nil || s.rooms == nil || s.parents == nil {
		err = fmt.Errorf("meeting dependencies not configured")
		return
	}

	creating := params.MeetingID == ""
	logger := s.loggerWith(ctx, "SaveMeeting",
		"principal_id", params.Principal.UserID,
		"meeting_id", params.MeetingID,
		"creating", creating,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("meeting_id", meeting.ID).InfoContext(ctx, "meeting saved")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	candidate, vErr := buildMeeting(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, err = s.rooms.GetRoom(ctx, candidate.RoomID); err != nil {
		err = mapRepoError(err)
		return
	}
	if err = s.resolveParent(ctx, candidate); err != nil {
		err = mapRepoError(err)
		return
	}

	if creating {
		candidate.ID = s.idGenerator()
		if err = s.meetings.CreateMeeting(ctx, candidate); err != nil {
			err = mapRepoError(err)
			return
		}
		meeting = candidate
		return
	}

	var existing persistence.Meeting
	existing, err = s.meetings.GetMeeting(ctx, params.MeetingID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	candidate.ID = existing.ID
	candidate.CreatedAt = existing.CreatedAt
	if err = s.meetings.UpdateMeeting(ctx, candidate); err != nil {
		err = mapRepoError(err)
		return
	}
	meeting = candidate
	return
}

func (s *MeetingService) resolveParent(ctx context.Context, meeting persistence.Meeting) error {
	if meeting.CourseInstanceID != nil {
		_, err := s.parents.GetCourseInstance(ctx, *meeting.CourseInstanceID)
		return err
	}
	_, err := s.parents.GetNonClassEvent(ctx, *meeting.NonClassEventID)
	return err
}

// GetMeeting returns one meeting for any authenticated user.
func (s *MeetingService) GetMeeting(ctx context.Context, principal Principal, meetingID string) (persistence.Meeting, error) {
	if s == nil {
		return persistence.Meeting{}, fmt.Errorf("MeetingService is nil")
	}
	if s.meetings == nil {
		return persistence.Meeting{}, fmt.Errorf("meeting store not configured")
	}

	meeting, err := s.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return persistence.Meeting{}, mapRepoError(err)
	}
	return meeting, nil
}

// ListMeetingsForParent returns the weekly slots owned by a course instance
// or non-class event, for any authenticated user.
func (s *MeetingService) ListMeetingsForParent(ctx context.Context, principal Principal, parentID string) ([]persistence.Meeting, error) {
	if s == nil {
		return nil, fmt.Errorf("MeetingService is nil")
	}
	if s.meetings == nil {
		return nil, fmt.Errorf("meeting store not configured")
	}
	if strings.TrimSpace(parentID) == "" {
		vErr := &ValidationError{}
		vErr.add("parent_id", "parent_id is required")
		return nil, vErr
	}

	meetings, err := s.meetings.ListMeetingsForParent(ctx, parentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return meetings, nil
}

// DeleteMeeting removes a meeting for administrators.
func (s *MeetingService) DeleteMeeting(ctx context.Context, principal Principal, meetingID string) error {
	if s == nil {
		return fmt.Errorf("MeetingService is nil")
	}
	if s.meetings == nil {
		return fmt.Errorf("meeting store not configured")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteMeeting",
		"principal_id", principal.UserID,
		"meeting_id", meetingID,
	)

	if err := s.meetings.DeleteMeeting(ctx, meetingID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete meeting", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "meeting deleted")
	return nil
}

// buildMeeting validates the raw caller tokens and assembles a meeting. The
// parent reference must name exactly one owner.
func buildMeeting(input MeetingInput) (persistence.Meeting, *ValidationError) {
	vErr := &ValidationError{}
	meeting := persistence.Meeting{RoomID: strings.TrimSpace(input.RoomID)}

	if meeting.RoomID == "" {
		vErr.add("room_id", "room_id is required")
	}

	day, err := booking.ParseDay(input.Day)
	if err != nil {
		vErr.add("day", "day must be MON, TUE, WED, THU or FRI")
	}
	meeting.Day = day

	start, err := booking.ParseTimeOfDay(input.Start)
	if err != nil {
		vErr.add("start_time", "start_time must be HH:MM or HH:MM:SS")
	}
	end, err := booking.ParseTimeOfDay(input.End)
	if err != nil {
		vErr.add("end_time", "end_time must be HH:MM or HH:MM:SS")
	}
	meeting.Start = start
	meeting.End = end
	if !vErr.HasErrors() && start >= end {
		vErr.add("end_time", "end_time must be after start_time")
	}

	hasInstance := input.CourseInstanceID != nil && strings.TrimSpace(*input.CourseInstanceID) != ""
	hasEvent := input.NonClassEventID != nil && strings.TrimSpace(*input.NonClassEventID) != ""
	switch {
	case hasInstance && hasEvent:
		vErr.add("parent", "a meeting belongs to a course instance or a non-class event, not both")
	case !hasInstance && !hasEvent:
		vErr.add("parent", "a meeting requires a course instance or a non-class event")
	case hasInstance:
		id := strings.TrimSpace(*input.CourseInstanceID)
		meeting.CourseInstanceID = &id
	default:
		id := strings.TrimSpace(*input.NonClassEventID)
		meeting.NonClassEventID = &id
	}

	return meeting, vErr
}
