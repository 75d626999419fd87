package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/course-planner/internal/persistence"
)

// EventStore captures the non-class persistence operations needed by the service.
type EventStore interface {
	CreateNonClassParent(ctx context.Context, parent persistence.NonClassParent) error
	UpdateNonClassParent(ctx context.Context, parent persistence.NonClassParent) error
	GetNonClassParent(ctx context.Context, id string) (persistence.NonClassParent, error)
	ListNonClassParents(ctx context.Context) ([]persistence.NonClassParent, error)
	DeleteNonClassParent(ctx context.Context, id string) error

	CreateNonClassEvent(ctx context.Context, event persistence.NonClassEvent) error
	GetNonClassEvent(ctx context.Context, id string) (persistence.NonClassEvent, error)
	ListNonClassEvents(ctx context.Context, semesterID string) ([]persistence.NonClassEvent, error)
	DeleteNonClassEvent(ctx context.Context, id string) error
}

// EventService orchestrates validation, authorization, and persistence for
// non-class parents and their per-semester events. The shapes mirror
// CourseService: a parent plays the catalog role, an event the instance role.
type EventService struct {
	events      EventStore
	semesters   SemesterStore
	idGenerator func() string
	logger      *slog.Logger
}

// NewEventService constructs an event service with the provided dependencies.
func NewEventService(events EventStore, semesters SemesterStore, idGenerator func() string) *EventService {
	return NewEventServiceWithLogger(events, semesters, idGenerator, nil)
}

// NewEventServiceWithLogger constructs an event service with a specified logger.
func NewEventServiceWithLogger(events EventStore, semesters SemesterStore, idGenerator func() string, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &EventService{events: events, semesters: semesters, idGenerator: idGenerator, logger: defaultLogger(logger)}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// CreateParent persists a new non-class parent for administrators.
func (s *EventService) CreateParent(ctx context.Context, principal Principal, input NonClassParentInput) (parent persistence.NonClassParent, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateParent", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create non-class parent", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("parent_id", parent.ID).InfoContext(ctx, "non-class parent created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		vErr := &ValidationError{}
		vErr.add("title", "title is required")
		err = vErr
		return
	}

	parent = persistence.NonClassParent{ID: s.idGenerator(), Title: title}
	if err = s.events.CreateNonClassParent(ctx, parent); err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// UpdateParent renames a non-class parent for administrators. The new title
// flows into every availability result that lists the parent's meetings.
func (s *EventService) UpdateParent(ctx context.Context, principal Principal, parentID string, input NonClassParentInput) (parent persistence.NonClassParent, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event store not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateParent",
		"principal_id", principal.UserID,
		"parent_id", parentID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update non-class parent", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("parent_id", parent.ID).InfoContext(ctx, "non-class parent updated")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var existing persistence.NonClassParent
	existing, err = s.events.GetNonClassParent(ctx, parentID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		vErr := &ValidationError{}
		vErr.add("title", "title is required")
		err = vErr
		return
	}

	updated := existing
	updated.Title = title
	if err = s.events.UpdateNonClassParent(ctx, updated); err != nil {
		err = mapRepoError(err)
		return
	}
	parent = updated
	return
}

// GetParent returns one non-class parent for any authenticated user.
func (s *EventService) GetParent(ctx context.Context, principal Principal, parentID string) (persistence.NonClassParent, error) {
	if s == nil {
		return persistence.NonClassParent{}, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return persistence.NonClassParent{}, fmt.Errorf("event store not configured")
	}

	parent, err := s.events.GetNonClassParent(ctx, parentID)
	if err != nil {
		return persistence.NonClassParent{}, mapRepoError(err)
	}
	return parent, nil
}

// ListParents returns all non-class parents for any authenticated user.
func (s *EventService) ListParents(ctx context.Context, principal Principal) ([]persistence.NonClassParent, error) {
	if s == nil {
		return nil, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return nil, fmt.Errorf("event store not configured")
	}

	parents, err := s.events.ListNonClassParents(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return parents, nil
}

// DeleteParent removes a non-class parent for administrators, cascading to
// its events and their meetings.
func (s *EventService) DeleteParent(ctx context.Context, principal Principal, parentID string) error {
	if s == nil {
		return fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return fmt.Errorf("event store not configured")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteParent",
		"principal_id", principal.UserID,
		"parent_id", parentID,
	)

	if err := s.events.DeleteNonClassParent(ctx, parentID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete non-class parent", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "non-class parent deleted")
	return nil
}

// ScheduleEvent creates a non-class event, placing a parent in a semester,
// for administrators.
func (s *EventService) ScheduleEvent(ctx context.Context, principal Principal, input NonClassEventInput) (event persistence.NonClassEvent, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil || s.semesters == nil {
		err = fmt.Errorf("event store not configured")
		return
	}

	logger := s.loggerWith(ctx, "ScheduleEvent",
		"principal_id", principal.UserID,
		"parent_id", input.ParentID,
		"semester_id", input.SemesterID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to schedule non-class event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "non-class event scheduled")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.ParentID) == "" {
		vErr.add("parent_id", "parent_id is required")
	}
	if strings.TrimSpace(input.SemesterID) == "" {
		vErr.add("semester_id", "semester_id is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, err = s.events.GetNonClassParent(ctx, input.ParentID); err != nil {
		err = mapRepoError(err)
		return
	}
	if _, err = s.semesters.GetSemester(ctx, input.SemesterID); err != nil {
		err = mapRepoError(err)
		return
	}

	event = persistence.NonClassEvent{
		ID:         s.idGenerator(),
		ParentID:   input.ParentID,
		SemesterID: input.SemesterID,
	}
	if err = s.events.CreateNonClassEvent(ctx, event); err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// GetEvent returns one non-class event for any authenticated user.
func (s *EventService) GetEvent(ctx context.Context, principal Principal, eventID string) (persistence.NonClassEvent, error) {
	if s == nil {
		return persistence.NonClassEvent{}, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return persistence.NonClassEvent{}, fmt.Errorf("event store not configured")
	}

	event, err := s.events.GetNonClassEvent(ctx, eventID)
	if err != nil {
		return persistence.NonClassEvent{}, mapRepoError(err)
	}
	return event, nil
}

// ListEvents returns the events scheduled in a semester, or every event when
// semesterID is empty, for any authenticated user.
func (s *EventService) ListEvents(ctx context.Context, principal Principal, semesterID string) ([]persistence.NonClassEvent, error) {
	if s == nil {
		return nil, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return nil, fmt.Errorf("event store not configured")
	}

	events, err := s.events.ListNonClassEvents(ctx, semesterID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return events, nil
}

// UnscheduleEvent deletes a non-class event for administrators, cascading to
// its meetings.
func (s *EventService) UnscheduleEvent(ctx context.Context, principal Principal, eventID string) error {
	if s == nil {
		return fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return fmt.Errorf("event store not configured")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "UnscheduleEvent",
		"principal_id", principal.UserID,
		"event_id", eventID,
	)

	if err := s.events.DeleteNonClassEvent(ctx, eventID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to unschedule non-class event", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "non-class event unscheduled")
	return nil
}
