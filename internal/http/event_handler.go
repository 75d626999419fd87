package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/course-planner/internal/application"
	"github.com/example/course-planner/internal/persistence"
)

type eventService interface {
	CreateParent(ctx context.Context, principal application.Principal, input application.NonClassParentInput) (persistence.NonClassParent, error)
	UpdateParent(ctx context.Context, principal application.Principal, parentID string, input application.NonClassParentInput) (persistence.NonClassParent, error)
	GetParent(ctx context.Context, principal application.Principal, parentID string) (persistence.NonClassParent, error)
	ListParents(ctx context.Context, principal application.Principal) ([]persistence.NonClassParent, error)
	DeleteParent(ctx context.Context, principal application.Principal, parentID string) error
	ScheduleEvent(ctx context.Context, principal application.Principal, input application.NonClassEventInput) (persistence.NonClassEvent, error)
	GetEvent(ctx context.Context, principal application.Principal, eventID string) (persistence.NonClassEvent, error)
	ListEvents(ctx context.Context, principal application.Principal, semesterID string) ([]persistence.NonClassEvent, error)
	UnscheduleEvent(ctx context.Context, principal application.Principal, eventID string) error
}

type EventHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

func (h *EventHandler) CreateParent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req eventParentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateParent", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event parent request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateParent", "principal_id", principal.UserID)

	parent, err := h.service.CreateParent(r.Context(), principal, application.NonClassParentInput{Title: strings.TrimSpace(req.Title)})
	if err != nil {
		logger.ErrorContext(r.Context(), "event parent creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("parent_id", parent.ID).InfoContext(r.Context(), "event parent created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, eventParentResponse{Parent: toEventParentDTO(parent)})
}

func (h *EventHandler) UpdateParent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	parentID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(parentID) == "" {
		h.log(r.Context(), "UpdateParent", "error_kind", "bad_request").ErrorContext(r.Context(), "missing parent id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req eventParentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateParent", "principal_id", principal.UserID, "parent_id", parentID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event parent update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateParent", "principal_id", principal.UserID, "parent_id", parentID)

	parent, err := h.service.UpdateParent(r.Context(), principal, parentID, application.NonClassParentInput{Title: strings.TrimSpace(req.Title)})
	if err != nil {
		logger.ErrorContext(r.Context(), "event parent update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event parent updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventParentResponse{Parent: toEventParentDTO(parent)})
}

func (h *EventHandler) GetParent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	parentID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(parentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "GetParent", "principal_id", principal.UserID, "parent_id", parentID)

	parent, err := h.service.GetParent(r.Context(), principal, parentID)
	if err != nil {
		logger.ErrorContext(r.Context(), "event parent lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventParentResponse{Parent: toEventParentDTO(parent)})
}

func (h *EventHandler) ListParents(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListParents", "principal_id", principal.UserID)

	parents, err := h.service.ListParents(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "event parent list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]eventParentDTO, 0, len(parents))
	for _, parent := range parents {
		out = append(out, toEventParentDTO(parent))
	}
	logger.With("result_count", len(out)).InfoContext(r.Context(), "event parents listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventParentsResponse{Parents: out})
}

func (h *EventHandler) DeleteParent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	parentID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(parentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "DeleteParent", "principal_id", principal.UserID, "parent_id", parentID)

	if err := h.service.DeleteParent(r.Context(), principal, parentID); err != nil {
		logger.ErrorContext(r.Context(), "event parent delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event parent deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *EventHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Schedule", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Schedule", "principal_id", principal.UserID, "parent_id", req.ParentID, "semester_id", req.SemesterID)

	event, err := h.service.ScheduleEvent(r.Context(), principal, application.NonClassEventInput{
		ParentID:   strings.TrimSpace(req.ParentID),
		SemesterID: strings.TrimSpace(req.SemesterID),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event scheduling failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("event_id", event.ID).InfoContext(r.Context(), "event scheduled")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "event_id", eventID)

	event, err := h.service.GetEvent(r.Context(), principal, eventID)
	if err != nil {
		logger.ErrorContext(r.Context(), "event lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	semesterID := strings.TrimSpace(r.URL.Query().Get("semester_id"))
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID, "semester_id", semesterID)

	events, err := h.service.ListEvents(r.Context(), principal, semesterID)
	if err != nil {
		logger.ErrorContext(r.Context(), "event list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toEventDTO(event))
	}
	logger.With("result_count", len(out)).InfoContext(r.Context(), "events listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventsResponse{Events: out})
}

func (h *EventHandler) Unschedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Unschedule", "principal_id", principal.UserID, "event_id", eventID)

	if err := h.service.UnscheduleEvent(r.Context(), principal, eventID); err != nil {
		logger.ErrorContext(r.Context(), "event unscheduling failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event unscheduled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type eventParentRequest struct {
	Title string `json:"title"`
}

type eventRequest struct {
	ParentID   string `json:"parent_id"`
	SemesterID string `json:"semester_id"`
}

type eventParentResponse struct {
	Parent eventParentDTO `json:"event_parent"`
}

type listEventParentsResponse struct {
	Parents []eventParentDTO `json:"event_parents"`
}

type eventParentDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toEventParentDTO(parent persistence.NonClassParent) eventParentDTO {
	return eventParentDTO{
		ID:        parent.ID,
		Title:     parent.Title,
		CreatedAt: formatTimestamp(parent.CreatedAt),
		UpdatedAt: formatTimestamp(parent.UpdatedAt),
	}
}

type eventResponse struct {
	Event eventDTO `json:"event"`
}

type listEventsResponse struct {
	Events []eventDTO `json:"events"`
}

type eventDTO struct {
	ID         string `json:"id"`
	ParentID   string `json:"parent_id"`
	SemesterID string `json:"semester_id"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toEventDTO(event persistence.NonClassEvent) eventDTO {
	return eventDTO{
		ID:         event.ID,
		ParentID:   event.ParentID,
		SemesterID: event.SemesterID,
		CreatedAt:  formatTimestamp(event.CreatedAt),
		UpdatedAt:  formatTimestamp(event.UpdatedAt),
	}
}
