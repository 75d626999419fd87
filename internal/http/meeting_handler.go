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

type meetingService interface {
	SaveMeeting(ctx context.Context, params application.SaveMeetingParams) (persistence.Meeting, error)
	GetMeeting(ctx context.Context, principal application.Principal, meetingID string) (persistence.Meeting, error)
	ListMeetingsForParent(ctx context.Context, principal application.Principal, parentID string) ([]persistence.Meeting, error)
	DeleteMeeting(ctx context.Context, principal application.Principal, meetingID string) error
}

type MeetingHandler struct {
	service   meetingService
	responder responder
	logger    *slog.Logger
}

func NewMeetingHandler(service meetingService, logger *slog.Logger) *MeetingHandler {
	base := defaultLogger(logger)
	return &MeetingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *MeetingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MeetingHandler", operation, attrs...)
}

func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "Create", "")
}

func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
	meetingID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing meeting id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}
	h.save(w, r, "Update", meetingID)
}

func (h *MeetingHandler) save(w http.ResponseWriter, r *http.Request, operation, meetingID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req meetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), operation, "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode meeting request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), operation, "principal_id", principal.UserID, "room_id", req.RoomID)
	if meetingID != "" {
		logger = logger.With("meeting_id", meetingID)
	}

	meeting, err := h.service.SaveMeeting(r.Context(), application.SaveMeetingParams{
		Principal: principal,
		MeetingID: meetingID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "meeting save failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if meetingID == "" {
		status = http.StatusCreated
	}
	logger.With("meeting_id", meeting.ID).InfoContext(r.Context(), "meeting saved")
	h.responder.writeJSON(r.Context(), w, status, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing meeting id for get")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "meeting_id", meetingID)

	meeting, err := h.service.GetMeeting(r.Context(), principal, meetingID)
	if err != nil {
		logger.ErrorContext(r.Context(), "meeting lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

// ListForParent answers GET /meetings?parent_id=. The parent may be a course
// instance or a non-class event; the service resolves either.
func (h *MeetingHandler) ListForParent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	parentID := strings.TrimSpace(r.URL.Query().Get("parent_id"))
	if parentID == "" {
		h.log(r.Context(), "ListForParent", "error_kind", "bad_request").ErrorContext(r.Context(), "missing parent_id query parameter")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListForParent", "principal_id", principal.UserID, "parent_id", parentID)

	meetings, err := h.service.ListMeetingsForParent(r.Context(), principal, parentID)
	if err != nil {
		logger.ErrorContext(r.Context(), "meeting list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]meetingDTO, 0, len(meetings))
	for _, meeting := range meetings {
		out = append(out, toMeetingDTO(meeting))
	}
	logger.With("result_count", len(out)).InfoContext(r.Context(), "meetings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listMeetingsResponse{Meetings: out})
}

func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing meeting id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "meeting_id", meetingID)

	if err := h.service.DeleteMeeting(r.Context(), principal, meetingID); err != nil {
		logger.ErrorContext(r.Context(), "meeting delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "meeting deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type meetingRequest struct {
	RoomID           string  `json:"room_id"`
	Day              string  `json:"day"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	CourseInstanceID *string `json:"course_instance_id"`
	NonClassEventID  *string `json:"non_class_event_id"`
}

func (r meetingRequest) toInput() application.MeetingInput {
	return application.MeetingInput{
		RoomID:           strings.TrimSpace(r.RoomID),
		Day:              r.Day,
		Start:            r.StartTime,
		End:              r.EndTime,
		CourseInstanceID: r.CourseInstanceID,
		NonClassEventID:  r.NonClassEventID,
	}
}

type meetingResponse struct {
	Meeting meetingDTO `json:"meeting"`
}

type listMeetingsResponse struct {
	Meetings []meetingDTO `json:"meetings"`
}

type meetingDTO struct {
	ID               string  `json:"id"`
	RoomID           string  `json:"room_id"`
	Day              string  `json:"day"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	CourseInstanceID *string `json:"course_instance_id,omitempty"`
	NonClassEventID  *string `json:"non_class_event_id,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func toMeetingDTO(meeting persistence.Meeting) meetingDTO {
	return meetingDTO{
		ID:               meeting.ID,
		RoomID:           meeting.RoomID,
		Day:              string(meeting.Day),
		StartTime:        meeting.Start.String(),
		EndTime:          meeting.End.String(),
		CourseInstanceID: meeting.CourseInstanceID,
		NonClassEventID:  meeting.NonClassEventID,
		CreatedAt:        formatTimestamp(meeting.CreatedAt),
		UpdatedAt:        formatTimestamp(meeting.UpdatedAt),
	}
}
