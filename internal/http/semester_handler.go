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

type semesterService interface {
	CreateSemester(ctx context.Context, principal application.Principal, input application.SemesterInput) (persistence.Semester, error)
	GetSemester(ctx context.Context, principal application.Principal, semesterID string) (persistence.Semester, error)
	ListSemesters(ctx context.Context, principal application.Principal) ([]persistence.Semester, error)
	DeleteSemester(ctx context.Context, principal application.Principal, semesterID string) error
}

type SemesterHandler struct {
	service   semesterService
	responder responder
	logger    *slog.Logger
}

func NewSemesterHandler(service semesterService, logger *slog.Logger) *SemesterHandler {
	base := defaultLogger(logger)
	return &SemesterHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SemesterHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SemesterHandler", operation, attrs...)
}

func (h *SemesterHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req semesterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode semester request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "year", req.Year, "term", req.Term)

	semester, err := h.service.CreateSemester(r.Context(), principal, application.SemesterInput{
		Year: req.Year,
		Term: req.Term,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "semester creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("semester_id", semester.ID).InfoContext(r.Context(), "semester created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, semesterResponse{Semester: toSemesterDTO(semester)})
}

func (h *SemesterHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	semesterID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(semesterID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "semester_id", semesterID)

	semester, err := h.service.GetSemester(r.Context(), principal, semesterID)
	if err != nil {
		logger.ErrorContext(r.Context(), "semester lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, semesterResponse{Semester: toSemesterDTO(semester)})
}

func (h *SemesterHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	semesters, err := h.service.ListSemesters(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "semester list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]semesterDTO, 0, len(semesters))
	for _, semester := range semesters {
		out = append(out, toSemesterDTO(semester))
	}
	logger.With("result_count", len(out)).InfoContext(r.Context(), "semesters listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSemestersResponse{Semesters: out})
}

func (h *SemesterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	semesterID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(semesterID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "semester_id", semesterID)

	if err := h.service.DeleteSemester(r.Context(), principal, semesterID); err != nil {
		logger.ErrorContext(r.Context(), "semester delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "semester deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type semesterRequest struct {
	Year int    `json:"year"`
	Term string `json:"term"`
}

type semesterResponse struct {
	Semester semesterDTO `json:"semester"`
}

type listSemestersResponse struct {
	Semesters []semesterDTO `json:"semesters"`
}

type semesterDTO struct {
	ID        string `json:"id"`
	Year      int    `json:"year"`
	Term      string `json:"term"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toSemesterDTO(semester persistence.Semester) semesterDTO {
	return semesterDTO{
		ID:        semester.ID,
		Year:      semester.Year,
		Term:      string(semester.Term),
		CreatedAt: formatTimestamp(semester.CreatedAt),
		UpdatedAt: formatTimestamp(semester.UpdatedAt),
	}
}
