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

type courseService interface {
	CreateCourse(ctx context.Context, params application.CreateCourseParams) (persistence.Course, error)
	UpdateCourse(ctx context.Context, params application.UpdateCourseParams) (persistence.Course, error)
	GetCourse(ctx context.Context, principal application.Principal, courseID string) (persistence.Course, error)
	ListCourses(ctx context.Context, principal application.Principal) ([]persistence.Course, error)
	DeleteCourse(ctx context.Context, principal application.Principal, courseID string) error
	ScheduleCourse(ctx context.Context, principal application.Principal, input application.CourseInstanceInput) (persistence.CourseInstance, error)
	GetCourseInstance(ctx context.Context, principal application.Principal, instanceID string) (persistence.CourseInstance, error)
	ListCourseInstances(ctx context.Context, principal application.Principal, semesterID string) ([]persistence.CourseInstance, error)
	UnscheduleCourse(ctx context.Context, principal application.Principal, instanceID string) error
}

type CourseHandler struct {
	service   courseService
	responder responder
	logger    *slog.Logger
}

func NewCourseHandler(service courseService, logger *slog.Logger) *CourseHandler {
	base := defaultLogger(logger)
	return &CourseHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CourseHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CourseHandler", operation, attrs...)
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode course request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	course, err := h.service.CreateCourse(r.Context(), application.CreateCourseParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "course creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("course_id", course.ID).InfoContext(r.Context(), "course created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, courseResponse{Course: toCourseDTO(course)})
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	courseID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(courseID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing course id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "course_id", courseID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode course update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "course_id", courseID)

	course, err := h.service.UpdateCourse(r.Context(), application.UpdateCourseParams{
		Principal: principal,
		CourseID:  courseID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "course update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "course updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, courseResponse{Course: toCourseDTO(course)})
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	courseID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(courseID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "course_id", courseID)

	course, err := h.service.GetCourse(r.Context(), principal, courseID)
	if err != nil {
		logger.ErrorContext(r.Context(), "course lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, courseResponse{Course: toCourseDTO(course)})
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	courses, err := h.service.ListCourses(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "course list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]courseDTO, 0, len(courses))
	for _, course := range courses {
		out = append(out, toCourseDTO(course))
	}
	logger.With("result_count", len(out)).InfoContext(r.Context(), "courses listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listCoursesResponse{Courses: out})
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	courseID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(courseID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "course_id", courseID)

	if err := h.service.DeleteCourse(r.Context(), principal, courseID); err != nil {
		logger.ErrorContext(r.Context(), "course delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "course deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *CourseHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req courseInstanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Schedule", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode course instance request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Schedule", "principal_id", principal.UserID, "course_id", req.CourseID, "semester_id", req.SemesterID)

	instance, err := h.service.ScheduleCourse(r.Context(), principal, application.CourseInstanceInput{
		CourseID:   strings.TrimSpace(req.CourseID),
		SemesterID: strings.TrimSpace(req.SemesterID),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "course scheduling failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("instance_id", instance.ID).InfoContext(r.Context(), "course scheduled")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, courseInstanceResponse{Instance: toCourseInstanceDTO(instance)})
}

func (h *CourseHandler) GetInstance(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	instanceID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(instanceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "GetInstance", "principal_id", principal.UserID, "instance_id", instanceID)

	instance, err := h.service.GetCourseInstance(r.Context(), principal, instanceID)
	if err != nil {
		logger.ErrorContext(r.Context(), "course instance lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, courseInstanceResponse{Instance: toCourseInstanceDTO(instance)})
}

func (h *CourseHandler) ListInstances(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	semesterID := strings.TrimSpace(r.URL.Query().Get("semester_id"))
	logger := h.log(r.Context(), "ListInstances", "principal_id", principal.UserID, "semester_id", semesterID)

	instances, err := h.service.ListCourseInstances(r.Context(), principal, semesterID)
	if err != nil {
		logger.ErrorContext(r.Context(), "course instance list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]courseInstanceDTO, 0, len(instances))
	for _, instance := range instances {
		out = append(out, toCourseInstanceDTO(instance))
	}
	logger.With("result_count", len(out)).InfoContext(r.Context(), "course instances listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listCourseInstancesResponse{Instances: out})
}

func (h *CourseHandler) Unschedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	instanceID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(instanceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Unschedule", "principal_id", principal.UserID, "instance_id", instanceID)

	if err := h.service.UnscheduleCourse(r.Context(), principal, instanceID); err != nil {
		logger.ErrorContext(r.Context(), "course unscheduling failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "course unscheduled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type courseRequest struct {
	Prefix string  `json:"prefix"`
	Number string  `json:"number"`
	Title  *string `json:"title"`
}

func (r courseRequest) toInput() application.CourseInput {
	return application.CourseInput{
		Prefix: strings.TrimSpace(r.Prefix),
		Number: strings.TrimSpace(r.Number),
		Title:  r.Title,
	}
}

type courseInstanceRequest struct {
	CourseID   string `json:"course_id"`
	SemesterID string `json:"semester_id"`
}

type courseResponse struct {
	Course courseDTO `json:"course"`
}

type listCoursesResponse struct {
	Courses []courseDTO `json:"courses"`
}

type courseDTO struct {
	ID        string  `json:"id"`
	Prefix    string  `json:"prefix"`
	Number    string  `json:"number"`
	Title     *string `json:"title,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func toCourseDTO(course persistence.Course) courseDTO {
	return courseDTO{
		ID:        course.ID,
		Prefix:    course.Prefix,
		Number:    course.Number,
		Title:     course.Title,
		CreatedAt: formatTimestamp(course.CreatedAt),
		UpdatedAt: formatTimestamp(course.UpdatedAt),
	}
}

type courseInstanceResponse struct {
	Instance courseInstanceDTO `json:"course_instance"`
}

type listCourseInstancesResponse struct {
	Instances []courseInstanceDTO `json:"course_instances"`
}

type courseInstanceDTO struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id"`
	SemesterID string `json:"semester_id"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toCourseInstanceDTO(instance persistence.CourseInstance) courseInstanceDTO {
	return courseInstanceDTO{
		ID:         instance.ID,
		CourseID:   instance.CourseID,
		SemesterID: instance.SemesterID,
		CreatedAt:  formatTimestamp(instance.CreatedAt),
		UpdatedAt:  formatTimestamp(instance.UpdatedAt),
	}
}
