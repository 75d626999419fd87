package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/course-planner/internal/persistence"
)

// CourseStore captures the course persistence operations needed by the service.
type CourseStore interface {
	CreateCourse(ctx context.Context, course persistence.Course) error
	UpdateCourse(ctx context.Context, course persistence.Course) error
	GetCourse(ctx context.Context, id string) (persistence.Course, error)
	ListCourses(ctx context.Context) ([]persistence.Course, error)
	DeleteCourse(ctx context.Context, id string) error

	CreateCourseInstance(ctx context.Context, instance persistence.CourseInstance) error
	GetCourseInstance(ctx context.Context, id string) (persistence.CourseInstance, error)
	ListCourseInstances(ctx context.Context, semesterID string) ([]persistence.CourseInstance, error)
	DeleteCourseInstance(ctx context.Context, id string) error
}

// CourseService orchestrates validation, authorization, and persistence for
// courses and their per-semester instances.
type CourseService struct {
	courses     CourseStore
	semesters   SemesterStore
	idGenerator func() string
	logger      *slog.Logger
}

// NewCourseService constructs a course service with the provided dependencies.
func NewCourseService(courses CourseStore, semesters SemesterStore, idGenerator func() string) *CourseService {
	return NewCourseServiceWithLogger(courses, semesters, idGenerator, nil)
}

// NewCourseServiceWithLogger constructs a course service with a specified logger.
func NewCourseServiceWithLogger(courses CourseStore, semesters SemesterStore, idGenerator func() string, logger *slog.Logger) *CourseService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &CourseService{courses: courses, semesters: semesters, idGenerator: idGenerator, logger: defaultLogger(logger)}
}

func (s *CourseService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CourseService", operation, attrs...)
}

// CreateCourse validates input and persists a new catalog course for administrators.
func (s *CourseService) CreateCourse(ctx context.Context, params CreateCourseParams) (course persistence.Course, err error) {
	if s == nil {
		err = fmt.Errorf("CourseService is nil")
		return
	}
	if s.courses == nil {
		err = fmt.Errorf("course store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateCourse", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create course", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("course_id", course.ID).InfoContext(ctx, "course created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateCourseInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	course = persistence.Course{
		ID:     s.idGenerator(),
		Prefix: strings.ToUpper(strings.TrimSpace(params.Input.Prefix)),
		Number: strings.TrimSpace(params.Input.Number),
		Title:  normalizeOptionalString(params.Input.Title),
	}
	if err = s.courses.CreateCourse(ctx, course); err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// UpdateCourse validates input and updates an existing course for administrators.
func (s *CourseService) UpdateCourse(ctx context.Context, params UpdateCourseParams) (course persistence.Course, err error) {
	if s == nil {
		err = fmt.Errorf("CourseService is nil")
		return
	}
	if s.courses == nil {
		err = fmt.Errorf("course store not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateCourse",
		"principal_id", params.Principal.UserID,
		"course_id", params.CourseID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update course", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("course_id", course.ID).InfoContext(ctx, "course updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var existing persistence.Course
	existing, err = s.courses.GetCourse(ctx, params.CourseID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	vErr := validateCourseInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Prefix = strings.ToUpper(strings.TrimSpace(params.Input.Prefix))
	updated.Number = strings.TrimSpace(params.Input.Number)
	updated.Title = normalizeOptionalString(params.Input.Title)

	if err = s.courses.UpdateCourse(ctx, updated); err != nil {
		err = mapRepoError(err)
		return
	}
	course = updated
	return
}

// GetCourse returns one course for any authenticated user.
func (s *CourseService) GetCourse(ctx context.Context, principal Principal, courseID string) (persistence.Course, error) {
	if s == nil {
		return persistence.Course{}, fmt.Errorf("CourseService is nil")
	}
	if s.courses == nil {
		return persistence.Course{}, fmt.Errorf("course store not configured")
	}

	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return persistence.Course{}, mapRepoError(err)
	}
	return course, nil
}

// ListCourses returns the course catalog for any authenticated user.
func (s *CourseService) ListCourses(ctx context.Context, principal Principal) ([]persistence.Course, error) {
	if s == nil {
		return nil, fmt.Errorf("CourseService is nil")
	}
	if s.courses == nil {
		return nil, fmt.Errorf("course store not configured")
	}

	courses, err := s.courses.ListCourses(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return courses, nil
}

// DeleteCourse removes a course for administrators, cascading to its
// instances and their meetings.
func (s *CourseService) DeleteCourse(ctx context.Context, principal Principal, courseID string) error {
	if s == nil {
		return fmt.Errorf("CourseService is nil")
	}
	if s.courses == nil {
		return fmt.Errorf("course store not configured")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteCourse",
		"principal_id", principal.UserID,
		"course_id", courseID,
	)

	if err := s.courses.DeleteCourse(ctx, courseID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete course", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "course deleted")
	return nil
}

// ScheduleCourse creates a course instance, placing a course in a semester,
// for administrators.
func (s *CourseService) ScheduleCourse(ctx context.Context, principal Principal, input CourseInstanceInput) (instance persistence.CourseInstance, err error) {
	if s == nil {
		err = fmt.Errorf("CourseService is nil")
		return
	}
	if s.courses == nil || s.semesters == nil {
		err = fmt.Errorf("course store not configured")
		return
	}

	logger := s.loggerWith(ctx, "ScheduleCourse",
		"principal_id", principal.UserID,
		"course_id", input.CourseID,
		"semester_id", input.SemesterID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to schedule course", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("course_instance_id", instance.ID).InfoContext(ctx, "course scheduled")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.CourseID) == "" {
		vErr.add("course_id", "course_id is required")
	}
	if strings.TrimSpace(input.SemesterID) == "" {
		vErr.add("semester_id", "semester_id is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, err = s.courses.GetCourse(ctx, input.CourseID); err != nil {
		err = mapRepoError(err)
		return
	}
	if _, err = s.semesters.GetSemester(ctx, input.SemesterID); err != nil {
		err = mapRepoError(err)
		return
	}

	instance = persistence.CourseInstance{
		ID:         s.idGenerator(),
		CourseID:   input.CourseID,
		SemesterID: input.SemesterID,
	}
	if err = s.courses.CreateCourseInstance(ctx, instance); err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// GetCourseInstance returns one course instance for any authenticated user.
func (s *CourseService) GetCourseInstance(ctx context.Context, principal Principal, instanceID string) (persistence.CourseInstance, error) {
	if s == nil {
		return persistence.CourseInstance{}, fmt.Errorf("CourseService is nil")
	}
	if s.courses == nil {
		return persistence.CourseInstance{}, fmt.Errorf("course store not configured")
	}

	instance, err := s.courses.GetCourseInstance(ctx, instanceID)
	if err != nil {
		return persistence.CourseInstance{}, mapRepoError(err)
	}
	return instance, nil
}

// ListCourseInstances returns the instances scheduled in a semester, or every
// instance when semesterID is empty, for any authenticated user.
func (s *CourseService) ListCourseInstances(ctx context.Context, principal Principal, semesterID string) ([]persistence.CourseInstance, error) {
	if s == nil {
		return nil, fmt.Errorf("CourseService is nil")
	}
	if s.courses == nil {
		return nil, fmt.Errorf("course store not configured")
	}

	instances, err := s.courses.ListCourseInstances(ctx, semesterID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return instances, nil
}

// UnscheduleCourse deletes a course instance for administrators, cascading to
// its meetings.
func (s *CourseService) UnscheduleCourse(ctx context.Context, principal Principal, instanceID string) error {
	if s == nil {
		return fmt.Errorf("CourseService is nil")
	}
	if s.courses == nil {
		return fmt.Errorf("course store not configured")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "UnscheduleCourse",
		"principal_id", principal.UserID,
		"course_instance_id", instanceID,
	)

	if err := s.courses.DeleteCourseInstance(ctx, instanceID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to unschedule course", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "course unscheduled")
	return nil
}

func validateCourseInput(input CourseInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Prefix) == "" {
		vErr.add("prefix", "prefix is required")
	}
	if strings.TrimSpace(input.Number) == "" {
		vErr.add("number", "number is required")
	}

	return vErr
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
