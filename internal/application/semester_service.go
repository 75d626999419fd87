package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/course-planner/internal/booking"
	"github.com/example/course-planner/internal/persistence"
)

// SemesterStore captures the semester persistence operations needed by the service.
type SemesterStore interface {
	CreateSemester(ctx context.Context, semester persistence.Semester) error
	GetSemester(ctx context.Context, id string) (persistence.Semester, error)
	GetSemesterByTerm(ctx context.Context, year int, term booking.Term) (persistence.Semester, error)
	ListSemesters(ctx context.Context) ([]persistence.Semester, error)
	DeleteSemester(ctx context.Context, id string) error
}

// SemesterService orchestrates validation, authorization, and persistence for semesters.
type SemesterService struct {
	semesters   SemesterStore
	idGenerator func() string
	logger      *slog.Logger
}

// NewSemesterService constructs a semester service with the provided dependencies.
func NewSemesterService(semesters SemesterStore, idGenerator func() string) *SemesterService {
	return NewSemesterServiceWithLogger(semesters, idGenerator, nil)
}

// NewSemesterServiceWithLogger constructs a semester service with a specified logger.
func NewSemesterServiceWithLogger(semesters SemesterStore, idGenerator func() string, logger *slog.Logger) *SemesterService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &SemesterService{semesters: semesters, idGenerator: idGenerator, logger: defaultLogger(logger)}
}

func (s *SemesterService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SemesterService", operation, attrs...)
}

// CreateSemester persists a new semester for administrators. A (year, term)
// pair exists at most once.
func (s *SemesterService) CreateSemester(ctx context.Context, principal Principal, input SemesterInput) (semester persistence.Semester, err error) {
	if s == nil {
		err = fmt.Errorf("SemesterService is nil")
		return
	}
	if s.semesters == nil {
		err = fmt.Errorf("semester store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateSemester",
		"principal_id", principal.UserID,
		"year", input.Year,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create semester", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("semester_id", semester.ID).InfoContext(ctx, "semester created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if input.Year <= 0 {
		vErr.add("year", "year must be positive")
	}
	term, termErr := booking.ParseTerm(input.Term)
	if termErr != nil {
		vErr.add("term", "term must be FALL or SPRING")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	semester = persistence.Semester{ID: s.idGenerator(), Year: input.Year, Term: term}
	if err = s.semesters.CreateSemester(ctx, semester); err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// GetSemester returns one semester for any authenticated user.
func (s *SemesterService) GetSemester(ctx context.Context, principal Principal, semesterID string) (persistence.Semester, error) {
	if s == nil {
		return persistence.Semester{}, fmt.Errorf("SemesterService is nil")
	}
	if s.semesters == nil {
		return persistence.Semester{}, fmt.Errorf("semester store not configured")
	}

	semester, err := s.semesters.GetSemester(ctx, semesterID)
	if err != nil {
		return persistence.Semester{}, mapRepoError(err)
	}
	return semester, nil
}

// ListSemesters returns all semesters for any authenticated user.
func (s *SemesterService) ListSemesters(ctx context.Context, principal Principal) ([]persistence.Semester, error) {
	if s == nil {
		return nil, fmt.Errorf("SemesterService is nil")
	}
	if s.semesters == nil {
		return nil, fmt.Errorf("semester store not configured")
	}

	semesters, err := s.semesters.ListSemesters(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return semesters, nil
}

// DeleteSemester removes a semester for administrators, cascading to every
// course instance, non-class event and meeting scheduled in it.
func (s *SemesterService) DeleteSemester(ctx context.Context, principal Principal, semesterID string) error {
	if s == nil {
		return fmt.Errorf("SemesterService is nil")
	}
	if s.semesters == nil {
		return fmt.Errorf("semester store not configured")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteSemester",
		"principal_id", principal.UserID,
		"semester_id", semesterID,
	)

	if err := s.semesters.DeleteSemester(ctx, semesterID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete semester", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "semester deleted")
	return nil
}
