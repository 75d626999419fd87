package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/course-planner/internal/application"
	"github.com/example/course-planner/internal/config"
	httptransport "github.com/example/course-planner/internal/http"
	"github.com/example/course-planner/internal/logging"
	"github.com/example/course-planner/internal/persistence"
	"github.com/example/course-planner/internal/persistence/sqlite"
)

func main() {
	logger := logging.NewLogger(slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background(), logger); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := uuid.NewString
	now := time.Now

	parents := parentResolver{courses: storage.Courses, events: storage.Events}

	roomService := application.NewRoomServiceWithLogger(storage.Locations, storage.Rooms, storage.Meetings, idGenerator, logger)
	semesterService := application.NewSemesterServiceWithLogger(storage.Semesters, idGenerator, logger)
	courseService := application.NewCourseServiceWithLogger(storage.Courses, storage.Semesters, idGenerator, logger)
	eventService := application.NewEventServiceWithLogger(storage.Events, storage.Semesters, idGenerator, logger)
	meetingService := application.NewMeetingServiceWithLogger(storage.Meetings, storage.Rooms, parents, idGenerator, logger)
	availabilityService := application.NewAvailabilityServiceWithLogger(storage.Meetings, storage.Rooms, logger)
	userService := application.NewUserServiceWithLogger(storage.Users, nil, idGenerator, logger)
	authService := application.NewAuthServiceWithLogger(storage.Users, storage.Sessions, nil, tokenGenerator, now, cfg.SessionTTL, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Users:        httptransport.NewUserHandler(userService, logger),
		Rooms:        httptransport.NewRoomHandler(roomService, logger),
		Availability: httptransport.NewAvailabilityHandler(availabilityService, logger),
		Semesters:    httptransport.NewSemesterHandler(semesterService, logger),
		Courses:      httptransport.NewCourseHandler(courseService, logger),
		Events:       httptransport.NewEventHandler(eventService, logger),
		Meetings:     httptransport.NewMeetingHandler(meetingService, logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.URL.Path, "/login") {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("course planner API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// parentResolver satisfies the meeting service's parent lookups across the
// course and event repositories.
type parentResolver struct {
	courses *sqlite.CourseRepository
	events  *sqlite.EventRepository
}

func (p parentResolver) GetCourseInstance(ctx context.Context, id string) (persistence.CourseInstance, error) {
	return p.courses.GetCourseInstance(ctx, id)
}

func (p parentResolver) GetNonClassEvent(ctx context.Context, id string) (persistence.NonClassEvent, error) {
	return p.events.GetNonClassEvent(ctx, id)
}
