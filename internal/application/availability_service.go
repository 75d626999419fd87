package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/course-planner/internal/booking"
	"github.com/example/course-planner/internal/persistence"
)

// BookingIndex projects the meetings of one semester into booking records.
type BookingIndex interface {
	ListBookings(ctx context.Context, year int, term booking.Term) ([]booking.Record, error)
}

// RoomCatalog exposes the room lookups needed by availability queries.
type RoomCatalog interface {
	GetRoom(ctx context.Context, id string) (persistence.Room, error)
	ListRoomLocations(ctx context.Context) ([]persistence.RoomLocation, error)
}

// AvailabilityService answers room-availability questions by filtering the
// booking index against a queried weekly slot. Results are computed fresh on
// every call; nothing is cached between requests.
type AvailabilityService struct {
	bookings BookingIndex
	rooms    RoomCatalog
	logger   *slog.Logger
}

// NewAvailabilityService constructs an availability service with the provided dependencies.
func NewAvailabilityService(bookings BookingIndex, rooms RoomCatalog) *AvailabilityService {
	return NewAvailabilityServiceWithLogger(bookings, rooms, nil)
}

// NewAvailabilityServiceWithLogger constructs an availability service with a specified logger.
func NewAvailabilityServiceWithLogger(bookings BookingIndex, rooms RoomCatalog, logger *slog.Logger) *AvailabilityService {
	return &AvailabilityService{bookings: bookings, rooms: rooms, logger: defaultLogger(logger)}
}

func (s *AvailabilityService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AvailabilityService", operation, attrs...)
}

// CheckRoomBookings returns the titles of meetings in one room that conflict
// with the queried slot. An empty title list means the room is free then.
func (s *AvailabilityService) CheckRoomBookings(ctx context.Context, params RoomBookingsParams) (result RoomBookings, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}
	if s.bookings == nil || s.rooms == nil {
		err = fmt.Errorf("availability dependencies not configured")
		return
	}

	logger := s.loggerWith(ctx, "CheckRoomBookings",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
		"year", params.Year,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to check room bookings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("conflict_count", len(result.MeetingTitles)).InfoContext(ctx, "room bookings checked")
	}()

	query, vErr := buildAvailabilityQuery(params.AvailabilityParams)
	if params.RoomID == "" {
		vErr.add("room_id", "room_id is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}
	query.RoomID = params.RoomID

	if _, err = s.rooms.GetRoom(ctx, params.RoomID); err != nil {
		err = mapRepoError(err)
		return
	}

	var records []booking.Record
	records, err = s.bookings.ListBookings(ctx, query.Year, query.Term)
	if err != nil {
		return
	}

	titles := make([]string, 0)
	for _, conflict := range booking.Conflicts(records, query) {
		titles = append(titles, conflict.Titles...)
	}

	result = RoomBookings{RoomID: params.RoomID, MeetingTitles: titles}
	return
}

// ListRoomsWithAvailability returns the full room catalog, ordered by campus
// then display name, with each room annotated with the meeting titles that
// conflict with the queried slot. Free rooms carry an empty title list.
func (s *AvailabilityService) ListRoomsWithAvailability(ctx context.Context, params AvailabilityParams) (rooms []RoomAvailability, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}
	if s.bookings == nil || s.rooms == nil {
		err = fmt.Errorf("availability dependencies not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListRoomsWithAvailability",
		"principal_id", params.Principal.UserID,
		"year", params.Year,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list room availability", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).InfoContext(ctx, "room availability listed")
	}()

	query, vErr := buildAvailabilityQuery(params)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var locations []persistence.RoomLocation
	locations, err = s.rooms.ListRoomLocations(ctx)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	var records []booking.Record
	records, err = s.bookings.ListBookings(ctx, query.Year, query.Term)
	if err != nil {
		return
	}

	conflicting := booking.TitlesByRoom(records, query)

	rooms = make([]RoomAvailability, 0, len(locations))
	for _, loc := range locations {
		titles := conflicting[loc.ID]
		if titles == nil {
			titles = make([]string, 0)
		}
		rooms = append(rooms, RoomAvailability{
			ID:            loc.ID,
			Campus:        loc.Campus,
			Building:      loc.Building,
			Name:          loc.Name,
			DisplayName:   loc.DisplayName,
			Capacity:      loc.Capacity,
			MeetingTitles: titles,
		})
	}
	return
}

// buildAvailabilityQuery validates the raw caller tokens and assembles the
// booking index query. Field errors accumulate so a form round-trips every
// problem at once.
func buildAvailabilityQuery(params AvailabilityParams) (booking.Query, *ValidationError) {
	vErr := &ValidationError{}
	query := booking.Query{ExcludeParentID: params.ExcludeParentID}

	if params.Year <= 0 {
		vErr.add("year", "year must be positive")
	}
	query.Year = params.Year

	term, err := booking.ParseTerm(params.Term)
	if err != nil {
		vErr.add("term", "term must be FALL or SPRING")
	}
	query.Term = term

	day, err := booking.ParseDay(params.Day)
	if err != nil {
		vErr.add("day", "day must be MON, TUE, WED, THU or FRI")
	}
	query.Day = day

	start, err := booking.ParseTimeOfDay(params.Start)
	if err != nil {
		vErr.add("start_time", "start_time must be HH:MM or HH:MM:SS")
	}
	end, err := booking.ParseTimeOfDay(params.End)
	if err != nil {
		vErr.add("end_time", "end_time must be HH:MM or HH:MM:SS")
	}
	query.Interval = booking.Interval{Start: start, End: end}

	if !vErr.HasErrors() && !query.Interval.Valid() {
		vErr.add("end_time", "end_time must be after start_time")
	}

	return query, vErr
}
