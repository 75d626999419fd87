package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/course-planner/internal/persistence"
)

// LocationStore captures the campus and building persistence operations needed by the service.
type LocationStore interface {
	CreateCampus(ctx context.Context, campus persistence.Campus) error
	GetCampus(ctx context.Context, id string) (persistence.Campus, error)
	ListCampuses(ctx context.Context) ([]persistence.Campus, error)
	CreateBuilding(ctx context.Context, building persistence.Building) error
	GetBuilding(ctx context.Context, id string) (persistence.Building, error)
	ListBuildings(ctx context.Context) ([]persistence.Building, error)
}

// RoomStore captures the room persistence operations needed by the service.
type RoomStore interface {
	CreateRoom(ctx context.Context, room persistence.Room) error
	UpdateRoom(ctx context.Context, room persistence.Room) error
	GetRoom(ctx context.Context, id string) (persistence.Room, error)
	ListRooms(ctx context.Context) ([]persistence.Room, error)
	ListRoomLocations(ctx context.Context) ([]persistence.RoomLocation, error)
	DeleteRoom(ctx context.Context, id string) error
}

// MeetingChecker reports whether meetings still reference a room.
type MeetingChecker interface {
	RoomHasMeetings(ctx context.Context, roomID string) (bool, error)
}

// RoomService orchestrates validation, authorization, and persistence for
// campuses, buildings and rooms.
type RoomService struct {
	locations   LocationStore
	rooms       RoomStore
	meetings    MeetingChecker
	idGenerator func() string
	logger      *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(locations LocationStore, rooms RoomStore, meetings MeetingChecker, idGenerator func() string) *RoomService {
	return NewRoomServiceWithLogger(locations, rooms, meetings, idGenerator, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(locations LocationStore, rooms RoomStore, meetings MeetingChecker, idGenerator func() string, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &RoomService{
		locations:   locations,
		rooms:       rooms,
		meetings:    meetings,
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateCampus persists a new campus for administrators.
func (s *RoomService) CreateCampus(ctx context.Context, principal Principal, input CampusInput) (campus persistence.Campus, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.locations == nil {
		err = fmt.Errorf("location store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateCampus", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create campus", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("campus_id", campus.ID).InfoContext(ctx, "campus created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		err = vErr
		return
	}

	campus = persistence.Campus{ID: s.idGenerator(), Name: name}
	if err = s.locations.CreateCampus(ctx, campus); err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// ListCampuses returns the campus catalog for any authenticated user.
func (s *RoomService) ListCampuses(ctx context.Context, principal Principal) ([]persistence.Campus, error) {
	if s == nil {
		return nil, fmt.Errorf("RoomService is nil")
	}
	if s.locations == nil {
		return nil, fmt.Errorf("location store not configured")
	}

	campuses, err := s.locations.ListCampuses(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return campuses, nil
}

// CreateBuilding persists a new building for administrators.
func (s *RoomService) CreateBuilding(ctx context.Context, principal Principal, input BuildingInput) (building persistence.Building, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.locations == nil {
		err = fmt.Errorf("location store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateBuilding", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create building", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("building_id", building.ID).InfoContext(ctx, "building created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.CampusID) == "" {
		vErr.add("campus_id", "campus_id is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, err = s.locations.GetCampus(ctx, input.CampusID); err != nil {
		err = mapRepoError(err)
		return
	}

	building = persistence.Building{ID: s.idGenerator(), CampusID: input.CampusID, Name: name}
	if err = s.locations.CreateBuilding(ctx, building); err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// ListBuildings returns the building catalog for any authenticated user.
func (s *RoomService) ListBuildings(ctx context.Context, principal Principal) ([]persistence.Building, error) {
	if s == nil {
		return nil, fmt.Errorf("RoomService is nil")
	}
	if s.locations == nil {
		return nil, fmt.Errorf("location store not configured")
	}

	buildings, err := s.locations.ListBuildings(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return buildings, nil
}

// CreateRoom validates input and persists a new room for administrators.
func (s *RoomService) CreateRoom(ctx context.Context, params CreateRoomParams) (room persistence.Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil || s.locations == nil {
		err = fmt.Errorf("room store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateRoomInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, err = s.locations.GetBuilding(ctx, params.Input.BuildingID); err != nil {
		err = mapRepoError(err)
		return
	}

	room = persistence.Room{
		ID:         s.idGenerator(),
		BuildingID: params.Input.BuildingID,
		Name:       strings.TrimSpace(params.Input.Name),
		Capacity:   params.Input.Capacity,
	}
	if err = s.rooms.CreateRoom(ctx, room); err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// UpdateRoom validates input and updates an existing room for administrators.
func (s *RoomService) UpdateRoom(ctx context.Context, params UpdateRoomParams) (room persistence.Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room store not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var existing persistence.Room
	existing, err = s.rooms.GetRoom(ctx, params.RoomID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	vErr := validateRoomInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.BuildingID = params.Input.BuildingID
	updated.Name = strings.TrimSpace(params.Input.Name)
	updated.Capacity = params.Input.Capacity

	if err = s.rooms.UpdateRoom(ctx, updated); err != nil {
		err = mapRepoError(err)
		return
	}
	room = updated
	return
}

// GetRoom returns one room for any authenticated user.
func (s *RoomService) GetRoom(ctx context.Context, principal Principal, roomID string) (persistence.Room, error) {
	if s == nil {
		return persistence.Room{}, fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return persistence.Room{}, fmt.Errorf("room store not configured")
	}

	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return persistence.Room{}, mapRepoError(err)
	}
	return room, nil
}

// ListRooms returns the room catalog joined with building and campus names,
// ordered by campus then display name, for any authenticated user.
func (s *RoomService) ListRooms(ctx context.Context, principal Principal) (rooms []persistence.RoomLocation, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room store not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListRooms", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).InfoContext(ctx, "rooms listed")
	}()

	rooms, err = s.rooms.ListRoomLocations(ctx)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// DeleteRoom removes a room for administrators. Rooms that meetings still
// reference are never deleted.
func (s *RoomService) DeleteRoom(ctx context.Context, principal Principal, roomID string) error {
	if s == nil {
		return fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return fmt.Errorf("room store not configured")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteRoom",
		"principal_id", principal.UserID,
		"room_id", roomID,
	)

	if s.meetings != nil {
		inUse, err := s.meetings.RoomHasMeetings(ctx, roomID)
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete room", "error", err, "error_kind", ErrorKind(err))
			return err
		}
		if inUse {
			logger.ErrorContext(ctx, "failed to delete room", "error", ErrRoomInUse, "error_kind", ErrorKind(ErrRoomInUse))
			return ErrRoomInUse
		}
	}

	if err := s.rooms.DeleteRoom(ctx, roomID); err != nil {
		if errors.Is(err, persistence.ErrForeignKeyViolation) {
			err = ErrRoomInUse
		} else {
			err = mapRepoError(err)
		}
		logger.ErrorContext(ctx, "failed to delete room", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "room deleted")
	return nil
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.BuildingID) == "" {
		vErr.add("building_id", "building_id is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}

	return vErr
}

// mapRepoError translates persistence sentinels into application sentinels.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}
