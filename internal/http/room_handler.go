package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/course-planner/internal/application"
	"github.com/example/course-planner/internal/persistence"
)

type roomService interface {
	CreateCampus(ctx context.Context, principal application.Principal, input application.CampusInput) (persistence.Campus, error)
	ListCampuses(ctx context.Context, principal application.Principal) ([]persistence.Campus, error)
	CreateBuilding(ctx context.Context, principal application.Principal, input application.BuildingInput) (persistence.Building, error)
	ListBuildings(ctx context.Context, principal application.Principal) ([]persistence.Building, error)
	CreateRoom(ctx context.Context, params application.CreateRoomParams) (persistence.Room, error)
	UpdateRoom(ctx context.Context, params application.UpdateRoomParams) (persistence.Room, error)
	GetRoom(ctx context.Context, principal application.Principal, roomID string) (persistence.Room, error)
	ListRooms(ctx context.Context, principal application.Principal) ([]persistence.RoomLocation, error)
	DeleteRoom(ctx context.Context, principal application.Principal, roomID string) error
}

type RoomHandler struct {
	service   roomService
	responder responder
	logger    *slog.Logger
}

func NewRoomHandler(service roomService, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RoomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoomHandler", operation, attrs...)
}

func (h *RoomHandler) CreateCampus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req campusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateCampus", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode campus request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateCampus", "principal_id", principal.UserID)

	campus, err := h.service.CreateCampus(r.Context(), principal, application.CampusInput{Name: strings.TrimSpace(req.Name)})
	if err != nil {
		logger.ErrorContext(r.Context(), "campus creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("campus_id", campus.ID).InfoContext(r.Context(), "campus created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, campusResponse{Campus: toCampusDTO(campus)})
}

func (h *RoomHandler) ListCampuses(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListCampuses", "principal_id", principal.UserID)

	campuses, err := h.service.ListCampuses(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "campus list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]campusDTO, 0, len(campuses))
	for _, campus := range campuses {
		out = append(out, toCampusDTO(campus))
	}
	logger.With("result_count", len(out)).InfoContext(r.Context(), "campuses listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listCampusesResponse{Campuses: out})
}

func (h *RoomHandler) CreateBuilding(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req buildingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateBuilding", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode building request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateBuilding", "principal_id", principal.UserID)

	building, err := h.service.CreateBuilding(r.Context(), principal, application.BuildingInput{
		CampusID: strings.TrimSpace(req.CampusID),
		Name:     strings.TrimSpace(req.Name),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "building creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("building_id", building.ID).InfoContext(r.Context(), "building created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, buildingResponse{Building: toBuildingDTO(building)})
}

func (h *RoomHandler) ListBuildings(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListBuildings", "principal_id", principal.UserID)

	buildings, err := h.service.ListBuildings(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "building list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]buildingDTO, 0, len(buildings))
	for _, building := range buildings {
		out = append(out, toBuildingDTO(building))
	}
	logger.With("result_count", len(out)).InfoContext(r.Context(), "buildings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBuildingsResponse{Buildings: out})
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode room request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	room, err := h.service.CreateRoom(r.Context(), application.CreateRoomParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "room creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("room_id", room.ID).InfoContext(r.Context(), "room created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, roomResponse{Room: toRoomDTO(room)})
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing room id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "room_id", roomID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode room update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "room_id", roomID)

	room, err := h.service.UpdateRoom(r.Context(), application.UpdateRoomParams{
		Principal: principal,
		RoomID:    roomID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "room update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomResponse{Room: toRoomDTO(room)})
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing room id for get")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "room_id", roomID)

	room, err := h.service.GetRoom(r.Context(), principal, roomID)
	if err != nil {
		logger.ErrorContext(r.Context(), "room lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomResponse{Room: toRoomDTO(room)})
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing room id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "room_id", roomID)

	if err := h.service.DeleteRoom(r.Context(), principal, roomID); err != nil {
		logger.ErrorContext(r.Context(), "room delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	rooms, err := h.service.ListRooms(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "room list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]roomLocationDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, roomLocationDTO{
			ID:          room.ID,
			Campus:      room.Campus,
			Building:    room.Building,
			Name:        room.Name,
			DisplayName: room.DisplayName,
			Capacity:    room.Capacity,
		})
	}
	logger.With("result_count", len(out)).InfoContext(r.Context(), "rooms listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRoomsResponse{Rooms: out})
}

type campusRequest struct {
	Name string `json:"name"`
}

type buildingRequest struct {
	CampusID string `json:"campus_id"`
	Name     string `json:"name"`
}

type roomRequest struct {
	BuildingID string `json:"building_id"`
	Name       string `json:"name"`
	Capacity   int    `json:"capacity"`
}

func (r roomRequest) toInput() application.RoomInput {
	return application.RoomInput{
		BuildingID: strings.TrimSpace(r.BuildingID),
		Name:       strings.TrimSpace(r.Name),
		Capacity:   r.Capacity,
	}
}

type campusResponse struct {
	Campus campusDTO `json:"campus"`
}

type listCampusesResponse struct {
	Campuses []campusDTO `json:"campuses"`
}

type campusDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toCampusDTO(campus persistence.Campus) campusDTO {
	return campusDTO{
		ID:        campus.ID,
		Name:      campus.Name,
		CreatedAt: formatTimestamp(campus.CreatedAt),
		UpdatedAt: formatTimestamp(campus.UpdatedAt),
	}
}

type buildingResponse struct {
	Building buildingDTO `json:"building"`
}

type listBuildingsResponse struct {
	Buildings []buildingDTO `json:"buildings"`
}

type buildingDTO struct {
	ID        string `json:"id"`
	CampusID  string `json:"campus_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toBuildingDTO(building persistence.Building) buildingDTO {
	return buildingDTO{
		ID:        building.ID,
		CampusID:  building.CampusID,
		Name:      building.Name,
		CreatedAt: formatTimestamp(building.CreatedAt),
		UpdatedAt: formatTimestamp(building.UpdatedAt),
	}
}

type roomResponse struct {
	Room roomDTO `json:"room"`
}

type listRoomsResponse struct {
	Rooms []roomLocationDTO `json:"rooms"`
}

type roomDTO struct {
	ID         string `json:"id"`
	BuildingID string `json:"building_id"`
	Name       string `json:"name"`
	Capacity   int    `json:"capacity"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type roomLocationDTO struct {
	ID          string `json:"id"`
	Campus      string `json:"campus"`
	Building    string `json:"building"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Capacity    int    `json:"capacity"`
}

func toRoomDTO(room persistence.Room) roomDTO {
	return roomDTO{
		ID:         room.ID,
		BuildingID: room.BuildingID,
		Name:       room.Name,
		Capacity:   room.Capacity,
		CreatedAt:  formatTimestamp(room.CreatedAt),
		UpdatedAt:  formatTimestamp(room.UpdatedAt),
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
