package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/course-planner/internal/application"
)

type availabilityService interface {
	ListRoomsWithAvailability(ctx context.Context, params application.AvailabilityParams) ([]application.RoomAvailability, error)
	CheckRoomBookings(ctx context.Context, params application.RoomBookingsParams) (application.RoomBookings, error)
}

type AvailabilityHandler struct {
	service   availabilityService
	responder responder
	logger    *slog.Logger
}

func NewAvailabilityHandler(service availabilityService, logger *slog.Logger) *AvailabilityHandler {
	base := defaultLogger(logger)
	return &AvailabilityHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AvailabilityHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AvailabilityHandler", operation, attrs...)
}

func (h *AvailabilityHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	params := availabilityParamsFromQuery(r, principal)
	logger := h.log(r.Context(), "ListRooms",
		"principal_id", principal.UserID,
		"year", params.Year,
		"term", params.Term,
		"day", params.Day,
	)

	rooms, err := h.service.ListRoomsWithAvailability(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "availability listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(rooms)).InfoContext(r.Context(), "room availability listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{Rooms: toRoomAvailabilityDTOs(rooms)})
}

func (h *AvailabilityHandler) RoomBookings(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.log(r.Context(), "RoomBookings", "error_kind", "bad_request").ErrorContext(r.Context(), "missing room id for booking check")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	params := application.RoomBookingsParams{
		AvailabilityParams: availabilityParamsFromQuery(r, principal),
		RoomID:             roomID,
	}
	logger := h.log(r.Context(), "RoomBookings",
		"principal_id", principal.UserID,
		"room_id", roomID,
		"year", params.Year,
		"term", params.Term,
		"day", params.Day,
	)

	bookings, err := h.service.CheckRoomBookings(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "room booking check failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("conflict_count", len(bookings.MeetingTitles)).InfoContext(r.Context(), "room bookings checked")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomBookingsResponse{
		RoomID:        bookings.RoomID,
		MeetingTitles: bookings.MeetingTitles,
	})
}

// availabilityParamsFromQuery passes raw query tokens through to the service,
// which owns validation. An unparsable year becomes zero and fails the
// service's year check.
func availabilityParamsFromQuery(r *http.Request, principal application.Principal) application.AvailabilityParams {
	query := r.URL.Query()
	year, _ := strconv.Atoi(strings.TrimSpace(query.Get("year")))
	return application.AvailabilityParams{
		Principal:       principal,
		Year:            year,
		Term:            query.Get("term"),
		Day:             query.Get("day"),
		Start:           query.Get("start_time"),
		End:             query.Get("end_time"),
		ExcludeParentID: strings.TrimSpace(query.Get("exclude_parent")),
	}
}

type availabilityResponse struct {
	Rooms []roomAvailabilityDTO `json:"rooms"`
}

type roomAvailabilityDTO struct {
	ID            string   `json:"id"`
	Campus        string   `json:"campus"`
	Building      string   `json:"building"`
	Name          string   `json:"name"`
	DisplayName   string   `json:"display_name"`
	Capacity      int      `json:"capacity"`
	MeetingTitles []string `json:"meeting_titles"`
}

type roomBookingsResponse struct {
	RoomID        string   `json:"room_id"`
	MeetingTitles []string `json:"meeting_titles"`
}

func toRoomAvailabilityDTOs(rooms []application.RoomAvailability) []roomAvailabilityDTO {
	out := make([]roomAvailabilityDTO, 0, len(rooms))
	for _, room := range rooms {
		titles := room.MeetingTitles
		if titles == nil {
			titles = make([]string, 0)
		}
		out = append(out, roomAvailabilityDTO{
			ID:            room.ID,
			Campus:        room.Campus,
			Building:      room.Building,
			Name:          room.Name,
			DisplayName:   room.DisplayName,
			Capacity:      room.Capacity,
			MeetingTitles: titles,
		})
	}
	return out
}
