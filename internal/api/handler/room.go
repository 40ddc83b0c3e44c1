package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duelarena/server/internal/api/apierr"
	"github.com/duelarena/server/internal/api/response"
	"github.com/duelarena/server/internal/coordinator"
	"github.com/duelarena/server/internal/model"
)

// RoomHandler handles room-related endpoints
type RoomHandler struct {
	coord *coordinator.Coordinator
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(coord *coordinator.Coordinator) *RoomHandler {
	return &RoomHandler{coord: coord}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.coord.ListRooms(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomListFromModel(summaries))
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	view, err := h.coord.GetRoom(r.Context(), code)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, view)
}
