package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/duelarena/server/internal/coordinator"
	"github.com/duelarena/server/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests into player connections
type Handler struct {
	hub    *Hub
	coord  *coordinator.Coordinator
	logger *slog.Logger
}

// NewHandler creates a new websocket handler
func NewHandler(hub *Hub, coord *coordinator.Coordinator, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		coord:  coord,
		logger: logger,
	}
}

// ServeHTTP handles GET /ws. Each accepted connection becomes a registered
// player; the optional "name" query parameter sets the display name.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	displayName := r.URL.Query().Get("name")
	playerID := model.PlayerID(uuid.NewString())

	// Register the player before upgrading; a rejected connect is still a
	// plain HTTP response at this point.
	player, err := h.coord.Connect(r.Context(), playerID, displayName)
	if err != nil {
		h.logger.Error("connect failed", slog.Any("error", err))
		http.Error(w, "connect failed", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		if derr := h.coord.Disconnect(r.Context(), playerID); derr != nil {
			h.logger.Error("disconnect after failed upgrade", slog.Any("error", derr))
		}
		return
	}

	client := &Client{
		hub:      h.hub,
		coord:    h.coord,
		conn:     conn,
		logger:   h.logger.With(slog.String("player_id", string(playerID))),
		playerID: playerID,
		send:     make(chan []byte, 256),
	}

	h.hub.Register(client)

	go client.writePump()
	go client.readPump()

	client.sendFrame(Frame{Type: TypeConnected, Data: ConnectedMsg{
		PlayerID:    string(player.ID),
		DisplayName: player.DisplayName,
	}})
}
