package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/duelarena/server/internal/model"
)

// Hub tracks live connections by player ID and fans broadcast events out to
// their owners. It is the coordinator's event sink; Publish never blocks, so
// a slow reader drops frames rather than stalling a room transition.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[model.PlayerID]*Client
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[model.PlayerID]*Client),
	}
}

// Register associates a connection with a player ID. A second connection for
// the same player replaces the first, whose send channel is closed so its
// write pump terminates.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	prev, ok := h.clients[client.playerID]
	h.clients[client.playerID] = client
	h.mu.Unlock()

	if ok && prev != client {
		prev.closeSend()
	}

	h.logger.Debug("client registered", slog.String("player_id", string(client.playerID)))
}

// Unregister drops a connection. A no-op when the player has already been
// replaced by a newer connection; the returned flag reports whether this
// client was still the player's live connection.
func (h *Hub) Unregister(client *Client) bool {
	h.mu.Lock()
	current, ok := h.clients[client.playerID]
	if ok && current == client {
		delete(h.clients, client.playerID)
	} else {
		ok = false
	}
	h.mu.Unlock()

	if ok {
		client.closeSend()
		h.logger.Debug("client unregistered", slog.String("player_id", string(client.playerID)))
	}
	return ok
}

// Publish implements coordinator.EventSink. The frame is marshalled once and
// delivered to every listed recipient with a live connection.
func (h *Hub) Publish(event model.Event) {
	data, err := json.Marshal(FrameFromEvent(event))
	if err != nil {
		h.logger.Error("marshal event", slog.Any("error", err), slog.String("type", string(event.Type)))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, id := range event.Recipients {
		client, ok := h.clients[id]
		if !ok {
			continue
		}
		if !client.queue(data) {
			h.logger.Warn("dropping frame for slow client", slog.String("player_id", string(id)))
		}
	}
}

// ClientCount returns the number of live connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
