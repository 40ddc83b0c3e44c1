package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/duelarena/server/internal/api/apierr"
	"github.com/duelarena/server/internal/coordinator"
	"github.com/duelarena/server/internal/model"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is a middleman between one websocket connection and the coordinator
type Client struct {
	hub      *Hub
	coord    *coordinator.Coordinator
	conn     *websocket.Conn
	logger   *slog.Logger
	playerID model.PlayerID

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// closeSend closes the send channel exactly once. A replaced connection's
// read pump may still try to queue frames afterwards; those become drops
// instead of sends on a closed channel.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// queue enqueues raw frame bytes for the write pump. Returns false when the
// frame was dropped: buffer full or connection already replaced.
func (c *Client) queue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// readPump pumps messages from the websocket connection into coordinator
// calls. It runs in its own goroutine per connection; on exit the connection
// is treated as gone and the player is disconnected.
func (c *Client) readPump() {
	defer func() {
		if c.hub.Unregister(c) {
			if err := c.coord.Disconnect(context.Background(), c.playerID); err != nil {
				c.logger.Error("disconnect failed",
					slog.Any("error", err),
					slog.String("player_id", string(c.playerID)),
				)
			}
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", slog.Any("error", err))
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps frames from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError(apierr.NewInvalidRequestError("invalid message format"))
		return
	}

	ctx := context.Background()

	switch envelope.Type {
	case TypeCreateRoom:
		c.handleCreateRoom(ctx, envelope.Data)
	case TypeJoinRoom:
		c.handleJoinRoom(ctx, envelope.Data)
	case TypeLeaveRoom:
		c.handleLeaveRoom(ctx)
	case TypeSelectCharacter:
		c.handleSelectCharacter(ctx, envelope.Data)
	case TypeSetReady:
		c.handleSetReady(ctx, envelope.Data)
	case TypeAction:
		c.handleAction(ctx, envelope.Data)
	case TypeChat:
		c.handleChat(ctx, envelope.Data)
	case TypeListRooms:
		c.handleListRooms(ctx)
	case TypeGetRoom:
		c.handleGetRoom(ctx, envelope.Data)
	default:
		c.sendError(apierr.NewInvalidRequestError("unknown message type: " + envelope.Type))
	}
}

func (c *Client) handleCreateRoom(ctx context.Context, raw json.RawMessage) {
	var msg CreateRoomMsg
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError(apierr.NewInvalidRequestError("invalid create_room message"))
			return
		}
	}

	view, err := c.coord.CreateRoom(ctx, c.playerID, coordinator.CreateRoomRequest{
		Name:    msg.Name,
		Private: msg.Private,
		Code:    model.RoomCode(msg.Code),
	})
	if err != nil {
		c.sendError(err)
		return
	}

	c.sendFrame(Frame{Type: TypeRoom, RoomCode: view.Code, Data: view})
}

func (c *Client) handleJoinRoom(ctx context.Context, raw json.RawMessage) {
	var msg JoinRoomMsg
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Code == "" {
		c.sendError(apierr.NewInvalidRequestError("invalid join_room message"))
		return
	}

	view, err := c.coord.JoinRoom(ctx, c.playerID, model.RoomCode(msg.Code))
	if err != nil {
		c.sendError(err)
		return
	}

	c.sendFrame(Frame{Type: TypeRoom, RoomCode: view.Code, Data: view})
}

func (c *Client) handleLeaveRoom(ctx context.Context) {
	left, err := c.coord.LeaveRoom(ctx, c.playerID)
	if err != nil {
		c.sendError(err)
		return
	}

	c.sendFrame(Frame{Type: TypeLeftRoom, Data: LeftRoomMsg{Left: left}})
}

func (c *Client) handleSelectCharacter(ctx context.Context, raw json.RawMessage) {
	var msg SelectCharacterMsg
	if err := json.Unmarshal(raw, &msg); err != nil || msg.CharacterID == "" {
		c.sendError(apierr.NewInvalidRequestError("invalid select_character message"))
		return
	}

	view, err := c.coord.SelectCharacter(ctx, c.playerID, model.CharacterID(msg.CharacterID))
	if err != nil {
		c.sendError(err)
		return
	}

	c.sendFrame(Frame{Type: TypeRoom, RoomCode: view.Code, Data: view})
}

func (c *Client) handleSetReady(ctx context.Context, raw json.RawMessage) {
	var msg SetReadyMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError(apierr.NewInvalidRequestError("invalid set_ready message"))
		return
	}

	view, err := c.coord.SetReady(ctx, c.playerID, msg.Ready)
	if err != nil {
		c.sendError(err)
		return
	}

	c.sendFrame(Frame{Type: TypeRoom, RoomCode: view.Code, Data: view})
}

func (c *Client) handleAction(ctx context.Context, raw json.RawMessage) {
	var msg ActionMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError(apierr.NewInvalidRequestError("invalid action message"))
		return
	}

	view, err := c.coord.PerformAction(ctx, c.playerID, model.Action{
		Type:      model.ActionType(msg.Action),
		AbilityID: model.AbilityID(msg.AbilityID),
	})
	if err != nil {
		c.sendError(err)
		return
	}

	c.sendFrame(Frame{Type: TypeRoom, RoomCode: view.Code, Data: view})
}

func (c *Client) handleChat(ctx context.Context, raw json.RawMessage) {
	var msg ChatMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError(apierr.NewInvalidRequestError("invalid chat message"))
		return
	}

	if err := c.coord.SendChat(ctx, c.playerID, msg.Text); err != nil {
		c.sendError(err)
	}
}

func (c *Client) handleListRooms(ctx context.Context) {
	summaries, err := c.coord.ListRooms(ctx)
	if err != nil {
		c.sendError(err)
		return
	}

	c.sendFrame(Frame{Type: TypeRooms, Data: summaries})
}

func (c *Client) handleGetRoom(ctx context.Context, raw json.RawMessage) {
	var msg JoinRoomMsg
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Code == "" {
		c.sendError(apierr.NewInvalidRequestError("invalid get_room message"))
		return
	}

	view, err := c.coord.GetRoom(ctx, model.RoomCode(msg.Code))
	if err != nil {
		c.sendError(err)
		return
	}

	c.sendFrame(Frame{Type: TypeRoom, RoomCode: view.Code, Data: view})
}

// sendFrame marshals and queues a frame for this connection, dropping it if
// the send buffer is full
func (c *Client) sendFrame(frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		c.logger.Error("marshal frame", slog.Any("error", err), slog.String("type", frame.Type))
		return
	}
	c.queue(data)
}

func (c *Client) sendError(err error) {
	c.sendFrame(Frame{Type: TypeError, Data: ErrorMsg{
		Code:    apierr.Code(err),
		Message: apierr.Message(err),
	}})
}
