package ws

import (
	"encoding/json"
	"time"

	"github.com/duelarena/server/internal/model"
)

// Inbound message types
const (
	TypeCreateRoom      = "create_room"
	TypeJoinRoom        = "join_room"
	TypeLeaveRoom       = "leave_room"
	TypeSelectCharacter = "select_character"
	TypeSetReady        = "set_ready"
	TypeAction          = "action"
	TypeChat            = "chat"
	TypeListRooms       = "list_rooms"
	TypeGetRoom         = "get_room"
)

// Outbound message types not derived from broadcast events
const (
	TypeConnected = "connected"
	TypeRoom      = "room"
	TypeRooms     = "rooms"
	TypeLeftRoom  = "left_room"
	TypeError     = "error"
)

// Envelope is the inbound message frame
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// CreateRoomMsg is the payload for create_room
type CreateRoomMsg struct {
	Name    string `json:"name,omitempty"`
	Private bool   `json:"private,omitempty"`
	Code    string `json:"code,omitempty"`
}

// JoinRoomMsg is the payload for join_room and get_room
type JoinRoomMsg struct {
	Code string `json:"code"`
}

// SelectCharacterMsg is the payload for select_character
type SelectCharacterMsg struct {
	CharacterID string `json:"character_id"`
}

// SetReadyMsg is the payload for set_ready
type SetReadyMsg struct {
	Ready bool `json:"ready"`
}

// ActionMsg is the payload for action
type ActionMsg struct {
	Action    string `json:"action"`
	AbilityID string `json:"ability_id,omitempty"`
}

// ChatMsg is the payload for chat
type ChatMsg struct {
	Text string `json:"text"`
}

// Frame is the outbound message frame
type Frame struct {
	Type      string    `json:"type"`
	RoomCode  string    `json:"room_code,omitempty"`
	PlayerID  string    `json:"player_id,omitempty"`
	Timestamp time.Time `json:"ts,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// ConnectedMsg is the payload for the connected frame
type ConnectedMsg struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
}

// LeftRoomMsg is the payload for the left_room frame
type LeftRoomMsg struct {
	Left bool `json:"left"`
}

// ErrorMsg is the payload for the error frame
type ErrorMsg struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FrameFromEvent converts a broadcast event into its wire frame
func FrameFromEvent(event model.Event) Frame {
	return Frame{
		Type:      string(event.Type),
		RoomCode:  string(event.RoomCode),
		PlayerID:  string(event.PlayerID),
		Timestamp: event.Timestamp,
		Data:      event.Payload,
	}
}
