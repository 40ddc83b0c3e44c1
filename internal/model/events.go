package model

import "time"

// EventType identifies the type of broadcast event
type EventType string

const (
	// Room events
	EventRoomCreated  EventType = "room_created"
	EventPlayerJoined EventType = "player_joined"
	EventPlayerLeft   EventType = "player_left"
	EventHostChanged  EventType = "host_changed"
	EventRoomUpdated  EventType = "room_updated"
	EventRoomClosed   EventType = "room_closed"

	// Match events
	EventCharacterSelected EventType = "character_selected"
	EventReadyChanged      EventType = "ready_changed"
	EventMatchStarting     EventType = "match_starting"
	EventMatchStarted      EventType = "match_started"
	EventActionResolved    EventType = "action_resolved"
	EventMatchEnded        EventType = "match_ended"

	// Chat events
	EventChatMessage EventType = "chat_message"
)

// Event is a state change to broadcast to a room's current occupants. The
// transport delivers it to every occupant listed in Recipients.
type Event struct {
	Type       EventType
	Timestamp  time.Time
	RoomCode   RoomCode
	PlayerID   PlayerID // The player who triggered or is affected
	Recipients []PlayerID
	Payload    any // Type-specific data
}

// PlayerJoinedPayload contains data for player joined events
type PlayerJoinedPayload struct {
	PlayerID    PlayerID
	DisplayName string
}

// PlayerLeftPayload contains data for player left events
type PlayerLeftPayload struct {
	PlayerID    PlayerID
	DisplayName string
	Forfeited   bool // true when leaving ended an in-progress match
}

// HostChangedPayload contains data for host changed events
type HostChangedPayload struct {
	OldHostID PlayerID
	NewHostID PlayerID
}

// ReadyChangedPayload contains data for ready changed events
type ReadyChangedPayload struct {
	PlayerID PlayerID
	Ready    bool
	AllReady bool
}

// MatchStartingPayload contains data for the pre-start countdown announcement
type MatchStartingPayload struct {
	Countdown time.Duration
}

// CharacterSelectedPayload contains data for character selected events
type CharacterSelectedPayload struct {
	PlayerID      PlayerID
	CharacterID   CharacterID
	CharacterName string
}

// ActionResolvedPayload contains data for action resolved events
type ActionResolvedPayload struct {
	PlayerID  PlayerID
	Action    ActionType
	AbilityID AbilityID
}

// MatchEndedPayload contains data for match ended events
type MatchEndedPayload struct {
	Winner  PlayerID
	Forfeit bool
}

// ChatMessagePayload contains data for chat message events
type ChatMessagePayload struct {
	PlayerID    PlayerID
	DisplayName string
	Text        string
}
