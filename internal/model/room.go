package model

import "time"

// RoomCode is a short human-enterable identifier for joining rooms
type RoomCode string

// RoomStatus represents the current state of a room
type RoomStatus string

const (
	RoomStatusWaiting    RoomStatus = "waiting"     // Gathering players, not all ready
	RoomStatusReady      RoomStatus = "ready"       // Both occupants ready, match not started
	RoomStatusInProgress RoomStatus = "in_progress" // Match underway
	RoomStatusCompleted  RoomStatus = "completed"   // Match finished
)

// RoomCapacity is the fixed number of occupants a room can seat
const RoomCapacity = 2

// Room represents a single match session shared by up to two occupants.
// Invariants maintained by the room registry: HostID equals Roster[0] while
// the roster is non-empty, and GuestID is set iff the roster has two entries.
type Room struct {
	Code         RoomCode
	Name         string
	HostID       PlayerID
	GuestID      PlayerID // empty while the host is alone
	Private      bool
	Roster       []PlayerID // join order; index 0 is the current host
	Status       RoomStatus
	Battle       BattleState
	CreatedAt    time.Time
	LastActivity time.Time
}

// IsFull reports whether the roster is at capacity
func (r *Room) IsFull() bool {
	return len(r.Roster) >= RoomCapacity
}

// HasOccupant reports whether the given player is seated in the room
func (r *Room) HasOccupant(id PlayerID) bool {
	for _, pid := range r.Roster {
		if pid == id {
			return true
		}
	}
	return false
}

// Opponent returns the other occupant's ID, or empty if the player is alone
// or not seated in the room
func (r *Room) Opponent(id PlayerID) PlayerID {
	if !r.HasOccupant(id) {
		return ""
	}
	for _, pid := range r.Roster {
		if pid != id {
			return pid
		}
	}
	return ""
}

// RoomSummary is the public-listing projection of a room. It deliberately
// omits match state so listings never leak battle logs or health values.
type RoomSummary struct {
	Code      RoomCode
	Name      string
	HostID    PlayerID
	HostName  string
	Occupancy int
	Capacity  int
	CreatedAt time.Time
}
