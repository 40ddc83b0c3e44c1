package model

import "time"

// PlayerID uniquely identifies an active connection. A new connection gets a
// fresh ID; the ID is invalidated when the connection closes.
type PlayerID string

// Player represents a connected participant and their mutable game state
type Player struct {
	ID          PlayerID
	DisplayName string
	Connected   bool
	Character   *Character // nil until selected
	Ready       bool
	Health      int
	MaxHealth   int
	Mana        int
	MaxMana     int
	LastActive  time.Time
	CreatedAt   time.Time
}

// HasCharacter reports whether the player has selected a character
func (p *Player) HasCharacter() bool {
	return p.Character != nil
}

// Alive reports whether the player still has health remaining
func (p *Player) Alive() bool {
	return p.Health > 0
}
