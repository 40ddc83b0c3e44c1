package model

import "errors"

// Common errors used across the application. All of these are expected,
// recoverable business outcomes: callers return them to the transport edge,
// which maps them to reason codes for the originating connection.
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrNotInRoom      = errors.New("player is not in a room")

	// Room errors
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrRoomNotWaiting = errors.New("room is not accepting players")

	// Match errors
	ErrRoomNotReady     = errors.New("room is not ready to start")
	ErrWrongOccupancy   = errors.New("room does not have two occupants")
	ErrMatchNotStarted  = errors.New("no match in progress")
	ErrNotYourTurn      = errors.New("not this player's turn")
	ErrUnknownAction    = errors.New("unknown action type")
	ErrAbilityNotFound  = errors.New("ability not found")
	ErrInsufficientMana = errors.New("insufficient mana")

	// Concurrency errors
	ErrConflict = errors.New("conflicting concurrent update")

	// Chat errors
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message is too long")

	// Catalog errors
	ErrCharacterNotFound = errors.New("character not found")
)
