package storage

import (
	"context"

	"github.com/duelarena/server/internal/model"
)

// Storage defines the interface for the coordinator's state tables. All state
// is volatile; a restart drops every room and player.
//
// The player-to-room reverse index is owned by the storage layer and is only
// ever updated inside SaveRoom / InsertRoom / DeleteRoom, so a roster mutation
// and its index update happen in the same logical step.
//
// Implementations return detached copies; mutating a returned record has no
// effect until it is saved back.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error
	ListPlayers(ctx context.Context) ([]*model.Player, error)

	// Room operations. SaveRoom upserts the room and re-points the reverse
	// index at it for every roster member; unseated lists players whose index
	// entries must be cleared in the same step (those just removed from the
	// roster). InsertRoom stores a new room, failing with model.ErrConflict
	// when the code is already live; the existence check and the store are one
	// step, so concurrent creates cannot clobber each other. DeleteRoom clears
	// the index for the room's remaining roster.
	SaveRoom(ctx context.Context, room *model.Room, unseated ...model.PlayerID) error
	InsertRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)

	// PlayerRoom resolves the reverse index. Returns model.ErrNotInRoom when
	// the player is not seated anywhere.
	PlayerRoom(ctx context.Context, id model.PlayerID) (model.RoomCode, error)
}
