package player

import (
	"context"
	"errors"
	"log/slog"

	"github.com/duelarena/server/internal/dependencies/clock"
	"github.com/duelarena/server/internal/dependencies/random"
	"github.com/duelarena/server/internal/model"
	"github.com/duelarena/server/internal/services/room"
	"github.com/duelarena/server/internal/storage"
)

const (
	// fallbackNameLength is the length of the random suffix on generated names
	fallbackNameLength = 4
	// fallbackNameAlphabet matches the room code alphabet for readability
	fallbackNameAlphabet = room.RoomCodeAlphabet
)

// Registry tracks connected participants and their mutable game attributes
type Registry struct {
	storage storage.Storage
	rooms   *room.Registry
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewRegistry creates a new player Registry
func NewRegistry(storage storage.Storage, rooms *room.Registry, clock clock.Clock, random random.Random, logger *slog.Logger) *Registry {
	return &Registry{
		storage: storage,
		rooms:   rooms,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// Register creates a player record for a new connection. Not idempotent:
// registering an ID that already exists overwrites the prior state, so
// callers register at most once per connection.
func (r *Registry) Register(ctx context.Context, id model.PlayerID, displayName string) (*model.Player, error) {
	if displayName == "" {
		displayName = "Player-" + r.random.Code(fallbackNameLength, fallbackNameAlphabet)
	}

	now := r.clock.Now()
	player := &model.Player{
		ID:          id,
		DisplayName: displayName,
		Connected:   true,
		LastActive:  now,
		CreatedAt:   now,
	}

	if err := r.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	r.logger.Info("player registered",
		slog.String("player_id", string(id)),
		slog.String("display_name", displayName),
	)

	return player, nil
}

// Unregister removes a player record, first unseating them from any room they
// occupy so no room is left referencing a departed occupant. The returned
// LeaveResult is non-nil when the player departed a room. Unknown IDs are a
// no-op.
func (r *Registry) Unregister(ctx context.Context, id model.PlayerID) (*room.LeaveResult, error) {
	if _, err := r.storage.GetPlayer(ctx, id); err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, nil
		}
		return nil, err
	}

	left, err := r.rooms.LeaveAll(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.storage.DeletePlayer(ctx, id); err != nil {
		return nil, err
	}

	r.logger.Info("player unregistered", slog.String("player_id", string(id)))

	return left, nil
}

// Get retrieves a player by ID
func (r *Registry) Get(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return r.storage.GetPlayer(ctx, id)
}

// Touch refreshes a player's last-active timestamp
func (r *Registry) Touch(ctx context.Context, id model.PlayerID) error {
	player, err := r.storage.GetPlayer(ctx, id)
	if err != nil {
		return err
	}
	player.LastActive = r.clock.Now()
	return r.storage.SavePlayer(ctx, player)
}

// Update applies fn to the player record and refreshes the last-active
// timestamp. Returns model.ErrPlayerNotFound for unknown IDs.
func (r *Registry) Update(ctx context.Context, id model.PlayerID, fn func(*model.Player)) (*model.Player, error) {
	player, err := r.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(player)
	player.LastActive = r.clock.Now()
	if err := r.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}
