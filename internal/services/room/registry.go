package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/duelarena/server/internal/dependencies/clock"
	"github.com/duelarena/server/internal/dependencies/random"
	"github.com/duelarena/server/internal/model"
	"github.com/duelarena/server/internal/storage"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Registry owns room lifecycle and the player-to-room reverse index. A player
// occupies at most one room; every mutation that seats a player first forces
// them out of any prior room.
type Registry struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewRegistry creates a new room Registry
func NewRegistry(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Registry {
	return &Registry{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// CreateOptions holds optional settings for room creation
type CreateOptions struct {
	Name    string
	Private bool
	Code    model.RoomCode // generated when empty
}

// LeaveResult describes the outcome of removing a player from a room
type LeaveResult struct {
	Code        model.RoomCode
	PlayerID    model.PlayerID
	Room        *model.Room // nil when the room was closed
	RoomClosed  bool
	HostChanged bool
	NewHostID   model.PlayerID
	Forfeited   bool // true when the departure ended an in-progress match
	Winner      model.PlayerID
}

// CreateRoom creates a room with the given player as host, forcing the host
// out of any room they currently occupy. The returned LeaveResult is non-nil
// when the host departed a prior room.
func (r *Registry) CreateRoom(ctx context.Context, hostID model.PlayerID, opts CreateOptions) (*model.Room, *LeaveResult, error) {
	host, err := r.storage.GetPlayer(ctx, hostID)
	if err != nil {
		return nil, nil, err
	}

	left, err := r.LeaveAll(ctx, hostID)
	if err != nil {
		return nil, nil, err
	}

	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("%s's Room", host.DisplayName)
	}

	now := r.clock.Now()
	room := &model.Room{
		Name:         name,
		HostID:       hostID,
		Private:      opts.Private,
		Roster:       []model.PlayerID{hostID},
		Status:       model.RoomStatusWaiting,
		CreatedAt:    now,
		LastActivity: now,
	}

	// InsertRoom reserves the code atomically, so two concurrent creates can
	// never land on the same code. A supplied code that collides with a live
	// room falls back to a generated one rather than failing.
	code := opts.Code
	for {
		if code == "" {
			code = model.RoomCode(r.random.Code(RoomCodeLength, RoomCodeAlphabet))
		}
		room.Code = code
		err := r.storage.InsertRoom(ctx, room)
		if err == nil {
			break
		}
		if !errors.Is(err, model.ErrConflict) {
			return nil, nil, err
		}
		code = ""
	}

	r.logger.Info("room created",
		slog.String("room_code", string(room.Code)),
		slog.String("host_id", string(hostID)),
		slog.Bool("private", room.Private),
	)

	return room, left, nil
}

// AddPlayer seats a player in a room, forcing them out of any prior room
// first. Joining a room the player already occupies is a no-op success.
func (r *Registry) AddPlayer(ctx context.Context, playerID model.PlayerID, code model.RoomCode) (*model.Room, *LeaveResult, error) {
	room, err := r.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if _, err := r.storage.GetPlayer(ctx, playerID); err != nil {
		return nil, nil, err
	}

	if room.HasOccupant(playerID) {
		return room, nil, nil
	}
	if room.IsFull() {
		return nil, nil, model.ErrRoomFull
	}
	if room.Status != model.RoomStatusWaiting {
		return nil, nil, model.ErrRoomNotWaiting
	}

	left, err := r.LeaveAll(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}

	room.Roster = append(room.Roster, playerID)
	if len(room.Roster) == model.RoomCapacity {
		room.GuestID = playerID
	}
	room.LastActivity = r.clock.Now()

	if err := r.storage.SaveRoom(ctx, room); err != nil {
		return nil, nil, err
	}

	r.logger.Info("player joined room",
		slog.String("room_code", string(code)),
		slog.String("player_id", string(playerID)),
		slog.Int("occupancy", len(room.Roster)),
	)

	return room, left, nil
}

// RemovePlayer unseats a player from a room. Host departure promotes the next
// occupant; the last departure closes the room; departure from an in-progress
// match ends it immediately with the remaining occupant as winner (disconnect
// as forfeit).
func (r *Registry) RemovePlayer(ctx context.Context, playerID model.PlayerID, code model.RoomCode) (*LeaveResult, error) {
	room, err := r.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if !room.HasOccupant(playerID) {
		return nil, model.ErrNotInRoom
	}

	for i, pid := range room.Roster {
		if pid == playerID {
			room.Roster = append(room.Roster[:i], room.Roster[i+1:]...)
			break
		}
	}

	result := &LeaveResult{
		Code:     code,
		PlayerID: playerID,
	}

	if len(room.Roster) == 0 {
		if err := r.storage.DeleteRoom(ctx, code); err != nil {
			return nil, err
		}
		result.RoomClosed = true
		r.logger.Info("room closed", slog.String("room_code", string(code)))
		return result, nil
	}

	remaining := room.Roster[0]

	if room.Status == model.RoomStatusInProgress {
		winner, err := r.storage.GetPlayer(ctx, remaining)
		if err != nil {
			return nil, err
		}
		now := r.clock.Now()
		room.Status = model.RoomStatusCompleted
		room.Battle.EndedAt = now
		room.Battle.Winner = remaining
		room.Battle.Log = append(room.Battle.Log, model.BattleEvent{
			Turn: room.Battle.TurnCount,
			Text: fmt.Sprintf("%s wins by forfeit", winner.DisplayName),
			At:   now,
		})
		result.Forfeited = true
		result.Winner = remaining
	} else if room.Status == model.RoomStatusReady {
		// A ready room lost an occupant; it must gather players again.
		room.Status = model.RoomStatusWaiting
	}

	if playerID == room.HostID {
		room.HostID = remaining
		result.HostChanged = true
		result.NewHostID = remaining
	}
	// With capacity two, any departure leaves the host alone.
	room.GuestID = ""

	room.LastActivity = r.clock.Now()
	if err := r.storage.SaveRoom(ctx, room, playerID); err != nil {
		return nil, err
	}

	result.Room = room

	r.logger.Info("player left room",
		slog.String("room_code", string(code)),
		slog.String("player_id", string(playerID)),
		slog.Bool("forfeited", result.Forfeited),
		slog.Bool("host_changed", result.HostChanged),
	)

	return result, nil
}

// LeaveAll removes a player from whatever room they occupy. A no-op success
// (nil result) when the player is in no room.
func (r *Registry) LeaveAll(ctx context.Context, playerID model.PlayerID) (*LeaveResult, error) {
	code, err := r.storage.PlayerRoom(ctx, playerID)
	if err != nil {
		if errors.Is(err, model.ErrNotInRoom) {
			return nil, nil
		}
		return nil, err
	}
	return r.RemovePlayer(ctx, playerID, code)
}

// Get retrieves a room by code
func (r *Registry) Get(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return r.storage.GetRoom(ctx, code)
}

// Touch refreshes a room's last-activity timestamp
func (r *Registry) Touch(ctx context.Context, code model.RoomCode) error {
	room, err := r.storage.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	room.LastActivity = r.clock.Now()
	return r.storage.SaveRoom(ctx, room)
}

// RoomFor resolves the room a player currently occupies via the reverse
// index. Returns model.ErrNotInRoom when the player is seated nowhere.
func (r *Registry) RoomFor(ctx context.Context, playerID model.PlayerID) (model.RoomCode, error) {
	return r.storage.PlayerRoom(ctx, playerID)
}

// ListPublic returns summaries of rooms that are joinable: non-private,
// waiting, and under capacity. Summaries carry no match state.
func (r *Registry) ListPublic(ctx context.Context) ([]model.RoomSummary, error) {
	rooms, err := r.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		if room.Private || room.Status != model.RoomStatusWaiting || room.IsFull() {
			continue
		}
		host, err := r.storage.GetPlayer(ctx, room.HostID)
		if err != nil {
			// The host record vanished; skip rather than list a stale room.
			continue
		}
		summaries = append(summaries, model.RoomSummary{
			Code:      room.Code,
			Name:      room.Name,
			HostID:    room.HostID,
			HostName:  host.DisplayName,
			Occupancy: len(room.Roster),
			Capacity:  model.RoomCapacity,
			CreatedAt: room.CreatedAt,
		})
	}
	return summaries, nil
}
