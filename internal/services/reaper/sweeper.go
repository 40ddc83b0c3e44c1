package reaper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/duelarena/server/internal/dependencies/clock"
	"github.com/duelarena/server/internal/locking"
	"github.com/duelarena/server/internal/model"
	"github.com/duelarena/server/internal/storage"
)

// Sweeper expires idle rooms and disconnected, room-less players. Idle rooms
// are discarded wholesale: the reverse index is cleared for every evicted
// occupant without running forfeit or host-transfer logic. Room occupancy
// keeps a player alive regardless of idle time.
type Sweeper struct {
	storage storage.Storage
	locks   *locking.KeyedMutex
	clock   clock.Clock
	logger  *slog.Logger
}

// NewSweeper creates a new Sweeper. The locks must be the same instance the
// coordinator serializes room events with, so a sweep never deletes a room
// out from under an in-flight action.
func NewSweeper(storage storage.Storage, locks *locking.KeyedMutex, clock clock.Clock, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		storage: storage,
		locks:   locks,
		clock:   clock,
		logger:  logger,
	}
}

// SweepResult reports what a sweep removed
type SweepResult struct {
	RoomsRemoved   []model.RoomCode
	PlayersRemoved []model.PlayerID
}

// Sweep removes rooms idle beyond roomIdleTimeout and room-less players idle
// beyond playerIdleTimeout
func (s *Sweeper) Sweep(ctx context.Context, roomIdleTimeout, playerIdleTimeout time.Duration) (*SweepResult, error) {
	result := &SweepResult{}
	now := s.clock.Now()

	rooms, err := s.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	roomCutoff := now.Add(-roomIdleTimeout)
	for _, room := range rooms {
		if !room.LastActivity.Before(roomCutoff) {
			continue
		}
		code := room.Code
		s.locks.Lock(string(code))
		// Re-check under the room lock; an event may have landed since the
		// candidate list was taken.
		current, err := s.storage.GetRoom(ctx, code)
		if err == nil && current.LastActivity.Before(roomCutoff) {
			if err := s.storage.DeleteRoom(ctx, code); err != nil {
				s.locks.Unlock(string(code))
				return nil, err
			}
			result.RoomsRemoved = append(result.RoomsRemoved, code)
			s.logger.Info("reaped idle room",
				slog.String("room_code", string(code)),
				slog.Time("last_activity", current.LastActivity),
			)
		}
		s.locks.Unlock(string(code))
	}

	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	playerCutoff := now.Add(-playerIdleTimeout)
	for _, player := range players {
		if !player.LastActive.Before(playerCutoff) {
			continue
		}
		if _, err := s.storage.PlayerRoom(ctx, player.ID); err == nil {
			continue
		} else if !errors.Is(err, model.ErrNotInRoom) {
			return nil, err
		}
		if err := s.storage.DeletePlayer(ctx, player.ID); err != nil {
			return nil, err
		}
		result.PlayersRemoved = append(result.PlayersRemoved, player.ID)
		s.logger.Info("reaped idle player",
			slog.String("player_id", string(player.ID)),
			slog.Time("last_active", player.LastActive),
		)
	}

	return result, nil
}

// Run sweeps on a fixed interval until the context is cancelled
func (s *Sweeper) Run(ctx context.Context, interval, roomIdleTimeout, playerIdleTimeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx, roomIdleTimeout, playerIdleTimeout); err != nil {
				s.logger.Error("sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
