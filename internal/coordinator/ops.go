package coordinator

import (
	"context"
	"errors"
	"strings"

	"github.com/duelarena/server/internal/model"
	"github.com/duelarena/server/internal/services/room"
)

// MaxChatLength caps chat message length in runes
const MaxChatLength = 500

// CreateRoomRequest holds the create-room event's data
type CreateRoomRequest struct {
	Name    string
	Private bool
	Code    model.RoomCode // optional; generated when empty
}

// Connect registers a new connection as a player. The connection identity is
// supplied by the transport; calling Connect twice for one ID overwrites.
func (c *Coordinator) Connect(ctx context.Context, id model.PlayerID, displayName string) (*model.Player, error) {
	return c.players.Register(ctx, id, displayName)
}

// Disconnect is the cancellation signal for a connection: it synchronously
// force-leaves the player's room (forfeit-on-departure applies) and removes
// the player record. Unknown IDs are a no-op.
func (c *Coordinator) Disconnect(ctx context.Context, id model.PlayerID) error {
	p, err := c.players.Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil
		}
		return err
	}

	code, unlock, err := c.lockPlayerRoom(ctx, id)
	switch {
	case err == nil:
		defer unlock()
	case errors.Is(err, model.ErrNotInRoom):
		// Room-less player; nothing to lock.
	default:
		return err
	}

	left, err := c.players.Unregister(ctx, id)
	if err != nil {
		return err
	}

	if code != "" {
		c.cancelStart(code)
	}
	c.publishLeave(ctx, left, p.DisplayName)
	return nil
}

// CreateRoom creates a room with the caller as host, forcing them out of any
// prior room first
func (c *Coordinator) CreateRoom(ctx context.Context, id model.PlayerID, req CreateRoomRequest) (*RoomView, error) {
	p, err := c.players.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	prior, unlock, err := c.lockPlayerRoom(ctx, id)
	switch {
	case err == nil:
		defer unlock()
	case errors.Is(err, model.ErrNotInRoom):
	default:
		return nil, err
	}

	created, left, err := c.rooms.CreateRoom(ctx, id, room.CreateOptions{
		Name:    req.Name,
		Private: req.Private,
		Code:    req.Code,
	})
	if err != nil {
		return nil, err
	}

	if left != nil {
		c.cancelStart(prior)
		c.publishLeave(ctx, left, p.DisplayName)
	}

	return c.buildRoomView(ctx, created)
}

// JoinRoom seats the caller in the given room, forcing them out of any prior
// room first
func (c *Coordinator) JoinRoom(ctx context.Context, id model.PlayerID, code model.RoomCode) (*RoomView, error) {
	p, err := c.players.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxRoomLockRetries; attempt++ {
		prior, err := c.rooms.RoomFor(ctx, id)
		if err != nil && !errors.Is(err, model.ErrNotInRoom) {
			return nil, err
		}

		unlock := c.lockRooms(code, prior)
		current, err := c.rooms.RoomFor(ctx, id)
		if err != nil && !errors.Is(err, model.ErrNotInRoom) {
			unlock()
			return nil, err
		}
		if current != prior {
			// The player moved while we were acquiring locks; retry.
			unlock()
			continue
		}

		joined, left, err := c.rooms.AddPlayer(ctx, id, code)
		if err != nil {
			unlock()
			return nil, err
		}

		if left != nil {
			c.cancelStart(left.Code)
			c.publishLeave(ctx, left, p.DisplayName)
		}
		c.publishRoomEvent(ctx, joined, model.EventPlayerJoined, id, model.PlayerJoinedPayload{
			PlayerID:    id,
			DisplayName: p.DisplayName,
		})
		c.publishRoomUpdate(ctx, joined)

		view, err := c.buildRoomView(ctx, joined)
		unlock()
		return view, err
	}

	return nil, model.ErrConflict
}

// LeaveRoom removes the caller from their current room. A no-op success when
// the caller occupies no room; the returned flag reports whether a room was
// actually left.
func (c *Coordinator) LeaveRoom(ctx context.Context, id model.PlayerID) (bool, error) {
	p, err := c.players.Get(ctx, id)
	if err != nil {
		return false, err
	}

	code, unlock, err := c.lockPlayerRoom(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotInRoom) {
			return false, nil
		}
		return false, err
	}
	defer unlock()

	left, err := c.rooms.RemovePlayer(ctx, id, code)
	if err != nil {
		return false, err
	}

	c.cancelStart(code)
	c.publishLeave(ctx, left, p.DisplayName)
	return true, nil
}

// SelectCharacter assigns a catalog character to the caller, deriving their
// stats from it. A reselection after voting ready regresses a ready room to
// waiting, so any pending start countdown is disarmed.
func (c *Coordinator) SelectCharacter(ctx context.Context, id model.PlayerID, characterID model.CharacterID) (*RoomView, error) {
	character, err := c.catalog.Get(characterID)
	if err != nil {
		return nil, err
	}
	if _, err := c.players.Get(ctx, id); err != nil {
		return nil, err
	}

	code, unlock, err := c.lockPlayerRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	updated, _, err := c.engine.SetCharacter(ctx, id, character)
	if err != nil {
		return nil, err
	}

	c.cancelStart(code)
	c.publishRoomEvent(ctx, updated, model.EventCharacterSelected, id, model.CharacterSelectedPayload{
		PlayerID:      id,
		CharacterID:   character.ID,
		CharacterName: character.Name,
	})
	c.publishRoomUpdate(ctx, updated)

	return c.buildRoomView(ctx, updated)
}

// SetReady records the caller's readiness vote. When the vote makes the whole
// roster ready, the match-start countdown is announced and armed; the timer
// re-validates room state when it fires.
func (c *Coordinator) SetReady(ctx context.Context, id model.PlayerID, ready bool) (*RoomView, error) {
	if _, err := c.players.Get(ctx, id); err != nil {
		return nil, err
	}

	code, unlock, err := c.lockPlayerRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	allReady, updated, err := c.engine.SetReady(ctx, id, ready)
	if err != nil {
		return nil, err
	}

	c.publishRoomEvent(ctx, updated, model.EventReadyChanged, id, model.ReadyChangedPayload{
		PlayerID: id,
		Ready:    ready,
		AllReady: allReady,
	})

	if allReady && updated.Status == model.RoomStatusReady {
		c.publishRoomEvent(ctx, updated, model.EventMatchStarting, "", model.MatchStartingPayload{
			Countdown: c.cfg.StartCountdown,
		})
		c.scheduleStart(code)
	}

	c.publishRoomUpdate(ctx, updated)

	return c.buildRoomView(ctx, updated)
}

// PerformAction resolves a combat action from the caller
func (c *Coordinator) PerformAction(ctx context.Context, id model.PlayerID, action model.Action) (*RoomView, error) {
	if _, err := c.players.Get(ctx, id); err != nil {
		return nil, err
	}

	_, unlock, err := c.lockPlayerRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	result, err := c.engine.ProcessAction(ctx, id, action)
	if err != nil {
		return nil, err
	}

	c.publishRoomEvent(ctx, result.Room, model.EventActionResolved, id, model.ActionResolvedPayload{
		PlayerID:  id,
		Action:    action.Type,
		AbilityID: action.AbilityID,
	})
	if result.Ended {
		c.publishRoomEvent(ctx, result.Room, model.EventMatchEnded, result.Winner, model.MatchEndedPayload{
			Winner: result.Winner,
		})
	}
	c.publishRoomUpdate(ctx, result.Room)

	return c.buildRoomView(ctx, result.Room)
}

// SendChat broadcasts a chat message to the caller's room
func (c *Coordinator) SendChat(ctx context.Context, id model.PlayerID, text string) error {
	p, err := c.players.Get(ctx, id)
	if err != nil {
		return err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return model.ErrEmptyMessage
	}
	if len([]rune(text)) > MaxChatLength {
		return model.ErrMessageTooLong
	}

	code, unlock, err := c.lockPlayerRoom(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if err := c.players.Touch(ctx, id); err != nil {
		return err
	}
	if err := c.rooms.Touch(ctx, code); err != nil {
		return err
	}

	current, err := c.rooms.Get(ctx, code)
	if err != nil {
		return err
	}
	c.publishRoomEvent(ctx, current, model.EventChatMessage, id, model.ChatMessagePayload{
		PlayerID:    id,
		DisplayName: p.DisplayName,
		Text:        text,
	})
	return nil
}

// GetRoom returns the view of a room
func (c *Coordinator) GetRoom(ctx context.Context, code model.RoomCode) (*RoomView, error) {
	unlock := c.lockRoom(code)
	defer unlock()

	current, err := c.rooms.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	return c.buildRoomView(ctx, current)
}

// ListRooms returns public listings of joinable rooms
func (c *Coordinator) ListRooms(ctx context.Context) ([]model.RoomSummary, error) {
	return c.rooms.ListPublic(ctx)
}

// Characters returns the loaded character catalog
func (c *Coordinator) Characters() []model.Character {
	return c.catalog.List()
}
