package match

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/duelarena/server/internal/dependencies/clock"
	"github.com/duelarena/server/internal/model"
	"github.com/duelarena/server/internal/storage"
)

// Engine resolves turn-based combat against a room's two occupants: character
// selection, readiness, match start, and action processing with win detection.
type Engine struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewEngine creates a new match Engine
func NewEngine(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Engine {
	return &Engine{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// SetCharacter assigns a character to a player, deriving health and mana from
// the character's declared values. Changing loadout invalidates a prior ready
// vote, so readiness resets and a ready room regresses to waiting.
func (e *Engine) SetCharacter(ctx context.Context, playerID model.PlayerID, character *model.Character) (*model.Room, *model.Player, error) {
	player, err := e.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	code, err := e.storage.PlayerRoom(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	room, err := e.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	now := e.clock.Now()
	player.Character = character
	player.Health = character.MaxHealth
	player.MaxHealth = character.MaxHealth
	player.Mana = character.MaxMana
	player.MaxMana = character.MaxMana
	player.Ready = false
	player.LastActive = now

	if err := e.storage.SavePlayer(ctx, player); err != nil {
		return nil, nil, err
	}

	if room.Status == model.RoomStatusReady {
		room.Status = model.RoomStatusWaiting
	}
	room.LastActivity = now
	if err := e.storage.SaveRoom(ctx, room); err != nil {
		return nil, nil, err
	}

	e.logger.Info("character selected",
		slog.String("room_code", string(code)),
		slog.String("player_id", string(playerID)),
		slog.String("character_id", string(character.ID)),
	)

	return room, player, nil
}

// SetReady records a player's readiness vote and recomputes whether all
// occupants are ready. When the vote completes a full ready roster while the
// room is waiting, the room transitions to ready. The all-ready flag is
// returned so the caller can drive a countdown before StartGame.
func (e *Engine) SetReady(ctx context.Context, playerID model.PlayerID, ready bool) (bool, *model.Room, error) {
	player, err := e.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return false, nil, err
	}
	code, err := e.storage.PlayerRoom(ctx, playerID)
	if err != nil {
		return false, nil, err
	}
	room, err := e.storage.GetRoom(ctx, code)
	if err != nil {
		return false, nil, err
	}

	now := e.clock.Now()
	player.Ready = ready
	player.LastActive = now
	if err := e.storage.SavePlayer(ctx, player); err != nil {
		return false, nil, err
	}

	allReady, err := e.allReady(ctx, room)
	if err != nil {
		return false, nil, err
	}

	if allReady && room.Status == model.RoomStatusWaiting {
		room.Status = model.RoomStatusReady
	}
	room.LastActivity = now
	if err := e.storage.SaveRoom(ctx, room); err != nil {
		return false, nil, err
	}

	return allReady, room, nil
}

// allReady reports whether the room has a full roster with every occupant
// ready
func (e *Engine) allReady(ctx context.Context, room *model.Room) (bool, error) {
	if len(room.Roster) != model.RoomCapacity {
		return false, nil
	}
	for _, pid := range room.Roster {
		occupant, err := e.storage.GetPlayer(ctx, pid)
		if err != nil {
			return false, err
		}
		if !occupant.Ready {
			return false, nil
		}
	}
	return true, nil
}

// StartGame transitions a ready room into an in-progress match. The host
// takes the first turn.
func (e *Engine) StartGame(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	room, err := e.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Status != model.RoomStatusReady {
		return nil, model.ErrRoomNotReady
	}
	if len(room.Roster) != model.RoomCapacity {
		return nil, model.ErrWrongOccupancy
	}

	host, err := e.storage.GetPlayer(ctx, room.HostID)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	room.Status = model.RoomStatusInProgress
	room.Battle = model.BattleState{
		TurnCount:   1,
		CurrentTurn: room.HostID,
		StartedAt:   now,
		Log: []model.BattleEvent{
			{Turn: 1, Text: "Match started", At: now},
			{Turn: 1, Text: fmt.Sprintf("%s goes first", host.DisplayName), At: now},
		},
	}
	room.LastActivity = now

	if err := e.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	e.logger.Info("match started",
		slog.String("room_code", string(code)),
		slog.String("first_turn", string(room.HostID)),
	)

	return room, nil
}

// ActionResult describes the outcome of a processed action
type ActionResult struct {
	Room     *model.Room
	Actor    *model.Player
	Opponent *model.Player
	Ended    bool
	Winner   model.PlayerID
}

// ProcessAction resolves an action from the player whose turn it is. After
// the action resolves, win detection runs; otherwise turn ownership flips to
// the opponent and the turn counter increments.
func (e *Engine) ProcessAction(ctx context.Context, playerID model.PlayerID, action model.Action) (*ActionResult, error) {
	actor, err := e.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	code, err := e.storage.PlayerRoom(ctx, playerID)
	if err != nil {
		return nil, err
	}
	room, err := e.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if room.Status != model.RoomStatusInProgress {
		return nil, model.ErrMatchNotStarted
	}
	if room.Battle.CurrentTurn != playerID {
		return nil, model.ErrNotYourTurn
	}

	opponentID := room.Opponent(playerID)
	opponent, err := e.storage.GetPlayer(ctx, opponentID)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	turn := room.Battle.TurnCount

	switch action.Type {
	case model.ActionAbility:
		if !actor.HasCharacter() {
			return nil, model.ErrAbilityNotFound
		}
		ability := actor.Character.Ability(action.AbilityID)
		if ability == nil {
			return nil, model.ErrAbilityNotFound
		}
		if actor.Mana < ability.ManaCost {
			return nil, model.ErrInsufficientMana
		}
		actor.Mana = max(0, actor.Mana-ability.ManaCost)
		opponent.Health = max(0, opponent.Health-ability.Damage)
		room.Battle.Log = append(room.Battle.Log,
			model.BattleEvent{Turn: turn, Text: fmt.Sprintf("%s used %s", actor.DisplayName, ability.Name), At: now},
			model.BattleEvent{Turn: turn, Text: fmt.Sprintf("%s took %d damage", opponent.DisplayName, ability.Damage), At: now},
		)
	case model.ActionSurrender:
		actor.Health = 0
		room.Battle.Log = append(room.Battle.Log,
			model.BattleEvent{Turn: turn, Text: fmt.Sprintf("%s surrendered", actor.DisplayName), At: now},
		)
	default:
		return nil, model.ErrUnknownAction
	}

	actor.LastActive = now

	result := &ActionResult{
		Room:     room,
		Actor:    actor,
		Opponent: opponent,
	}

	if actor.Health <= 0 || opponent.Health <= 0 {
		winner := actor
		if actor.Health <= 0 {
			winner = opponent
		}
		room.Status = model.RoomStatusCompleted
		room.Battle.EndedAt = now
		room.Battle.Winner = winner.ID
		room.Battle.Log = append(room.Battle.Log,
			model.BattleEvent{Turn: turn, Text: fmt.Sprintf("%s wins", winner.DisplayName), At: now},
		)
		result.Ended = true
		result.Winner = winner.ID

		e.logger.Info("match ended",
			slog.String("room_code", string(code)),
			slog.String("winner", string(winner.ID)),
			slog.Int("turns", room.Battle.TurnCount),
		)
	} else {
		room.Battle.CurrentTurn = opponentID
		room.Battle.TurnCount++
		room.Battle.Log = append(room.Battle.Log,
			model.BattleEvent{Turn: room.Battle.TurnCount, Text: fmt.Sprintf("Turn %d: %s", room.Battle.TurnCount, opponent.DisplayName), At: now},
		)
	}

	if err := e.storage.SavePlayer(ctx, actor); err != nil {
		return nil, err
	}
	if err := e.storage.SavePlayer(ctx, opponent); err != nil {
		return nil, err
	}
	room.LastActivity = now
	if err := e.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	return result, nil
}
