package coordinator

import (
	"context"
	"time"

	"github.com/duelarena/server/internal/model"
)

// BattleLogWindow is how many trailing log entries views carry. The full log
// is retained on the room; only this window is transmitted.
const BattleLogWindow = 10

// OccupantView is the broadcastable projection of a room occupant
type OccupantView struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	IsHost        bool   `json:"is_host"`
	CharacterID   string `json:"character_id,omitempty"`
	CharacterName string `json:"character_name,omitempty"`
	Ready         bool   `json:"ready"`
	Health        int    `json:"health"`
	MaxHealth     int    `json:"max_health"`
	Mana          int    `json:"mana"`
	MaxMana       int    `json:"max_mana"`
}

// LogLineView is one battle-log line in a view
type LogLineView struct {
	Turn int    `json:"turn"`
	Text string `json:"text"`
}

// BattleView is the broadcastable projection of a room's match state
type BattleView struct {
	TurnCount   int           `json:"turn_count"`
	CurrentTurn string        `json:"current_turn,omitempty"`
	Log         []LogLineView `json:"log"`
	Winner      string        `json:"winner,omitempty"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	EndedAt     *time.Time    `json:"ended_at,omitempty"`
}

// RoomView is the updated view broadcast to room occupants after every
// accepted event
type RoomView struct {
	Code      string         `json:"code"`
	Name      string         `json:"name"`
	Private   bool           `json:"private"`
	Status    string         `json:"status"`
	Capacity  int            `json:"capacity"`
	Occupants []OccupantView `json:"occupants"`
	Battle    *BattleView    `json:"battle,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// buildRoomView resolves the room's occupants and projects the broadcast view
func (c *Coordinator) buildRoomView(ctx context.Context, r *model.Room) (*RoomView, error) {
	occupants := make([]OccupantView, 0, len(r.Roster))
	for _, pid := range r.Roster {
		p, err := c.players.Get(ctx, pid)
		if err != nil {
			return nil, err
		}
		ov := OccupantView{
			ID:          string(p.ID),
			DisplayName: p.DisplayName,
			IsHost:      pid == r.HostID,
			Ready:       p.Ready,
			Health:      p.Health,
			MaxHealth:   p.MaxHealth,
			Mana:        p.Mana,
			MaxMana:     p.MaxMana,
		}
		if p.Character != nil {
			ov.CharacterID = string(p.Character.ID)
			ov.CharacterName = p.Character.Name
		}
		occupants = append(occupants, ov)
	}

	view := &RoomView{
		Code:      string(r.Code),
		Name:      r.Name,
		Private:   r.Private,
		Status:    string(r.Status),
		Capacity:  model.RoomCapacity,
		Occupants: occupants,
		CreatedAt: r.CreatedAt,
	}

	if !r.Battle.StartedAt.IsZero() {
		tail := r.Battle.TailLog(BattleLogWindow)
		log := make([]LogLineView, len(tail))
		for i, line := range tail {
			log[i] = LogLineView{Turn: line.Turn, Text: line.Text}
		}
		battle := &BattleView{
			TurnCount:   r.Battle.TurnCount,
			CurrentTurn: string(r.Battle.CurrentTurn),
			Log:         log,
			Winner:      string(r.Battle.Winner),
		}
		started := r.Battle.StartedAt
		battle.StartedAt = &started
		if !r.Battle.EndedAt.IsZero() {
			ended := r.Battle.EndedAt
			battle.EndedAt = &ended
		}
		view.Battle = battle
	}

	return view, nil
}
