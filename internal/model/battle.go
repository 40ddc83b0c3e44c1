package model

import "time"

// ActionType identifies the kind of combat action a player submitted
type ActionType string

const (
	ActionAbility   ActionType = "ability"
	ActionSurrender ActionType = "surrender"
)

// Action is a turn submission from the player whose turn it is
type Action struct {
	Type      ActionType
	AbilityID AbilityID // set for ability actions
}

// BattleEvent is one line of a room's battle log
type BattleEvent struct {
	Turn int
	Text string
	At   time.Time
}

// BattleState is the embedded match state of a room. The log is retained in
// full for the life of the room; callers transmit only a trailing window.
type BattleState struct {
	TurnCount   int
	CurrentTurn PlayerID // whose turn it is; empty outside a match
	Log         []BattleEvent
	StartedAt   time.Time
	EndedAt     time.Time
	Winner      PlayerID
}

// TailLog returns up to the last n log entries
func (b *BattleState) TailLog(n int) []BattleEvent {
	if n <= 0 || len(b.Log) == 0 {
		return nil
	}
	if len(b.Log) <= n {
		return b.Log
	}
	return b.Log[len(b.Log)-n:]
}
