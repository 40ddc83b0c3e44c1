package response

import (
	"time"

	"github.com/duelarena/server/internal/model"
)

// RoomSummary represents a joinable room in listing responses
type RoomSummary struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	HostID    string    `json:"host_id"`
	HostName  string    `json:"host_name"`
	Occupancy int       `json:"occupancy"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomSummaryFromModel converts a model.RoomSummary
func RoomSummaryFromModel(s model.RoomSummary) RoomSummary {
	return RoomSummary{
		Code:      string(s.Code),
		Name:      s.Name,
		HostID:    string(s.HostID),
		HostName:  s.HostName,
		Occupancy: s.Occupancy,
		Capacity:  s.Capacity,
		CreatedAt: s.CreatedAt,
	}
}

// RoomList is the response for the room listing endpoint
type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}

// RoomListFromModel converts a slice of model.RoomSummary
func RoomListFromModel(summaries []model.RoomSummary) RoomList {
	rooms := make([]RoomSummary, len(summaries))
	for i, s := range summaries {
		rooms[i] = RoomSummaryFromModel(s)
	}
	return RoomList{Rooms: rooms}
}

// Ability represents an ability in catalog responses
type Ability struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ManaCost int    `json:"mana_cost"`
	Damage   int    `json:"damage"`
}

// Character represents a character in catalog responses
type Character struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MaxHealth int       `json:"max_health"`
	MaxMana   int       `json:"max_mana"`
	Abilities []Ability `json:"abilities"`
}

// CharacterFromModel converts a model.Character
func CharacterFromModel(c model.Character) Character {
	abilities := make([]Ability, len(c.Abilities))
	for i, a := range c.Abilities {
		abilities[i] = Ability{
			ID:       string(a.ID),
			Name:     a.Name,
			ManaCost: a.ManaCost,
			Damage:   a.Damage,
		}
	}
	return Character{
		ID:        string(c.ID),
		Name:      c.Name,
		MaxHealth: c.MaxHealth,
		MaxMana:   c.MaxMana,
		Abilities: abilities,
	}
}

// CharacterList is the response for the character catalog endpoint
type CharacterList struct {
	Characters []Character `json:"characters"`
}

// CharacterListFromModel converts a slice of model.Character
func CharacterListFromModel(chars []model.Character) CharacterList {
	out := make([]Character, len(chars))
	for i, c := range chars {
		out[i] = CharacterFromModel(c)
	}
	return CharacterList{Characters: out}
}
