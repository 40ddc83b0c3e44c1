package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case RoomList:
		o.printRoomList(v)
	case Room:
		o.printRoom(v)
	case CharacterList:
		o.printCharacterList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// RoomSummary response type (matches API)
type RoomSummary struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	HostID    string    `json:"host_id"`
	HostName  string    `json:"host_name"`
	Occupancy int       `json:"occupancy"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomList response type
type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}

// Occupant response type
type Occupant struct {
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

// LogLine response type
type LogLine struct {
	Turn int    `json:"turn"`
	Text string `json:"text"`
}

// Battle response type
type Battle struct {
	TurnCount   int       `json:"turn_count"`
	CurrentTurn string    `json:"current_turn,omitempty"`
	Log         []LogLine `json:"log"`
	Winner      string    `json:"winner,omitempty"`
}

// Room response type
type Room struct {
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Private   bool       `json:"private"`
	Status    string     `json:"status"`
	Capacity  int        `json:"capacity"`
	Occupants []Occupant `json:"occupants"`
	Battle    *Battle    `json:"battle,omitempty"`
}

// Ability response type
type Ability struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ManaCost int    `json:"mana_cost"`
	Damage   int    `json:"damage"`
}

// Character response type
type Character struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MaxHealth int       `json:"max_health"`
	MaxMana   int       `json:"max_mana"`
	Abilities []Ability `json:"abilities"`
}

// CharacterList response type
type CharacterList struct {
	Characters []Character `json:"characters"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRoomList(l RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Println("No joinable rooms")
		return
	}
	fmt.Printf("Rooms (%d):\n", len(l.Rooms))
	for _, r := range l.Rooms {
		fmt.Printf("  %s  %-20s %s (%d/%d)\n", r.Code, r.Name, r.HostName, r.Occupancy, r.Capacity)
	}
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s (%s)\n", r.Name, r.Code)
	fmt.Printf("Status: %s\n", r.Status)
	if r.Private {
		fmt.Println("Private: yes")
	}
	fmt.Printf("Occupants (%d/%d):\n", len(r.Occupants), r.Capacity)
	for _, occ := range r.Occupants {
		hostStr := ""
		if occ.IsHost {
			hostStr = " [host]"
		}
		readyStr := ""
		if occ.Ready {
			readyStr = " [ready]"
		}
		fmt.Printf("  - %s (%s)%s%s\n", occ.DisplayName, occ.ID, hostStr, readyStr)
		if occ.CharacterName != "" {
			fmt.Printf("    %s  HP %d/%d  MP %d/%d\n",
				occ.CharacterName, occ.Health, occ.MaxHealth, occ.Mana, occ.MaxMana)
		}
	}

	if r.Battle != nil {
		fmt.Printf("\nTurn %d", r.Battle.TurnCount)
		if r.Battle.CurrentTurn != "" {
			fmt.Printf(" (to act: %s)", r.Battle.CurrentTurn)
		}
		fmt.Println()
		for _, line := range r.Battle.Log {
			fmt.Printf("  [%d] %s\n", line.Turn, line.Text)
		}
		if r.Battle.Winner != "" {
			fmt.Printf("Winner: %s\n", r.Battle.Winner)
		}
	}
}

func (o *Output) printCharacterList(l CharacterList) {
	fmt.Printf("Characters (%d):\n", len(l.Characters))
	for _, c := range l.Characters {
		fmt.Printf("  %s (%s)  HP %d  MP %d\n", c.Name, c.ID, c.MaxHealth, c.MaxMana)
		for _, a := range c.Abilities {
			fmt.Printf("    - %s: %d damage, %d mana\n", a.Name, a.Damage, a.ManaCost)
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
