package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/duelarena/server/internal/model"
)

// characterDoc is the serialized form of a character definition, shared by
// the file and redis sources
type characterDoc struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	MaxHealth int          `json:"max_health"`
	MaxMana   int          `json:"max_mana"`
	Abilities []abilityDoc `json:"abilities"`
}

type abilityDoc struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ManaCost int    `json:"mana_cost"`
	Damage   int    `json:"damage"`
}

func (d characterDoc) toModel() model.Character {
	abilities := make([]model.Ability, len(d.Abilities))
	for i, a := range d.Abilities {
		abilities[i] = model.Ability{
			ID:       model.AbilityID(a.ID),
			Name:     a.Name,
			ManaCost: a.ManaCost,
			Damage:   a.Damage,
		}
	}
	return model.Character{
		ID:        model.CharacterID(d.ID),
		Name:      d.Name,
		MaxHealth: d.MaxHealth,
		MaxMana:   d.MaxMana,
		Abilities: abilities,
	}
}

// FileSource loads character definitions from a JSON file
type FileSource struct {
	Path string
}

// NewFileSource creates a FileSource for the given path
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Ensure FileSource implements Source
var _ Source = (*FileSource)(nil)

// Characters reads and decodes the catalog file
func (s *FileSource) Characters(ctx context.Context) ([]model.Character, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var docs []characterDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decoding catalog file: %w", err)
	}

	characters := make([]model.Character, len(docs))
	for i, d := range docs {
		characters[i] = d.toModel()
	}
	return characters, nil
}
