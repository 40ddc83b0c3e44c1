package catalog

import (
	"context"

	"github.com/duelarena/server/internal/model"
)

// StaticSource serves the built-in default roster. Used when no external
// catalog is configured.
type StaticSource struct{}

// NewStaticSource creates a StaticSource
func NewStaticSource() *StaticSource {
	return &StaticSource{}
}

// Ensure StaticSource implements Source
var _ Source = (*StaticSource)(nil)

// Characters returns the default roster
func (s *StaticSource) Characters(ctx context.Context) ([]model.Character, error) {
	return []model.Character{
		{
			ID:        "knight",
			Name:      "Knight",
			MaxHealth: 120,
			MaxMana:   30,
			Abilities: []model.Ability{
				{ID: "slash", Name: "Slash", ManaCost: 0, Damage: 10},
				{ID: "heavy-strike", Name: "Heavy Strike", ManaCost: 10, Damage: 25},
			},
		},
		{
			ID:        "mage",
			Name:      "Mage",
			MaxHealth: 90,
			MaxMana:   60,
			Abilities: []model.Ability{
				{ID: "spark", Name: "Spark", ManaCost: 5, Damage: 12},
				{ID: "fireball", Name: "Fireball", ManaCost: 20, Damage: 35},
			},
		},
		{
			ID:        "rogue",
			Name:      "Rogue",
			MaxHealth: 100,
			MaxMana:   40,
			Abilities: []model.Ability{
				{ID: "stab", Name: "Stab", ManaCost: 5, Damage: 14},
				{ID: "backstab", Name: "Backstab", ManaCost: 15, Damage: 28},
			},
		},
	}, nil
}
