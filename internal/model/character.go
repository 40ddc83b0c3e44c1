package model

// CharacterID identifies a character definition in the catalog
type CharacterID string

// AbilityID identifies an ability within a character's kit
type AbilityID string

// Ability is a combat action a character can perform. Ability definitions are
// catalog content: the engine consumes them but never mutates them.
type Ability struct {
	ID       AbilityID
	Name     string
	ManaCost int
	Damage   int
}

// Character is a playable character definition with base stats and abilities
type Character struct {
	ID        CharacterID
	Name      string
	MaxHealth int
	MaxMana   int
	Abilities []Ability
}

// Ability returns the ability with the given ID, or nil if the character
// does not declare it
func (c *Character) Ability(id AbilityID) *Ability {
	for i := range c.Abilities {
		if c.Abilities[i].ID == id {
			return &c.Abilities[i]
		}
	}
	return nil
}
