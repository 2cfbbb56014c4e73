// Package character defines the player character model and pure creation
// and progression logic.
package character

import (
	"slices"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// MaxLevel caps character progression.
const MaxLevel = 20

// Character represents a player character's persistent state.
type Character struct {
	ID    string
	Name  string
	Class string // class ID

	Level      int
	Experience int
	Gold       int

	Stats     combat.StatBlock
	MaxHP     int
	CurrentHP int
	MaxMana   int
	Mana      int
	AC        int

	// DamageDie is the weapon die; the dice count scales with level.
	DamageDie int

	// Growth per level, copied from the class at creation.
	HitPointsPerLevel int
	ManaPerLevel      int

	EnhancedDice  bool
	ResearchBonus int
	SpellBonus    int
	Effects       []combat.Effect
	// Equipped lists equipment item IDs.
	Equipped []string
}

// Clone returns a deep copy.
func (c Character) Clone() Character {
	c.Effects = slices.Clone(c.Effects)
	c.Equipped = slices.Clone(c.Equipped)
	return c
}

// Combatant projects the character into combat, with bonus as its
// aggregated equipment.
//
// Postcondition: the returned Combatant shares no slices with c.
func (c Character) Combatant(bonus combat.EquipmentBonus) combat.Combatant {
	return combat.Combatant{
		ID:            c.ID,
		Name:          c.Name,
		Kind:          combat.KindPlayer,
		Level:         c.Level,
		HP:            c.CurrentHP,
		MaxHP:         c.MaxHP,
		Mana:          c.Mana,
		MaxMana:       c.MaxMana,
		Stats:         c.Stats,
		AC:            c.AC,
		DamageDice:    combat.DiceCountForLevel(c.Level),
		DamageDie:     c.DamageDie,
		EnhancedDice:  c.EnhancedDice,
		ResearchBonus: c.ResearchBonus,
		SpellBonus:    c.SpellBonus,
		Effects:       slices.Clone(c.Effects),
		Equipment:     bonus,
	}
}
