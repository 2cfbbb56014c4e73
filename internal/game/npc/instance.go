package npc

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// NewCombatant builds a fresh, full-health enemy combatant from tmpl with a
// unique ID.
//
// Precondition: tmpl must be non-nil and have passed Validate.
// Postcondition: HP == MaxHP == tmpl.MaxHP; Actions is never empty.
func NewCombatant(tmpl *Template) (combat.Combatant, error) {
	dmg, err := dice.Parse(tmpl.Damage)
	if err != nil {
		return combat.Combatant{}, fmt.Errorf("npc %q: %w", tmpl.ID, err)
	}
	actions := slices.Clone(tmpl.Actions)
	if len(actions) == 0 {
		actions = []string{DefaultAction}
	}
	c := combat.Combatant{
		ID:           uuid.New().String(),
		Name:         tmpl.Name,
		Kind:         combat.KindEnemy,
		Level:        tmpl.EffectiveLevel(),
		HP:           tmpl.MaxHP,
		MaxHP:        tmpl.MaxHP,
		Stats:        tmpl.Stats,
		AC:           tmpl.AC,
		DamageDice:   dmg.Count,
		DamageDie:    dmg.Sides,
		DamageBonus:  dmg.Modifier,
		DamageKeep:   dmg.KeepHighest,
		EnhancedDice: tmpl.EnhancedDice,
		TemplateID:   tmpl.ID,
		Difficulty:   tmpl.Difficulty,
		Behavior:     tmpl.Behavior,
		Actions:      actions,
		BehaviorHook: tmpl.BehaviorHook,
	}
	if err := c.Validate(); err != nil {
		return combat.Combatant{}, fmt.Errorf("npc %q: %w", tmpl.ID, err)
	}
	return c, nil
}
