package combat

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// InitiativeResult is the outcome of an initiative roll.
type InitiativeResult struct {
	Die       int
	Modifier  int
	Total     int
	Breakdown string
}

// InitiativeRoll rolls d20 + StatModifier(dexterity) + floor(level/5) + research.
//
// Precondition: src must be non-nil.
func InitiativeRoll(src dice.Source, dexterity, level, researchBonus int) (InitiativeResult, error) {
	return initiative(src, StatModifier(dexterity)+floorDiv(level, 5)+researchBonus)
}

// FlatInitiative rolls d20 + StatModifier(dexterity) + bonus, the level-free
// variant used when an encounter opens.
//
// Precondition: src must be non-nil.
func FlatInitiative(src dice.Source, dexterity, bonus int) (InitiativeResult, error) {
	return initiative(src, StatModifier(dexterity)+bonus)
}

func initiative(src dice.Source, mod int) (InitiativeResult, error) {
	die, err := dice.RollDie(src, 20)
	if err != nil {
		return InitiativeResult{}, fmt.Errorf("initiative: %w", err)
	}
	total := die + mod
	return InitiativeResult{
		Die:       die,
		Modifier:  mod,
		Total:     total,
		Breakdown: fmt.Sprintf("initiative d20 %d %+d = %d", die, mod, total),
	}, nil
}
