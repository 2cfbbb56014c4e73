package combat

import (
	"errors"
	"fmt"
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// ErrInvalidMultiplier is returned for a negative behavior multiplier.
var ErrInvalidMultiplier = errors.New("combat: behavior multiplier must be >= 0")

// DamageParams holds the inputs of DamageRoll.
// A zero BehaviorMultiplier is treated as 1; a zero KeepHighest keeps every die.
type DamageParams struct {
	DiceCount          int
	DiceSize           int
	KeepHighest        int
	Modifier           int
	Critical           bool
	LevelBonus         int
	EquipmentBonus     int
	SpellBonus         int
	ResearchBonus      int
	BehaviorMultiplier float64
}

// Bonus returns the sum of every flat bonus, modifier included.
func (p DamageParams) Bonus() int {
	return p.Modifier + p.LevelBonus + p.EquipmentBonus + p.SpellBonus + p.ResearchBonus
}

// DamageResult is the outcome of a damage roll.
//
// Invariant: Damage >= 1.
type DamageResult struct {
	Damage    int
	Rolls     []int // every die of the first pool, in roll order
	CritRolls []int // the second pool rolled on a critical; nil otherwise
	Breakdown string
}

// DamageRoll sums DiceCount dice of DiceSize, or the KeepHighest largest of
// them when set. A critical rolls the same pool again, keeps the same number
// of dice and adds them (double dice, not double total). The flat bonuses are
// added and the result scaled by BehaviorMultiplier, floored, and clamped
// to at least 1.
//
// Precondition: src must be non-nil.
// Postcondition: Damage >= 1 on success; invalid dice or a negative multiplier
// return an error.
func DamageRoll(src dice.Source, p DamageParams) (DamageResult, error) {
	if p.DiceCount < 1 {
		return DamageResult{}, fmt.Errorf("damage roll %dd%d: %w", p.DiceCount, p.DiceSize, dice.ErrInvalidCount)
	}
	if p.KeepHighest < 0 || (p.KeepHighest > 0 && p.KeepHighest >= p.DiceCount) {
		return DamageResult{}, fmt.Errorf("damage roll %dd%dkh%d: keep must be in [0, %d)", p.DiceCount, p.DiceSize, p.KeepHighest, p.DiceCount)
	}
	if p.BehaviorMultiplier < 0 {
		return DamageResult{}, fmt.Errorf("damage roll x%.2f: %w", p.BehaviorMultiplier, ErrInvalidMultiplier)
	}
	mult := p.BehaviorMultiplier
	if mult == 0 {
		mult = 1
	}

	rolls, err := dice.RollMultiple(src, p.DiceCount, p.DiceSize)
	if err != nil {
		return DamageResult{}, fmt.Errorf("damage roll: %w", err)
	}
	base := dice.Sum(dice.KeepHighest(rolls, p.KeepHighest))

	var crit []int
	if p.Critical {
		crit, err = dice.RollMultiple(src, p.DiceCount, p.DiceSize)
		if err != nil {
			return DamageResult{}, fmt.Errorf("critical damage roll: %w", err)
		}
		base += dice.Sum(dice.KeepHighest(crit, p.KeepHighest))
	}

	bonus := p.Bonus()
	dmg := max(1, int(math.Floor(float64(base+bonus)*mult)))

	pool := fmt.Sprintf("%dd%d", p.DiceCount, p.DiceSize)
	if p.KeepHighest > 0 {
		pool += fmt.Sprintf("kh%d", p.KeepHighest)
	}
	breakdown := fmt.Sprintf("%s %v", pool, rolls)
	if crit != nil {
		breakdown += fmt.Sprintf(" + crit %v", crit)
	}
	breakdown += fmt.Sprintf(" %+d", bonus)
	if mult != 1 {
		breakdown += fmt.Sprintf(" x%.2f", mult)
	}
	breakdown += fmt.Sprintf(" = %d", dmg)

	return DamageResult{Damage: dmg, Rolls: rolls, CritRolls: crit, Breakdown: breakdown}, nil
}
