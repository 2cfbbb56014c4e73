package combat

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// AttackResult is the outcome of one attack roll.
//
// Invariant: Total == Base + Modifier, and Base == max(Rolls).
type AttackResult struct {
	Total      int
	Base       int   // the kept (highest) die
	Rolls      []int // every die rolled, in roll order
	DiceType   int
	DiceCount  int // dice actually rolled
	Modifier   int
	IsCritical bool
	IsFumble   bool
	Breakdown  string
}

// Hits reports whether the attack lands against armor class ac: the total
// meets ac or the roll is a critical. A fumble is only a flag; it misses
// when its total falls short like any other roll.
func (r AttackResult) Hits(ac int) bool {
	return r.IsCritical || r.Total >= ac
}

// AttackRoll rolls the level-scaled standard dice pool and keeps the highest
// die, then adds modifier.
//
// Precondition: src must be non-nil.
// Postcondition: IsCritical iff Base == DiceType; IsFumble iff Base == 1.
func AttackRoll(src dice.Source, modifier, level int) (AttackResult, error) {
	sides := DiceTypeForLevel(level, false)
	count := DiceCountForLevel(level)
	rolls, err := dice.RollMultiple(src, count, sides)
	if err != nil {
		return AttackResult{}, fmt.Errorf("attack roll: %w", err)
	}
	base := dice.Highest(rolls)
	return newAttackResult(rolls, sides, base, modifier, base >= sides, base == 1), nil
}

// EnhancedAttack holds every input of EnhancedAttackRoll.
type EnhancedAttack struct {
	Modifier       int
	Level          int
	Buffs          int // number of active buffs
	Debuffs        int // number of active debuffs
	EquipmentBonus int
	EnhancedDice   bool
	IsPlayer       bool
	Advantage      bool
	ResearchBonus  int
	SpellBonus     int
}

// TotalModifier returns modifier + 2*buffs - debuffs + (2 for players) +
// equipment + floor(level/3) + research + spell.
func (a EnhancedAttack) TotalModifier() int {
	m := a.Modifier + a.Buffs*2 - a.Debuffs + a.EquipmentBonus + floorDiv(a.Level, 3) + a.ResearchBonus + a.SpellBonus
	if a.IsPlayer {
		m += 2
	}
	return m
}

// EnhancedAttackRoll is the full attack roll used for player skills and
// buffed attacks. Players and attackers with advantage roll twice the dice
// pool and keep the best die. Enhanced dice widen the critical range to the
// top two faces. Players never fumble.
//
// Precondition: src must be non-nil.
// Postcondition: IsFumble implies !a.IsPlayer.
func EnhancedAttackRoll(src dice.Source, a EnhancedAttack) (AttackResult, error) {
	sides := DiceTypeForLevel(a.Level, a.EnhancedDice)
	count := DiceCountForLevel(a.Level)
	if a.Advantage || a.IsPlayer {
		count *= 2
	}
	rolls, err := dice.RollMultiple(src, count, sides)
	if err != nil {
		return AttackResult{}, fmt.Errorf("enhanced attack roll: %w", err)
	}
	base := dice.Highest(rolls)
	critAt := sides
	if a.EnhancedDice {
		critAt = sides - 1
	}
	return newAttackResult(rolls, sides, base, a.TotalModifier(), base >= critAt, base == 1 && !a.IsPlayer), nil
}

// EnemyAttackRoll rolls the standard dice pool for an enemy and applies the
// behavior bonus. Berserkers crit on the top two faces. Enemies always fumble
// on a base roll of 1.
//
// Precondition: src must be non-nil; healthPercent is the enemy's own HP in [0, 100].
func EnemyAttackRoll(src dice.Source, modifier, level int, behavior Behavior, healthPercent float64) (AttackResult, error) {
	sides := DiceTypeForLevel(level, false)
	count := DiceCountForLevel(level)
	rolls, err := dice.RollMultiple(src, count, sides)
	if err != nil {
		return AttackResult{}, fmt.Errorf("enemy attack roll: %w", err)
	}
	base := dice.Highest(rolls)
	mod := modifier + behavior.AttackBonus(healthPercent)
	critAt := sides - behavior.CritWidth() + 1
	r := newAttackResult(rolls, sides, base, mod, base >= critAt, base == 1)
	r.Breakdown = behavior.String() + ": " + r.Breakdown
	return r, nil
}

func newAttackResult(rolls []int, sides, base, modifier int, crit, fumble bool) AttackResult {
	total := base + modifier
	var b strings.Builder
	fmt.Fprintf(&b, "%dd%d %v keep %d %+d = %d", len(rolls), sides, rolls, base, modifier, total)
	switch {
	case crit:
		b.WriteString(" (critical)")
	case fumble:
		b.WriteString(" (fumble)")
	}
	return AttackResult{
		Total:      total,
		Base:       base,
		Rolls:      rolls,
		DiceType:   sides,
		DiceCount:  len(rolls),
		Modifier:   modifier,
		IsCritical: crit,
		IsFumble:   fumble,
		Breakdown:  b.String(),
	}
}
