package combat

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// CheckResult is the outcome of a saving throw or skill check.
//
// Invariant: Total == Die + Modifier; Success iff Total >= Difficulty.
type CheckResult struct {
	Success    bool
	Die        int
	Rolls      []int
	Modifier   int
	Total      int
	Difficulty int
	Breakdown  string
}

// SavingThrowParams holds the inputs of SavingThrow.
type SavingThrowParams struct {
	Stat          int
	Difficulty    int
	Level         int
	Advantage     bool
	ResearchBonus int
	BuffBonus     int
}

// SavingThrow rolls a d20 (two d20 keeping the best with advantage) plus
// StatModifier(stat) + floor(level/4) + research + buff against difficulty.
//
// Precondition: src must be non-nil.
func SavingThrow(src dice.Source, p SavingThrowParams) (CheckResult, error) {
	count := 1
	if p.Advantage {
		count = 2
	}
	mod := StatModifier(p.Stat) + floorDiv(p.Level, 4) + p.ResearchBonus + p.BuffBonus
	return check(src, "saving throw", count, mod, p.Difficulty)
}

// SkillCheck rolls a single d20 plus StatModifier(stat), the proficiency bonus
// ceil(level/4)+1 when proficient, and research against difficulty.
//
// Precondition: src must be non-nil.
func SkillCheck(src dice.Source, stat, difficulty int, proficient bool, level, researchBonus int) (CheckResult, error) {
	mod := StatModifier(stat) + researchBonus
	if proficient {
		mod += ceilDiv(level, 4) + 1
	}
	return check(src, "skill check", 1, mod, difficulty)
}

func check(src dice.Source, label string, count, mod, difficulty int) (CheckResult, error) {
	rolls, err := dice.RollMultiple(src, count, 20)
	if err != nil {
		return CheckResult{}, fmt.Errorf("%s: %w", label, err)
	}
	die := dice.Highest(rolls)
	total := die + mod
	ok := total >= difficulty
	verdict := "fail"
	if ok {
		verdict = "success"
	}
	return CheckResult{
		Success:    ok,
		Die:        die,
		Rolls:      rolls,
		Modifier:   mod,
		Total:      total,
		Difficulty: difficulty,
		Breakdown:  fmt.Sprintf("%s d20 %v %+d = %d vs DC %d: %s", label, rolls, mod, total, difficulty, verdict),
	}, nil
}
