package combat

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// DefaultLuckThreshold is the even-odds luck target.
const DefaultLuckThreshold = 50

// LuckResult is the outcome of a luck roll.
type LuckResult struct {
	Success   bool
	Roll      int
	Target    int
	Breakdown string
}

// PercentileRoll returns a uniform roll in [1, 100].
//
// Precondition: src must be non-nil.
func PercentileRoll(src dice.Source) int {
	return src.Intn(100) + 1
}

// LuckRoll succeeds when a percentile roll is at most threshold + luckBonus.
//
// Precondition: src must be non-nil.
func LuckRoll(src dice.Source, threshold, luckBonus int) LuckResult {
	roll := PercentileRoll(src)
	target := threshold + luckBonus
	ok := roll <= target
	verdict := "unlucky"
	if ok {
		verdict = "lucky"
	}
	return LuckResult{
		Success:   ok,
		Roll:      roll,
		Target:    target,
		Breakdown: fmt.Sprintf("luck d100 %d vs %d: %s", roll, target, verdict),
	}
}
