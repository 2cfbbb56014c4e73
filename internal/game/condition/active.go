package condition

import (
	"slices"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Stacks returns how many effects named after def are in effects.
func Stacks(effects []combat.Effect, def *Def) int {
	n := 0
	for _, e := range effects {
		if e.Name == def.Name {
			n++
		}
	}
	return n
}

// Apply places def on a combatant whose current effects are effects.
// Below MaxStacks a new stack is appended; otherwise every existing stack's
// Remaining is raised to def.Duration. A permanent stack stays permanent.
//
// Precondition: def must not be nil and must be valid.
// Postcondition: Returns a new slice; effects is not modified.
func Apply(effects []combat.Effect, def *Def) []combat.Effect {
	out := slices.Clone(effects)
	limit := max(def.MaxStacks, 1)
	if Stacks(out, def) < limit {
		return append(out, combat.Effect{
			Name:      def.Name,
			Kind:      def.EffectKind(),
			Value:     def.Value,
			Remaining: def.Duration,
		})
	}
	for i := range out {
		if out[i].Name != def.Name {
			continue
		}
		out[i].Remaining = refreshed(out[i].Remaining, def.Duration)
	}
	return out
}

func refreshed(current, duration int) int {
	if current == Permanent || duration == Permanent {
		return Permanent
	}
	return max(current, duration)
}
