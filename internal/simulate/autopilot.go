package simulate

import (
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/encounter"
)

// lowHealthPercent is the HP share under which the autopilot defends.
const lowHealthPercent = 30.0

// Choose picks the autopilot's action: defend under 30% HP, a skill when mana
// covers it, otherwise a basic attack.
func Choose(player combat.Combatant, rules encounter.Rules) encounter.Action {
	switch {
	case player.HealthPercent() < lowHealthPercent:
		return encounter.Defend()
	case rules.SkillManaCost > 0 && player.Mana >= rules.SkillManaCost:
		return encounter.Skill()
	default:
		return encounter.Attack()
	}
}
