package encounter

import (
	"time"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
)

// Rules are the tunable numbers of an encounter.
type Rules struct {
	// EnemyThinkDelay is the pause before a scheduled enemy turn.
	EnemyThinkDelay       time.Duration
	PlayerInitiativeBonus int
	DefendHeal            int
	SkillManaCost         int
	// BehaviorDamage scales enemy damage by behavior name; missing entries are 1.
	BehaviorDamage map[string]float64
	Rewards        npc.RewardRules
}

// DefaultRules returns a one second think delay, +2 player initiative,
// a 5 HP defend, a 5 mana skill, and the default reward rules.
func DefaultRules() Rules {
	return Rules{
		EnemyThinkDelay:       time.Second,
		PlayerInitiativeBonus: 2,
		DefendHeal:            5,
		SkillManaCost:         5,
		BehaviorDamage: map[string]float64{
			combat.Aggressive.String(): 1.25,
			combat.Berserker.String():  1.5,
			combat.Defensive.String():  0.75,
		},
		Rewards: npc.DefaultRewardRules(),
	}
}

func (r Rules) damageMultiplier(b combat.Behavior) float64 {
	if m, ok := r.BehaviorDamage[b.String()]; ok && m > 0 {
		return m
	}
	return 1
}
