package ai

import (
	"errors"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// ErrNoActions is returned when an enemy has no actions to choose from.
var ErrNoActions = errors.New("ai: no available actions")

// rotationRound is the last round in which the selector still picks at random.
const rotationRound = 5

// SelectEnemyAction picks an action identifier. The first matching rule wins:
//  1. enemy health below 25%: an action containing "ultimate" or "desperate";
//  2. threat high or critical: an action containing "aggressive" or "attack";
//  3. round past 5: actions[round % len(actions)];
//  4. otherwise a uniformly random action.
//
// Rules 1 and 2 fall back to the first action when nothing matches.
// A non-positive enemyMaxHealth counts as 0% health.
//
// Precondition: src must be non-nil.
// Postcondition: Returns an element of actions, or ErrNoActions when empty.
func SelectEnemyAction(src dice.Source, actions []string, enemyHealth, enemyMaxHealth int, threat ThreatLevel, round int) (string, error) {
	if len(actions) == 0 {
		return "", ErrNoActions
	}
	pct := 0.0
	if enemyMaxHealth > 0 {
		pct = float64(enemyHealth) / float64(enemyMaxHealth) * 100
	}
	switch {
	case pct < 25:
		return firstContaining(actions, "ultimate", "desperate"), nil
	case threat.Pressing():
		return firstContaining(actions, "aggressive", "attack"), nil
	case round > rotationRound:
		return actions[round%len(actions)], nil
	default:
		return actions[src.Intn(len(actions))], nil
	}
}

// firstContaining returns the first action whose id contains any of keys,
// or actions[0] when none does.
func firstContaining(actions []string, keys ...string) string {
	for _, a := range actions {
		id := strings.ToLower(a)
		for _, k := range keys {
			if strings.Contains(id, k) {
				return a
			}
		}
	}
	return actions[0]
}
