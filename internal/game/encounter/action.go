package encounter

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// ActionKind is one of the four player turn options.
type ActionKind int

const (
	ActionAttack ActionKind = iota
	ActionDefend
	ActionSkill
	ActionItem
)

var actionNames = [...]string{"attack", "defend", "skill", "item"}

// String returns the lower-case action name.
func (k ActionKind) String() string {
	if k < 0 || int(k) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[k]
}

// ParseActionKind maps a name to an ActionKind, case-insensitively.
func ParseActionKind(s string) (ActionKind, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for i, name := range actionNames {
		if name == n {
			return ActionKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Action is a player's choice for one turn. ItemID is only read for
// ActionItem.
type Action struct {
	Kind   ActionKind
	ItemID string
}

// Attack returns a basic attack action.
func Attack() Action { return Action{Kind: ActionAttack} }

// Defend returns a defend action.
func Defend() Action { return Action{Kind: ActionDefend} }

// Skill returns a skill action.
func Skill() Action { return Action{Kind: ActionSkill} }

// UseItem returns an item action consuming itemID.
func UseItem(itemID string) Action { return Action{Kind: ActionItem, ItemID: itemID} }

// Outcome describes one resolved turn.
type Outcome struct {
	Kind ActionKind
	// EnemyAction and Behavior are set for enemy turns.
	EnemyAction string
	Behavior    combat.Behavior
	Attack      *combat.AttackResult
	Damage      *combat.DamageResult
	Hit         bool
	Healed      int
	// State is the encounter state after the turn.
	State State
	Lines []string
}
