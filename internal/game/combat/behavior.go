package combat

import (
	"fmt"
	"math"
	"strings"
)

// Behavior is an enemy attack style. It shifts the enemy attack modifier and,
// for berserkers, widens the critical range.
type Behavior int

const (
	Normal Behavior = iota
	Aggressive
	Defensive
	Desperate
	Berserker
)

var behaviorNames = [...]string{"normal", "aggressive", "defensive", "desperate", "berserker"}

// Behaviors lists every behavior in declaration order.
func Behaviors() []Behavior {
	return []Behavior{Normal, Aggressive, Defensive, Desperate, Berserker}
}

// String returns the lower-case behavior name.
func (b Behavior) String() string {
	if b < 0 || int(b) >= len(behaviorNames) {
		return "unknown"
	}
	return behaviorNames[b]
}

// ParseBehavior maps a name to a Behavior. The empty string is Normal.
//
// Postcondition: Returns an error for unrecognised names.
func ParseBehavior(name string) (Behavior, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Normal, nil
	}
	for i, s := range behaviorNames {
		if s == n {
			return Behavior(i), nil
		}
	}
	return Normal, fmt.Errorf("combat: unknown behavior %q", name)
}

// UnmarshalYAML lets content files name behaviors as strings.
func (b *Behavior) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseBehavior(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// AttackBonus returns the modifier a behavior adds to an enemy attack.
// Desperate enemies gain floor((100 - healthPercent) / 20).
func (b Behavior) AttackBonus(healthPercent float64) int {
	switch b {
	case Aggressive:
		return 2
	case Defensive:
		return -1
	case Desperate:
		return int(math.Floor((100 - healthPercent) / 20))
	case Berserker:
		return 3
	default:
		return 0
	}
}

// CritWidth returns how many top faces count as a critical: 2 for berserkers,
// 1 otherwise.
func (b Behavior) CritWidth() int {
	if b == Berserker {
		return 2
	}
	return 1
}
