// Package combat implements the dice-driven rules of the skirmish engine:
// derived values, attack rolls, checks, damage, initiative, and luck.
//
// Every roll function is pure apart from the injected dice.Source, so a
// scripted source reproduces any outcome exactly.
package combat

import (
	"errors"
	"fmt"
	"slices"
)

// Kind distinguishes player combatants from enemies.
type Kind int

const (
	KindPlayer Kind = iota
	KindEnemy
)

// String returns "player" or "enemy".
func (k Kind) String() string {
	if k == KindPlayer {
		return "player"
	}
	return "enemy"
}

// EffectKind separates beneficial effects from harmful ones.
type EffectKind int

const (
	Buff EffectKind = iota
	Debuff
)

// Effect is a timed buff or debuff on a combatant.
// Remaining is measured in rounds; -1 means it never expires.
type Effect struct {
	Name      string
	Kind      EffectKind
	Value     int
	Remaining int
}

// EquipmentBonus is the flat bonus aggregated from equipped items.
type EquipmentBonus struct {
	Attack  int
	Defense int
	Damage  int
	Stats   StatBlock
}

// Combatant is the combat-relevant view of a player character or an enemy.
// It is a value type: callers pass copies and hand mutations back to the
// owning store.
type Combatant struct {
	ID    string
	Name  string
	Kind  Kind
	Level int

	HP      int
	MaxHP   int
	Mana    int
	MaxMana int

	Stats StatBlock
	AC    int

	// DamageDice x DamageDie + DamageBonus is the base damage expression.
	DamageDice  int
	DamageDie   int
	DamageBonus int
	// DamageKeep keeps only the highest dice of each pool; 0 keeps all.
	DamageKeep int

	EnhancedDice  bool
	ResearchBonus int
	SpellBonus    int

	Effects   []Effect
	Equipment EquipmentBonus

	// Enemy-only fields.
	TemplateID   string
	Difficulty   int
	Behavior     Behavior
	Actions      []string
	BehaviorHook string
}

// ErrInvalidCombatant is wrapped by Validate failures.
var ErrInvalidCombatant = errors.New("combat: invalid combatant")

// Validate checks the invariants the roll engines rely on.
//
// Postcondition: Returns nil iff Level >= 1, MaxHP >= 1, 0 <= HP <= MaxHP,
// DamageDie >= 1 and 0 <= DamageKeep < DiceCount().
func (c Combatant) Validate() error {
	switch {
	case c.Level < 1:
		return fmt.Errorf("%w: %q level must be >= 1, got %d", ErrInvalidCombatant, c.Name, c.Level)
	case c.MaxHP < 1:
		return fmt.Errorf("%w: %q max hp must be >= 1, got %d", ErrInvalidCombatant, c.Name, c.MaxHP)
	case c.HP < 0 || c.HP > c.MaxHP:
		return fmt.Errorf("%w: %q hp %d outside [0, %d]", ErrInvalidCombatant, c.Name, c.HP, c.MaxHP)
	case c.DamageDie < 1:
		return fmt.Errorf("%w: %q damage die must be >= 1, got %d", ErrInvalidCombatant, c.Name, c.DamageDie)
	case c.DamageKeep < 0 || (c.DamageKeep > 0 && c.DamageKeep >= c.DiceCount()):
		return fmt.Errorf("%w: %q damage keep %d must be in [0, %d)", ErrInvalidCombatant, c.Name, c.DamageKeep, c.DiceCount())
	}
	return nil
}

// IsPlayer reports whether this combatant is a player character.
func (c Combatant) IsPlayer() bool { return c.Kind == KindPlayer }

// IsDead reports whether HP has reached zero.
func (c Combatant) IsDead() bool { return c.HP <= 0 }

// HealthPercent returns HP as a percentage of MaxHP; 0 if MaxHP <= 0.
func (c Combatant) HealthPercent() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP) * 100
}

// EffectiveStats returns base stats plus equipment stat bonuses.
func (c Combatant) EffectiveStats() StatBlock {
	return c.Stats.Add(c.Equipment.Stats)
}

// EffectiveAC returns armor class including equipment defense.
func (c Combatant) EffectiveAC() int {
	return c.AC + c.Equipment.Defense
}

// DiceCount returns DamageDice, treating an unset count as one die.
func (c Combatant) DiceCount() int {
	if c.DamageDice < 1 {
		return 1
	}
	return c.DamageDice
}

// Buffs returns the number of active buffs.
func (c Combatant) Buffs() int { return c.countEffects(Buff) }

// Debuffs returns the number of active debuffs.
func (c Combatant) Debuffs() int { return c.countEffects(Debuff) }

// BuffBonus returns the summed value of active buffs.
func (c Combatant) BuffBonus() int {
	total := 0
	for _, e := range c.Effects {
		if e.Kind == Buff {
			total += e.Value
		}
	}
	return total
}

func (c Combatant) countEffects(k EffectKind) int {
	n := 0
	for _, e := range c.Effects {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Clone returns a deep copy, so the slices are not shared with c.
func (c Combatant) Clone() Combatant {
	c.Effects = slices.Clone(c.Effects)
	c.Actions = slices.Clone(c.Actions)
	return c
}

// WithHP returns a copy with HP clamped to [0, MaxHP].
func (c Combatant) WithHP(hp int) Combatant {
	c = c.Clone()
	c.HP = min(max(hp, 0), c.MaxHP)
	return c
}

// TickEffects decrements every timed effect by one round and drops the ones
// that reach zero. Permanent effects (Remaining == -1) are untouched.
//
// Postcondition: Returns the names of expired effects; none remain in c.Effects.
func (c *Combatant) TickEffects() []string {
	var expired []string
	kept := c.Effects[:0:0]
	for _, e := range c.Effects {
		if e.Remaining < 0 {
			kept = append(kept, e)
			continue
		}
		e.Remaining--
		if e.Remaining <= 0 {
			expired = append(expired, e.Name)
			continue
		}
		kept = append(kept, e)
	}
	c.Effects = kept
	return expired
}
