package character

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
)

// baseScore is every attribute's starting value before modifiers.
const baseScore = 10

// keyStatBoost is added to the class key stat.
const keyStatBoost = 2

// applyModifiers starts all stats at 10 and adds mods.
func applyModifiers(mods combat.StatBlock) combat.StatBlock {
	base := combat.StatBlock{
		Strength: baseScore, Dexterity: baseScore, Constitution: baseScore,
		Intelligence: baseScore, Wisdom: baseScore, Charisma: baseScore,
	}
	return base.Add(mods)
}

// applyKeyStatBoost adds +2 to the class key stat.
func applyKeyStatBoost(s combat.StatBlock, key combat.Stat) combat.StatBlock {
	return s.With(key, s.Get(key)+keyStatBoost)
}

// hpGain is the max HP gained per level: at least 1.
func hpGain(perLevel int, stats combat.StatBlock) int {
	return max(1, perLevel+combat.StatModifier(stats.Constitution))
}

// Build constructs a new Character of the given class and level.
// Stats start at 10, mods are applied, then the class key stat receives a
// +2 boost. MaxHP = level * max(1, hpPerLevel + CON modifier);
// MaxMana = max(0, level * manaPerLevel + INT modifier); AC = class base
// + DEX modifier.
//
// Precondition: name must be non-empty; class must be non-nil and valid;
// level in [1, MaxLevel].
// Postcondition: Returns a full-health, full-mana Character with a fresh ID,
// or a non-nil error.
func Build(name string, class *ruleset.Class, level int, mods combat.StatBlock) (*Character, error) {
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if class == nil {
		return nil, errors.New("class must not be nil")
	}
	if level < 1 || level > MaxLevel {
		return nil, fmt.Errorf("level must be in [1, %d], got %d", MaxLevel, level)
	}

	stats := applyKeyStatBoost(applyModifiers(mods), class.Key())

	maxHP := level * hpGain(class.HitPointsPerLevel, stats)
	maxMana := max(0, level*class.ManaPerLevel+combat.StatModifier(stats.Intelligence))

	return &Character{
		ID:                uuid.New().String(),
		Name:              name,
		Class:             class.ID,
		Level:             level,
		Experience:        ExperienceForLevel(level),
		Stats:             stats,
		MaxHP:             maxHP,
		CurrentHP:         maxHP,
		MaxMana:           maxMana,
		Mana:              maxMana,
		AC:                class.ArmorBase() + combat.StatModifier(stats.Dexterity),
		DamageDie:         class.WeaponDie(),
		HitPointsPerLevel: class.HitPointsPerLevel,
		ManaPerLevel:      class.ManaPerLevel,
		EnhancedDice:      class.EnhancedDice,
		Equipped:          append([]string(nil), class.Equipped...),
	}, nil
}

// ExperienceForLevel returns the total experience at which level is reached:
// 500 * level * (level - 1). Level 2 needs 1000, level 3 needs 3000.
func ExperienceForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return 500 * level * (level - 1)
}

// GainExperience adds xp and applies every level-up it earns. Each new level
// raises MaxHP and MaxMana by the per-level growth and restores the same
// amount of current HP and mana.
//
// Precondition: xp >= 0.
// Postcondition: Level <= MaxLevel; returns the number of levels gained.
func (c *Character) GainExperience(xp int) int {
	c.Experience += xp
	gained := 0
	for c.Level < MaxLevel && c.Experience >= ExperienceForLevel(c.Level+1) {
		c.Level++
		gained++
		hp := hpGain(c.HitPointsPerLevel, c.Stats)
		c.MaxHP += hp
		c.CurrentHP += hp
		c.MaxMana += c.ManaPerLevel
		c.Mana += c.ManaPerLevel
	}
	return gained
}
