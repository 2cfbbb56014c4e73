// Package inventory defines item content, the item registry, the player's
// bag, and the equipment bonuses items grant in combat.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Kind constants for ItemDef.Kind.
const (
	KindWeapon     = "weapon"
	KindArmor      = "armor"
	KindAccessory  = "accessory"
	KindConsumable = "consumable"
	KindJunk       = "junk"
)

var validKinds = map[string]bool{
	KindWeapon:     true,
	KindArmor:      true,
	KindAccessory:  true,
	KindConsumable: true,
	KindJunk:       true,
}

// Rarity constants for ItemDef.Rarity.
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

var validRarities = map[string]bool{
	RarityCommon:    true,
	RarityUncommon:  true,
	RarityRare:      true,
	RarityEpic:      true,
	RarityLegendary: true,
}

// Effect constants for consumable items.
const (
	// EffectHeal restores EffectValue hit points.
	EffectHeal = "heal"
	// EffectAttackBonus adds EffectValue to the next attack roll.
	EffectAttackBonus = "attack_bonus"
	// EffectCondition applies the named Condition to the user.
	EffectCondition = "condition"
)

// ItemDef defines the static properties of an item loaded from YAML.
//
// EffectValue doubles as the loot tier: rewards draw items whose EffectValue
// does not exceed the defeated enemy's difficulty plus a slack.
type ItemDef struct {
	ID           string           `yaml:"id"`
	Name         string           `yaml:"name"`
	Description  string           `yaml:"description"`
	Kind         string           `yaml:"kind"`
	Rarity       string           `yaml:"rarity"`
	Effect       string           `yaml:"effect"`
	EffectValue  int              `yaml:"effect_value"`
	Condition    string           `yaml:"condition"`
	AttackBonus  int              `yaml:"attack_bonus"`
	DefenseBonus int              `yaml:"defense_bonus"`
	DamageBonus  int              `yaml:"damage_bonus"`
	StatBonuses  combat.StatBlock `yaml:"stat_bonuses"`
	Stackable    bool             `yaml:"stackable"`
	MaxStack     int              `yaml:"max_stack"`
	Value        int              `yaml:"value"`
}

// IsEquipment reports whether the item grants passive bonuses when equipped.
func (d *ItemDef) IsEquipment() bool {
	return d.Kind == KindWeapon || d.Kind == KindArmor || d.Kind == KindAccessory
}

// IsConsumable reports whether the item is used up in combat.
func (d *ItemDef) IsConsumable() bool {
	return d.Kind == KindConsumable
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid; otherwise every
// violation is joined into the error.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("kind must be one of weapon, armor, accessory, consumable, junk; got %q", d.Kind))
	}
	if d.Rarity != "" && !validRarities[d.Rarity] {
		errs = append(errs, fmt.Errorf("unknown rarity %q", d.Rarity))
	}
	switch d.Effect {
	case "":
		if d.Kind == KindConsumable {
			errs = append(errs, errors.New("consumables require an effect"))
		}
	case EffectHeal, EffectAttackBonus:
		if d.Kind != KindConsumable {
			errs = append(errs, fmt.Errorf("effect %q is only valid on consumables", d.Effect))
		}
		if d.EffectValue < 1 {
			errs = append(errs, errors.New("effect_value must be >= 1 when an effect is set"))
		}
	case EffectCondition:
		if d.Kind != KindConsumable {
			errs = append(errs, fmt.Errorf("effect %q is only valid on consumables", d.Effect))
		}
		if d.Condition == "" {
			errs = append(errs, errors.New("condition must be set for a condition effect"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown effect %q", d.Effect))
	}
	if d.EffectValue < 0 {
		errs = append(errs, errors.New("effect_value must be >= 0"))
	}
	if d.Stackable && d.MaxStack < 1 {
		errs = append(errs, errors.New("max_stack must be >= 1 for stackable items"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q validation failed: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// LoadItems reads all *.yaml and *.yml files from dir, parses each as an
// ItemDef, validates it, and returns them sorted by ID.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadItems(dir string) ([]*ItemDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	var items []*ItemDef
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		var d ItemDef
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
		}
		items = append(items, &d)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}
