// Package ruleset loads the player class definitions used to build
// characters.
package ruleset

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// StartingItem is an item stack a new character of the class receives.
type StartingItem struct {
	Item     string `yaml:"item"`
	Quantity int    `yaml:"quantity"`
}

// Class defines a playable character class.
//
// Precondition: ID, Name, and KeyStat must be non-empty after loading.
type Class struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// KeyStat receives the class boost at creation.
	KeyStat           string `yaml:"key_stat"`
	HitPointsPerLevel int    `yaml:"hit_points_per_level"`
	ManaPerLevel      int    `yaml:"mana_per_level"`
	// DamageDie is the weapon die size; 6 when unset.
	DamageDie int `yaml:"damage_die"`
	// BaseAC defaults to 10 when unset.
	BaseAC        int            `yaml:"base_ac"`
	EnhancedDice  bool           `yaml:"enhanced_dice"`
	StartingItems []StartingItem `yaml:"starting_items"`
	// Equipped lists item IDs the character starts wearing.
	Equipped []string `yaml:"equipped"`
}

// Key returns the parsed KeyStat.
//
// Precondition: c must have passed Validate.
func (c *Class) Key() combat.Stat {
	st, _ := combat.ParseStat(c.KeyStat)
	return st
}

// ArmorBase returns BaseAC, or 10 when unset.
func (c *Class) ArmorBase() int {
	if c.BaseAC > 0 {
		return c.BaseAC
	}
	return 10
}

// WeaponDie returns DamageDie, or 6 when unset.
func (c *Class) WeaponDie() int {
	if c.DamageDie > 0 {
		return c.DamageDie
	}
	return 6
}

// Validate checks the class invariants.
//
// Postcondition: Returns nil iff all fields are usable; otherwise every
// violation is joined.
func (c *Class) Validate() error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if _, err := combat.ParseStat(c.KeyStat); err != nil {
		errs = append(errs, fmt.Errorf("key_stat: %w", err))
	}
	if c.HitPointsPerLevel < 1 {
		errs = append(errs, fmt.Errorf("hit_points_per_level must be >= 1, got %d", c.HitPointsPerLevel))
	}
	if c.DamageDie < 0 {
		errs = append(errs, fmt.Errorf("damage_die must be >= 0, got %d", c.DamageDie))
	}
	if c.ManaPerLevel < 0 {
		errs = append(errs, fmt.Errorf("mana_per_level must be >= 0, got %d", c.ManaPerLevel))
	}
	for i, si := range c.StartingItems {
		if si.Item == "" {
			errs = append(errs, fmt.Errorf("starting_items[%d] must name an item", i))
		}
		if si.Quantity < 1 {
			errs = append(errs, fmt.Errorf("starting_items[%d] quantity must be >= 1, got %d", i, si.Quantity))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("class %q: %w", c.ID, errors.Join(errs...))
	}
	return nil
}

// LoadClasses reads all .yaml files in dir and parses each as a Class.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all validated classes sorted by ID, or a non-nil error.
func LoadClasses(dir string) ([]*Class, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	classes := make([]*Class, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var c Class
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parsing class file %s: %w", path, err)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		classes = append(classes, &c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}
