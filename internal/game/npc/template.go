// Package npc provides enemy template definitions, enemy selection by level,
// and victory reward generation.
package npc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// DefaultAction is used when a template lists no actions.
const DefaultAction = "attack"

// Template defines a reusable enemy archetype loaded from YAML.
type Template struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Difficulty drives both level matching and rewards.
	Difficulty int `yaml:"difficulty"`
	// Level defaults to Difficulty when unset.
	Level        int              `yaml:"level"`
	MaxHP        int              `yaml:"max_hp"`
	AC           int              `yaml:"ac"`
	Stats        combat.StatBlock `yaml:"stats"`
	Damage       string           `yaml:"damage"`
	EnhancedDice bool             `yaml:"enhanced_dice"`
	Behavior     combat.Behavior  `yaml:"behavior"`
	Actions      []string         `yaml:"actions"`
	Image        string           `yaml:"image"`
	// BehaviorHook names a Lua function consulted for the enemy's behavior.
	BehaviorHook string     `yaml:"behavior_hook"`
	Loot         *LootTable `yaml:"loot"`
}

// EffectiveLevel returns Level, or Difficulty when Level is unset.
func (t *Template) EffectiveLevel() int {
	if t.Level > 0 {
		return t.Level
	}
	return t.Difficulty
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Difficulty >= 1,
// MaxHP >= 1, AC >= 0 and Damage parses; otherwise every violation is joined.
func (t *Template) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if t.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if t.Difficulty < 1 {
		errs = append(errs, fmt.Errorf("difficulty must be >= 1, got %d", t.Difficulty))
	}
	if t.Level < 0 {
		errs = append(errs, fmt.Errorf("level must be >= 0, got %d", t.Level))
	}
	if t.MaxHP < 1 {
		errs = append(errs, fmt.Errorf("max_hp must be >= 1, got %d", t.MaxHP))
	}
	if t.AC < 0 {
		errs = append(errs, fmt.Errorf("ac must be >= 0, got %d", t.AC))
	}
	if _, err := dice.Parse(t.Damage); err != nil {
		errs = append(errs, fmt.Errorf("damage: %w", err))
	}
	for i, a := range t.Actions {
		if strings.TrimSpace(a) == "" {
			errs = append(errs, fmt.Errorf("actions[%d] must not be blank", i))
		}
	}
	if t.Loot != nil {
		if err := t.Loot.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("npc template %q: %w", t.ID, errors.Join(errs...))
	}
	return nil
}

// LoadTemplateFromBytes parses a single enemy template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed
// templates sorted by ID.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure, or on a duplicate ID.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	var templates []*Template
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if prev, dup := seen[tmpl.ID]; dup {
			return nil, fmt.Errorf("loading %q: template id %q already defined in %q", path, tmpl.ID, prev)
		}
		seen[tmpl.ID] = path
		templates = append(templates, tmpl)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}
