// Package condition loads the named buffs and debuffs that items and scripts
// can place on a combatant.
package condition

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Permanent is the Duration of a condition that never wears off.
const Permanent = -1

// Def is the static definition of a condition, loaded from YAML.
type Def struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Kind        string `yaml:"kind"` // "buff" | "debuff"
	Value       int    `yaml:"value"`
	Duration    int    `yaml:"duration"`   // rounds; -1 = permanent
	MaxStacks   int    `yaml:"max_stacks"` // 0 = unstackable
}

// EffectKind maps Kind onto the combat effect kind.
func (d *Def) EffectKind() combat.EffectKind {
	if d.Kind == "debuff" {
		return combat.Debuff
	}
	return combat.Buff
}

// Validate reports every invalid field.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if d.Kind != "buff" && d.Kind != "debuff" {
		errs = append(errs, fmt.Errorf("kind must be one of [buff, debuff], got %q", d.Kind))
	}
	if d.Duration == 0 || d.Duration < Permanent {
		errs = append(errs, fmt.Errorf("duration must be >= 1 or -1, got %d", d.Duration))
	}
	if d.MaxStacks < 0 {
		errs = append(errs, fmt.Errorf("max_stacks must be >= 0, got %d", d.MaxStacks))
	}
	return errors.Join(errs...)
}

// Registry holds all known Defs keyed by ID.
// It is read-only once loaded and safe to share.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register validates def and adds it to the registry.
//
// Precondition: def must not be nil.
// Postcondition: Returns an error if def is invalid or its ID is taken.
func (r *Registry) Register(def *Def) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("condition %q: %w", def.ID, err)
	}
	if _, ok := r.defs[def.ID]; ok {
		return fmt.Errorf("condition %q already registered", def.ID)
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns every registered Def ordered by ID.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Def,
// and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := reg.Register(&def); err != nil {
			return nil, fmt.Errorf("%q: %w", path, err)
		}
	}
	return reg, nil
}
