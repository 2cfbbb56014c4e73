// Package simulate runs batches of automated encounters against the loaded
// content to exercise the engine end to end.
package simulate

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// Content is every static table a simulation reads.
type Content struct {
	Items      *inventory.Registry
	Enemies    []*npc.Template
	Catalog    npc.Catalog
	Classes    *ruleset.ClassRegistry
	Conditions *condition.Registry
}

// LoadContent reads items, enemies, classes, and conditions from the
// configured directories and checks that every reference resolves.
//
// Postcondition: Returns fully cross-referenced content or a non-nil error.
func LoadContent(cfg config.ContentConfig) (*Content, error) {
	defs, err := inventory.LoadItems(cfg.ItemsDir)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	items, err := inventory.NewRegistryFrom(defs)
	if err != nil {
		return nil, fmt.Errorf("registering items: %w", err)
	}
	enemies, err := npc.LoadTemplates(cfg.EnemiesDir)
	if err != nil {
		return nil, fmt.Errorf("loading enemies: %w", err)
	}
	if len(enemies) == 0 {
		return nil, fmt.Errorf("no enemy templates in %s", cfg.EnemiesDir)
	}
	classes, err := ruleset.LoadClasses(cfg.ClassesDir)
	if err != nil {
		return nil, fmt.Errorf("loading classes: %w", err)
	}

	conditions := condition.NewRegistry()
	if cfg.ConditionsDir != "" {
		if conditions, err = condition.LoadDirectory(cfg.ConditionsDir); err != nil {
			return nil, fmt.Errorf("loading conditions: %w", err)
		}
	}

	c := &Content{
		Items:      items,
		Enemies:    enemies,
		Catalog:    npc.NewCatalog(enemies),
		Classes:    ruleset.NewClassRegistry(classes...),
		Conditions: conditions,
	}
	if err := c.crossCheck(); err != nil {
		return nil, err
	}
	return c, nil
}

// crossCheck reports every unregistered item ID named by loot, a class, or
// the condition an item applies.
func (c *Content) crossCheck() error {
	var errs []error
	missing := func(owner, id string) {
		if _, ok := c.Items.Item(id); !ok {
			errs = append(errs, fmt.Errorf("%s references unknown item %q", owner, id))
		}
	}
	for _, t := range c.Enemies {
		if t.Loot == nil {
			continue
		}
		for _, drop := range t.Loot.Items {
			missing("enemy "+t.ID, drop.ItemID)
		}
	}
	for _, def := range c.Items.AllItems() {
		if def.Effect != inventory.EffectCondition {
			continue
		}
		if _, ok := c.Conditions.Get(def.Condition); !ok {
			errs = append(errs, fmt.Errorf("item %s references unknown condition %q", def.ID, def.Condition))
		}
	}
	for _, id := range c.Classes.IDs() {
		class, _ := c.Classes.Class(id)
		for _, si := range class.StartingItems {
			missing("class "+id, si.Item)
		}
		for _, eq := range class.Equipped {
			missing("class "+id, eq)
		}
	}
	return errors.Join(errs...)
}

// NewBehaviorPicker returns a picker that consults caller's Lua hooks for
// every template naming a behavior_hook and the default rules otherwise.
// A nil caller disables scripting.
func NewBehaviorPicker(c *Content, caller ai.ScriptCaller, logger *zap.Logger) (ai.BehaviorPicker, error) {
	reg := ai.NewRegistry(ai.DefaultBehaviorPicker{})
	if caller == nil {
		return reg, nil
	}
	for _, t := range c.Enemies {
		if t.BehaviorHook == "" {
			continue
		}
		picker := ai.NewScriptedBehaviorPicker(caller, scripting.GlobalScope, nil, logger)
		if err := reg.Register(t.ID, picker); err != nil {
			return nil, err
		}
		logger.Debug("scripted behavior", zap.String("template", t.ID), zap.String("hook", t.BehaviorHook))
	}
	return reg, nil
}
