package npc

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

// ItemDrop is a template-specific item an enemy may drop on death, on top of
// the shared reward roll.
type ItemDrop struct {
	ItemID string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
	MinQty int     `yaml:"min_qty"`
	MaxQty int     `yaml:"max_qty"`
}

// LootTable lists a template's bonus drops.
type LootTable struct {
	Items []ItemDrop `yaml:"items"`
}

// Validate checks that the loot table satisfies its invariants. An empty
// table is valid.
func (lt *LootTable) Validate() error {
	var errs []error
	for i, item := range lt.Items {
		if item.ItemID == "" {
			errs = append(errs, fmt.Errorf("loot item[%d] must have a non-empty item id", i))
		}
		if item.Chance <= 0 || item.Chance > 1.0 {
			errs = append(errs, fmt.Errorf("loot item[%d] chance must be in (0, 1.0], got %g", i, item.Chance))
		}
		if item.MinQty < 1 {
			errs = append(errs, fmt.Errorf("loot item[%d] min_qty must be >= 1, got %d", i, item.MinQty))
		}
		if item.MinQty > item.MaxQty {
			errs = append(errs, fmt.Errorf("loot item[%d] min_qty (%d) must be <= max_qty (%d)", i, item.MinQty, item.MaxQty))
		}
	}
	return errors.Join(errs...)
}

// LootItem is a single dropped stack.
type LootItem struct {
	ItemDefID  string
	InstanceID string
	Quantity   int
}

// Rewards is everything a victory grants the player.
type Rewards struct {
	Experience int
	Gold       int
	Items      []LootItem
}

// RewardRules parameterizes GenerateRewards.
type RewardRules struct {
	ExperiencePerDifficulty int
	GoldMin                 int
	GoldMax                 int
	// LootChance is the luck threshold (percent) for the shared item drop.
	LootChance int
	// LootEffectSlack widens the eligible item tier above the difficulty.
	LootEffectSlack int
}

// DefaultRewardRules returns 100 experience per difficulty, 10 to 59 gold,
// a 30% item chance, and items up to difficulty + 2.
func DefaultRewardRules() RewardRules {
	return RewardRules{
		ExperiencePerDifficulty: 100,
		GoldMin:                 10,
		GoldMax:                 59,
		LootChance:              30,
		LootEffectSlack:         2,
	}
}

// GenerateRewards rolls victory rewards for defeating an enemy of the given
// difficulty. Randomness is drawn in a fixed order: gold, the luck roll, the
// item pick, then the template's bonus drops.
//
// Precondition: src must be non-nil; rules.GoldMax >= rules.GoldMin; reg and
// bonus may be nil.
// Postcondition: Experience == difficulty * ExperiencePerDifficulty;
// Gold in [GoldMin, GoldMax]; the shared drop, when present, has
// EffectValue <= difficulty + LootEffectSlack.
func GenerateRewards(src dice.Source, difficulty int, reg *inventory.Registry, rules RewardRules, bonus *LootTable) Rewards {
	r := Rewards{
		Experience: difficulty * rules.ExperiencePerDifficulty,
		Gold:       rules.GoldMin + src.Intn(rules.GoldMax-rules.GoldMin+1),
	}

	if combat.LuckRoll(src, rules.LootChance, 0).Success && reg != nil {
		pool := reg.FilterByEffectValue(difficulty + rules.LootEffectSlack)
		if len(pool) > 0 {
			def := pool[src.Intn(len(pool))]
			r.Items = append(r.Items, LootItem{ItemDefID: def.ID, InstanceID: uuid.New().String(), Quantity: 1})
		}
	}

	if bonus != nil {
		r.Items = append(r.Items, GenerateLoot(src, *bonus)...)
	}
	return r
}

// GenerateLoot rolls each drop in lt.
//
// Precondition: lt must have passed Validate.
// Postcondition: each item's Quantity is in [MinQty, MaxQty] for drops that
// pass their chance roll.
func GenerateLoot(src dice.Source, lt LootTable) []LootItem {
	var out []LootItem
	for _, item := range lt.Items {
		if !combat.LuckRoll(src, int(math.Round(item.Chance*100)), 0).Success {
			continue
		}
		qty := item.MinQty
		if spread := item.MaxQty - item.MinQty; spread > 0 {
			qty += src.Intn(spread + 1)
		}
		out = append(out, LootItem{
			ItemDefID:  item.ItemID,
			InstanceID: uuid.New().String(),
			Quantity:   qty,
		})
	}
	return out
}
