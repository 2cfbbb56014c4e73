package inventory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

func potion() *inventory.ItemDef {
	return &inventory.ItemDef{
		ID: "potion", Name: "Potion", Kind: inventory.KindConsumable,
		Effect: inventory.EffectHeal, EffectValue: 5, Stackable: true, MaxStack: 3,
	}
}

func sword() *inventory.ItemDef {
	return &inventory.ItemDef{
		ID: "sword", Name: "Sword", Kind: inventory.KindWeapon,
		AttackBonus: 1, DamageBonus: 2, EffectValue: 1,
	}
}

func TestItemDef_Validate_Valid(t *testing.T) {
	require.NoError(t, potion().Validate())
	require.NoError(t, sword().Validate())
	assert.True(t, sword().IsEquipment())
	assert.True(t, potion().IsConsumable())
}

func TestItemDef_Validate_CollectsEveryViolation(t *testing.T) {
	d := &inventory.ItemDef{Kind: "gizmo", Rarity: "mythic", Effect: "teleport"}
	err := d.Validate()
	require.Error(t, err)
	for _, want := range []string{"id must not be empty", "name must not be empty", "kind must be one of", "unknown rarity", "unknown effect"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestItemDef_Validate_EffectRules(t *testing.T) {
	d := potion()
	d.Effect = ""
	assert.ErrorContains(t, d.Validate(), "consumables require an effect")

	d = potion()
	d.EffectValue = 0
	assert.ErrorContains(t, d.Validate(), "effect_value must be >= 1")

	d = sword()
	d.Effect = inventory.EffectHeal
	assert.ErrorContains(t, d.Validate(), "only valid on consumables")

	d = potion()
	d.MaxStack = 0
	assert.ErrorContains(t, d.Validate(), "max_stack")

	d = potion()
	d.Effect = inventory.EffectCondition
	assert.ErrorContains(t, d.Validate(), "condition must be set")
	d.Condition = "blessed"
	assert.NoError(t, d.Validate())

	d = sword()
	d.Effect = inventory.EffectCondition
	d.Condition = "blessed"
	assert.ErrorContains(t, d.Validate(), "only valid on consumables")
}

func TestLoadItems_FromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(`
id: whetstone
name: Whetstone
kind: consumable
effect: attack_bonus
effect_value: 2
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"), []byte(`
id: ring
name: Ring
kind: accessory
stat_bonuses:
  strength: 2
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	items, err := inventory.LoadItems(dir)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "ring", items[0].ID)
	assert.Equal(t, 2, items[0].StatBonuses.Strength)
	assert.Equal(t, inventory.EffectAttackBonus, items[1].Effect)
}

func TestLoadItems_Errors(t *testing.T) {
	_, err := inventory.LoadItems(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: [unterminated"), 0o644))
	_, err = inventory.LoadItems(dir)
	assert.ErrorContains(t, err, "cannot parse")

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "invalid.yaml"), []byte("id: x\nname: X\nkind: consumable\n"), 0o644))
	_, err = inventory.LoadItems(dir)
	assert.ErrorContains(t, err, "invalid item")
}

func TestContent_ItemsLoadAndRegister(t *testing.T) {
	items, err := inventory.LoadItems("../../../content/items")
	require.NoError(t, err, "content/items should load without error")
	require.NotEmpty(t, items)

	reg, err := inventory.NewRegistryFrom(items)
	require.NoError(t, err)
	assert.Equal(t, len(items), reg.Len())

	var heal, boost bool
	for _, d := range items {
		heal = heal || d.Effect == inventory.EffectHeal
		boost = boost || d.Effect == inventory.EffectAttackBonus
	}
	assert.True(t, heal, "content should ship a healing item")
	assert.True(t, boost, "content should ship an attack bonus item")
}

func TestRegistry_LookupAndCollision(t *testing.T) {
	reg := inventory.NewRegistry()
	require.NoError(t, reg.RegisterItem(potion()))
	assert.Error(t, reg.RegisterItem(potion()))

	d, ok := reg.Item("potion")
	require.True(t, ok)
	assert.Equal(t, "Potion", d.Name)
	_, ok = reg.Item("missing")
	assert.False(t, ok)

	_, err := inventory.NewRegistryFrom([]*inventory.ItemDef{sword(), sword()})
	assert.Error(t, err)
}

func TestRegistry_FilterByEffectValue(t *testing.T) {
	reg, err := inventory.NewRegistryFrom([]*inventory.ItemDef{
		potion(), sword(),
		{ID: "elixir", Name: "Elixir", Kind: inventory.KindConsumable, Effect: inventory.EffectHeal, EffectValue: 12},
	})
	require.NoError(t, err)

	ids := func(defs []*inventory.ItemDef) []string {
		var out []string
		for _, d := range defs {
			out = append(out, d.ID)
		}
		return out
	}
	assert.Equal(t, []string{"potion", "sword"}, ids(reg.FilterByEffectValue(7)))
	assert.Equal(t, []string{"sword"}, ids(reg.FilterByEffectValue(1)))
	assert.Empty(t, reg.FilterByEffectValue(0))
	assert.Equal(t, []string{"elixir", "potion", "sword"}, ids(reg.AllItems()))
}

func TestRegistry_Property_FilterRespectsLimit(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 10).Draw(rt, "n")
		reg := inventory.NewRegistry()
		for i := 0; i < n; i++ {
			v := rapid.IntRange(0, 20).Draw(rt, "value")
			require.NoError(rt, reg.RegisterItem(&inventory.ItemDef{ID: string(rune('a' + i)), Name: "x", Kind: inventory.KindJunk, EffectValue: v}))
		}
		limit := rapid.IntRange(0, 20).Draw(rt, "limit")
		got := reg.FilterByEffectValue(limit)
		for _, d := range got {
			assert.LessOrEqual(rt, d.EffectValue, limit)
		}
		count := 0
		for _, d := range reg.AllItems() {
			if d.EffectValue <= limit {
				count++
			}
		}
		assert.Len(rt, got, count)
	})
}

func TestAggregateBonus(t *testing.T) {
	ring := &inventory.ItemDef{
		ID: "ring", Name: "Ring", Kind: inventory.KindAccessory, AttackBonus: 1,
		StatBonuses: combat.StatBlock{Strength: 2},
	}
	armor := &inventory.ItemDef{ID: "armor", Name: "Armor", Kind: inventory.KindArmor, DefenseBonus: 3}
	reg, err := inventory.NewRegistryFrom([]*inventory.ItemDef{sword(), ring, armor, potion()})
	require.NoError(t, err)

	b, err := inventory.AggregateBonus(reg, []string{"sword", "ring", "armor", "potion"})
	require.NoError(t, err)
	assert.Equal(t, combat.EquipmentBonus{Attack: 2, Defense: 3, Damage: 2, Stats: combat.StatBlock{Strength: 2}}, b)

	b, err = inventory.AggregateBonus(reg, nil)
	require.NoError(t, err)
	assert.Equal(t, combat.EquipmentBonus{}, b)

	_, err = inventory.AggregateBonus(reg, []string{"cursed_idol"})
	assert.ErrorContains(t, err, "cursed_idol")
}

func TestBackpack_StackingAndSlots(t *testing.T) {
	bp := inventory.NewBackpack(3)
	require.NoError(t, bp.Add(potion(), 4)) // 3 + 1
	assert.Equal(t, 2, bp.UsedSlots())
	assert.Equal(t, 4, bp.Count("potion"))

	require.NoError(t, bp.Add(potion(), 2)) // tops up the second stack
	assert.Equal(t, 2, bp.UsedSlots())
	assert.Equal(t, 6, bp.Count("potion"))

	require.NoError(t, bp.Add(sword(), 1))
	err := bp.Add(sword(), 1)
	assert.ErrorIs(t, err, inventory.ErrBackpackFull)
	assert.Equal(t, 1, bp.Count("sword"), "failed add leaves contents unchanged")

	assert.ErrorIs(t, bp.Add(potion(), 1), inventory.ErrBackpackFull)
	assert.Equal(t, 6, bp.Count("potion"))

	assert.Error(t, bp.Add(potion(), 0))
}

func TestBackpack_RemoveOne(t *testing.T) {
	bp := inventory.NewBackpack(0)
	require.NoError(t, bp.Add(potion(), 1))
	require.NoError(t, bp.RemoveOne("potion"))
	assert.Equal(t, 0, bp.Count("potion"))
	assert.Equal(t, 0, bp.UsedSlots(), "emptied stacks free their slot")
	assert.ErrorIs(t, bp.RemoveOne("potion"), inventory.ErrItemNotFound)
}

func TestBackpack_CloneIsIndependent(t *testing.T) {
	bp := inventory.NewBackpack(0)
	require.NoError(t, bp.Add(potion(), 2))
	cp := bp.Clone()
	require.NoError(t, cp.RemoveOne("potion"))
	assert.Equal(t, 2, bp.Count("potion"))
	assert.Equal(t, 1, cp.Count("potion"))

	items := bp.Items()
	items[0].Quantity = 99
	assert.Equal(t, 2, bp.Count("potion"))
	assert.NotEmpty(t, items[0].InstanceID)
}

func TestBackpack_Property_AddThenRemoveRestoresCount(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bp := inventory.NewBackpack(0)
		def := potion()
		def.MaxStack = rapid.IntRange(1, 5).Draw(rt, "max_stack")
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		require.NoError(rt, bp.Add(def, n))
		assert.Equal(rt, n, bp.Count(def.ID))
		for i := 0; i < n; i++ {
			require.NoError(rt, bp.RemoveOne(def.ID))
		}
		assert.Equal(rt, 0, bp.UsedSlots())
	})
}
