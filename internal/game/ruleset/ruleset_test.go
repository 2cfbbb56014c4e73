package ruleset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadClasses_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "paladin.yaml"), `
id: paladin
name: "Paladin"
description: "Armored and stubborn."
key_stat: charisma
hit_points_per_level: 9
mana_per_level: 4
base_ac: 13
starting_items:
  - item: healing_potion
    quantity: 2
equipped: [iron_sword]
`)
	writeFile(t, filepath.Join(dir, "README.md"), "ignored")

	classes, err := ruleset.LoadClasses(dir)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	c := classes[0]
	assert.Equal(t, "paladin", c.ID)
	assert.Equal(t, combat.Charisma, c.Key())
	assert.Equal(t, 9, c.HitPointsPerLevel)
	assert.Equal(t, 4, c.ManaPerLevel)
	assert.Equal(t, 13, c.ArmorBase())
	assert.Equal(t, []ruleset.StartingItem{{Item: "healing_potion", Quantity: 2}}, c.StartingItems)
	assert.Equal(t, []string{"iron_sword"}, c.Equipped)
}

func TestLoadClasses_InvalidClassRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.yml"), "id: bad\nname: Bad\nkey_stat: luck\nhit_points_per_level: 0\n")
	_, err := ruleset.LoadClasses(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key_stat")
	assert.Contains(t, err.Error(), "hit_points_per_level")
}

func TestLoadClasses_MissingDir(t *testing.T) {
	_, err := ruleset.LoadClasses(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestClass_ArmorBaseDefault(t *testing.T) {
	assert.Equal(t, 10, (&ruleset.Class{}).ArmorBase())
}

func TestClass_Validate_StartingItems(t *testing.T) {
	c := &ruleset.Class{ID: "x", Name: "X", KeyStat: "wisdom", HitPointsPerLevel: 5,
		StartingItems: []ruleset.StartingItem{{Item: "", Quantity: 0}}}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starting_items[0] must name an item")
	assert.Contains(t, err.Error(), "starting_items[0] quantity")
}

func TestContent_Classes(t *testing.T) {
	classes, err := ruleset.LoadClasses("../../../content/classes")
	require.NoError(t, err)
	reg := ruleset.NewClassRegistry(classes...)
	assert.Equal(t, []string{"fighter", "mage", "rogue"}, reg.IDs())

	mage, ok := reg.Class("mage")
	require.True(t, ok)
	assert.True(t, mage.EnhancedDice)
	assert.Equal(t, combat.Intelligence, mage.Key())
}

func TestClassRegistry(t *testing.T) {
	reg := ruleset.NewClassRegistry()
	_, ok := reg.Class("fighter")
	assert.False(t, ok)

	reg.Register(&ruleset.Class{ID: "fighter", Name: "Old"})
	reg.Register(&ruleset.Class{ID: "fighter", Name: "New"})
	c, ok := reg.Class("fighter")
	require.True(t, ok)
	assert.Equal(t, "New", c.Name)

	assert.Panics(t, func() { reg.Register(nil) })
	assert.Panics(t, func() { reg.Register(&ruleset.Class{}) })
}
