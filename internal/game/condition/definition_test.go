package condition_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
)

func TestRegistry_Get_Found(t *testing.T) {
	reg := condition.NewRegistry()
	def := blessed()
	require.NoError(t, reg.Register(def))
	got, ok := reg.Get("blessed")
	require.True(t, ok)
	assert.Same(t, def, got)
}

func TestRegistry_Get_NotFound(t *testing.T) {
	_, ok := condition.NewRegistry().Get("nonexistent")
	assert.False(t, ok)
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	reg := condition.NewRegistry()
	require.NoError(t, reg.Register(blessed()))
	assert.ErrorContains(t, reg.Register(blessed()), "already registered")
}

func TestRegistry_Register_Invalid(t *testing.T) {
	err := condition.NewRegistry().Register(&condition.Def{Kind: "curse", Duration: 0, MaxStacks: -1})
	require.Error(t, err)
	for _, want := range []string{"id must not be empty", "name must not be empty", "kind must be one of", "duration must be", "max_stacks"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestRegistry_All_SortedCopy(t *testing.T) {
	reg := condition.NewRegistry()
	require.NoError(t, reg.Register(focused()))
	require.NoError(t, reg.Register(blessed()))
	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "blessed", all[0].ID)
	assert.Equal(t, "focused", all[1].ID)
	all[0] = nil
	assert.NotNil(t, reg.All()[0])
}

func TestDef_EffectKind(t *testing.T) {
	assert.Equal(t, combat.Buff, blessed().EffectKind())
	assert.Equal(t, combat.Debuff, (&condition.Def{Kind: "debuff"}).EffectKind())
}

func TestLoadDirectory_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weakened.yaml"), []byte(`
id: weakened
name: Weakened
description: "Your blows land softly."
kind: debuff
value: 2
duration: 2
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	reg, err := condition.LoadDirectory(dir)
	require.NoError(t, err)
	def, ok := reg.Get("weakened")
	require.True(t, ok)
	assert.Equal(t, "Weakened", def.Name)
	assert.Equal(t, combat.Debuff, def.EffectKind())
	assert.Equal(t, 2, def.Duration)
	assert.Zero(t, def.MaxStacks)
	assert.Len(t, reg.All(), 1)
}

func TestLoadDirectory_UnknownField(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(`
id: bad
name: Bad
kind: buff
duration: 1
speed_penalty: 3
`), 0644))
	_, err := condition.LoadDirectory(dir)
	assert.ErrorContains(t, err, "parsing")
}

func TestLoadDirectory_InvalidDef(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: bad\nname: Bad\nkind: buff\nduration: 0\n"), 0644))
	_, err := condition.LoadDirectory(dir)
	assert.ErrorContains(t, err, "duration must be")
}

func TestLoadDirectory_MissingDir(t *testing.T) {
	_, err := condition.LoadDirectory("/nonexistent/conditions")
	assert.Error(t, err)
}

func TestLoadDirectory_RepoContent(t *testing.T) {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	reg, err := condition.LoadDirectory(filepath.Join(filepath.Dir(file), "..", "..", "..", "content", "conditions"))
	require.NoError(t, err)
	for _, id := range []string{"blessed", "focused", "shielded"} {
		_, ok := reg.Get(id)
		assert.True(t, ok, "missing condition %q", id)
	}
}
