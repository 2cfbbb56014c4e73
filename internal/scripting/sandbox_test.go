package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/scripting"
)

func TestNewSandboxedState_OnlySafeGlobals(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	require.NotNil(t, L)
	defer L.Close()

	blocked := append([]string{"os", "io", "debug", "package"}, scripting.BlockedGlobals...)
	for _, name := range blocked {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "%s should not be reachable", name)
	}
	for _, name := range []string{"math", "string", "table", "pairs", "tostring"} {
		assert.NotEqual(t, lua.LNil, L.GetGlobal(name), "%s should be available", name)
	}
}

func TestNewSandboxedState_BehaviorHelpersWork(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	defer L.Close()
	require.NoError(t, L.DoString(`
		local pct = math.floor(75 / 2)
		local mood = string.lower("DESPERATE")
		local moves = {}
		table.insert(moves, "bite")
		result = mood .. ":" .. pct .. ":" .. #moves
	`))
	assert.Equal(t, "desperate:37:1", L.GetGlobal("result").String())
}

func TestNewSandboxedState_RunawayLoopStops(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 50).Draw(rt, "limit")
		L := scripting.NewSandboxedState(limit)
		defer L.Close()
		if err := L.DoString(`while true do end`); err == nil {
			rt.Fatalf("loop ran to completion with limit=%d", limit)
		}
	})
}
