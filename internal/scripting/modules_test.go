package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/scripting"
	"github.com/cory-johannsen/skirmish/internal/testutil"
)

func runScript(t testing.TB, mgr *scripting.Manager, luaSrc, hook string, args ...lua.LValue) lua.LValue {
	t.Helper()
	dir := writeTempLua(t, "test.lua", luaSrc)
	require.NoError(t, mgr.LoadScope("modtest", dir, 0))
	ret, err := mgr.CallHook("modtest", hook, args...)
	require.NoError(t, err)
	return ret
}

func TestEngineLog_AllLevels(t *testing.T) {
	mgr, logs := newTestManager(t)
	runScript(t, mgr, `
		function do_all_logs()
			engine.log.debug("d")
			engine.log.info("i")
			engine.log.warn("w")
			engine.log.error("e")
		end
	`, "do_all_logs")

	levels := map[string]bool{}
	for _, e := range logs.All() {
		if e.ContextMap()["source"] == "lua" {
			levels[e.Level.String()] = true
		}
	}
	assert.Equal(t, map[string]bool{"debug": true, "info": true, "warn": true, "error": true}, levels)
}

func TestEngineDice_Roll_ReturnsTable(t *testing.T) {
	core, _ := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	roller := dice.NewLoggedRoller(testutil.NewSequenceSource(2, 5), logger)
	mgr := scripting.NewManager(roller, logger)
	defer mgr.Close()

	ret := runScript(t, mgr, `
		function do_roll()
			local r = engine.dice.roll("2d6+1")
			return r.expression .. ":" .. #r.dice .. ":" .. r.dice[1] .. ":" .. r.dice[2] .. ":" .. r.modifier .. ":" .. r.total
		end
	`, "do_roll")
	assert.Equal(t, lua.LString("2d6+1:2:2:5:1:8"), ret)
}

func TestEngineRoll_ReturnsTotal(t *testing.T) {
	mgr, logs := newTestManager(t)
	ret := runScript(t, mgr, `
		function total() return engine.roll("1d4") end
	`, "total")
	n, ok := ret.(lua.LNumber)
	require.True(t, ok, "expected LNumber, got %T", ret)
	assert.GreaterOrEqual(t, int(n), 1)
	assert.LessOrEqual(t, int(n), 4)
	assert.Equal(t, 1, logs.FilterMessage("dice roll").Len(), "lua rolls go through the logged roller")
}

func TestEngineRoll_BadExpressionIsRuntimeError(t *testing.T) {
	mgr, logs := newTestManager(t)
	ret := runScript(t, mgr, `
		function bad() return engine.roll("lots of dice") end
	`, "bad")
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestEnginePercentile_InRange(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "p.lua", `function pct() return engine.percentile() end`)
	require.NoError(t, mgr.LoadScope("p", dir, 0))
	rapid.Check(t, func(rt *rapid.T) {
		_ = rapid.Int().Draw(rt, "tick")
		ret, err := mgr.CallHook("p", "pct")
		require.NoError(rt, err)
		n := int(ret.(lua.LNumber))
		assert.GreaterOrEqual(rt, n, 1)
		assert.LessOrEqual(rt, n, 100)
	})
}

func TestProperty_DiceRoll_TotalEqualsDicePlusModifier(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "inv.lua", `
		function check_invariant(expr)
			local r = engine.dice.roll(expr)
			local sum = 0
			for _, d in ipairs(r.dice) do sum = sum + d end
			return r.total == sum + r.modifier
		end
	`)
	require.NoError(t, mgr.LoadScope("inv", dir, 0))
	rapid.Check(t, func(rt *rapid.T) {
		expr := rapid.SampledFrom([]string{"1d6", "2d6+1", "1d4-1", "3d8+2", "d20"}).Draw(rt, "expr")
		ret, err := mgr.CallHook("inv", "check_invariant", lua.LString(expr))
		require.NoError(rt, err)
		assert.Equal(rt, lua.LTrue, ret, "total must equal dice + modifier for %s", expr)
	})
}
