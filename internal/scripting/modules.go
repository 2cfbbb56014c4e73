package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the engine global into L:
//
//	engine.log.debug/info/warn/error(msg)
//	engine.dice.roll(expr)  -> {total, dice, modifier, expression}
//	engine.roll(expr)       -> total
//	engine.percentile()     -> integer in [1, 100]
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "roll", L.NewFunction(m.luaRollTotal))
	L.SetField(engine, "percentile", L.NewFunction(m.luaPercentile))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, logFn := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			logFn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(m.luaRollTable))
	return mod
}

func (m *Manager) luaRollTable(L *lua.LState) int {
	expr := L.CheckString(1)
	res, err := m.roller.RollExpr(expr)
	if err != nil {
		L.RaiseError("engine.dice.roll(%q): %s", expr, err.Error())
		return 0
	}
	t := L.NewTable()
	L.SetField(t, "total", lua.LNumber(res.Total()))
	L.SetField(t, "modifier", lua.LNumber(res.Modifier))
	L.SetField(t, "expression", lua.LString(res.Expression))
	faces := L.CreateTable(len(res.Dice), 0)
	for _, d := range res.Dice {
		faces.Append(lua.LNumber(d))
	}
	L.SetField(t, "dice", faces)
	L.Push(t)
	return 1
}

func (m *Manager) luaRollTotal(L *lua.LState) int {
	expr := L.CheckString(1)
	res, err := m.roller.RollExpr(expr)
	if err != nil {
		L.RaiseError("engine.roll(%q): %s", expr, err.Error())
		return 0
	}
	L.Push(lua.LNumber(res.Total()))
	return 1
}

func (m *Manager) luaPercentile(L *lua.LState) int {
	L.Push(lua.LNumber(m.roller.Source().Intn(100) + 1))
	return 1
}
