package ai

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// DefaultBehaviorHook is the Lua function ScriptedBehaviorPicker calls when
// the enemy does not name its own hook.
const DefaultBehaviorHook = "choose_behavior"

// desperateBelow is the health percentage under which enemies turn desperate.
const desperateBelow = 25.0

// ScriptCaller calls a Lua hook in a named script scope.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given scope's VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error)
}

// BehaviorContext is everything a picker may consult for one enemy turn.
type BehaviorContext struct {
	// EnemyID is the combatant ID; TemplateID selects a registered picker.
	EnemyID    string
	TemplateID string
	// Configured is the behavior the enemy was built with.
	Configured    combat.Behavior
	HealthPercent float64
	Threat        ThreatLevel
	Round         int
	Action        string
	// Hook overrides DefaultBehaviorHook for scripted pickers.
	Hook string
}

// BehaviorPicker decides which attack behavior an enemy uses this turn.
type BehaviorPicker interface {
	PickBehavior(ctx BehaviorContext) combat.Behavior
}

// DefaultBehaviorPicker derives behavior without scripts:
//   - an action whose id names a behavior (e.g. "berserker_frenzy") selects it;
//   - below 25% health a non-berserker enemy turns desperate;
//   - otherwise the configured behavior applies.
type DefaultBehaviorPicker struct{}

// PickBehavior implements BehaviorPicker.
func (DefaultBehaviorPicker) PickBehavior(ctx BehaviorContext) combat.Behavior {
	if b, ok := behaviorNamedBy(ctx.Action); ok {
		return b
	}
	if ctx.HealthPercent < desperateBelow && ctx.Configured != combat.Berserker {
		return combat.Desperate
	}
	return ctx.Configured
}

// behaviorNamedBy reports the non-normal behavior whose name appears in action.
func behaviorNamedBy(action string) (combat.Behavior, bool) {
	id := strings.ToLower(action)
	for _, b := range combat.Behaviors() {
		if b == combat.Normal {
			continue
		}
		if strings.Contains(id, b.String()) {
			return b, true
		}
	}
	return combat.Normal, false
}

// ScriptedBehaviorPicker asks a Lua hook for the behavior. The hook receives
// (health_percent, threat, round, action) and returns a behavior name.
// Anything else, including a missing hook or a script error, defers to Fallback.
type ScriptedBehaviorPicker struct {
	caller   ScriptCaller
	scope    string
	fallback BehaviorPicker
	logger   *zap.Logger
}

// NewScriptedBehaviorPicker returns a picker calling hooks in scope.
//
// Precondition: caller and logger must be non-nil; a nil fallback uses
// DefaultBehaviorPicker.
func NewScriptedBehaviorPicker(caller ScriptCaller, scope string, fallback BehaviorPicker, logger *zap.Logger) *ScriptedBehaviorPicker {
	if caller == nil {
		panic("ai.NewScriptedBehaviorPicker: caller must not be nil")
	}
	if fallback == nil {
		fallback = DefaultBehaviorPicker{}
	}
	return &ScriptedBehaviorPicker{caller: caller, scope: scope, fallback: fallback, logger: logger}
}

// PickBehavior implements BehaviorPicker.
func (p *ScriptedBehaviorPicker) PickBehavior(ctx BehaviorContext) combat.Behavior {
	hook := ctx.Hook
	if hook == "" {
		hook = DefaultBehaviorHook
	}
	ret, err := p.caller.CallHook(p.scope, hook,
		lua.LNumber(ctx.HealthPercent),
		lua.LString(ctx.Threat.String()),
		lua.LNumber(ctx.Round),
		lua.LString(ctx.Action),
	)
	if err != nil {
		p.logger.Warn("behavior hook failed",
			zap.String("hook", hook),
			zap.String("enemy", ctx.EnemyID),
			zap.Error(err),
		)
		return p.fallback.PickBehavior(ctx)
	}
	s, ok := ret.(lua.LString)
	if !ok {
		return p.fallback.PickBehavior(ctx)
	}
	b, err := combat.ParseBehavior(string(s))
	if err != nil || string(s) == "" {
		p.logger.Debug("behavior hook returned unusable value",
			zap.String("hook", hook),
			zap.String("value", string(s)),
		)
		return p.fallback.PickBehavior(ctx)
	}
	return b
}
