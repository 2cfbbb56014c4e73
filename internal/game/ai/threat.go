// Package ai chooses what an enemy does on its turn: which action it takes
// and which attack behavior it adopts.
//
// The selectors are pure functions of their inputs plus an injected
// dice.Source. Lua scripts can override behavior through ScriptedBehaviorPicker.
package ai

// ThreatLevel is a coarse rating of how dangerous the player currently is.
type ThreatLevel int

const (
	ThreatLow ThreatLevel = iota
	ThreatMedium
	ThreatHigh
	ThreatCritical
)

// String returns the lower-case threat name.
func (t ThreatLevel) String() string {
	switch t {
	case ThreatLow:
		return "low"
	case ThreatMedium:
		return "medium"
	case ThreatHigh:
		return "high"
	case ThreatCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Pressing reports whether the threat is high or critical.
func (t ThreatLevel) Pressing() bool {
	return t == ThreatHigh || t == ThreatCritical
}

// ComputeThreatLevel classifies the player's health ratio: below 25% is
// critical, below 50% high, below 75% medium, otherwise low. A non-positive
// maxHealth counts as 0%.
//
// playerLevel and playerAC are accepted for callers that will weight them
// later; they do not affect the result.
func ComputeThreatLevel(playerLevel, playerHealth, playerMaxHealth, playerAC int) ThreatLevel {
	_, _ = playerLevel, playerAC
	pct := 0.0
	if playerMaxHealth > 0 {
		pct = float64(playerHealth) / float64(playerMaxHealth) * 100
	}
	return threatForPercent(pct)
}

func threatForPercent(pct float64) ThreatLevel {
	switch {
	case pct < 25:
		return ThreatCritical
	case pct < 50:
		return ThreatHigh
	case pct < 75:
		return ThreatMedium
	default:
		return ThreatLow
	}
}
