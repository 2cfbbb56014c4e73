package combat

// StatModifier computes the attribute modifier floor((stat - 10) / 2).
// Sub-10 scores produce negative modifiers.
//
// Postcondition: Returns floor((stat - 10) / 2).
func StatModifier(stat int) int {
	return floorDiv(stat-10, 2)
}

// DiceTypeForLevel returns the attack die size for a level.
// Standard dice step 18/20/22/24 at levels 5, 10 and 15; enhanced dice step
// 20/22/24 at levels 5 and 10.
//
// Postcondition: Monotonically non-decreasing in level.
func DiceTypeForLevel(level int, enhanced bool) int {
	if enhanced {
		switch {
		case level < 5:
			return 20
		case level < 10:
			return 22
		default:
			return 24
		}
	}
	switch {
	case level < 5:
		return 18
	case level < 10:
		return 20
	case level < 15:
		return 22
	default:
		return 24
	}
}

// DiceCountForLevel returns how many attack dice a level rolls: 1 below
// level 5, 2 through level 14, then 3.
func DiceCountForLevel(level int) int {
	switch {
	case level < 5:
		return 1
	case level < 15:
		return 2
	default:
		return 3
	}
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ceilDiv divides rounding toward positive infinity.
func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}
