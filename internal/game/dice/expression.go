package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Limits on a parsed expression.
const (
	MaxCount    = 100
	MaxSides    = 1000
	MaxModifier = 1000
)

// exprPattern matches "d20", "2d6", "1d8+1", "4d6kh3", "3d4-2".
var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)(?:kh(\d+))?([+-]\d+)?$`)

// Expression is a parsed dice expression such as "2d6+1".
//
// Invariant: 1 <= Count <= MaxCount, 1 <= Sides <= MaxSides,
// |Modifier| <= MaxModifier and 0 <= KeepHighest < Count after Parse.
type Expression struct {
	Raw         string
	Count       int
	Sides       int
	Modifier    int
	KeepHighest int // 0 keeps every die
}

// Result is the audit trail of rolling an Expression.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type Result struct {
	Expression string
	Dice       []int // kept dice, in roll order
	Modifier   int
}

// Total returns the kept dice plus the modifier.
func (r Result) Total() int {
	return Sum(r.Dice) + r.Modifier
}

// String renders the roll as "2d6+3 → [4 5] +3 = 12".
func (r Result) String() string {
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Parse parses a dice expression. Whitespace and case are ignored.
//
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}

	e := Expression{Raw: expr, Count: 1}
	var err error
	if m[1] != "" {
		if e.Count, err = strconv.Atoi(m[1]); err != nil {
			return Expression{}, fmt.Errorf("dice: die count in %q: %w", expr, err)
		}
	}
	if e.Sides, err = strconv.Atoi(m[2]); err != nil {
		return Expression{}, fmt.Errorf("dice: sides in %q: %w", expr, err)
	}
	if m[3] != "" {
		if e.KeepHighest, err = strconv.Atoi(m[3]); err != nil {
			return Expression{}, fmt.Errorf("dice: kh value in %q: %w", expr, err)
		}
	}
	if m[4] != "" {
		if e.Modifier, err = strconv.Atoi(m[4]); err != nil {
			return Expression{}, fmt.Errorf("dice: modifier in %q: %w", expr, err)
		}
	}

	if e.Count < 1 || e.Count > MaxCount {
		return Expression{}, fmt.Errorf("dice: die count in %q must be in [1, %d], got %d", expr, MaxCount, e.Count)
	}
	if e.Sides < 1 {
		return Expression{}, fmt.Errorf("dice: %q: %w", expr, ErrInvalidSides)
	}
	if e.Sides > MaxSides {
		return Expression{}, fmt.Errorf("dice: sides in %q must be <= %d, got %d", expr, MaxSides, e.Sides)
	}
	if e.Modifier < -MaxModifier || e.Modifier > MaxModifier {
		return Expression{}, fmt.Errorf("dice: modifier in %q must be in [-%d, %d], got %d", expr, MaxModifier, MaxModifier, e.Modifier)
	}
	if m[3] != "" && (e.KeepHighest < 1 || e.KeepHighest >= e.Count) {
		return Expression{}, fmt.Errorf("dice: kh value %d must be > 0 and < count %d in %q", e.KeepHighest, e.Count, expr)
	}
	return e, nil
}

// MustParse parses expr and panics on error. Useful for package-level values.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}

// Roll evaluates the expression against src.
//
// Postcondition: len(Dice) == Count, or KeepHighest when it is set.
func (e Expression) Roll(src Source) (Result, error) {
	rolled, err := RollMultiple(src, e.Count, e.Sides)
	if err != nil {
		return Result{}, err
	}
	return Result{Expression: e.Raw, Dice: KeepHighest(rolled, e.KeepHighest), Modifier: e.Modifier}, nil
}
