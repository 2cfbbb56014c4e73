// Package dice provides the randomness abstraction and the uniform die rollers
// that every combat roll is built on.
package dice

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidSides is returned when a die has fewer than one face.
var ErrInvalidSides = errors.New("dice: sides must be >= 1")

// ErrInvalidCount is returned when a negative number of dice is requested.
var ErrInvalidCount = errors.New("dice: count must be >= 0")

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// RollDie returns a uniformly distributed face in [1, sides].
//
// Precondition: src must be non-nil.
// Postcondition: Returns a value in [1, sides], or ErrInvalidSides when sides < 1.
func RollDie(src Source, sides int) (int, error) {
	if sides < 1 {
		return 0, fmt.Errorf("rolling d%d: %w", sides, ErrInvalidSides)
	}
	return src.Intn(sides) + 1, nil
}

// RollMultiple rolls count independent dice of the given size. Results are in
// roll order, not sorted.
//
// Precondition: src must be non-nil.
// Postcondition: len(result) == count and every element is in [1, sides].
// count == 0 yields an empty, non-nil slice.
func RollMultiple(src Source, count, sides int) ([]int, error) {
	if count < 0 {
		return nil, fmt.Errorf("rolling %dd%d: %w", count, sides, ErrInvalidCount)
	}
	if sides < 1 {
		return nil, fmt.Errorf("rolling %dd%d: %w", count, sides, ErrInvalidSides)
	}
	rolls := make([]int, count)
	for i := range rolls {
		rolls[i] = src.Intn(sides) + 1
	}
	return rolls, nil
}

// Highest returns the largest value in rolls, or 0 when rolls is empty.
func Highest(rolls []int) int {
	best := 0
	for i, r := range rolls {
		if i == 0 || r > best {
			best = r
		}
	}
	return best
}

// KeepHighest returns the n largest values of rolls in roll order. Ties go
// to the earlier die. n <= 0 or n >= len(rolls) keeps every die.
//
// Postcondition: the result is a new slice.
func KeepHighest(rolls []int, n int) []int {
	if n <= 0 || n >= len(rolls) {
		return slices.Clone(rolls)
	}
	idx := make([]int, len(rolls))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return rolls[b] - rolls[a] })
	idx = idx[:n]
	slices.Sort(idx)
	kept := make([]int, n)
	for i, j := range idx {
		kept[i] = rolls[j]
	}
	return kept
}

// Sum returns the total of all values in rolls.
func Sum(rolls []int) int {
	total := 0
	for _, r := range rolls {
		total += r
	}
	return total
}
