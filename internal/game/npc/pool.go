package npc

import (
	"errors"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// ErrEmptyPool is returned when there are no templates to choose from.
var ErrEmptyPool = errors.New("npc: empty template pool")

// SelectForLevel picks a template uniformly from those whose difficulty lies
// within spread of level. When none match, it picks from the whole pool.
//
// Precondition: src must be non-nil; spread >= 0.
// Postcondition: Returns a member of templates, or ErrEmptyPool.
func SelectForLevel(src dice.Source, templates []*Template, level, spread int) (*Template, error) {
	if len(templates) == 0 {
		return nil, ErrEmptyPool
	}
	var matched []*Template
	for _, t := range templates {
		if t.Difficulty >= level-spread && t.Difficulty <= level+spread {
			matched = append(matched, t)
		}
	}
	if len(matched) == 0 {
		matched = templates
	}
	return matched[src.Intn(len(matched))], nil
}
