package encounter

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Engine tracks running encounters by ID. Every encounter it starts shares
// its Deps. All methods are safe for concurrent use.
type Engine struct {
	mu         sync.RWMutex
	encounters map[string]*Encounter
	deps       Deps
}

// NewEngine creates an empty Engine.
//
// Precondition: deps.Dice must be non-nil.
func NewEngine(deps Deps) *Engine {
	if deps.Dice == nil {
		panic("encounter.NewEngine: deps.Dice must not be nil")
	}
	return &Engine{encounters: make(map[string]*Encounter), deps: deps}
}

// Start registers a new encounter over store with a random ID.
func (g *Engine) Start(store Store) *Encounter {
	e, err := g.StartWithID(uuid.New().String(), store)
	if err != nil {
		// A random UUID never collides in practice.
		panic(err)
	}
	return e
}

// StartWithID registers a new encounter under id.
//
// Precondition: id must be non-empty and store non-nil.
// Postcondition: Returns an error if id is already running.
func (g *Engine) StartWithID(id string, store Store) (*Encounter, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.encounters[id]; exists {
		return nil, fmt.Errorf("encounter %q already running", id)
	}
	e := New(id, store, g.deps)
	g.encounters[id] = e
	return e, nil
}

// Get returns the encounter with id.
func (g *Engine) Get(id string) (*Encounter, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.encounters[id]
	return e, ok
}

// End closes and forgets the encounter with id.
//
// Postcondition: Returns false if id was not running.
func (g *Engine) End(id string) bool {
	g.mu.Lock()
	e, ok := g.encounters[id]
	delete(g.encounters, id)
	g.mu.Unlock()
	if ok {
		e.Close()
	}
	return ok
}

// IDs returns the running encounter IDs, sorted.
func (g *Engine) IDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]string, 0, len(g.encounters))
	for id := range g.encounters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of running encounters.
func (g *Engine) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.encounters)
}

// CloseAll closes and forgets every encounter.
func (g *Engine) CloseAll() {
	g.mu.Lock()
	all := g.encounters
	g.encounters = make(map[string]*Encounter)
	g.mu.Unlock()
	for _, e := range all {
		e.Close()
	}
}
