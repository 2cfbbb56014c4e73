package ai

import (
	"fmt"
	"sync"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Registry indexes BehaviorPickers by enemy template ID and falls back to a
// default picker for unregistered templates. It is itself a BehaviorPicker.
//
// Invariant: each template ID is registered at most once.
type Registry struct {
	mu       sync.RWMutex
	pickers  map[string]BehaviorPicker
	fallback BehaviorPicker
}

// NewRegistry returns an empty Registry. A nil fallback uses DefaultBehaviorPicker.
func NewRegistry(fallback BehaviorPicker) *Registry {
	if fallback == nil {
		fallback = DefaultBehaviorPicker{}
	}
	return &Registry{pickers: make(map[string]BehaviorPicker), fallback: fallback}
}

// Register stores picker for templateID.
//
// Precondition: picker must not be nil.
// Postcondition: returns error on template ID collision.
func (r *Registry) Register(templateID string, picker BehaviorPicker) error {
	if picker == nil {
		return fmt.Errorf("ai.Registry: nil picker for %q", templateID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pickers[templateID]; exists {
		return fmt.Errorf("ai.Registry: template %q already registered", templateID)
	}
	r.pickers[templateID] = picker
	return nil
}

// PickerFor returns the picker for templateID, or false if not registered.
func (r *Registry) PickerFor(templateID string) (BehaviorPicker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pickers[templateID]
	return p, ok
}

// PickBehavior dispatches on ctx.TemplateID.
func (r *Registry) PickBehavior(ctx BehaviorContext) combat.Behavior {
	if p, ok := r.PickerFor(ctx.TemplateID); ok {
		return p.PickBehavior(ctx)
	}
	return r.fallback.PickBehavior(ctx)
}
