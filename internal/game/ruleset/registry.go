package ruleset

import "sort"

// ClassRegistry provides lookup of classes by ID.
type ClassRegistry struct {
	classes map[string]*Class
}

// NewClassRegistry returns a registry holding classes.
//
// Postcondition: Returns a non-nil *ClassRegistry; later entries with a
// duplicate ID replace earlier ones.
func NewClassRegistry(classes ...*Class) *ClassRegistry {
	r := &ClassRegistry{classes: make(map[string]*Class, len(classes))}
	for _, c := range classes {
		r.Register(c)
	}
	return r
}

// Register adds a Class to the registry.
//
// Precondition: class must be non-nil with a non-empty ID.
// Postcondition: class is retrievable via Class(class.ID);
// if called multiple times with the same ID, the last call wins.
func (r *ClassRegistry) Register(class *Class) {
	if class == nil {
		panic("ClassRegistry.Register: precondition violated: class must be non-nil")
	}
	if class.ID == "" {
		panic("ClassRegistry.Register: precondition violated: class ID must be non-empty")
	}
	r.classes[class.ID] = class
}

// Class returns the Class for the given ID, if registered.
//
// Postcondition: Returns the registered Class and true, or nil and false if not found.
func (r *ClassRegistry) Class(id string) (*Class, bool) {
	c, ok := r.classes[id]
	return c, ok
}

// IDs returns the registered class IDs in sorted order.
func (r *ClassRegistry) IDs() []string {
	ids := make([]string, 0, len(r.classes))
	for id := range r.classes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
