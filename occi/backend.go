// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package occi

// Backend stores entity state.  Implementations must be safe for
// concurrent use; the core never serializes calls on their behalf.
// Category resolution always happens against the registry a backend
// was constructed with, so a backend can persist bare identifiers
// and rehydrate full entities.
type Backend interface {
	// Create stores a new entity.  If the entity has no ID the
	// backend assigns one under its kind's location.  Creating
	// an entity whose ID already exists fails with ErrConflict.
	Create(ent Entity) error

	// Retrieve loads an entity by ID, or fails with ErrNotFound.
	Retrieve(id string) (Entity, error)

	// Update replaces the stored state of an existing entity,
	// or fails with ErrNotFound.
	Update(ent Entity) error

	// Delete removes an entity by ID, or fails with
	// ErrNotFound.  Deleting a resource also removes the links
	// it is the source of.
	Delete(id string) error

	// InvokeAction performs an action on an entity and returns
	// its resulting state.  An action the entity's categories do
	// not declare fails with ErrActionNotSupported.
	InvokeAction(id string, action *Action, params map[string]interface{}) (Entity, error)

	// List returns the entities matching a filter, in ID order.
	List(f Filter) ([]Entity, error)
}

// Filter selects entities for List.  Zero-valued fields match
// everything.
type Filter struct {
	// Categories restricts the result to entities related to
	// every listed category: for a kind, the entity's kind or
	// one of its ancestors; for a mixin, an associated mixin.
	Categories []CategoryID

	// Attributes restricts the result to entities whose current
	// attribute values equal every listed value.
	Attributes map[string]interface{}

	// LocationPrefix restricts the result to entity IDs under a
	// path prefix.
	LocationPrefix string
}

// Matches reports whether an entity satisfies the filter under the
// given registry.
func (f Filter) Matches(reg *Registry, ent Entity) bool {
	if f.LocationPrefix != "" {
		prefix := normalizeLocation(f.LocationPrefix)
		id := ent.ID()
		if len(id) < len(prefix) || id[:len(prefix)] != prefix {
			return false
		}
	}
	for _, want := range f.Categories {
		if !f.matchesCategory(reg, ent, want) {
			return false
		}
	}
	if len(f.Attributes) > 0 {
		schema, err := reg.EffectiveAttributes(ent.Kind().ID, ent.MixinIDs())
		if err != nil {
			return false
		}
		for name, want := range f.Attributes {
			def, declared := schema[name]
			if !declared {
				return false
			}
			have, present := ent.Attribute(name)
			if !present {
				return false
			}
			coerced, err := coerceValue(def, want)
			if err != nil {
				return false
			}
			if !def.Type.Equal(have, coerced) {
				return false
			}
		}
	}
	return true
}

func (f Filter) matchesCategory(reg *Registry, ent Entity, want CategoryID) bool {
	if reg.IsRelated(ent.Kind().ID, want) {
		return true
	}
	for _, id := range ent.MixinIDs() {
		if id == want {
			return true
		}
	}
	return false
}
