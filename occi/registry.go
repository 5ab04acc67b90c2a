// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package occi

import (
	"sort"
	"strings"
)

// Registry holds every registered kind, mixin, and action, and
// resolves inheritance and attribute closures.  All registration
// happens during process configuration; afterwards the registry is
// read-only and safe for unsynchronized concurrent reads.  Ancestry
// chains and per-kind attribute closures are computed once at
// registration time, not walked per request.
type Registry struct {
	kinds    map[CategoryID]*Kind
	mixins   map[CategoryID]*Mixin
	actions  map[CategoryID]*Action
	ancestry map[CategoryID][]*Kind
	closure  map[CategoryID]map[string]AttributeDefinition
}

// NewRegistry creates an empty category registry.
func NewRegistry() *Registry {
	return &Registry{
		kinds:    make(map[CategoryID]*Kind),
		mixins:   make(map[CategoryID]*Mixin),
		actions:  make(map[CategoryID]*Action),
		ancestry: make(map[CategoryID][]*Kind),
		closure:  make(map[CategoryID]map[string]AttributeDefinition),
	}
}

// RegisterKind adds a kind to the registry.  The kind's parent, if
// declared, must already be registered.  Registering a kind identical
// to one already present is a no-op; a kind with the same identity but
// different content fails with ErrDuplicateCategory.  The kind's
// ancestry chain and attribute closure are computed here, so a
// SchemaConflict anywhere along the chain is reported at registration
// rather than at request time.
func (r *Registry) RegisterKind(kind Kind) error {
	kind.Location = normalizeLocation(kind.Location)
	if existing, dup := r.kinds[kind.ID]; dup {
		if existing.equal(&kind) {
			return nil
		}
		return ErrDuplicateCategory{ID: kind.ID}
	}
	if _, shadows := r.mixins[kind.ID]; shadows {
		return ErrDuplicateCategory{ID: kind.ID}
	}

	var chain []*Kind
	if kind.Parent != nil {
		if *kind.Parent == kind.ID {
			return ErrCycleDetected{ID: kind.ID}
		}
		parent, present := r.kinds[*kind.Parent]
		if !present {
			return ErrUnknownParent{ID: kind.ID, Parent: *kind.Parent}
		}
		// The parent's chain is already acyclic; the only new
		// edge is kind -> parent, so a cycle can only close
		// through kind itself.
		for _, ancestor := range r.ancestry[parent.ID] {
			if ancestor.ID == kind.ID {
				return ErrCycleDetected{ID: kind.ID}
			}
		}
		chain = append(chain, r.ancestry[parent.ID]...)
	}

	k := kind
	chain = append(chain, &k)

	// Merge ancestry attribute definitions root-first; a
	// closer-to-leaf definition overrides an inherited one only
	// when the type matches.
	attrs := make(map[string]AttributeDefinition)
	for _, ancestor := range chain {
		for _, def := range ancestor.Attributes {
			if prev, present := attrs[def.Name]; present && prev.Type != def.Type {
				return ErrSchemaConflict{Name: def.Name, A: prev.Type, B: def.Type}
			}
			attrs[def.Name] = def
		}
	}

	if err := r.registerActions(k.Actions); err != nil {
		return err
	}
	r.kinds[k.ID] = &k
	r.ancestry[k.ID] = chain
	r.closure[k.ID] = attrs
	return nil
}

// RegisterMixin adds a mixin to the registry.  The applies-to kind,
// if declared, must already be registered.
func (r *Registry) RegisterMixin(mixin Mixin) error {
	mixin.Location = normalizeLocation(mixin.Location)
	if existing, dup := r.mixins[mixin.ID]; dup {
		if existing.equal(&mixin) {
			return nil
		}
		return ErrDuplicateCategory{ID: mixin.ID}
	}
	if _, shadows := r.kinds[mixin.ID]; shadows {
		return ErrDuplicateCategory{ID: mixin.ID}
	}
	if mixin.AppliesTo != nil {
		if _, present := r.kinds[*mixin.AppliesTo]; !present {
			return ErrUnknownCategory{Name: mixin.AppliesTo.String()}
		}
	}
	if err := r.registerActions(mixin.Actions); err != nil {
		return err
	}
	m := mixin
	r.mixins[m.ID] = &m
	return nil
}

func (r *Registry) registerActions(actions []Action) error {
	for i := range actions {
		action := actions[i]
		if existing, dup := r.actions[action.ID]; dup {
			if existing.Title == action.Title &&
				attributesEqual(existing.Attributes, action.Attributes) {
				continue
			}
			return ErrDuplicateCategory{ID: action.ID}
		}
		a := action
		r.actions[a.ID] = &a
	}
	return nil
}

// Kind resolves a kind by identity.
func (r *Registry) Kind(id CategoryID) (*Kind, error) {
	if k, present := r.kinds[id]; present {
		return k, nil
	}
	return nil, ErrUnknownCategory{Name: id.String()}
}

// Mixin resolves a mixin by identity.
func (r *Registry) Mixin(id CategoryID) (*Mixin, error) {
	if m, present := r.mixins[id]; present {
		return m, nil
	}
	return nil, ErrUnknownCategory{Name: id.String()}
}

// Action resolves an action by identity.
func (r *Registry) Action(id CategoryID) (*Action, error) {
	if a, present := r.actions[id]; present {
		return a, nil
	}
	return nil, ErrUnknownCategory{Name: id.String()}
}

// Ancestry returns a kind's inheritance chain, root first, ending
// with the kind itself.  The returned slice is shared; callers must
// not modify it.
func (r *Registry) Ancestry(id CategoryID) ([]*Kind, error) {
	if chain, present := r.ancestry[id]; present {
		return chain, nil
	}
	return nil, ErrUnknownCategory{Name: id.String()}
}

// IsRelated reports whether ancestor appears in kind's ancestry chain
// (including kind itself).  A request to a parent kind's collection
// includes instances of descendant kinds via this relation.
func (r *Registry) IsRelated(kind, ancestor CategoryID) bool {
	for _, k := range r.ancestry[kind] {
		if k.ID == ancestor {
			return true
		}
	}
	return false
}

// EffectiveAttributes computes the union attribute schema for an
// entity of the given kind with the given mixins, merging the kind's
// cached ancestry closure with each mixin's definitions in
// association order.  A later definition overrides an earlier one of
// the same name only when the types match; otherwise the call fails
// with ErrSchemaConflict.
func (r *Registry) EffectiveAttributes(kind CategoryID, mixins []CategoryID) (map[string]AttributeDefinition, error) {
	base, present := r.closure[kind]
	if !present {
		return nil, ErrUnknownCategory{Name: kind.String()}
	}
	attrs := make(map[string]AttributeDefinition, len(base))
	for name, def := range base {
		attrs[name] = def
	}
	for _, id := range mixins {
		mixin, err := r.Mixin(id)
		if err != nil {
			return nil, err
		}
		for _, def := range mixin.Attributes {
			if prev, collides := attrs[def.Name]; collides && prev.Type != def.Type {
				return nil, ErrSchemaConflict{Name: def.Name, A: prev.Type, B: def.Type}
			}
			attrs[def.Name] = def
		}
	}
	return attrs, nil
}

// EffectiveActions computes the set of actions permitted for an
// entity of the given kind with the given mixins, in (scheme, term)
// order.
func (r *Registry) EffectiveActions(kind CategoryID, mixins []CategoryID) ([]*Action, error) {
	chain, err := r.Ancestry(kind)
	if err != nil {
		return nil, err
	}
	set := make(map[CategoryID]*Action)
	for _, k := range chain {
		for i := range k.Actions {
			set[k.Actions[i].ID] = r.actions[k.Actions[i].ID]
		}
	}
	for _, id := range mixins {
		mixin, err := r.Mixin(id)
		if err != nil {
			return nil, err
		}
		for i := range mixin.Actions {
			set[mixin.Actions[i].ID] = r.actions[mixin.Actions[i].ID]
		}
	}
	actions := make([]*Action, 0, len(set))
	for _, a := range set {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i].ID.Less(actions[j].ID) })
	return actions, nil
}

// KindByLocation resolves a collection path to a kind, or nil.
func (r *Registry) KindByLocation(location string) *Kind {
	location = normalizeLocation(location)
	for _, k := range r.kinds {
		if k.Location != "" && k.Location == location {
			return k
		}
	}
	return nil
}

// MixinByLocation resolves a collection path to a mixin, or nil.
func (r *Registry) MixinByLocation(location string) *Mixin {
	location = normalizeLocation(location)
	for _, m := range r.mixins {
		if m.Location != "" && m.Location == location {
			return m
		}
	}
	return nil
}

// Lookup resolves any registered category identity to its *Kind,
// *Mixin, or *Action.
func (r *Registry) Lookup(id CategoryID) (interface{}, error) {
	if k, present := r.kinds[id]; present {
		return k, nil
	}
	if m, present := r.mixins[id]; present {
		return m, nil
	}
	if a, present := r.actions[id]; present {
		return a, nil
	}
	return nil, ErrUnknownCategory{Name: id.String()}
}

// Kinds returns all registered kinds in (scheme, term) order.
func (r *Registry) Kinds() []*Kind {
	kinds := make([]*Kind, 0, len(r.kinds))
	for _, k := range r.kinds {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i].ID.Less(kinds[j].ID) })
	return kinds
}

// Mixins returns all registered mixins in (scheme, term) order.
func (r *Registry) Mixins() []*Mixin {
	mixins := make([]*Mixin, 0, len(r.mixins))
	for _, m := range r.mixins {
		mixins = append(mixins, m)
	}
	sort.Slice(mixins, func(i, j int) bool { return mixins[i].ID.Less(mixins[j].ID) })
	return mixins
}

// Actions returns all registered actions in (scheme, term) order.
func (r *Registry) Actions() []*Action {
	actions := make([]*Action, 0, len(r.actions))
	for _, a := range r.actions {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i].ID.Less(actions[j].ID) })
	return actions
}

// normalizeLocation strips a leading slash and guarantees a trailing
// slash so that "/compute/", "compute" and "compute/" all name the
// same collection.
func normalizeLocation(location string) string {
	if location == "" {
		return ""
	}
	location = strings.TrimPrefix(location, "/")
	if !strings.HasSuffix(location, "/") {
		location += "/"
	}
	return location
}
