// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package occi

import (
	"sort"
)

// Entity is a single occurrence of a kind: either a Resource or a
// Link.  Entities are plain data with schema enforcement; they are
// not safe for concurrent mutation.
type Entity interface {
	// ID returns the entity's identifier, typically its
	// location path.  Empty until assigned by a backend.
	ID() string

	// SetID assigns the identifier.  Backends call this during
	// creation when the client did not pick one.
	SetID(id string)

	// Kind returns the kind the entity was instantiated from.
	// The kind never changes over the entity's lifetime.
	Kind() *Kind

	// Mixins returns the associated mixins in association order.
	Mixins() []*Mixin

	// MixinIDs returns the identities of the associated mixins
	// in association order.
	MixinIDs() []CategoryID

	// Attributes returns the attribute values currently set.
	// The returned map is shared; callers must not modify it.
	Attributes() map[string]interface{}

	// Attribute returns a single attribute value.
	Attribute(name string) (interface{}, bool)

	// SetAttribute validates a value against the entity's
	// effective schema and stores it.  String values are parsed
	// to the declared type.  An immutable attribute may be set
	// while unset, and re-set to its current value, but never
	// changed.
	SetAttribute(name string, value interface{}) error

	// UnsetAttribute removes an attribute value.  Unsetting an
	// immutable attribute that has a value fails.
	UnsetAttribute(name string) error

	// AssociateMixin adds a mixin.  Associating an already
	// associated mixin is a no-op.
	AssociateMixin(id CategoryID) error

	// DissociateMixin removes a mixin.  Dissociating a mixin
	// that is not associated is a no-op.
	DissociateMixin(id CategoryID) error

	// AvailableActions returns the actions permitted for this
	// entity given its kind ancestry and current mixins.
	AvailableActions() []*Action

	// ApplyDefaults fills in declared defaults for attributes
	// that have no value yet.
	ApplyDefaults() error

	// Validate checks that every required attribute in the
	// effective schema has a value.
	Validate() error

	// Registry returns the registry the entity's categories
	// live in.
	Registry() *Registry
}

type entity struct {
	id       string
	kind     *Kind
	mixins   []*Mixin
	attrs    map[string]interface{}
	registry *Registry
}

func newEntity(registry *Registry, kind *Kind) entity {
	return entity{
		kind:     kind,
		attrs:    make(map[string]interface{}),
		registry: registry,
	}
}

func (e *entity) ID() string          { return e.id }
func (e *entity) SetID(id string)     { e.id = id }
func (e *entity) Kind() *Kind         { return e.kind }
func (e *entity) Registry() *Registry { return e.registry }

func (e *entity) Mixins() []*Mixin {
	mixins := make([]*Mixin, len(e.mixins))
	copy(mixins, e.mixins)
	return mixins
}

func (e *entity) MixinIDs() []CategoryID {
	ids := make([]CategoryID, len(e.mixins))
	for i, m := range e.mixins {
		ids[i] = m.ID
	}
	return ids
}

func (e *entity) Attributes() map[string]interface{} { return e.attrs }

func (e *entity) Attribute(name string) (interface{}, bool) {
	value, present := e.attrs[name]
	return value, present
}

func (e *entity) schema() (map[string]AttributeDefinition, error) {
	return e.registry.EffectiveAttributes(e.kind.ID, e.MixinIDs())
}

func (e *entity) SetAttribute(name string, value interface{}) error {
	schema, err := e.schema()
	if err != nil {
		return err
	}
	def, declared := schema[name]
	if !declared {
		return ErrUnknownAttribute{Name: name}
	}
	coerced, err := coerceValue(def, value)
	if err != nil {
		return err
	}
	if current, present := e.attrs[name]; present && !def.Mutable {
		if !def.Type.Equal(current, coerced) {
			return ErrImmutableAttribute{Name: name}
		}
		return nil
	}
	e.attrs[name] = coerced
	return nil
}

func (e *entity) UnsetAttribute(name string) error {
	schema, err := e.schema()
	if err != nil {
		return err
	}
	def, declared := schema[name]
	if !declared {
		return ErrUnknownAttribute{Name: name}
	}
	if _, present := e.attrs[name]; present && !def.Mutable {
		return ErrImmutableAttribute{Name: name}
	}
	delete(e.attrs, name)
	return nil
}

func (e *entity) AssociateMixin(id CategoryID) error {
	mixin, err := e.registry.Mixin(id)
	if err != nil {
		return err
	}
	for _, m := range e.mixins {
		if m.ID == id {
			return nil
		}
	}
	if mixin.AppliesTo != nil && !e.registry.IsRelated(e.kind.ID, *mixin.AppliesTo) {
		return ErrMixinNotApplicable{Mixin: id, Kind: e.kind.ID}
	}
	e.mixins = append(e.mixins, mixin)
	return nil
}

func (e *entity) DissociateMixin(id CategoryID) error {
	if _, err := e.registry.Mixin(id); err != nil {
		return err
	}
	for i, m := range e.mixins {
		if m.ID == id {
			e.mixins = append(e.mixins[:i], e.mixins[i+1:]...)
			e.dropUndeclared()
			return nil
		}
	}
	return nil
}

// dropUndeclared removes attribute values the effective schema no
// longer declares, after a mixin goes away.
func (e *entity) dropUndeclared() {
	schema, err := e.schema()
	if err != nil {
		return
	}
	for name := range e.attrs {
		if _, declared := schema[name]; !declared {
			delete(e.attrs, name)
		}
	}
}

func (e *entity) AvailableActions() []*Action {
	actions, err := e.registry.EffectiveActions(e.kind.ID, e.MixinIDs())
	if err != nil {
		return nil
	}
	return actions
}

func (e *entity) ApplyDefaults() error {
	schema, err := e.schema()
	if err != nil {
		return err
	}
	for name, def := range schema {
		if def.Default == nil {
			continue
		}
		if _, present := e.attrs[name]; !present {
			e.attrs[name] = def.Default
		}
	}
	return nil
}

func (e *entity) Validate() error {
	schema, err := e.schema()
	if err != nil {
		return err
	}
	var missing []string
	for name, def := range schema {
		if !def.Required {
			continue
		}
		if _, present := e.attrs[name]; !present {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return ErrMalformedRepresentation{Reason: "missing required attribute " + missing[0]}
	}
	return nil
}

// coerceValue converts a candidate value to the declared attribute
// type.  Wire values arrive as strings and are parsed; values
// rehydrated from JSON storage arrive as float64 even for integer
// attributes and are narrowed when integral.
func coerceValue(def AttributeDefinition, value interface{}) (interface{}, error) {
	if raw, isString := value.(string); isString && def.Type != TypeString {
		return def.Type.Parse(def.Name, raw)
	}
	switch def.Type {
	case TypeString:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case TypeInt:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		case float64:
			if v == float64(int64(v)) {
				return int64(v), nil
			}
		}
	case TypeFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
	case TypeBool:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case TypeStringList:
		switch v := value.(type) {
		case []string:
			return v, nil
		case []interface{}:
			list := make([]string, len(v))
			for i, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, ErrTypeMismatch{Name: def.Name, Value: def.Type.Format(value)}
				}
				list[i] = s
			}
			return list, nil
		}
	}
	return nil, ErrTypeMismatch{Name: def.Name, Value: def.Type.Format(value)}
}

// Clone makes an independent copy of an entity.  A resource's link
// list is not copied; backends reconstruct it from stored links.
func Clone(ent Entity) (Entity, error) {
	var (
		out Entity
		err error
	)
	switch e := ent.(type) {
	case *Resource:
		out, err = NewResource(e.Registry(), e.Kind().ID)
	case *Link:
		out, err = NewLink(e.Registry(), e.Kind().ID, e.Source(), e.Target())
	default:
		err = ErrMalformedRepresentation{Reason: "unknown entity class"}
	}
	if err != nil {
		return nil, err
	}
	out.SetID(ent.ID())
	for _, id := range ent.MixinIDs() {
		if err = out.AssociateMixin(id); err != nil {
			return nil, err
		}
	}
	for name, value := range ent.Attributes() {
		if err = out.SetAttribute(name, value); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Resource is an entity that stands alone and can be the source of
// links.
type Resource struct {
	entity
	links []*Link
}

// NewResource creates a resource of the given kind.  The kind must
// be registered and must not be a link kind.
func NewResource(registry *Registry, kindID CategoryID) (*Resource, error) {
	kind, err := registry.Kind(kindID)
	if err != nil {
		return nil, err
	}
	if kind.IsLink {
		return nil, ErrMalformedRepresentation{Reason: "kind " + kindID.String() + " instantiates links, not resources"}
	}
	return &Resource{entity: newEntity(registry, kind)}, nil
}

// Links returns the resource's outbound links in insertion order.
func (r *Resource) Links() []*Link {
	links := make([]*Link, len(r.links))
	copy(links, r.links)
	return links
}

// AddLink attaches an outbound link.  Adding a link whose ID is
// already attached is a no-op.
func (r *Resource) AddLink(link *Link) {
	for _, l := range r.links {
		if l.ID() != "" && l.ID() == link.ID() {
			return
		}
	}
	r.links = append(r.links, link)
}

// RemoveLink detaches an outbound link by ID.  Removing a link that
// is not attached is a no-op.
func (r *Resource) RemoveLink(id string) {
	for i, l := range r.links {
		if l.ID() == id {
			r.links = append(r.links[:i], r.links[i+1:]...)
			return
		}
	}
}

// Link is an entity connecting a source resource to a target.  The
// target may be a URI outside this service.
type Link struct {
	entity
	source string
	target string
}

// NewLink creates a link of the given kind between a source resource
// location and a target URI.  The kind must be registered and must be
// a link kind.
func NewLink(registry *Registry, kindID CategoryID, source, target string) (*Link, error) {
	kind, err := registry.Kind(kindID)
	if err != nil {
		return nil, err
	}
	if !kind.IsLink {
		return nil, ErrMalformedRepresentation{Reason: "kind " + kindID.String() + " instantiates resources, not links"}
	}
	return &Link{
		entity: newEntity(registry, kind),
		source: source,
		target: target,
	}, nil
}

// Source returns the location of the link's source resource.
func (l *Link) Source() string { return l.source }

// Target returns the link's target URI.
func (l *Link) Target() string { return l.target }

// SetSource changes the link's source location.
func (l *Link) SetSource(source string) { l.source = source }

// SetTarget changes the link's target URI.
func (l *Link) SetTarget(target string) { l.target = target }
