// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package rendering

import (
	"sort"
	"strings"

	"github.com/cloudfoam/go-occi/occi"
)

// Reserved attribute names carrying entity identity and link
// endpoints on the wire rather than schema values.
const (
	AttrID     = "occi.core.id"
	AttrSource = "occi.core.source"
	AttrTarget = "occi.core.target"
)

// TargetResolver resolves a link target location to the kind of the
// entity living there, when the target is local and known.  Link
// directives prefer the target's kind as their rel; a resolver
// returning false falls back to the link's own kind.
type TargetResolver func(location string) (occi.CategoryID, bool)

// FromEntity renders an entity into a transport-neutral
// representation.  Attribute order is canonical (sorted by name);
// link order follows the resource's link list.
func FromEntity(ent occi.Entity, resolve TargetResolver) (*Representation, error) {
	rep := &Representation{}
	rep.Categories = append(rep.Categories, CategoryRef{
		ID:    ent.Kind().ID,
		Class: ClassKind,
		Title: ent.Kind().Title,
	})
	for _, mixin := range ent.Mixins() {
		rep.Categories = append(rep.Categories, CategoryRef{
			ID:    mixin.ID,
			Class: ClassMixin,
			Title: mixin.Title,
		})
	}

	attrs, err := entityAttributes(ent)
	if err != nil {
		return nil, err
	}
	rep.Attributes = attrs

	switch e := ent.(type) {
	case *occi.Resource:
		for _, link := range e.Links() {
			ref, err := linkRef(link, resolve)
			if err != nil {
				return nil, err
			}
			rep.Links = append(rep.Links, ref)
		}
	case *occi.Link:
		ref, err := linkRef(e, resolve)
		if err != nil {
			return nil, err
		}
		// A link entity rendered on its own keeps its
		// endpoints as attributes too.
		rep.Attributes = append(rep.Attributes,
			Attribute{Name: AttrSource, Value: e.Source(), Quoted: true},
			Attribute{Name: AttrTarget, Value: e.Target(), Quoted: true})
		rep.Links = append(rep.Links, ref)
	}

	if ent.ID() != "" {
		rep.Locations = append(rep.Locations, ent.ID())
	}
	return rep, nil
}

func entityAttributes(ent occi.Entity) ([]Attribute, error) {
	schema, err := ent.Registry().EffectiveAttributes(ent.Kind().ID, ent.MixinIDs())
	if err != nil {
		return nil, err
	}
	values := ent.Attributes()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	attrs := make([]Attribute, 0, len(names))
	for _, name := range names {
		def, declared := schema[name]
		if !declared {
			return nil, occi.ErrUnknownAttribute{Name: name}
		}
		attrs = append(attrs, Attribute{
			Name:   name,
			Value:  def.Type.Format(values[name]),
			Quoted: def.Type.Quoted(),
		})
	}
	return attrs, nil
}

func linkRef(link *occi.Link, resolve TargetResolver) (LinkRef, error) {
	rel := link.Kind().ID.String()
	if resolve != nil {
		if kindID, known := resolve(link.Target()); known {
			rel = kindID.String()
		}
	}
	ref := LinkRef{
		Target:   link.Target(),
		Rel:      rel,
		Self:     link.ID(),
		Category: link.Kind().ID.String(),
	}
	attrs, err := entityAttributes(link)
	if err != nil {
		return LinkRef{}, err
	}
	ref.Attributes = attrs
	return ref, nil
}

// FromRegistry renders the query interface: every kind, mixin, and
// action the registry knows, with their discovery parameters.  When
// filter is non-empty only the named categories render.
func FromRegistry(reg *occi.Registry, filter []occi.CategoryID) *Representation {
	wanted := func(id occi.CategoryID) bool {
		if len(filter) == 0 {
			return true
		}
		for _, f := range filter {
			if f == id {
				return true
			}
		}
		return false
	}

	rep := &Representation{}
	for _, kind := range reg.Kinds() {
		if !wanted(kind.ID) {
			continue
		}
		ref := CategoryRef{
			ID:         kind.ID,
			Class:      ClassKind,
			Title:      kind.Title,
			Attributes: attributeNames(kind.Attributes),
			Actions:    actionNames(kind.Actions),
			Location:   kind.Location,
		}
		if kind.Parent != nil {
			ref.Rel = kind.Parent.String()
		}
		rep.Categories = append(rep.Categories, ref)
	}
	for _, mixin := range reg.Mixins() {
		if !wanted(mixin.ID) {
			continue
		}
		ref := CategoryRef{
			ID:         mixin.ID,
			Class:      ClassMixin,
			Title:      mixin.Title,
			Attributes: attributeNames(mixin.Attributes),
			Actions:    actionNames(mixin.Actions),
			Location:   mixin.Location,
		}
		if mixin.AppliesTo != nil {
			ref.Rel = mixin.AppliesTo.String()
		}
		rep.Categories = append(rep.Categories, ref)
	}
	for _, action := range reg.Actions() {
		if !wanted(action.ID) {
			continue
		}
		rep.Categories = append(rep.Categories, CategoryRef{
			ID:         action.ID,
			Class:      ClassAction,
			Title:      action.Title,
			Attributes: attributeNames(action.Attributes),
		})
	}
	return rep
}

func attributeNames(defs []occi.AttributeDefinition) []string {
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}

func actionNames(actions []occi.Action) []string {
	names := make([]string, len(actions))
	for i, action := range actions {
		names[i] = action.ID.String()
	}
	return names
}

// ToEntity builds a new entity from a decoded representation.  The
// representation must name exactly one kind; mixin-class categories
// are associated, and attributes are parsed against the effective
// schema.  Link kinds take their endpoints from the occi.core.source
// and occi.core.target attributes.
func ToEntity(reg *occi.Registry, rep *Representation) (occi.Entity, error) {
	kind, mixins, err := resolveCategories(reg, rep.Categories)
	if err != nil {
		return nil, err
	}
	if kind == nil {
		return nil, occi.ErrMalformedRepresentation{Reason: "no kind in representation"}
	}

	var (
		id, source, target string
		attrs              []Attribute
	)
	for _, attr := range rep.Attributes {
		switch attr.Name {
		case AttrID:
			id = attr.Value
		case AttrSource:
			source = attr.Value
		case AttrTarget:
			target = attr.Value
		default:
			attrs = append(attrs, attr)
		}
	}

	var ent occi.Entity
	if kind.IsLink {
		if target == "" {
			return nil, occi.ErrMalformedRepresentation{
				Reason: "link representation without " + AttrTarget,
			}
		}
		// Endpoint locations are stored the way entity ids are,
		// without a leading slash.
		ent, err = occi.NewLink(reg, kind.ID,
			strings.TrimPrefix(source, "/"), strings.TrimPrefix(target, "/"))
	} else {
		ent, err = occi.NewResource(reg, kind.ID)
	}
	if err != nil {
		return nil, err
	}
	if id != "" {
		ent.SetID(strings.TrimPrefix(id, "/"))
	} else if len(rep.Locations) > 0 {
		ent.SetID(strings.TrimPrefix(rep.Locations[0], "/"))
	}

	for _, mixin := range mixins {
		if err = ent.AssociateMixin(mixin.ID); err != nil {
			return nil, err
		}
	}
	if err = ApplyAttributes(ent, attrs); err != nil {
		return nil, err
	}
	return ent, nil
}

// ApplyAttributes sets decoded attribute values on an entity,
// parsing each against the effective schema.
func ApplyAttributes(ent occi.Entity, attrs []Attribute) error {
	for _, attr := range attrs {
		if err := ent.SetAttribute(attr.Name, attr.Value); err != nil {
			return err
		}
	}
	return nil
}

// resolveCategories splits a representation's categories into the
// kind and the mixins, resolving class-less directives against the
// registry.
func resolveCategories(reg *occi.Registry, refs []CategoryRef) (*occi.Kind, []*occi.Mixin, error) {
	var (
		kind   *occi.Kind
		mixins []*occi.Mixin
	)
	for _, ref := range refs {
		switch ref.Class {
		case ClassKind:
			k, err := reg.Kind(ref.ID)
			if err != nil {
				return nil, nil, err
			}
			if kind != nil {
				return nil, nil, occi.ErrMalformedRepresentation{
					Reason: "more than one kind in representation",
				}
			}
			kind = k
		case ClassMixin:
			m, err := reg.Mixin(ref.ID)
			if err != nil {
				return nil, nil, err
			}
			mixins = append(mixins, m)
		case ClassAction:
			return nil, nil, occi.ErrMalformedRepresentation{
				Reason: ref.ID.String() + ": action category in entity representation",
			}
		default:
			// No class given; the registry decides.
			if k, err := reg.Kind(ref.ID); err == nil {
				if kind != nil {
					return nil, nil, occi.ErrMalformedRepresentation{
						Reason: "more than one kind in representation",
					}
				}
				kind = k
				continue
			}
			m, err := reg.Mixin(ref.ID)
			if err != nil {
				return nil, nil, err
			}
			mixins = append(mixins, m)
		}
	}
	return kind, mixins, nil
}
