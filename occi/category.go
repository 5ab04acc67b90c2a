// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

// Package occi defines the OCCI protocol core data model: the
// Category/Kind/Mixin type system, the Entity/Resource/Link instance
// model, the immutable category Registry, and the Backend contract
// that storage implementations satisfy.
//
// Categories are registered once during process configuration and are
// read-only afterwards; a Registry may be shared freely between
// goroutines without locking.  Entities are created and destroyed only
// through Backend operations routed by the server package.
package occi

import (
	"fmt"
	"strings"
)

// CategoryID is the identity of a category: the pair of its scheme
// URI (including the trailing "#") and its term.  Two categories are
// equal iff scheme and term match exactly.
type CategoryID struct {
	Scheme string
	Term   string
}

func (id CategoryID) String() string {
	return id.Scheme + id.Term
}

// Empty reports whether the identity is the zero value.
func (id CategoryID) Empty() bool {
	return id.Scheme == "" && id.Term == ""
}

// Less orders identities by (scheme, term), the canonical rendering
// order for category sets.
func (id CategoryID) Less(other CategoryID) bool {
	if id.Scheme != other.Scheme {
		return id.Scheme < other.Scheme
	}
	return id.Term < other.Term
}

// ParseCategoryID splits a "scheme#term" identifier string.  The
// scheme retains its trailing "#".  Returns an
// ErrMalformedRepresentation if the separator is missing or the term
// is empty.
func ParseCategoryID(s string) (CategoryID, error) {
	i := strings.LastIndex(s, "#")
	if i < 0 || i == len(s)-1 {
		return CategoryID{}, ErrMalformedRepresentation{
			Reason: fmt.Sprintf("%q: missing scheme#term separator", s),
		}
	}
	return CategoryID{Scheme: s[:i+1], Term: s[i+1:]}, nil
}

// Category carries the data common to kinds, mixins, and actions: an
// identity, a human-readable title, and the attribute definitions the
// category directly contributes.
type Category struct {
	ID         CategoryID
	Title      string
	Attributes []AttributeDefinition
}

// Kind is a category describing a base resource type.  A kind may
// declare exactly one parent kind; attribute definitions are inherited
// along the parent chain.
type Kind struct {
	Category

	// Parent identifies the parent kind, if any.  The parent must
	// be registered before this kind.
	Parent *CategoryID

	// Actions lists the actions entities of this kind support.
	Actions []Action

	// Location is the URI path pattern of this kind's collection,
	// e.g. "compute/".  Kinds with no location have no collection
	// endpoint.
	Location string

	// IsLink marks kinds whose instances are links rather than
	// resources.
	IsLink bool
}

// Mixin is a category that extends an entity's schema and action set
// independent of its kind.
type Mixin struct {
	Category

	// AppliesTo, if non-nil, restricts the mixin to entities whose
	// kind ancestry includes the named kind.
	AppliesTo *CategoryID

	// Actions lists the actions this mixin adds to associated
	// entities.
	Actions []Action

	// Location is the URI path pattern of this mixin's collection,
	// if any.
	Location string
}

// Action is an invocable operation identified by a category.  Its
// attribute definitions describe the action's parameters.
type Action struct {
	Category
}

func attributesEqual(a, b []AttributeDefinition) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Type != b[i].Type ||
			a[i].Required != b[i].Required || a[i].Mutable != b[i].Mutable {
			return false
		}
	}
	return true
}

func actionsEqual(a, b []Action) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || !attributesEqual(a[i].Attributes, b[i].Attributes) {
			return false
		}
	}
	return true
}

// equal reports whether two kind definitions have identical content.
// Re-registering an identical kind is a no-op rather than an error.
func (k *Kind) equal(other *Kind) bool {
	if k.ID != other.ID || k.Title != other.Title ||
		k.Location != other.Location || k.IsLink != other.IsLink {
		return false
	}
	if (k.Parent == nil) != (other.Parent == nil) {
		return false
	}
	if k.Parent != nil && *k.Parent != *other.Parent {
		return false
	}
	return attributesEqual(k.Attributes, other.Attributes) &&
		actionsEqual(k.Actions, other.Actions)
}

func (m *Mixin) equal(other *Mixin) bool {
	if m.ID != other.ID || m.Title != other.Title || m.Location != other.Location {
		return false
	}
	if (m.AppliesTo == nil) != (other.AppliesTo == nil) {
		return false
	}
	if m.AppliesTo != nil && *m.AppliesTo != *other.AppliesTo {
		return false
	}
	return attributesEqual(m.Attributes, other.Attributes) &&
		actionsEqual(m.Actions, other.Actions)
}
