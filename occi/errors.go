// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package occi

import (
	"errors"
	"fmt"
)

// ErrNotAcceptable is returned from content negotiation when none of
// the media types a client will accept has a registered codec.
var ErrNotAcceptable = errors.New("No acceptable representation for response")

// ErrNotFound is returned by Backend.Retrieve(), Backend.Update(),
// and Backend.Delete() when the requested entity ID does not exist.
type ErrNotFound struct {
	ID string
}

func (err ErrNotFound) Error() string {
	return fmt.Sprintf("No such entity %v", err.ID)
}

// ErrConflict is returned by Backend.Create() when the client-supplied
// entity ID already exists.
type ErrConflict struct {
	ID string
}

func (err ErrConflict) Error() string {
	return fmt.Sprintf("Entity %v already exists", err.ID)
}

// ErrDuplicateCategory is returned from registry registration when a
// category with the same (scheme, term) identity but different content
// has already been registered.
type ErrDuplicateCategory struct {
	ID CategoryID
}

func (err ErrDuplicateCategory) Error() string {
	return fmt.Sprintf("Category %v already registered with different content", err.ID)
}

// ErrUnknownParent is returned from registry registration when a kind
// declares a parent kind that has not been registered yet.
type ErrUnknownParent struct {
	ID     CategoryID
	Parent CategoryID
}

func (err ErrUnknownParent) Error() string {
	return fmt.Sprintf("Kind %v declares unregistered parent %v", err.ID, err.Parent)
}

// ErrCycleDetected is returned from registry registration when a
// kind's declared parent chain would loop back to the kind itself.
type ErrCycleDetected struct {
	ID CategoryID
}

func (err ErrCycleDetected) Error() string {
	return fmt.Sprintf("Kind %v would create an inheritance cycle", err.ID)
}

// ErrSchemaConflict is returned when two attribute definitions with
// the same name but incompatible types appear in one effective schema,
// either within a kind's ancestry at registration time or between a
// kind and an associated mixin.
type ErrSchemaConflict struct {
	Name string
	A, B AttributeType
}

func (err ErrSchemaConflict) Error() string {
	return fmt.Sprintf("Attribute %v redefined with incompatible type (%v vs %v)", err.Name, err.A, err.B)
}

// ErrUnknownCategory is returned from registry lookups that cannot
// resolve a category identifier or collection path.
type ErrUnknownCategory struct {
	Name string
}

func (err ErrUnknownCategory) Error() string {
	return fmt.Sprintf("Unknown category %v", err.Name)
}

// ErrUnknownAttribute is returned from Entity.SetAttribute() when the
// attribute name is not part of the entity's effective schema.
type ErrUnknownAttribute struct {
	Name string
}

func (err ErrUnknownAttribute) Error() string {
	return fmt.Sprintf("Unknown attribute %v", err.Name)
}

// ErrTypeMismatch is returned when a raw attribute value cannot be
// coerced to the declared attribute type.
type ErrTypeMismatch struct {
	Name  string
	Value string
}

func (err ErrTypeMismatch) Error() string {
	return fmt.Sprintf("%v=%q: invalid attribute value", err.Name, err.Value)
}

// ErrImmutableAttribute is returned from Entity.SetAttribute() when an
// immutable attribute has already been set to a different value.
type ErrImmutableAttribute struct {
	Name string
}

func (err ErrImmutableAttribute) Error() string {
	return fmt.Sprintf("Attribute %v is immutable", err.Name)
}

// ErrMixinNotApplicable is returned from Entity.AssociateMixin() when
// the mixin's applies-to constraint is not satisfied by the entity's
// kind ancestry.
type ErrMixinNotApplicable struct {
	Mixin CategoryID
	Kind  CategoryID
}

func (err ErrMixinNotApplicable) Error() string {
	return fmt.Sprintf("Mixin %v does not apply to kind %v", err.Mixin, err.Kind)
}

// ErrActionNotSupported is returned when an action is invoked on an
// entity whose effective action set does not include it.
type ErrActionNotSupported struct {
	Action CategoryID
}

func (err ErrActionNotSupported) Error() string {
	return fmt.Sprintf("Action %v not supported by entity", err.Action)
}

// ErrMalformedRepresentation is returned from codec decoding on any
// syntax error: unbalanced quoting, a missing scheme#term separator,
// a header continuation with no predecessor, an invalid link URI.
type ErrMalformedRepresentation struct {
	Reason string
}

func (err ErrMalformedRepresentation) Error() string {
	return fmt.Sprintf("Malformed representation: %v", err.Reason)
}

// ErrBackendFailure wraps an opaque error from the storage backend.
// The embedded error is passed through as context but never
// interpreted by the protocol core.
type ErrBackendFailure struct {
	Err error
}

func (err ErrBackendFailure) Error() string {
	return fmt.Sprintf("Backend failure: %v", err.Err)
}
