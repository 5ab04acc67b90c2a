// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

// Package backend provides a standard way to construct an OCCI
// storage backend based on command-line flags.
package backend

import (
	"errors"
	"strings"

	"github.com/cloudfoam/go-occi/memory"
	"github.com/cloudfoam/go-occi/occi"
	"github.com/cloudfoam/go-occi/postgres"
)

// Backend describes user-visible parameters to store OCCI entities.
// This implements the flag.Value interface, and so a typical use is
//
//	func main() {
//	    backend := backend.Backend{Implementation: "memory"}
//	    flag.Var(&backend, "backend", "impl[:address] of entity storage")
//	    flag.Parse()
//	    store, err := backend.Backend(registry)
//	}
type Backend struct {
	// Implementation holds the name of the implementation;
	// "memory" or "postgres".
	Implementation string

	// Address holds some backend-specific address, such as a
	// database connect string.
	Address string
}

// Backend creates a new entity storage backend over a registry.
// This generally should be called only once: if the backend has
// in-process state, such as a database connection pool or an
// in-memory store, calling this multiple times will create multiple
// copies of that state.  In particular, if b.Implementation is
// "memory", multiple calls to this will create multiple independent
// entity stores.
func (b *Backend) Backend(registry *occi.Registry) (occi.Backend, error) {
	switch b.Implementation {
	case "memory":
		return memory.New(registry), nil
	case "postgres":
		return postgres.New(registry, b.Address)
	}
	return nil, errors.New("unknown storage backend " + b.Implementation)
}

// String renders a backend description as a string.
func (b *Backend) String() string {
	if b.Address == "" {
		return b.Implementation
	}
	return b.Implementation + ":" + b.Address
}

// Set parses a string into an existing backend description.  The
// string should be of the form "implementation:address", where
// address can be any string.  Set checks that the implementation
// names a known backend, but does not attempt to validate the
// address or make a connection.
//
// This is part of the flag.Value interface.
func (b *Backend) Set(param string) error {
	parts := strings.SplitN(param, ":", 2)
	b.Implementation = parts[0]
	if len(parts) == 2 {
		b.Address = parts[1]
	} else {
		b.Address = ""
	}
	switch b.Implementation {
	case "memory", "postgres":
		return nil
	}
	return errors.New("unknown storage backend " + b.Implementation)
}
