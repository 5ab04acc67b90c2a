// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

// Package memory provides an in-process, in-memory implementation of
// the Backend interface.  There is no persistence, nor any sharing
// between processes.  The entire store is behind a single global
// semaphore to protect against concurrent updates; in some cases
// this can limit performance in the name of correctness.
//
// This is mostly intended as a simple reference implementation of
// Backend that can be used for testing, including in-process testing
// of higher-level components.  It is generally tuned for
// correctness, not performance or scalability.
package memory

import (
	"sort"
	"sync"

	"github.com/satori/go.uuid"

	"github.com/cloudfoam/go-occi/occi"
)

type memBackend struct {
	registry *occi.Registry
	entities map[string]occi.Entity
	sem      sync.Mutex
}

// New creates a new Backend that stores entities purely in memory.
// Category references resolve against the provided registry.
func New(registry *occi.Registry) occi.Backend {
	return &memBackend{
		registry: registry,
		entities: make(map[string]occi.Entity),
	}
}

func (b *memBackend) Create(ent occi.Entity) error {
	b.sem.Lock()
	defer b.sem.Unlock()

	if ent.ID() == "" {
		ent.SetID(ent.Kind().Location + uuid.NewV4().String())
	}
	if _, present := b.entities[ent.ID()]; present {
		return occi.ErrConflict{ID: ent.ID()}
	}
	stored, err := occi.Clone(ent)
	if err != nil {
		return err
	}
	b.entities[ent.ID()] = stored
	return nil
}

func (b *memBackend) Retrieve(id string) (occi.Entity, error) {
	b.sem.Lock()
	defer b.sem.Unlock()
	return b.retrieve(id)
}

// retrieve clones a stored entity, reattaching a resource's links.
// Caller must hold the semaphore.
func (b *memBackend) retrieve(id string) (occi.Entity, error) {
	stored, present := b.entities[id]
	if !present {
		return nil, occi.ErrNotFound{ID: id}
	}
	ent, err := occi.Clone(stored)
	if err != nil {
		return nil, err
	}
	if res, isResource := ent.(*occi.Resource); isResource {
		for _, linkID := range b.linksFrom(id) {
			link, err := occi.Clone(b.entities[linkID])
			if err != nil {
				return nil, err
			}
			res.AddLink(link.(*occi.Link))
		}
	}
	return ent, nil
}

// linksFrom returns the IDs of stored links whose source is id, in
// ID order.
func (b *memBackend) linksFrom(id string) []string {
	var ids []string
	for storedID, stored := range b.entities {
		if link, isLink := stored.(*occi.Link); isLink && link.Source() == id {
			ids = append(ids, storedID)
		}
	}
	sort.Strings(ids)
	return ids
}

func (b *memBackend) Update(ent occi.Entity) error {
	b.sem.Lock()
	defer b.sem.Unlock()

	if _, present := b.entities[ent.ID()]; !present {
		return occi.ErrNotFound{ID: ent.ID()}
	}
	stored, err := occi.Clone(ent)
	if err != nil {
		return err
	}
	b.entities[ent.ID()] = stored
	return nil
}

func (b *memBackend) Delete(id string) error {
	b.sem.Lock()
	defer b.sem.Unlock()

	ent, present := b.entities[id]
	if !present {
		return occi.ErrNotFound{ID: id}
	}
	delete(b.entities, id)
	if _, isResource := ent.(*occi.Resource); isResource {
		for _, linkID := range b.linksFrom(id) {
			delete(b.entities, linkID)
		}
	}
	return nil
}

func (b *memBackend) InvokeAction(id string, action *occi.Action, params map[string]interface{}) (occi.Entity, error) {
	b.sem.Lock()
	defer b.sem.Unlock()

	stored, present := b.entities[id]
	if !present {
		return nil, occi.ErrNotFound{ID: id}
	}
	supported := false
	for _, a := range stored.AvailableActions() {
		if a.ID == action.ID {
			supported = true
			break
		}
	}
	if !supported {
		return nil, occi.ErrActionNotSupported{Action: action.ID}
	}
	// The reference backend has no machinery behind its actions;
	// invoking one just returns the entity's current state.
	return b.retrieve(id)
}

func (b *memBackend) List(f occi.Filter) ([]occi.Entity, error) {
	b.sem.Lock()
	defer b.sem.Unlock()

	var ids []string
	for id, stored := range b.entities {
		if f.Matches(b.registry, stored) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	ents := make([]occi.Entity, 0, len(ids))
	for _, id := range ids {
		ent, err := b.retrieve(id)
		if err != nil {
			return nil, err
		}
		ents = append(ents, ent)
	}
	return ents, nil
}
