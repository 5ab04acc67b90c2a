// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

// Package cache decorates a Backend with an LRU of recently
// retrieved entities.  Retrieve serves from the cache while an entry
// is fresh; every write operation invalidates the entries it could
// have made stale, including the source resource of a created,
// updated, or deleted link.  List always goes to the underlying
// backend.
//
// Cached entities are cloned on the way in and on the way out, so a
// caller mutating its copy never leaks changes into the cache.
package cache

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/cloudfoam/go-occi/occi"
)

// Cache tuning defaults used by New.
const (
	DefaultSize = 1024
	DefaultTTL  = time.Minute
)

type cacheBackend struct {
	backend occi.Backend
	lru     *lru
}

// New decorates a backend with an entity cache of the default size
// and time to live.
func New(backend occi.Backend) occi.Backend {
	return NewWithClock(backend, DefaultSize, DefaultTTL, clock.New())
}

// NewWithClock decorates a backend with an entity cache, using an
// explicit time source for entry expiry.  Most application code
// should call New; this entry point is intended for tests that need
// to inject a mock time source.
func NewWithClock(backend occi.Backend, size int, ttl time.Duration, clk clock.Clock) occi.Backend {
	return &cacheBackend{
		backend: backend,
		lru:     newLRU(size, ttl, clk),
	}
}

func (b *cacheBackend) Create(ent occi.Entity) error {
	if err := b.backend.Create(ent); err != nil {
		return err
	}
	// A new link appears in its source's rendering.
	if link, isLink := ent.(*occi.Link); isLink {
		b.lru.Remove(link.Source())
	}
	return nil
}

func (b *cacheBackend) Retrieve(id string) (occi.Entity, error) {
	if cached, hit := b.lru.Get(id); hit {
		return cloneEntity(cached)
	}
	ent, err := b.backend.Retrieve(id)
	if err != nil {
		return nil, err
	}
	stored, err := cloneEntity(ent)
	if err != nil {
		return nil, err
	}
	b.lru.Put(stored)
	return ent, nil
}

// cloneEntity deep-copies an entity.  Unlike occi.Clone it keeps a
// resource's attached links; a cache hit has to look exactly like a
// backend retrieval.
func cloneEntity(ent occi.Entity) (occi.Entity, error) {
	dup, err := occi.Clone(ent)
	if err != nil {
		return nil, err
	}
	if res, isResource := ent.(*occi.Resource); isResource {
		for _, link := range res.Links() {
			dupLink, err := occi.Clone(link)
			if err != nil {
				return nil, err
			}
			dup.(*occi.Resource).AddLink(dupLink.(*occi.Link))
		}
	}
	return dup, nil
}

func (b *cacheBackend) Update(ent occi.Entity) error {
	if err := b.backend.Update(ent); err != nil {
		return err
	}
	b.lru.Remove(ent.ID())
	if link, isLink := ent.(*occi.Link); isLink {
		b.lru.Remove(link.Source())
	}
	return nil
}

func (b *cacheBackend) Delete(id string) error {
	if err := b.backend.Delete(id); err != nil {
		return err
	}
	b.invalidate(id)
	return nil
}

// invalidate drops every cache entry a removed entity could have
// touched: the entity itself, cached links from it, and any cached
// entity referencing it as a link source or endpoint.
func (b *cacheBackend) invalidate(id string) {
	b.lru.Remove(id)
	b.lru.RemoveFunc(func(cached occi.Entity) bool {
		switch e := cached.(type) {
		case *occi.Link:
			return e.Source() == id || e.Target() == id
		case *occi.Resource:
			for _, link := range e.Links() {
				if link.ID() == id || link.Target() == id {
					return true
				}
			}
		}
		return false
	})
}

func (b *cacheBackend) InvokeAction(id string, action *occi.Action, params map[string]interface{}) (occi.Entity, error) {
	ent, err := b.backend.InvokeAction(id, action, params)
	if err != nil {
		return nil, err
	}
	// Actions may change entity state behind the cache's back.
	b.lru.Remove(id)
	return ent, nil
}

func (b *cacheBackend) List(f occi.Filter) ([]occi.Entity, error) {
	return b.backend.List(f)
}
