// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package cache

// This file provides a simple LRU cache with per-entry expiry.  I
// know of at least two other implementations, though it is a pretty
// simple concept; neither carries a deadline per entry, and the
// clock needs to be injectable for tests.

import (
	"container/list"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/cloudfoam/go-occi/occi"
)

// entry is one cached entity with its expiration deadline.
type entry struct {
	ent     occi.Entity
	expires time.Time
}

// lru is a least-recently-used cache with a fixed capacity and a
// fixed per-entry time to live.  The cache can be safely accessed
// from multiple goroutines.
type lru struct {
	size      int
	ttl       time.Duration
	clk       clock.Clock
	lock      sync.Mutex
	evictList *list.List
	index     map[string]*list.Element
}

func newLRU(size int, ttl time.Duration, clk clock.Clock) *lru {
	return &lru{
		size:      size,
		ttl:       ttl,
		clk:       clk,
		evictList: list.New(),
		index:     make(map[string]*list.Element),
	}
}

// Get retrieves an entity from the cache.  An entry past its
// deadline is removed and reported as a miss.
func (lru *lru) Get(id string) (occi.Entity, bool) {
	// This sadly happens under the write lock, since a hit moves
	// the item to the back of the eviction list.
	lru.lock.Lock()
	defer lru.lock.Unlock()

	element, present := lru.index[id]
	if !present {
		return nil, false
	}
	item := element.Value.(entry)
	if lru.clk.Now().After(item.expires) {
		delete(lru.index, id)
		lru.evictList.Remove(element)
		return nil, false
	}
	lru.evictList.MoveToBack(element)
	return item.ent, true
}

// Put adds an entity to the cache, possibly evicting something.
func (lru *lru) Put(ent occi.Entity) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	item := entry{ent: ent, expires: lru.clk.Now().Add(lru.ttl)}
	if element, present := lru.index[ent.ID()]; present {
		element.Value = item
		lru.evictList.MoveToBack(element)
		return
	}

	element := lru.evictList.PushBack(item)
	lru.index[ent.ID()] = element

	// If this caused the cache to go over size, start evicting
	// entries.
	for len(lru.index) > lru.size {
		head := lru.evictList.Front()
		evicted := head.Value.(entry)
		delete(lru.index, evicted.ent.ID())
		lru.evictList.Remove(head)
	}
}

// Remove takes an entity out of the cache.  It does nothing if that
// ID is not cached.
func (lru *lru) Remove(id string) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[id]; present {
		delete(lru.index, id)
		lru.evictList.Remove(element)
	}
}

// RemoveFunc takes out every cached entity the predicate selects.
func (lru *lru) RemoveFunc(pred func(occi.Entity) bool) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	for id, element := range lru.index {
		if pred(element.Value.(entry).ent) {
			delete(lru.index, id)
			lru.evictList.Remove(element)
		}
	}
}
