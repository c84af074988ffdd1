// Package lock serializes writers per (user, date). Each key also carries a
// generation counter so a recompute superseded by a newer edit can detect it
// went stale and discard its work instead of merging it.
package lock

import (
	"sync"
	"sync/atomic"
)

type entry struct {
	mu  sync.Mutex
	gen atomic.Uint64
}

// Keyed is an in-process advisory lock keyed by (user, date).
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewKeyed creates an empty keyed lock set.
func NewKeyed() *Keyed {
	return &Keyed{entries: make(map[string]*entry)}
}

func (k *Keyed) entryFor(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	return e
}

// Acquire blocks until the key's lock is held, then returns the release
// function and the generation observed at acquisition time.
func (k *Keyed) Acquire(key string) (release func(), gen uint64) {
	e := k.entryFor(key)
	e.mu.Lock()
	return e.mu.Unlock, e.gen.Load()
}

// Supersede bumps the key's generation, invalidating any in-flight work that
// acquired an earlier generation.
func (k *Keyed) Supersede(key string) {
	k.entryFor(key).gen.Add(1)
}

// IsCurrent reports whether work holding gen for key is still the latest.
func (k *Keyed) IsCurrent(key string, gen uint64) bool {
	return k.entryFor(key).gen.Load() == gen
}

// Key builds the canonical (user, date) lock key.
func Key(userID, date string) string {
	return userID + "|" + date
}
