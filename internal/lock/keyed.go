// Package lock serializes work per user.
package lock

import "sync"

// Key identifies one user inside one chat
type Key struct {
	UserID int64
	ChatID int64
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// Keyed is a set of mutexes created on demand and dropped when unused
type Keyed struct {
	mu      sync.Mutex
	entries map[Key]*entry
}

// NewKeyed creates an empty keyed lock
func NewKeyed() *Keyed {
	return &Keyed{entries: make(map[Key]*entry)}
}

// Lock blocks until the key is free and returns its unlock function
func (k *Keyed) Lock(key Key) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.entries, key)
			}
			k.mu.Unlock()
		})
	}
}

// Len returns the number of keys currently held or awaited
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
