// Package keylock provides mutual exclusion keyed by an arbitrary string.
// Locks are created on first use and reclaimed once nobody holds or waits
// for them, so the number of live locks is bounded by the number of keys in
// use rather than the number of keys ever seen.
package keylock

import (
	"sync"
)

type entry struct {
	mu sync.Mutex
	// guarded by KeyLock.mu
	refs int
}

type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

func New() *KeyLock {
	return &KeyLock{
		locks: make(map[string]*entry),
	}
}

// Lock blocks until the lock for key is held and returns its release func.
// The release func must be called exactly once.
func (k *KeyLock) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
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
				delete(k.locks, key)
			}
			k.mu.Unlock()
		})
	}
}

// Size returns the number of keys currently held or waited on
func (k *KeyLock) Size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
