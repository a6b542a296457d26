// Package keylock provides per-key mutual exclusion. Cart mutations and
// checkout for the same customer serialize on the customer's lock while
// different customers proceed in parallel.
package keylock

import "sync"

// Registry hands out one mutex per key. Locks are never evicted; the key
// space (customer IDs with in-flight requests) is small and bounded.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		locks: make(map[string]*sync.Mutex),
	}
}

func (r *Registry) lock(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	return l
}

// Lock acquires the mutex for key, blocking until it is available.
func (r *Registry) Lock(key string) {
	r.lock(key).Lock()
}

// Unlock releases the mutex for key. Must follow a matching Lock.
func (r *Registry) Unlock(key string) {
	r.lock(key).Unlock()
}
