// Package keylock provides per-key mutual exclusion. Two goroutines that
// acquire the same key serialize; distinct keys never contend.
package keylock

import "sync"

// Registry hands out one mutex per key, created on first use. Locks live for
// the process lifetime: growth is bounded by the number of distinct keys ever
// acquired, which for this service is the number of notes created since start.
type Registry struct {
	locks sync.Map // key -> *sync.Mutex
}

func New() *Registry {
	return &Registry{}
}

// Acquire blocks until the lock for key is held and returns the release
// function. Callers must defer the release so every exit path unlocks.
func (r *Registry) Acquire(key string) func() {
	v, _ := r.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
