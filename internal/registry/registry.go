package registry

import "sync"

// Registry publishes the current [Snapshot] to concurrent readers and serializes writers.
//
// Snapshots are immutable, so the lock is only held long enough to copy or swap the current one.
type Registry struct {
	mu       sync.RWMutex
	current  Snapshot
	version  uint64
	watchers []chan struct{}
}

// New creates a registry seeded with initial.
func New(initial Snapshot) *Registry {
	return &Registry{current: initial}
}

// Snapshot returns the current mapping. It never fails and never observes a half-applied [Registry.Replace].
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Replace swaps in next as the whole registry content.
//
// It does not validate or persist; both are the caller's job.
func (r *Registry) Replace(next Snapshot) {
	r.mu.Lock()
	r.current = next
	r.version++
	watchers := r.watchers
	r.mu.Unlock()

	for _, w := range watchers {
		select {
		case w <- struct{}{}:
		default:
		}
	}
}

// Version returns how many times [Registry.Replace] has been called.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Watch returns a channel that receives a value after each replace. Notifications coalesce when nobody is reading.
func (r *Registry) Watch() <-chan struct{} {
	ch := make(chan struct{}, 1)
	r.mu.Lock()
	r.watchers = append(r.watchers, ch)
	r.mu.Unlock()
	return ch
}
