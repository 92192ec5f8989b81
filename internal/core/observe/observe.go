// Package observe provides a small subscription registry used by the shared
// state objects to push snapshots to their consumers.
package observe

import (
	"slices"
	"sync"
)

// Registry holds subscribers for values of type T.
// The zero value is ready to use.
type Registry[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]func(T)

	// pubMu guards the PublishLatest drain loop.
	pubMu   sync.Mutex
	dirty   bool
	running bool
}

// Subscribe registers fn and returns a function that removes it.
// The returned function is safe to call more than once.
func (r *Registry[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}

	r.mu.Lock()
	if r.subs == nil {
		r.subs = make(map[int]func(T))
	}
	id := r.next
	r.next++
	r.subs[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
		})
	}
}

// Publish calls every subscriber with v. Subscribers run on the caller's
// goroutine, outside the registry lock, in registration order.
func (r *Registry[T]) Publish(v T) {
	r.mu.Lock()
	if len(r.subs) == 0 {
		r.mu.Unlock()
		return
	}
	ids := make([]int, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	slices.Sort(ids)
	for _, id := range ids {
		r.mu.Lock()
		fn, ok := r.subs[id]
		r.mu.Unlock()
		if ok {
			fn(v)
		}
	}
}

// PublishLatest delivers the current value of a source, read with load, to
// every subscriber. Concurrent callers are coalesced into one drain loop that
// reloads until no change is pending, so deliveries are ordered and the last
// value every subscriber sees is the latest one. A subscriber may call back
// into the source; its change is delivered by the running loop.
func (r *Registry[T]) PublishLatest(load func() T) {
	r.pubMu.Lock()
	r.dirty = true
	if r.running {
		r.pubMu.Unlock()
		return
	}
	r.running = true
	for r.dirty {
		r.dirty = false
		r.pubMu.Unlock()
		r.Publish(load())
		r.pubMu.Lock()
	}
	r.running = false
	r.pubMu.Unlock()
}

// Len returns the number of active subscribers.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
