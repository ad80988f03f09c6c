// Package navigation holds the contracts coordinators use to talk back to
// whatever presents them: a registry of responders addressed by ID, and the
// banner notification model.
//
// Coordinators keep an ID rather than a pointer to their responder. When the
// responder goes away its ID simply stops resolving and calls through it
// become no-ops.
package navigation

import (
	"sync"
)

// ID addresses a registered responder. The zero ID never resolves.
type ID uint64

// Registry maps IDs to responders of type R.
type Registry[R any] struct {
	mu         sync.RWMutex
	next       ID
	responders map[ID]R
}

// NewRegistry creates an empty registry.
func NewRegistry[R any]() *Registry[R] {
	return &Registry[R]{responders: make(map[ID]R)}
}

// Register adds r and returns its ID.
func (g *Registry[R]) Register(r R) ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	g.responders[g.next] = r
	return g.next
}

// Unregister removes the responder for id.
func (g *Registry[R]) Unregister(id ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.responders, id)
}

// Lookup returns the responder for id.
func (g *Registry[R]) Lookup(id ID) (R, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.responders[id]
	return r, ok
}

// Do calls fn with the responder for id. It reports whether one was found.
func (g *Registry[R]) Do(id ID, fn func(R)) bool {
	r, ok := g.Lookup(id)
	if !ok {
		return false
	}
	fn(r)
	return true
}
