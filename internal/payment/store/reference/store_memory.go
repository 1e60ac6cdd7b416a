package reference

import (
	"context"
	"sync"
)

// InMemoryRegistry keeps committed references in a mutex-guarded set. Suited
// to unit tests and single-process deployments; use the Postgres or Redis
// registry when multiple instances share the uniqueness guarantee.
type InMemoryRegistry struct {
	mu         sync.RWMutex
	references map[string]struct{}
}

// NewInMemory creates an empty in-memory registry.
func NewInMemory() *InMemoryRegistry {
	return &InMemoryRegistry{references: make(map[string]struct{})}
}

func (r *InMemoryRegistry) Contains(_ context.Context, reference string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.references[reference]
	return ok, nil
}

func (r *InMemoryRegistry) TryCommit(_ context.Context, reference string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.references[reference]; ok {
		return false, nil
	}
	r.references[reference] = struct{}{}
	return true, nil
}

// Len reports the number of committed references. Test helper.
func (r *InMemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.references)
}
