package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps the audit trail in memory, in append order. It
// intentionally favors clarity over performance.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry{}, s.entries...), nil
}

func (s *InMemoryStore) ListByApplication(_ context.Context, applicationID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filtered := make([]Entry, 0)
	for _, e := range s.entries {
		if e.ApplicationID == applicationID {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}
