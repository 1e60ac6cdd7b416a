package application

import (
	"context"
	"sort"
	"sync"

	"certpay/pkg/platform/sentinel"
)

// InMemoryStore keeps application records in a mutex-guarded map. It
// intentionally favors clarity over performance.
type InMemoryStore struct {
	mu   sync.RWMutex
	apps map[string]*Application
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{apps: make(map[string]*Application)}
}

func (s *InMemoryStore) Create(_ context.Context, app *Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[app.ID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.apps[app.ID] = app.clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return app.clone(), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	apps := make([]*Application, 0, len(s.apps))
	for _, app := range s.apps {
		apps = append(apps, app.clone())
	}
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].SubmittedAt.Equal(apps[j].SubmittedAt) {
			return apps[i].ID < apps[j].ID
		}
		return apps[i].SubmittedAt.Before(apps[j].SubmittedAt)
	})
	return apps, nil
}

// Execute runs validate and mutate under the write lock so concurrent status
// transitions on the same application cannot interleave.
func (s *InMemoryStore) Execute(_ context.Context, id string, validate func(*Application) error, mutate func(*Application)) (*Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if validate != nil {
		if err := validate(app); err != nil {
			return nil, err
		}
	}
	mutate(app)
	return app.clone(), nil
}
