package certificate

import (
	"context"
	"sort"
	"sync"

	"certpay/pkg/platform/sentinel"
)

// InMemoryStore keeps certificates in mutex-guarded maps, indexed by
// certificate ID and by application ID.
type InMemoryStore struct {
	mu            sync.RWMutex
	certs         map[string]*Certificate
	byApplication map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		certs:         make(map[string]*Certificate),
		byApplication: make(map[string]string),
	}
}

func (s *InMemoryStore) Create(_ context.Context, cert *Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byApplication[cert.ApplicationID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	if _, ok := s.certs[cert.ID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	cp := *cert
	s.certs[cert.ID] = &cp
	s.byApplication[cert.ApplicationID] = cert.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cert, ok := s.certs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *cert
	return &cp, nil
}

func (s *InMemoryStore) FindByApplication(_ context.Context, applicationID string) (*Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	certID, ok := s.byApplication[applicationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.certs[certID]
	return &cp, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	certs := make([]*Certificate, 0, len(s.certs))
	for _, cert := range s.certs {
		cp := *cert
		certs = append(certs, &cp)
	}
	sort.Slice(certs, func(i, j int) bool {
		if certs[i].IssuedAt.Equal(certs[j].IssuedAt) {
			return certs[i].ID < certs[j].ID
		}
		return certs[i].IssuedAt.Before(certs[j].IssuedAt)
	})
	return certs, nil
}

// Execute runs validate and mutate under the write lock.
func (s *InMemoryStore) Execute(_ context.Context, id string, validate func(*Certificate) error, mutate func(*Certificate)) (*Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cert, ok := s.certs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if validate != nil {
		if err := validate(cert); err != nil {
			return nil, err
		}
	}
	mutate(cert)
	cp := *cert
	return &cp, nil
}
