package identity

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests and DB-less development runs.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string
}

// NewMemoryStore builds a MemoryStore pre-populated with the given users.
func NewMemoryStore(users ...User) *MemoryStore {
	s := &MemoryStore{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
	for _, u := range users {
		s.Put(u)
	}
	return s
}

// Put inserts or replaces a user record.
func (s *MemoryStore) Put(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = NormalizeEmail(u.Email)
	if u.Providers == nil {
		u.Providers = []string{}
	}
	s.byID[u.ID] = u
	s.byEmail[u.Email] = u.ID
}

// Delete removes a user record if present.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		delete(s.byEmail, u.Email)
		delete(s.byID, id)
	}
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return s.byID[id], nil
}
