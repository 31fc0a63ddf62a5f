package session

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MemoryStore is an in-process Store used by tests and the in-memory dev mode.
type MemoryStore struct {
	mu      sync.Mutex
	txMu    sync.Mutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory refresh-token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Create(_ context.Context, now time.Time, userID, tokenHash string, expiresAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ulid.Make().String()
	s.records[id] = &Record{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	return id, nil
}

func (s *MemoryStore) Usable(_ context.Context, now time.Time) ([]Record, error) {
	return s.filter(now, ""), nil
}

func (s *MemoryStore) UsableByUser(_ context.Context, now time.Time, userID string) ([]Record, error) {
	return s.filter(now, userID), nil
}

func (s *MemoryStore) filter(now time.Time, userID string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Record
	for _, r := range s.records {
		if r.Revoked || !r.ExpiresAt.After(now) {
			continue
		}
		if userID != "" && r.UserID != userID {
			continue
		}
		out = append(out, *r)
	}
	return out
}

func (s *MemoryStore) Revoke(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok || r.Revoked {
		return false, nil
	}
	r.Revoked = true
	return true, nil
}

// WithinTx serializes whole transactions; individual operations stay atomic
// under the record mutex, so the optimistic Revoke check holds either way.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

// Get returns a snapshot of a record; test helper.
func (s *MemoryStore) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Len reports the number of stored records; test helper.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
