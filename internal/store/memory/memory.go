// Package memory is the zero-dependency Gateway used for dev/demo mode and
// tests. Payloads are copied on the way in and out so callers can never alias
// the stored bytes.
package memory

import (
	"context"
	"sync"

	"receiptgen/backend/internal/store"
)

type Store struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func New() *Store {
	return &Store{records: map[string][]byte{}}
}

func (s *Store) Load(_ context.Context, companyID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.records[store.Key(companyID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (s *Store) Save(_ context.Context, companyID string, payload []byte) error {
	if len(payload) == 0 {
		return store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]byte, len(payload))
	copy(kept, payload)
	s.records[store.Key(companyID)] = kept
	return nil
}

func (s *Store) Delete(_ context.Context, companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, store.Key(companyID))
	return nil
}
