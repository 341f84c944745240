package memory

import (
	"context"
	"sync"

	"solana-wallet-tokens/internal/domain"
	"solana-wallet-tokens/internal/storage"
)

// RefreshLogStore is an in-memory implementation of storage.RefreshLogStore.
type RefreshLogStore struct {
	mu      sync.RWMutex
	records []*domain.RefreshRecord // insertion order
}

// NewRefreshLogStore creates a new in-memory refresh log.
func NewRefreshLogStore() *RefreshLogStore {
	return &RefreshLogStore{}
}

// Insert appends a copy of r.
func (s *RefreshLogStore) Insert(_ context.Context, r *domain.RefreshRecord) error {
	if err := storage.ValidateRecord(r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *r
	s.records = append(s.records, &recordCopy)
	return nil
}

// Latest returns up to limit records, most recent first.
func (s *RefreshLogStore) Latest(_ context.Context, limit int) ([]*domain.RefreshRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit > n {
		limit = n
	}

	result := make([]*domain.RefreshRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		recordCopy := *s.records[i]
		result = append(result, &recordCopy)
	}
	return result, nil
}

var _ storage.RefreshLogStore = (*RefreshLogStore)(nil)
