package memory

import (
	"context"
	"sync"
	"time"

	"solana-wallet-tokens/internal/adapter"
	"solana-wallet-tokens/internal/storage"
)

type expiringValue struct {
	value     []byte
	expiresAt time.Time
}

// TokenListStore is an in-memory implementation of storage.TokenListStore.
type TokenListStore struct {
	mu     sync.RWMutex
	values map[string]expiringValue
	clock  adapter.Clock
}

// NewTokenListStore creates a new in-memory token list store.
func NewTokenListStore() *TokenListStore {
	return NewTokenListStoreWithClock(adapter.NewClock())
}

// NewTokenListStoreWithClock creates a store that reads expiry against clock.
func NewTokenListStoreWithClock(clock adapter.Clock) *TokenListStore {
	return &TokenListStore{
		values: make(map[string]expiringValue),
		clock:  clock,
	}
}

// Get returns the value under key. Returns ErrNotFound if missing or expired.
func (s *TokenListStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, exists := s.values[key]
	if !exists || !s.clock.Now().Before(v.expiresAt) {
		return nil, storage.ErrNotFound
	}

	out := make([]byte, len(v.value))
	copy(out, v.value)
	return out, nil
}

// Set stores value under key with the given ttl. Last write wins.
func (s *TokenListStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := storage.ValidateSet(key, ttl); err != nil {
		return err
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = expiringValue{
		value:     stored,
		expiresAt: s.clock.Now().Add(ttl),
	}
	return nil
}

var _ storage.TokenListStore = (*TokenListStore)(nil)
