package storage

import (
	"context"
	"time"

	"solana-wallet-tokens/internal/domain"
)

// TokenListStore is the key-value store holding the serialized token list.
// Missing and expired keys are indistinguishable: both return ErrNotFound.
type TokenListStore interface {
	// Get returns the value stored under key. Returns ErrNotFound if missing or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value, and expires it after ttl.
	// Returns ErrInvalidInput if key is empty or ttl is not positive.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RefreshLogStore records token list refresh outcomes.
type RefreshLogStore interface {
	// Insert appends a refresh record.
	Insert(ctx context.Context, r *domain.RefreshRecord) error

	// Latest returns up to limit records, most recent first.
	Latest(ctx context.Context, limit int) ([]*domain.RefreshRecord, error)
}
