package postgres

import (
	"context"
	"fmt"
	"time"

	"solana-wallet-tokens/internal/storage"
)

// TokenListStore implements storage.TokenListStore on the token_list_cache table.
// Expiry is evaluated on read; expired rows stay until the next Set overwrites them.
type TokenListStore struct {
	pool *Pool
	now  func() time.Time
}

// NewTokenListStore creates a new TokenListStore.
func NewTokenListStore(pool *Pool) *TokenListStore {
	return &TokenListStore{pool: pool, now: time.Now}
}

// Compile-time interface check.
var _ storage.TokenListStore = (*TokenListStore)(nil)

// Get returns the value under key. Returns ErrNotFound if missing or expired.
func (s *TokenListStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM token_list_cache
		WHERE key = $1 AND expires_at > $2
	`

	start := time.Now()
	var value []byte
	err := s.pool.QueryRow(ctx, query, key, s.now().UTC()).Scan(&value)
	observe("token_list_get", start, err)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token list %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key with a fresh expiry.
func (s *TokenListStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := storage.ValidateSet(key, ttl); err != nil {
		return err
	}

	now := s.now().UTC()
	query := `
		INSERT INTO token_list_cache (key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = EXCLUDED.updated_at
	`

	start := time.Now()
	_, err := s.pool.Exec(ctx, query, key, value, now.Add(ttl), now)
	observe("token_list_set", start, err)
	if err != nil {
		return fmt.Errorf("set token list %s: %w", key, err)
	}
	return nil
}
