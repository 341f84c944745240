// Package redis implements the token list store on Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"solana-wallet-tokens/internal/observability"
	"solana-wallet-tokens/internal/storage"
)

// Client wraps goredis.Client for dependency injection.
type Client struct {
	*goredis.Client
}

// NewClient connects to the Redis server at url (redis://[user:password@]host:port/db).
func NewClient(ctx context.Context, url string) (*Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := goredis.NewClient(opts)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// TokenListStore implements storage.TokenListStore using Redis SET with expiry.
type TokenListStore struct {
	client *Client
}

// NewTokenListStore creates a new TokenListStore.
func NewTokenListStore(client *Client) *TokenListStore {
	return &TokenListStore{client: client}
}

// Compile-time interface check.
var _ storage.TokenListStore = (*TokenListStore)(nil)

// Get returns the value under key. Returns ErrNotFound if missing or expired.
func (s *TokenListStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		observability.RecordDBQuery("redis", "get", time.Since(start).Seconds(), nil)
		return nil, storage.ErrNotFound
	}
	observability.RecordDBQuery("redis", "get", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, expiring after ttl.
func (s *TokenListStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := storage.ValidateSet(key, ttl); err != nil {
		return err
	}

	start := time.Now()
	err := s.client.Set(ctx, key, value, ttl).Err()
	observability.RecordDBQuery("redis", "set", time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
