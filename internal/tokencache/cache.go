// Package tokencache serves the verified token list cache-aside over a key-value store.
package tokencache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"solana-wallet-tokens/internal/adapter"
	"solana-wallet-tokens/internal/domain"
	"solana-wallet-tokens/internal/observability"
	"solana-wallet-tokens/internal/registry"
	"solana-wallet-tokens/internal/storage"
)

// Defaults for Options.
const (
	DefaultKey            = "jupiter:verified_tokens"
	DefaultTTL            = 24 * time.Hour
	DefaultRefreshTimeout = 2 * time.Minute
)

// Options configures a Cache.
type Options struct {
	Key        string
	TTL        time.Duration
	RefreshLog storage.RefreshLogStore // optional
	Clock      adapter.Clock
	Logger     *zap.Logger

	// RefreshTimeout bounds a cold-miss refresh shared between callers.
	RefreshTimeout time.Duration
}

// Cache reads the token list from the store and refreshes it from the registry on a miss.
// A missing key and an expired key are treated the same: there is no stale fallback.
type Cache struct {
	store          storage.TokenListStore
	fetcher        registry.Fetcher
	refreshLog     storage.RefreshLogStore
	key            string
	ttl            time.Duration
	refreshTimeout time.Duration
	clock          adapter.Clock
	logger         *zap.Logger

	// coalesces concurrent cold-miss refreshes within this process
	group singleflight.Group
}

// New creates a Cache over store, filled from fetcher.
func New(store storage.TokenListStore, fetcher registry.Fetcher, opts Options) *Cache {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = DefaultRefreshTimeout
	}
	if opts.Clock == nil {
		opts.Clock = adapter.NewClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Cache{
		store:          store,
		fetcher:        fetcher,
		refreshLog:     opts.RefreshLog,
		key:            opts.Key,
		ttl:            opts.TTL,
		refreshTimeout: opts.RefreshTimeout,
		clock:          opts.Clock,
		logger:         opts.Logger,
	}
}

// GetCachedList returns the stored list when present and unexpired, otherwise refreshes it.
// The returned slice is shared with concurrent callers and must not be modified.
// A refresh whose store write failed still returns the fetched list without error.
func (c *Cache) GetCachedList(ctx context.Context) ([]domain.TokenListEntry, error) {
	raw, err := c.store.Get(ctx, c.key)
	switch {
	case err == nil:
		entries, decodeErr := decodeList(raw)
		if decodeErr == nil {
			observability.RecordCacheHit()
			return entries, nil
		}
		c.logger.Warn("discarding undecodable cached token list",
			zap.String("key", c.key),
			zap.Error(decodeErr))
	case errors.Is(err, storage.ErrNotFound):
	default:
		c.logger.Warn("token list store read failed, refreshing",
			zap.String("key", c.key),
			zap.Error(err))
	}

	observability.RecordCacheMiss()

	// The shared refresh is detached from any one caller: a caller that goes away
	// stops waiting but does not cancel the fetch for the others.
	ch := c.group.DoChan(c.key, func() (interface{}, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
		defer cancel()

		entries, err := c.Refresh(refreshCtx)
		if err != nil {
			if !errors.Is(err, domain.ErrCacheWrite) {
				return nil, err
			}
			c.logger.Warn("serving token list that could not be cached",
				zap.String("key", c.key),
				zap.Error(err))
		}
		return entries, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: wait for token list refresh: %w", domain.ErrUpstreamFetch, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.TokenListEntry), nil
	}
}

// Refresh fetches the full list and overwrites the stored value with a fresh expiry.
// Fetch failures wrap domain.ErrUpstreamFetch. A failed store write returns the fetched
// list together with an error wrapping domain.ErrCacheWrite.
func (c *Cache) Refresh(ctx context.Context) ([]domain.TokenListEntry, error) {
	start := c.clock.Now()

	entries, err := c.fetcher.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrUpstreamFetch) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstreamFetch, err)
		}
		c.record(ctx, start, 0, domain.RefreshStatusUpstreamError, err)
		return nil, err
	}

	if err := c.write(ctx, entries); err != nil {
		observability.RecordStoreWriteError()
		err = fmt.Errorf("%w: %w", domain.ErrCacheWrite, err)
		c.record(ctx, start, len(entries), domain.RefreshStatusStoreError, err)
		return entries, err
	}

	c.record(ctx, start, len(entries), domain.RefreshStatusSuccess, nil)
	return entries, nil
}

// Lookup returns the entry whose id equals id, or nil when the list has no such entry.
func (c *Cache) Lookup(ctx context.Context, id string) (*domain.TokenListEntry, error) {
	entries, err := c.GetCachedList(ctx)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if entries[i].ID == id {
			entry := entries[i]
			return &entry, nil
		}
	}
	return nil, nil
}

// Index returns the current list keyed by id for repeated lookups within one request.
func (c *Cache) Index(ctx context.Context) (Index, error) {
	entries, err := c.GetCachedList(ctx)
	if err != nil {
		return nil, err
	}
	return NewIndex(entries), nil
}

// Key returns the store key the list is cached under.
func (c *Cache) Key() string {
	return c.key
}

func (c *Cache) write(ctx context.Context, entries []domain.TokenListEntry) error {
	blob, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode token list: %w", err)
	}
	return c.store.Set(ctx, c.key, blob, c.ttl)
}

// record reports a refresh outcome to metrics and the refresh log.
// Refresh log failures are logged and never returned.
func (c *Cache) record(ctx context.Context, start time.Time, entries int, status domain.RefreshStatus, cause error) {
	observability.RecordRefresh(string(status), entries, start.Unix())

	fields := []zap.Field{
		zap.String("status", string(status)),
		zap.Int("entries", entries),
		zap.Duration("duration", c.clock.Since(start)),
	}
	if cause != nil {
		c.logger.Warn("token list refresh failed", append(fields, zap.Error(cause))...)
	} else {
		c.logger.Info("token list refreshed", fields...)
	}

	if c.refreshLog == nil {
		return
	}

	rec := &domain.RefreshRecord{
		RefreshedAt: start.UnixMilli(),
		Entries:     entries,
		DurationMs:  c.clock.Since(start).Milliseconds(),
		Status:      status,
	}
	if cause != nil {
		msg := cause.Error()
		rec.Error = &msg
	}
	if err := c.refreshLog.Insert(ctx, rec); err != nil {
		c.logger.Warn("failed to record token list refresh", zap.Error(err))
	}
}

func decodeList(raw []byte) ([]domain.TokenListEntry, error) {
	var entries []domain.TokenListEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		return nil, errors.New("cached token list is null")
	}
	return entries, nil
}
