// Package registry fetches the verified token list from the upstream registry.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"solana-wallet-tokens/internal/adapter"
	"solana-wallet-tokens/internal/domain"
	"solana-wallet-tokens/internal/observability"
)

// Fetcher returns the full token list from the registry.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.TokenListEntry, error)
}

// Client fetches the registry's verified token list over HTTP.
type Client struct {
	http   adapter.HTTPClient
	url    string
	logger *zap.Logger
}

// NewClient creates a registry client for the given list URL.
func NewClient(httpClient adapter.HTTPClient, url string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:   httpClient,
		url:    url,
		logger: logger,
	}
}

// Fetch downloads and normalizes the token list.
// Every failure, including an unparseable body, wraps domain.ErrUpstreamFetch.
// Entries without a usable id cannot be looked up and are dropped.
func (c *Client) Fetch(ctx context.Context) ([]domain.TokenListEntry, error) {
	start := time.Now()
	body, err := c.http.Get(ctx, c.url)
	observability.RecordUpstreamLatency("registry", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: fetch token list: %w", domain.ErrUpstreamFetch, err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode token list: %w", domain.ErrUpstreamFetch, err)
	}

	entries := make([]domain.TokenListEntry, 0, len(raw))
	skipped := 0
	for _, item := range raw {
		entry, err := Normalize(item)
		if err != nil || entry.ID == "" {
			skipped++
			continue
		}
		entries = append(entries, *entry)
	}

	if skipped > 0 {
		c.logger.Warn("skipped registry entries without id",
			zap.Int("skipped", skipped),
			zap.Int("kept", len(entries)))
	}

	return entries, nil
}

var _ Fetcher = (*Client)(nil)
