package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-wallet-tokens/internal/adapter"
	"solana-wallet-tokens/internal/domain"
)

const registryBody = `[
  {"id":"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v","name":"USD Coin","symbol":"USDC","decimals":6,"icon":"https://example.com/usdc.png","tags":["verified"],"usdPrice":0.9998,"organicScore":98.1},
  {"address":"So11111111111111111111111111111111111111112","name":"Wrapped SOL","symbol":"SOL","decimals":9,"logoURI":"https://example.com/sol.png"},
  {"name":"no id"}
]`

func newTestClient(url string) *Client {
	httpClient := adapter.NewHTTPClient(time.Second, adapter.WithBackOff(func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 2)
	}))
	return NewClient(httpClient, url, nil)
}

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "verified", r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(registryBody))
	}))
	defer server.Close()

	entries, err := newTestClient(server.URL + "/tokens/v2/tag?query=verified").Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	usdc := entries[0]
	assert.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", usdc.ID)
	require.NotNil(t, usdc.Symbol)
	assert.Equal(t, "USDC", *usdc.Symbol)
	decimals, ok := usdc.DecimalsValue()
	assert.True(t, ok)
	assert.Equal(t, 6, decimals)
	assert.Contains(t, usdc.Extra, "organicScore")

	sol := entries[1]
	assert.Equal(t, "So11111111111111111111111111111111111111112", sol.ID)
	require.NotNil(t, sol.Icon)
	assert.Equal(t, "https://example.com/sol.png", *sol.Icon)
}

func TestClient_Fetch_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamFetch))

	var statusErr *adapter.StatusError
	assert.True(t, errors.As(err, &statusErr))
}

func TestClient_Fetch_RateLimitedThenOK(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"mint1"}]`))
	}))
	defer server.Close()

	entries, err := newTestClient(server.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Fetch_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background())
	assert.ErrorIs(t, err, domain.ErrUpstreamFetch)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantID   string
		wantIcon *string
	}{
		{
			name:     "canonical",
			input:    `{"id":"a","icon":"i"}`,
			wantID:   "a",
			wantIcon: strPtr("i"),
		},
		{
			name:     "legacy keys",
			input:    `{"address":"b","logoURI":"l"}`,
			wantID:   "b",
			wantIcon: strPtr("l"),
		},
		{
			name:     "canonical wins over legacy",
			input:    `{"id":"c","address":"other","icon":"i","logoURI":"l"}`,
			wantID:   "c",
			wantIcon: strPtr("i"),
		},
		{
			name:   "no icon",
			input:  `{"id":"d"}`,
			wantID: "d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := Normalize(json.RawMessage(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, entry.ID)
			assert.Equal(t, tt.wantIcon, entry.Icon)
		})
	}
}

func TestNormalize_NotAnObject(t *testing.T) {
	_, err := Normalize(json.RawMessage(`"string"`))
	assert.Error(t, err)

	_, err = Normalize(json.RawMessage(`null`))
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }
