package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"solana-wallet-tokens/internal/storage"
)

// setupTestRedis starts a Redis container and returns a connected client.
func setupTestRedis(t *testing.T) (*Client, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start redis container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := NewClient(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()))
	require.NoError(t, err, "failed to connect to redis")

	cleanup := func() {
		client.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return client, cleanup
}

func TestTokenListStore_SetAndGet(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewTokenListStore(client)
	ctx := context.Background()

	value := []byte(`[{"id":"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v","symbol":"USDC"}]`)
	require.NoError(t, store.Set(ctx, "jupiter:verified_tokens", value, 24*time.Hour))

	got, err := store.Get(ctx, "jupiter:verified_tokens")
	require.NoError(t, err)
	assert.Equal(t, value, got)

	ttl, err := client.TTL(ctx, "jupiter:verified_tokens").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 23*time.Hour)
}

func TestTokenListStore_MissingAndExpired(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewTokenListStore(client)
	ctx := context.Background()

	_, err := store.Get(ctx, "absent")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, store.Set(ctx, "short", []byte("v"), 50*time.Millisecond))
	time.Sleep(150 * time.Millisecond)

	_, err = store.Get(ctx, "short")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestTokenListStore_Overwrite(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewTokenListStore(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v1"), time.Hour))
	require.NoError(t, store.Set(ctx, "k", []byte("v2"), time.Hour))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

func TestTokenListStore_InvalidTTL(t *testing.T) {
	store := NewTokenListStore(nil)

	err := store.Set(context.Background(), "k", []byte("v"), 0)
	assert.True(t, errors.Is(err, storage.ErrInvalidInput))
}
