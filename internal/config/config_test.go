package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *Config)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
server:
  port: 9000
  request_timeout: 5s
solana:
  rpc_url: "http://localhost:8899"
  max_retries: 2
  requests_per_second: 10
jupiter:
  tokens_url: "http://localhost:9999/tokens"
cache:
  backend: memory
  key: "test:tokens"
  ttl: 1h
scheduler:
  hour: 3
  minute: 30
  timezone: "Europe/Berlin"
wallet:
  degrade_on_metadata_error: true
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
				assert.Equal(t, "http://localhost:8899", cfg.Solana.RPCURL)
				assert.Equal(t, 2, cfg.Solana.MaxRetries)
				assert.Equal(t, 10.0, cfg.Solana.RequestsPerSecond)
				assert.Equal(t, "http://localhost:9999/tokens", cfg.Jupiter.TokensURL)
				assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
				assert.Equal(t, "test:tokens", cfg.Cache.Key)
				assert.Equal(t, time.Hour, cfg.Cache.TTL)
				assert.Equal(t, 3, cfg.Scheduler.Hour)
				assert.Equal(t, 30, cfg.Scheduler.Minute)
				assert.Equal(t, "Europe/Berlin", cfg.Scheduler.Timezone)
				assert.True(t, cfg.Wallet.DegradeOnMetadataError)
			},
		},
		{
			name:       "config with defaults",
			configFile: "debug: false\n",
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0:8000", cfg.Server.Address())
				assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
				assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.Solana.RPCURL)
				assert.Equal(t, 0, cfg.Solana.MaxRetries)
				assert.Equal(t, "https://quote-api.jup.ag/v6", cfg.Jupiter.APIBaseURL)
				assert.Equal(t, "https://lite-api.jup.ag/tokens/v2/tag?query=verified", cfg.Jupiter.TokensURL)
				assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
				assert.Equal(t, "jupiter:verified_tokens", cfg.Cache.Key)
				assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
				assert.Equal(t, 2*time.Minute, cfg.Cache.RefreshTimeout)
				assert.True(t, cfg.Scheduler.Enabled)
				assert.Equal(t, 0, cfg.Scheduler.Hour)
				assert.Equal(t, "UTC", cfg.Scheduler.Timezone)
				assert.False(t, cfg.Wallet.DegradeOnMetadataError)
			},
		},
		{
			name:       "missing config file",
			configFile: "",
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8000, cfg.Server.Port)
			},
		},
		{
			name: "unknown cache backend",
			configFile: `
cache:
  backend: memcached
`,
			expectError: true,
		},
		{
			name: "postgres backend without dsn",
			configFile: `
cache:
  backend: postgres
`,
			expectError: true,
		},
		{
			name: "scheduler hour out of range",
			configFile: `
scheduler:
  hour: 24
`,
			expectError: true,
		},
		{
			name: "invalid timezone",
			configFile: `
scheduler:
  timezone: "Mars/Olympus"
`,
			expectError: true,
		},
		{
			name: "invalid port type",
			configFile: `
server:
  port: invalid
`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			var configFile string

			if tt.configFile != "" {
				configFile = filepath.Join(tmpDir, "config.yaml")
				err := os.WriteFile(configFile, []byte(tt.configFile), 0600)
				require.NoError(t, err)
			} else {
				configFile = filepath.Join(tmpDir, "nonexistent.yaml")
			}

			cfg, err := Load("server", configFile, tmpDir)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WALLET_TOKENS_SERVER_PORT", "9100")
	t.Setenv("WALLET_TOKENS_CACHE_BACKEND", "memory")
	t.Setenv("WALLET_TOKENS_WALLET_DEGRADE_ON_METADATA_ERROR", "true")

	tmpDir := t.TempDir()
	cfg, err := Load("server", filepath.Join(tmpDir, "nonexistent.yaml"), tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.True(t, cfg.Wallet.DegradeOnMetadataError)
}

func TestLoadEnvFile(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("WALLET_TOKENS_CACHE_KEY=from:dotenv\n"), 0600)
	require.NoError(t, err)
	t.Cleanup(func() { os.Unsetenv("WALLET_TOKENS_CACHE_KEY") })

	cfg, err := Load("refresh", filepath.Join(tmpDir, "nonexistent.yaml"), tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "from:dotenv", cfg.Cache.Key)
}
