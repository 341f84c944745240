// Package config loads service configuration from config files, .env files and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "WALLET_TOKENS"

// Cache backends.
const (
	CacheBackendRedis    = "redis"
	CacheBackendPostgres = "postgres"
	CacheBackendMemory   = "memory"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // deadline applied to every request context
}

// SolanaConfig holds chain RPC configuration
type SolanaConfig struct {
	RPCURL            string        `mapstructure:"rpc_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"` // 0 disables client-side rate limiting
}

// JupiterConfig holds token registry and swap API configuration
type JupiterConfig struct {
	APIBaseURL string        `mapstructure:"api_base_url"`
	TokensURL  string        `mapstructure:"tokens_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds token list cache configuration
type CacheConfig struct {
	Backend        string        `mapstructure:"backend"`
	Key            string        `mapstructure:"key"`
	TTL            time.Duration `mapstructure:"ttl"`
	RefreshTimeout time.Duration `mapstructure:"refresh_timeout"` // bounds a refresh shared by concurrent cold-miss readers
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// ClickHouseConfig holds ClickHouse configuration
type ClickHouseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// SchedulerConfig holds the daily refresh schedule
type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Hour     int    `mapstructure:"hour"`
	Minute   int    `mapstructure:"minute"`
	Timezone string `mapstructure:"timezone"`
}

// WalletConfig holds enrichment behaviour toggles
type WalletConfig struct {
	DegradeOnMetadataError bool `mapstructure:"degrade_on_metadata_error"`
}

// Config holds configuration shared by the server and refresh commands
type Config struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig     `mapstructure:"server"`
	Solana     SolanaConfig     `mapstructure:"solana"`
	Jupiter    JupiterConfig    `mapstructure:"jupiter"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Wallet     WalletConfig     `mapstructure:"wallet"`
}

// Load loads configuration for the given service.
// A missing config file is not an error; environment variables and defaults apply.
func Load(service string, configFile string, envPath string) (*Config, error) {
	v := configureViper(service, configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "35s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("solana.rpc_url", "https://api.mainnet-beta.solana.com")
	v.SetDefault("solana.timeout", "30s")
	v.SetDefault("solana.max_retries", 0)
	v.SetDefault("solana.requests_per_second", 0)
	v.SetDefault("jupiter.api_base_url", "https://quote-api.jup.ag/v6")
	v.SetDefault("jupiter.tokens_url", "https://lite-api.jup.ag/tokens/v2/tag?query=verified")
	v.SetDefault("jupiter.timeout", "30s")
	v.SetDefault("cache.backend", CacheBackendRedis)
	v.SetDefault("cache.key", "jupiter:verified_tokens")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.refresh_timeout", "2m")
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.hour", 0)
	v.SetDefault("scheduler.minute", 0)
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("wallet.degrade_on_metadata_error", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendRedis, CacheBackendPostgres, CacheBackendMemory:
	default:
		return fmt.Errorf("invalid cache.backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheBackendPostgres && c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required when cache.backend is postgres")
	}
	if c.Cache.Key == "" {
		return errors.New("cache.key is required")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Scheduler.Hour < 0 || c.Scheduler.Hour > 23 {
		return fmt.Errorf("scheduler.hour must be within 0..23, got %d", c.Scheduler.Hour)
	}
	if c.Scheduler.Minute < 0 || c.Scheduler.Minute > 59 {
		return fmt.Errorf("scheduler.minute must be within 0..59, got %d", c.Scheduler.Minute)
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("invalid scheduler.timezone %q: %w", c.Scheduler.Timezone, err)
	}
	if c.Solana.MaxRetries < 0 {
		return fmt.Errorf("solana.max_retries must not be negative, got %d", c.Solana.MaxRetries)
	}
	return nil
}

// Address returns the host:port the HTTP server listens on.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees env vars for keys viper already knows about
	bindAllEnvVars(v)
	return v
}

func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.request_timeout",
		// Solana
		"solana.rpc_url",
		"solana.timeout",
		"solana.max_retries",
		"solana.requests_per_second",
		// Jupiter
		"jupiter.api_base_url",
		"jupiter.tokens_url",
		"jupiter.timeout",
		// Cache
		"cache.backend",
		"cache.key",
		"cache.ttl",
		// Stores
		"redis.url",
		"postgres.dsn",
		"clickhouse.dsn",
		// Scheduler
		"scheduler.enabled",
		"scheduler.hour",
		"scheduler.minute",
		"scheduler.timezone",
		// Wallet
		"wallet.degrade_on_metadata_error",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads .env files; later files override earlier ones.
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		_ = godotenv.Overload(filepath.Join(envPath, envFile))
	}
}
