// Package app assembles stores, upstream clients and services from configuration.
// Both the API server and the refresh CLI build on it.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"solana-wallet-tokens/internal/adapter"
	"solana-wallet-tokens/internal/config"
	"solana-wallet-tokens/internal/jupiter"
	"solana-wallet-tokens/internal/registry"
	"solana-wallet-tokens/internal/scheduler"
	"solana-wallet-tokens/internal/solana"
	"solana-wallet-tokens/internal/storage"
	chstore "solana-wallet-tokens/internal/storage/clickhouse"
	"solana-wallet-tokens/internal/storage/memory"
	"solana-wallet-tokens/internal/storage/migrations"
	pgstore "solana-wallet-tokens/internal/storage/postgres"
	redisstore "solana-wallet-tokens/internal/storage/redis"
	"solana-wallet-tokens/internal/tokencache"
	"solana-wallet-tokens/internal/wallet"
)

// Stores holds the storage backends selected by configuration.
type Stores struct {
	TokenList  storage.TokenListStore
	RefreshLog storage.RefreshLogStore

	closers []func()
}

// Close releases every opened connection, most recent first.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// OpenStores connects the token list store for cache.backend and the refresh log.
// The refresh log goes to ClickHouse when clickhouse.dsn is set, to Postgres when that
// is the cache backend, and to memory otherwise.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	stores := &Stores{}
	var pool *pgstore.Pool

	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		client, err := redisstore.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		stores.closers = append(stores.closers, func() { _ = client.Close() })
		stores.TokenList = redisstore.NewTokenListStore(client)

	case config.CacheBackendPostgres:
		var err error
		pool, err = pgstore.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		stores.closers = append(stores.closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			stores.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		stores.TokenList = pgstore.NewTokenListStore(pool)

	case config.CacheBackendMemory:
		stores.TokenList = memory.NewTokenListStore()

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}

	switch {
	case cfg.ClickHouse.DSN != "":
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouse.DSN)
		if err != nil {
			stores.Close()
			return nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		stores.closers = append(stores.closers, func() { _ = conn.Close() })
		stores.RefreshLog = chstore.NewRefreshLogStore(conn)
	case pool != nil:
		stores.RefreshLog = pgstore.NewRefreshLogStore(pool)
	default:
		stores.RefreshLog = memory.NewRefreshLogStore()
	}

	logger.Info("storage ready",
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("clickhouse_refresh_log", cfg.ClickHouse.DSN != ""))

	return stores, nil
}

// Services holds the assembled request-serving components.
type Services struct {
	Cache    *tokencache.Cache
	Enricher *wallet.Enricher
	Swaps    *jupiter.Client
}

// NewServices wires upstream clients and the metadata cache over stores.
func NewServices(cfg *config.Config, stores *Stores, logger *zap.Logger) *Services {
	httpClient := adapter.NewHTTPClient(cfg.Jupiter.Timeout, adapter.WithLogger(logger))

	cache := tokencache.New(stores.TokenList, registry.NewClient(httpClient, cfg.Jupiter.TokensURL, logger), tokencache.Options{
		Key:            cfg.Cache.Key,
		TTL:            cfg.Cache.TTL,
		RefreshLog:     stores.RefreshLog,
		Logger:         logger,
		RefreshTimeout: cfg.Cache.RefreshTimeout,
	})

	rpcOpts := []solana.ClientOption{
		solana.WithTimeout(cfg.Solana.Timeout),
		solana.WithMaxRetries(cfg.Solana.MaxRetries),
	}
	if cfg.Solana.RequestsPerSecond > 0 {
		rpcOpts = append(rpcOpts, solana.WithRateLimit(cfg.Solana.RequestsPerSecond))
	}
	rpc := solana.NewHTTPClient(cfg.Solana.RPCURL, rpcOpts...)

	enricher := wallet.NewEnricher(rpc, cache,
		wallet.WithDegradeOnMetadataError(cfg.Wallet.DegradeOnMetadataError),
		wallet.WithLogger(logger))

	return &Services{
		Cache:    cache,
		Enricher: enricher,
		Swaps:    jupiter.NewClient(httpClient, cfg.Jupiter.APIBaseURL, logger),
	}
}

// NewScheduler builds the daily refresh for cache, or nil when scheduling is disabled.
func NewScheduler(cfg *config.Config, cache *tokencache.Cache, logger *zap.Logger) (*scheduler.DailyRefresh, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}
	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone %q: %w", cfg.Scheduler.Timezone, err)
	}
	return scheduler.NewDailyRefresh(cache, scheduler.Config{
		Hour:     cfg.Scheduler.Hour,
		Minute:   cfg.Scheduler.Minute,
		Location: loc,
	}, logger)
}
