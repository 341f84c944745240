// Package main runs the wallet token API together with the daily token list refresh.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"solana-wallet-tokens/internal/api/rest"
	"solana-wallet-tokens/internal/api/server"
	"solana-wallet-tokens/internal/app"
	"solana-wallet-tokens/internal/config"
	"solana-wallet-tokens/internal/logger"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "", "Path to environment files")
	warmCache  = flag.Bool("warm", false, "Refresh the token list once before serving")
)

func main() {
	flag.Parse()

	cfg, err := config.Load("server", *configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "wallet-tokens-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.InfoCtx(ctx, "Starting wallet token service",
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("rpc_url", cfg.Solana.RPCURL))

	stores, err := app.OpenStores(ctx, cfg, logger.Default())
	if err != nil {
		logger.Fatal("Failed to open stores", zap.Error(err))
	}
	defer stores.Close()

	services := app.NewServices(cfg, stores, logger.Default())

	if *warmCache {
		if _, err := services.Cache.Refresh(ctx); err != nil {
			logger.Warn("Initial token list refresh failed, serving with a cold cache", zap.Error(err))
		}
	}

	daily, err := app.NewScheduler(cfg, services.Cache, logger.Default())
	if err != nil {
		logger.Fatal("Failed to configure refresh scheduler", zap.Error(err))
	}

	var wg sync.WaitGroup
	if daily != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := daily.Run(ctx); err != nil {
				logger.Error(err, zap.String("component", "scheduler"))
			}
		}()
	} else {
		logger.Warn("Daily token list refresh disabled")
	}

	srv := server.New(cfg.Server, cfg.Debug, rest.NewHandler(services.Enricher, services.Cache, services.Swaps))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
	}
	cancel()

	// ctx is already cancelled
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout+5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, zap.String("component", "server"))
	}
	wg.Wait()

	logger.Info("Wallet token service stopped")
}
