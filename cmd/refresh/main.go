// Package main refreshes the verified token list once and optionally prints the refresh history.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"solana-wallet-tokens/internal/app"
	"solana-wallet-tokens/internal/config"
	"solana-wallet-tokens/internal/domain"
	"solana-wallet-tokens/internal/logger"
)

func main() {
	configFile := flag.String("config", "", "Path to configuration file")
	envPath := flag.String("env", "", "Path to environment files")
	skipRefresh := flag.Bool("no-refresh", false, "Only print history, do not refresh")
	history := flag.Int("history", 0, "Print the latest N refresh records")
	outputJSON := flag.Bool("json", false, "Output history as JSON")
	timeout := flag.Duration("timeout", 5*time.Minute, "Refresh timeout")

	flag.Parse()

	cfg, err := config.Load("refresh", *configFile, *envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "wallet-tokens-refresh",
		},
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Flush(2 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	stores, err := app.OpenStores(ctx, cfg, logger.Default())
	if err != nil {
		logger.Fatal("Failed to open stores", zap.Error(err))
	}
	defer stores.Close()

	exitCode := 0
	if !*skipRefresh {
		services := app.NewServices(cfg, stores, logger.Default())
		entries, err := services.Cache.Refresh(ctx)
		switch {
		case err == nil:
			logger.Info("Token list refreshed", zap.Int("entries", len(entries)), zap.String("key", services.Cache.Key()))
		case errors.Is(err, domain.ErrCacheWrite):
			logger.Error(err, zap.Int("entries", len(entries)))
			exitCode = 2
		default:
			logger.Error(err)
			exitCode = 1
		}
	}

	if *history > 0 {
		records, err := stores.RefreshLog.Latest(ctx, *history)
		if err != nil {
			logger.Error(err, zap.String("component", "refresh_log"))
			exitCode = 1
		} else if err := printHistory(records, *outputJSON); err != nil {
			logger.Error(err)
			exitCode = 1
		}
	}

	if exitCode != 0 {
		logger.Flush(2 * time.Second)
		stores.Close()
		os.Exit(exitCode)
	}
}

func printHistory(records []*domain.RefreshRecord, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REFRESHED AT\tSTATUS\tENTRIES\tDURATION\tERROR")
	for _, r := range records {
		errMsg := ""
		if r.Error != nil {
			errMsg = *r.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			time.UnixMilli(r.RefreshedAt).UTC().Format(time.RFC3339),
			r.Status,
			r.Entries,
			time.Duration(r.DurationMs)*time.Millisecond,
			errMsg)
	}
	return w.Flush()
}
