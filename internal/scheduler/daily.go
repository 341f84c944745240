// Package scheduler runs the token list refresh once a day at a fixed wall-clock time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron"
	"go.uber.org/zap"

	"solana-wallet-tokens/internal/domain"
)

// DefaultRunTimeout bounds a single scheduled refresh.
const DefaultRunTimeout = 5 * time.Minute

// Refresher refreshes the token list unconditionally.
type Refresher interface {
	Refresh(ctx context.Context) ([]domain.TokenListEntry, error)
}

// Config holds the daily schedule.
type Config struct {
	Hour       int
	Minute     int
	Location   *time.Location
	RunTimeout time.Duration
}

// DailyRefresh fires Refresh every day at Hour:Minute in Location.
type DailyRefresh struct {
	refresher Refresher
	spec      string
	schedule  cron.Schedule
	location  *time.Location
	timeout   time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	running bool
	runs    int
}

// NewDailyRefresh validates cfg and builds the schedule.
func NewDailyRefresh(refresher Refresher, cfg Config, logger *zap.Logger) (*DailyRefresh, error) {
	if cfg.Hour < 0 || cfg.Hour > 23 {
		return nil, fmt.Errorf("hour must be within 0..23, got %d", cfg.Hour)
	}
	if cfg.Minute < 0 || cfg.Minute > 59 {
		return nil, fmt.Errorf("minute must be within 0..59, got %d", cfg.Minute)
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultRunTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// second minute hour dom month dow
	spec := fmt.Sprintf("0 %d %d * * *", cfg.Minute, cfg.Hour)
	schedule, err := cron.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}

	return &DailyRefresh{
		refresher: refresher,
		spec:      spec,
		schedule:  schedule,
		location:  cfg.Location,
		timeout:   cfg.RunTimeout,
		logger:    logger,
	}, nil
}

// Next returns the first scheduled run strictly after t.
func (d *DailyRefresh) Next(t time.Time) time.Time {
	return d.schedule.Next(t.In(d.location))
}

// Run blocks until ctx is cancelled, firing RunOnce on schedule.
// A run still in flight at shutdown observes the cancelled context.
func (d *DailyRefresh) Run(ctx context.Context) error {
	c := cron.NewWithLocation(d.location)
	if err := c.AddFunc(d.spec, func() { d.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}

	d.logger.Info("token list refresh scheduled",
		zap.String("spec", d.spec),
		zap.String("timezone", d.location.String()),
		zap.Time("next_run", d.Next(time.Now())))

	c.Start()
	<-ctx.Done()
	c.Stop()

	d.logger.Info("token list refresh scheduler stopped")
	return nil
}

// RunOnce performs one refresh. Failures are logged, never returned or panicked,
// so a bad run cannot take the process down. Overlapping runs are skipped.
// It reports whether a refresh was attempted.
func (d *DailyRefresh) RunOnce(ctx context.Context) bool {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		d.logger.Warn("token list refresh already running, skipping")
		return false
	}
	d.running = true
	d.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("token list refresh panicked", zap.Any("panic", r))
		}
		d.mu.Lock()
		d.running = false
		d.runs++
		d.mu.Unlock()
	}()

	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	entries, err := d.refresher.Refresh(runCtx)
	switch {
	case err == nil:
		d.logger.Info("scheduled token list refresh succeeded",
			zap.Int("entries", len(entries)),
			zap.Duration("duration", time.Since(start)))
	case errors.Is(err, domain.ErrCacheWrite):
		d.logger.Warn("scheduled token list refresh fetched but could not store the list",
			zap.Int("entries", len(entries)),
			zap.Error(err))
	default:
		d.logger.Error("scheduled token list refresh failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
	}
	return true
}

// Runs returns how many refreshes have completed.
func (d *DailyRefresh) Runs() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runs
}
