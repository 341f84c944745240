package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"solana-wallet-tokens/internal/domain"
)

type fakeRefresher struct {
	mu      sync.Mutex
	calls   int
	err     error
	panicV  interface{}
	block   chan struct{}
	started chan struct{}
	entries []domain.TokenListEntry
}

func (f *fakeRefresher) Refresh(ctx context.Context) ([]domain.TokenListEntry, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.panicV != nil {
		panic(f.panicV)
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("refresh context has no deadline")
	}
	return f.entries, f.err
}

func (f *fakeRefresher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func TestNewDailyRefresh_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "midnight", cfg: Config{Hour: 0, Minute: 0}},
		{name: "last minute of day", cfg: Config{Hour: 23, Minute: 59}},
		{name: "hour too large", cfg: Config{Hour: 24}, wantErr: true},
		{name: "negative hour", cfg: Config{Hour: -1}, wantErr: true},
		{name: "minute too large", cfg: Config{Minute: 60}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDailyRefresh(&fakeRefresher{}, tt.cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDailyRefresh_Next(t *testing.T) {
	d, err := NewDailyRefresh(&fakeRefresher{}, Config{Hour: 3, Minute: 30}, nil)
	require.NoError(t, err)

	before := time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 1, 3, 30, 0, 0, time.UTC), d.Next(before))

	after := time.Date(2024, 5, 1, 3, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 2, 3, 30, 0, 0, time.UTC), d.Next(after))
}

func TestDailyRefresh_NextHonorsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	d, err := NewDailyRefresh(&fakeRefresher{}, Config{Hour: 0, Minute: 0, Location: loc}, nil)
	require.NoError(t, err)

	next := d.Next(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	assert.True(t, next.Equal(time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC)), "got %s", next)
}

func TestRunOnce_Outcomes(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
		wantMsg   string
	}{
		{name: "success", wantLevel: "info", wantMsg: "scheduled token list refresh succeeded"},
		{
			name:      "store write failure",
			err:       fmt.Errorf("%w: boom", domain.ErrCacheWrite),
			wantLevel: "warn",
			wantMsg:   "scheduled token list refresh fetched but could not store the list",
		},
		{
			name:      "upstream failure",
			err:       fmt.Errorf("%w: 503", domain.ErrUpstreamFetch),
			wantLevel: "error",
			wantMsg:   "scheduled token list refresh failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := observedLogger()
			r := &fakeRefresher{err: tt.err, entries: []domain.TokenListEntry{{ID: "a"}}}
			d, err := NewDailyRefresh(r, Config{}, logger)
			require.NoError(t, err)

			assert.True(t, d.RunOnce(context.Background()))
			assert.Equal(t, 1, r.Calls())
			assert.Equal(t, 1, d.Runs())

			entries := logs.FilterMessage(tt.wantMsg).All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0].Level.String())
		})
	}
}

func TestRunOnce_RecoversPanic(t *testing.T) {
	logger, logs := observedLogger()
	d, err := NewDailyRefresh(&fakeRefresher{panicV: "kaboom"}, Config{}, logger)
	require.NoError(t, err)

	assert.NotPanics(t, func() { d.RunOnce(context.Background()) })
	assert.Equal(t, 1, logs.FilterMessage("token list refresh panicked").Len())
	assert.Equal(t, 1, d.Runs())
}

func TestRunOnce_SkipsOverlappingRun(t *testing.T) {
	r := &fakeRefresher{block: make(chan struct{}), started: make(chan struct{}, 1)}
	d, err := NewDailyRefresh(r, Config{}, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		d.RunOnce(context.Background())
		close(done)
	}()
	<-r.started

	assert.False(t, d.RunOnce(context.Background()))
	close(r.block)
	<-done

	assert.Equal(t, 1, r.Calls())
}

func TestRun_StopsOnCancel(t *testing.T) {
	d, err := NewDailyRefresh(&fakeRefresher{}, Config{Hour: 4}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
