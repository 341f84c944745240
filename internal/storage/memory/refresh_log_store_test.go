package memory

import (
	"context"
	"errors"
	"testing"

	"solana-wallet-tokens/internal/domain"
	"solana-wallet-tokens/internal/storage"
)

func TestRefreshLogStore_InsertAndLatest(t *testing.T) {
	store := NewRefreshLogStore()
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		err := store.Insert(ctx, &domain.RefreshRecord{
			RefreshedAt: 1704067200000 + i,
			Entries:     int(i) * 10,
			Status:      domain.RefreshStatusSuccess,
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	latest, err := store.Latest(ctx, 2)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("expected 2 records, got %d", len(latest))
	}
	if latest[0].RefreshedAt != 1704067200003 {
		t.Errorf("expected most recent first, got %d", latest[0].RefreshedAt)
	}
	if latest[1].Entries != 20 {
		t.Errorf("expected 20 entries, got %d", latest[1].Entries)
	}

	all, _ := store.Latest(ctx, 10)
	if len(all) != 3 {
		t.Errorf("expected 3 records, got %d", len(all))
	}
}

func TestRefreshLogStore_InvalidInput(t *testing.T) {
	store := NewRefreshLogStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.RefreshRecord{RefreshedAt: 1}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty status, got %v", err)
	}
	if _, err := store.Latest(ctx, 0); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero limit, got %v", err)
	}
}
