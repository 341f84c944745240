package storage

import (
	"fmt"
	"time"

	"solana-wallet-tokens/internal/domain"
)

// ValidateSet checks the arguments of TokenListStore.Set.
func ValidateSet(key string, ttl time.Duration) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidInput)
	}
	if ttl <= 0 {
		return fmt.Errorf("%w: ttl must be positive, got %s", ErrInvalidInput, ttl)
	}
	return nil
}

// ValidateRecord checks a refresh record before it is stored.
func ValidateRecord(r *domain.RefreshRecord) error {
	if r == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidInput)
	}
	if r.RefreshedAt <= 0 {
		return fmt.Errorf("%w: refreshed_at must be positive", ErrInvalidInput)
	}
	if r.Status == "" {
		return fmt.Errorf("%w: empty status", ErrInvalidInput)
	}
	return nil
}
