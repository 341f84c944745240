package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-wallet-tokens/internal/domain"
	"solana-wallet-tokens/internal/storage"
)

// RefreshLogStore implements storage.RefreshLogStore using PostgreSQL.
type RefreshLogStore struct {
	pool *Pool
}

// NewRefreshLogStore creates a new RefreshLogStore.
func NewRefreshLogStore(pool *Pool) *RefreshLogStore {
	return &RefreshLogStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RefreshLogStore = (*RefreshLogStore)(nil)

// Insert appends a refresh record.
func (s *RefreshLogStore) Insert(ctx context.Context, r *domain.RefreshRecord) error {
	if err := storage.ValidateRecord(r); err != nil {
		return err
	}

	query := `
		INSERT INTO refresh_log (
			refreshed_at, entries, duration_ms, status, error
		) VALUES ($1, $2, $3, $4, $5)
	`

	start := time.Now()
	_, err := s.pool.Exec(ctx, query,
		r.RefreshedAt,
		r.Entries,
		r.DurationMs,
		string(r.Status),
		r.Error,
	)
	observe("refresh_log_insert", start, err)
	if err != nil {
		return fmt.Errorf("insert refresh record: %w", err)
	}
	return nil
}

// Latest returns up to limit records, most recent first.
func (s *RefreshLogStore) Latest(ctx context.Context, limit int) ([]*domain.RefreshRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT refreshed_at, entries, duration_ms, status, error
		FROM refresh_log
		ORDER BY refreshed_at DESC, id DESC
		LIMIT $1
	`

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, limit)
	observe("refresh_log_latest", start, err)
	if err != nil {
		return nil, fmt.Errorf("query refresh log: %w", err)
	}
	defer rows.Close()

	return scanRefreshRecords(rows)
}

func scanRefreshRecords(rows pgx.Rows) ([]*domain.RefreshRecord, error) {
	var result []*domain.RefreshRecord
	for rows.Next() {
		var r domain.RefreshRecord
		var status string
		if err := rows.Scan(&r.RefreshedAt, &r.Entries, &r.DurationMs, &status, &r.Error); err != nil {
			return nil, fmt.Errorf("scan refresh record: %w", err)
		}
		r.Status = domain.RefreshStatus(status)
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refresh records: %w", err)
	}
	return result, nil
}
