package clickhouse

import (
	"context"
	"fmt"
	"time"

	"solana-wallet-tokens/internal/domain"
	"solana-wallet-tokens/internal/observability"
	"solana-wallet-tokens/internal/storage"
)

// RefreshLogStore implements storage.RefreshLogStore using ClickHouse.
type RefreshLogStore struct {
	conn *Conn
}

// NewRefreshLogStore creates a new RefreshLogStore.
func NewRefreshLogStore(conn *Conn) *RefreshLogStore {
	return &RefreshLogStore{conn: conn}
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
		) VALUES (?, ?, ?, ?, ?)
	`

	start := time.Now()
	err := s.conn.Exec(ctx, query,
		uint64(r.RefreshedAt),
		uint32(r.Entries),
		uint64(r.DurationMs),
		string(r.Status),
		r.Error,
	)
	observability.RecordDBQuery("clickhouse", "refresh_log_insert", time.Since(start).Seconds(), err)
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
		ORDER BY refreshed_at DESC
		LIMIT ?
	`

	start := time.Now()
	rows, err := s.conn.Query(ctx, query, uint64(limit))
	observability.RecordDBQuery("clickhouse", "refresh_log_latest", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("query refresh log: %w", err)
	}
	defer rows.Close()

	var result []*domain.RefreshRecord
	for rows.Next() {
		var (
			refreshedAt, durationMs uint64
			entries                 uint32
			status                  string
			errMsg                  *string
		)
		if err := rows.Scan(&refreshedAt, &entries, &durationMs, &status, &errMsg); err != nil {
			return nil, fmt.Errorf("scan refresh record: %w", err)
		}
		result = append(result, &domain.RefreshRecord{
			RefreshedAt: int64(refreshedAt),
			Entries:     int(entries),
			DurationMs:  int64(durationMs),
			Status:      domain.RefreshStatus(status),
			Error:       errMsg,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refresh records: %w", err)
	}
	return result, nil
}
