package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkoval/govscan/internal/domain"
)

// ScanRunStore implements domain.ScanRunStore using PostgreSQL.
type ScanRunStore struct {
	pool *pgxpool.Pool
}

// NewScanRunStore creates a ScanRunStore backed by the given pool.
func NewScanRunStore(pool *pgxpool.Pool) *ScanRunStore {
	return &ScanRunStore{pool: pool}
}

// Insert records one completed pipeline sweep.
func (s *ScanRunStore) Insert(ctx context.Context, run domain.ScanRun) error {
	const query = `
		INSERT INTO scan_runs (
			id, network, started_at, finished_at, seen, valued, undetermined, error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		run.ID, run.Network, run.StartedAt, run.FinishedAt,
		run.Seen, run.Valued, run.Undetermined, run.Error,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert scan run %s: %w", run.ID, err)
	}
	return nil
}

// ListRecent returns the most recent runs for a network.
func (s *ScanRunStore) ListRecent(ctx context.Context, network string, limit int) ([]domain.ScanRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, network, started_at, finished_at, seen, valued, undetermined, error
		 FROM scan_runs WHERE network = $1 ORDER BY started_at DESC LIMIT $2`,
		network, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list scan runs: %w", err)
	}
	defer rows.Close()

	var out []domain.ScanRun
	for rows.Next() {
		var run domain.ScanRun
		if err := rows.Scan(
			&run.ID, &run.Network, &run.StartedAt, &run.FinishedAt,
			&run.Seen, &run.Valued, &run.Undetermined, &run.Error,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan run row: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Compile-time interface check.
var _ domain.ScanRunStore = (*ScanRunStore)(nil)
