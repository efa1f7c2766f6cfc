package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkoval/govscan/internal/domain"
)

// ValuationStore implements domain.ValuationStore using PostgreSQL.
type ValuationStore struct {
	pool *pgxpool.Pool
}

// NewValuationStore creates a ValuationStore backed by the given pool.
func NewValuationStore(pool *pgxpool.Pool) *ValuationStore {
	return &ValuationStore{pool: pool}
}

const valuationSelectCols = `network, proposal_id, amounts, usd_value, native_value, undetermined, evaluated_at`

// Upsert inserts or replaces the valuation for a proposal. Re-evaluating a
// proposal is routine (the explorer back-fills preimages), so the latest
// evaluation always wins.
func (s *ValuationStore) Upsert(ctx context.Context, v domain.Valuation) error {
	amounts, err := json.Marshal(v.Amounts)
	if err != nil {
		return fmt.Errorf("postgres: encode amounts: %w", err)
	}

	const query = `
		INSERT INTO valuations (
			network, proposal_id, amounts, usd_value, native_value,
			undetermined, evaluated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (network, proposal_id) DO UPDATE SET
			amounts = EXCLUDED.amounts,
			usd_value = EXCLUDED.usd_value,
			native_value = EXCLUDED.native_value,
			undetermined = EXCLUDED.undetermined,
			evaluated_at = EXCLUDED.evaluated_at`

	_, err = s.pool.Exec(ctx, query,
		v.Network, v.ProposalID, amounts, v.USDValue, v.NativeValue,
		v.Undetermined, v.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert valuation %s/%d: %w", v.Network, v.ProposalID, err)
	}
	return nil
}

// Get returns the valuation for one proposal.
func (s *ValuationStore) Get(ctx context.Context, network string, proposalID uint32) (domain.Valuation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+valuationSelectCols+` FROM valuations WHERE network = $1 AND proposal_id = $2`,
		network, proposalID,
	)
	v, err := scanValuation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Valuation{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Valuation{}, fmt.Errorf("postgres: get valuation %s/%d: %w", network, proposalID, err)
	}
	return v, nil
}

// List returns valuations for a network ordered by proposal id descending.
func (s *ValuationStore) List(ctx context.Context, network string, limit, offset int) ([]domain.Valuation, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+valuationSelectCols+` FROM valuations
		 WHERE network = $1 ORDER BY proposal_id DESC LIMIT $2 OFFSET $3`,
		network, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list valuations: %w", err)
	}
	defer rows.Close()

	var out []domain.Valuation
	for rows.Next() {
		v, err := scanValuation(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan valuation: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// MaxProposalID returns the highest proposal id valued so far, or zero when
// none exist.
func (s *ValuationStore) MaxProposalID(ctx context.Context, network string) (uint32, error) {
	var max *int64
	err := s.pool.QueryRow(ctx,
		`SELECT MAX(proposal_id) FROM valuations WHERE network = $1`, network,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("postgres: max proposal id: %w", err)
	}
	if max == nil {
		return 0, nil
	}
	return uint32(*max), nil
}

// scanValuation reads one valuation row.
func scanValuation(row pgx.Row) (domain.Valuation, error) {
	var v domain.Valuation
	var amounts []byte
	if err := row.Scan(
		&v.Network, &v.ProposalID, &amounts, &v.USDValue, &v.NativeValue,
		&v.Undetermined, &v.EvaluatedAt,
	); err != nil {
		return domain.Valuation{}, err
	}
	if len(amounts) > 0 {
		if err := json.Unmarshal(amounts, &v.Amounts); err != nil {
			return domain.Valuation{}, fmt.Errorf("decode amounts: %w", err)
		}
	}
	return v, nil
}

// Compile-time interface check.
var _ domain.ValuationStore = (*ValuationStore)(nil)
