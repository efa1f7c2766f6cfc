package domain

import (
	"context"
	"time"
)

// ProposalSource fetches referenda from the explorer API.
type ProposalSource interface {
	// ListReferenda returns one page of referendum summaries plus the total
	// count known to the explorer. Pages are zero-based.
	ListReferenda(ctx context.Context, page, pageSize int) ([]ProposalSummary, int, error)
	// GetReferendum returns one referendum with its decoded call tree.
	GetReferendum(ctx context.Context, id uint32) (Proposal, error)
}

// QuoteSource supplies native-token-in-USD prices.
type QuoteSource interface {
	Current(ctx context.Context) (float64, error)
	History(ctx context.Context, from, to time.Time) ([]Quote, error)
}

// QuoteCache caches the quote series between pipeline runs.
type QuoteCache interface {
	PutSeries(ctx context.Context, quotes []Quote) error
	GetSeries(ctx context.Context) ([]Quote, error)
	SetCurrent(ctx context.Context, price float64, ts time.Time) error
	GetCurrent(ctx context.Context) (float64, time.Time, error)
}

// ValuationStore persists final proposal valuations. It only ever receives
// scalar values and amount columns, never ledger objects.
type ValuationStore interface {
	Upsert(ctx context.Context, v Valuation) error
	Get(ctx context.Context, network string, proposalID uint32) (Valuation, error)
	List(ctx context.Context, network string, limit, offset int) ([]Valuation, error)
	MaxProposalID(ctx context.Context, network string) (uint32, error)
}

// ScanRunStore persists pipeline audit rows.
type ScanRunStore interface {
	Insert(ctx context.Context, run ScanRun) error
	ListRecent(ctx context.Context, network string, limit int) ([]ScanRun, error)
}

// ProposalArchiver stores raw proposal payloads for audit.
type ProposalArchiver interface {
	ArchiveProposal(ctx context.Context, network string, proposalID uint32, raw []byte) error
}
