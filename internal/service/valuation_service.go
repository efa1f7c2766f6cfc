package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nkoval/govscan/internal/domain"
	"github.com/nkoval/govscan/internal/interp"
)

// ValuationService evaluates proposals end to end: fetch the call tree,
// interpret it into a ledger, value the ledger in USD and the native token,
// and persist/archive the result.
type ValuationService struct {
	source   domain.ProposalSource
	interp   *interp.Interpreter
	prices   *PriceService
	store    domain.ValuationStore
	archiver domain.ProposalArchiver
	net      domain.NetworkConfig
	logger   *slog.Logger
}

// NewValuationService creates a ValuationService. store and archiver may be
// nil for print-only runs; valuations are then computed but not persisted.
func NewValuationService(
	source domain.ProposalSource,
	interpreter *interp.Interpreter,
	prices *PriceService,
	store domain.ValuationStore,
	archiver domain.ProposalArchiver,
	net domain.NetworkConfig,
	logger *slog.Logger,
) *ValuationService {
	return &ValuationService{
		source:   source,
		interp:   interpreter,
		prices:   prices,
		store:    store,
		archiver: archiver,
		net:      net,
		logger:   logger.With(slog.String("component", "valuation"), slog.String("network", net.Name)),
	}
}

// Evaluate values a single proposal. Undetermined outcomes are not errors:
// the returned valuation carries the Undetermined flag and nil scalars.
// Errors are reserved for infrastructure failures and contract violations.
func (s *ValuationService) Evaluate(ctx context.Context, proposalID uint32) (domain.Valuation, error) {
	prop, err := s.source.GetReferendum(ctx, proposalID)
	if err != nil {
		return domain.Valuation{}, fmt.Errorf("valuation: fetch referendum %d: %w", proposalID, err)
	}

	ledger := domain.NewLedger()
	s.interp.Interpret(prop.Call, proposalID, ledger)

	// Historic valuations are pinned to the enactment time when known.
	asOf := prop.ExecutedAt
	usd, err := ledger.TotalValue(s.prices, domain.KindUSDC, asOf)
	if err != nil {
		return domain.Valuation{}, fmt.Errorf("valuation: referendum %d: %w", proposalID, err)
	}
	native, err := ledger.TotalValue(s.prices, domain.KindNative, asOf)
	if err != nil {
		return domain.Valuation{}, fmt.Errorf("valuation: referendum %d: %w", proposalID, err)
	}

	v := domain.Valuation{
		Network:      s.net.Name,
		ProposalID:   proposalID,
		Amounts:      ledger.Snapshot(),
		USDValue:     scalar(usd),
		NativeValue:  scalar(native),
		Undetermined: ledger.Invalid(),
		EvaluatedAt:  time.Now().UTC(),
	}

	if v.Undetermined {
		s.logger.Warn("proposal valuation undetermined",
			slog.Uint64("proposal_id", uint64(proposalID)),
		)
	}

	if s.store != nil {
		if err := s.store.Upsert(ctx, v); err != nil {
			return domain.Valuation{}, fmt.Errorf("valuation: persist referendum %d: %w", proposalID, err)
		}
	}
	if s.archiver != nil && len(prop.Raw) > 0 {
		if err := s.archiver.ArchiveProposal(ctx, s.net.Name, proposalID, prop.Raw); err != nil {
			// Archival is best effort; the valuation itself already landed.
			s.logger.Warn("archive raw proposal failed",
				slog.Uint64("proposal_id", uint64(proposalID)),
				slog.String("error", err.Error()),
			)
		}
	}

	return v, nil
}

// EvaluateMany evaluates the given proposals with bounded concurrency.
// Evaluations are independent, so order is not preserved beyond the result
// slice being indexed like ids. The first infrastructure error cancels the
// rest of the batch.
func (s *ValuationService) EvaluateMany(ctx context.Context, ids []uint32, concurrency int) ([]domain.Valuation, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]domain.Valuation, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			v, err := s.Evaluate(ctx, id)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("valuation: batch: %w", err)
	}
	return results, nil
}

// scalar converts a ledger valuation into a nullable column value: NaN (the
// undefined marker) becomes nil so it can never be mistaken for zero.
func scalar(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
