package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nkoval/govscan/internal/domain"
	"github.com/nkoval/govscan/internal/service"
)

// Scanner pages through the explorer's referendum list, evaluates anything
// newer than the last persisted valuation, and records one audit row per
// sweep.
type Scanner struct {
	source      domain.ProposalSource
	valuations  *service.ValuationService
	store       domain.ValuationStore
	runs        domain.ScanRunStore
	network     string
	pageSize    int
	concurrency int
	logger      *slog.Logger
}

// NewScanner creates a Scanner. store and runs may be nil for print-only
// runs; the scanner then sweeps everything and persists nothing.
func NewScanner(
	source domain.ProposalSource,
	valuations *service.ValuationService,
	store domain.ValuationStore,
	runs domain.ScanRunStore,
	network string,
	pageSize int,
	concurrency int,
	logger *slog.Logger,
) *Scanner {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Scanner{
		source:      source,
		valuations:  valuations,
		store:       store,
		runs:        runs,
		network:     network,
		pageSize:    pageSize,
		concurrency: concurrency,
		logger:      logger.With(slog.String("component", "scanner"), slog.String("network", network)),
	}
}

// RunOnce performs a single incremental sweep: referenda newer than the
// highest persisted proposal id are evaluated and stored. The audit row is
// written even when the sweep fails partway.
func (s *Scanner) RunOnce(ctx context.Context) error {
	var floor uint32
	if s.store != nil {
		maxID, err := s.store.MaxProposalID(ctx, s.network)
		if err != nil {
			return fmt.Errorf("scanner: resolve floor: %w", err)
		}
		floor = maxID
	}
	return s.sweep(ctx, floor)
}

// Backfill sweeps every referendum the explorer knows about, re-evaluating
// proposals that already have a valuation. Used to pick up preimages the
// explorer decoded after the original sweep.
func (s *Scanner) Backfill(ctx context.Context) error {
	return s.sweep(ctx, 0)
}

func (s *Scanner) sweep(ctx context.Context, floor uint32) error {
	started := time.Now().UTC()
	ids, err := s.collectIDs(ctx, floor)

	var valued, undetermined int
	if err == nil && len(ids) > 0 {
		s.logger.Info("sweep starting",
			slog.Int("proposals", len(ids)),
			slog.Uint64("floor", uint64(floor)),
		)
		var results []domain.Valuation
		results, err = s.valuations.EvaluateMany(ctx, ids, s.concurrency)
		for _, v := range results {
			valued++
			if v.Undetermined {
				undetermined++
			}
		}
	}

	run := domain.ScanRun{
		ID:           uuid.New().String(),
		Network:      s.network,
		StartedAt:    started,
		FinishedAt:   time.Now().UTC(),
		Seen:         len(ids),
		Valued:       valued,
		Undetermined: undetermined,
	}
	if err != nil {
		run.Error = err.Error()
	}

	if s.runs != nil && !errors.Is(err, context.Canceled) {
		if insErr := s.runs.Insert(ctx, run); insErr != nil {
			s.logger.Error("record scan run failed", slog.String("error", insErr.Error()))
		}
	}

	if err != nil {
		return fmt.Errorf("scanner: sweep: %w", err)
	}
	s.logger.Info("sweep complete",
		slog.Int("seen", run.Seen),
		slog.Int("valued", run.Valued),
		slog.Int("undetermined", run.Undetermined),
		slog.Duration("took", run.FinishedAt.Sub(run.StartedAt)),
	)
	return nil
}

// collectIDs pages through the referendum list (newest first) and collects
// ids above floor. Paging stops as soon as a page dips below the floor.
func (s *Scanner) collectIDs(ctx context.Context, floor uint32) ([]uint32, error) {
	var ids []uint32
	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		summaries, total, err := s.source.ListReferenda(ctx, page, s.pageSize)
		if err != nil {
			return nil, fmt.Errorf("list referenda page %d: %w", page, err)
		}
		if len(summaries) == 0 {
			break
		}

		reachedFloor := false
		for _, sum := range summaries {
			if sum.ID <= floor && floor > 0 {
				reachedFloor = true
				break
			}
			ids = append(ids, sum.ID)
		}
		if reachedFloor {
			break
		}

		if (page+1)*s.pageSize >= total || len(summaries) < s.pageSize {
			break
		}
	}
	return ids, nil
}
