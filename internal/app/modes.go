package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/nkoval/govscan/internal/pipeline"
)

// ScanMode runs the continuous pipeline: an incremental sweep on every tick
// plus periodic quote refreshes. It blocks until the context is cancelled.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	orch := pipeline.NewOrchestrator(
		deps.Scanner,
		deps.QuoteLoader,
		deps.Prices,
		a.cfg.Pipeline.ScanInterval.Duration,
		a.logger.With(slog.String("component", "orchestrator")),
	)
	return orch.Run(ctx)
}

// BackfillMode sweeps every referendum the explorer knows about exactly once,
// re-evaluating proposals that already have valuations, then exits.
func (a *App) BackfillMode(ctx context.Context, deps *Dependencies) error {
	a.logger.Info("backfill starting", slog.String("network", deps.Net.Name))
	if err := deps.Scanner.Backfill(ctx); err != nil {
		return fmt.Errorf("app: backfill: %w", err)
	}
	a.logger.Info("backfill complete")
	return nil
}

// ValueMode evaluates a single proposal and prints the valuation as JSON to
// stdout. Nothing is persisted in this mode.
func (a *App) ValueMode(ctx context.Context, deps *Dependencies, proposalID uint32) error {
	if proposalID == 0 {
		return fmt.Errorf("app: value mode requires a proposal id (-proposal flag)")
	}

	v, err := deps.Valuations.Evaluate(ctx, proposalID)
	if err != nil {
		return fmt.Errorf("app: value proposal %d: %w", proposalID, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("app: encode valuation: %w", err)
	}
	return nil
}
