// Package pipeline coordinates the continuous scan loop: sweeping the
// explorer for new referenda, keeping the price series fresh, and recording
// audit rows for each sweep.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nkoval/govscan/internal/service"
)

// quoteRefreshInterval is how often the price series is re-fetched while the
// scan loop runs. Quotes are daily granularity, so hourly is generous.
const quoteRefreshInterval = time.Hour

// Orchestrator manages the pipeline goroutines: the scan loop and the quote
// refresher.
type Orchestrator struct {
	scanner      *Scanner
	quotes       *service.QuoteLoader
	prices       *service.PriceService
	scanInterval time.Duration
	logger       *slog.Logger
}

// NewOrchestrator creates an Orchestrator that coordinates the scan and
// quote-refresh loops.
func NewOrchestrator(
	scanner *Scanner,
	quotes *service.QuoteLoader,
	prices *service.PriceService,
	scanInterval time.Duration,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		scanner:      scanner,
		quotes:       quotes,
		prices:       prices,
		scanInterval: scanInterval,
		logger:       logger,
	}
}

// Run starts the loops as concurrent goroutines using an errgroup. Each
// goroutine respects ctx cancellation. If any goroutine returns a non-context
// error, the errgroup cancels the shared context and Run returns that error.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("pipeline orchestrator starting",
		slog.Duration("scan_interval", o.scanInterval),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		o.logger.Info("starting scan loop")
		err := o.runScanLoop(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("scan loop: %w", err)
	})

	g.Go(func() error {
		o.logger.Info("starting quote refresher")
		err := o.runQuoteRefresher(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("quote refresher: %w", err)
	})

	err := g.Wait()
	if err != nil {
		o.logger.Error("pipeline orchestrator stopped with error", slog.String("error", err.Error()))
		return err
	}

	o.logger.Info("pipeline orchestrator stopped cleanly")
	return nil
}

// runScanLoop runs a sweep immediately, then on every tick. A failed sweep is
// logged and retried on the next tick; the loop only exits on cancellation.
func (o *Orchestrator) runScanLoop(ctx context.Context) error {
	if err := o.scanner.RunOnce(ctx); err != nil {
		o.logger.Error("sweep failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(o.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("scan loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := o.scanner.RunOnce(ctx); err != nil {
				o.logger.Error("sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// runQuoteRefresher reloads the price series periodically so long-running
// scans keep converting at current rates. The initial load happened during
// wiring, so the first refresh waits a full interval.
func (o *Orchestrator) runQuoteRefresher(ctx context.Context) error {
	ticker := time.NewTicker(quoteRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("quote refresher stopped")
			return ctx.Err()
		case <-ticker.C:
			series, err := o.quotes.Load(ctx)
			if err != nil {
				o.logger.Error("quote refresh failed", slog.String("error", err.Error()))
				continue
			}
			o.prices.Reload(series)
		}
	}
}
