package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nkoval/govscan/internal/domain"
)

// QuoteLoader hydrates a QuoteSeries from the external price source, writing
// through to the cache so a source outage degrades to slightly stale quotes
// instead of an unusable batch.
type QuoteLoader struct {
	source domain.QuoteSource
	cache  domain.QuoteCache
	since  time.Time
	logger *slog.Logger
}

// NewQuoteLoader creates a loader that fetches history from since onward.
// cache may be nil when no cache is wired (e.g. one-shot CLI runs).
func NewQuoteLoader(source domain.QuoteSource, cache domain.QuoteCache, since time.Time, logger *slog.Logger) *QuoteLoader {
	return &QuoteLoader{
		source: source,
		cache:  cache,
		since:  since,
		logger: logger.With(slog.String("component", "quote_loader")),
	}
}

// Load fetches the historic series and current price, preferring the live
// source and falling back to the cache. Loading must complete before any
// evaluation batch starts.
func (l *QuoteLoader) Load(ctx context.Context) (*QuoteSeries, error) {
	quotes, err := l.source.History(ctx, l.since, time.Now().UTC())
	if err != nil {
		l.logger.Warn("price source history failed, trying cache", slog.String("error", err.Error()))
		if l.cache == nil {
			return nil, fmt.Errorf("quote_loader: fetch history: %w", err)
		}
		quotes, err = l.cache.GetSeries(ctx)
		if err != nil {
			return nil, fmt.Errorf("quote_loader: history unavailable from source and cache: %w", err)
		}
	} else if l.cache != nil {
		if cacheErr := l.cache.PutSeries(ctx, quotes); cacheErr != nil {
			l.logger.Warn("cache quote series failed", slog.String("error", cacheErr.Error()))
		}
	}

	current, err := l.source.Current(ctx)
	hasCurrent := err == nil
	if err != nil {
		l.logger.Warn("price source current failed, trying cache", slog.String("error", err.Error()))
		if l.cache != nil {
			if cached, _, cacheErr := l.cache.GetCurrent(ctx); cacheErr == nil {
				current, hasCurrent = cached, true
			}
		}
	} else if l.cache != nil {
		if cacheErr := l.cache.SetCurrent(ctx, current, time.Now().UTC()); cacheErr != nil {
			l.logger.Warn("cache current price failed", slog.String("error", cacheErr.Error()))
		}
	}

	if len(quotes) == 0 && !hasCurrent {
		return nil, fmt.Errorf("quote_loader: %w", domain.ErrNoQuotes)
	}

	l.logger.Info("quote series loaded",
		slog.Int("quotes", len(quotes)),
		slog.Bool("has_current", hasCurrent),
	)
	return NewQuoteSeries(quotes, current, hasCurrent), nil
}
