package service

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/nkoval/govscan/internal/domain"
)

// QuoteSeries is an immutable, time-ordered set of native-token-in-USD
// quotes plus a current price. It is built once before an evaluation batch
// and treated as read-only for the batch's duration.
type QuoteSeries struct {
	quotes     []domain.Quote
	current    float64
	hasCurrent bool
}

// NewQuoteSeries builds a series from historic quotes and the current price.
// Pass hasCurrent=false when only historic data is available; Current then
// falls back to the most recent historic quote.
func NewQuoteSeries(quotes []domain.Quote, current float64, hasCurrent bool) *QuoteSeries {
	sorted := make([]domain.Quote, len(quotes))
	copy(sorted, quotes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return &QuoteSeries{quotes: sorted, current: current, hasCurrent: hasCurrent}
}

// Current returns the present-day price.
func (s *QuoteSeries) Current() (float64, error) {
	if s.hasCurrent {
		return s.current, nil
	}
	if len(s.quotes) > 0 {
		return s.quotes[len(s.quotes)-1].Price, nil
	}
	return 0, domain.ErrNoQuotes
}

// At returns the quote nearest to date by absolute time distance. The series
// is sparse, so nearest-neighbor is the defined lookup, not interpolation.
// Asking for a historic quote before any have been loaded is a usage error.
func (s *QuoteSeries) At(date time.Time) (float64, error) {
	if len(s.quotes) == 0 {
		return 0, domain.ErrNoQuotes
	}
	i := sort.Search(len(s.quotes), func(i int) bool {
		return !s.quotes[i].Date.Before(date)
	})
	switch i {
	case 0:
		return s.quotes[0].Price, nil
	case len(s.quotes):
		return s.quotes[len(s.quotes)-1].Price, nil
	}
	before, after := s.quotes[i-1], s.quotes[i]
	if date.Sub(before.Date) <= after.Date.Sub(date) {
		return before.Price, nil
	}
	return after.Price, nil
}

// Len returns the number of historic quotes held.
func (s *QuoteSeries) Len() int {
	return len(s.quotes)
}

// PriceService converts amounts between the native token and the USD-pegged
// stablecoins using a pre-loaded quote series. The series can be swapped
// between batches via Reload; conversions during a batch see one consistent
// series.
type PriceService struct {
	mu     sync.RWMutex
	series *QuoteSeries
	logger *slog.Logger
}

// NewPriceService creates a PriceService over the given series. A nil series
// is allowed; conversions needing a quote then fail with ErrNoQuotes.
func NewPriceService(series *QuoteSeries, logger *slog.Logger) *PriceService {
	return &PriceService{
		series: series,
		logger: logger.With(slog.String("component", "prices")),
	}
}

// Reload swaps in a freshly loaded quote series.
func (s *PriceService) Reload(series *QuoteSeries) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = series
	s.logger.Info("quote series reloaded", slog.Int("quotes", series.Len()))
}

// Convert turns amount of from into to, optionally pinned to a historic
// date. Stablecoins convert 1:1 among themselves; the worthless token values
// to zero in any direction; every other pairing must be native-vs-stablecoin
// or it is a contract violation by the caller.
func (s *PriceService) Convert(from domain.AssetKind, amount float64, to domain.AssetKind, asOf *time.Time) (float64, error) {
	if from == to || (from.Stablecoin() && to.Stablecoin()) {
		return amount, nil
	}
	if from == domain.KindDED || to == domain.KindDED {
		return 0, nil
	}

	nativeToStable := from == domain.KindNative && to.Stablecoin()
	stableToNative := from.Stablecoin() && to == domain.KindNative
	if !nativeToStable && !stableToNative {
		return 0, fmt.Errorf("convert %s to %s: %w", from, to, domain.ErrNotConvertible)
	}

	quote, err := s.quote(asOf)
	if err != nil {
		return 0, fmt.Errorf("convert %s to %s: %w", from, to, err)
	}
	if nativeToStable {
		return amount * quote, nil
	}
	return amount / quote, nil
}

func (s *PriceService) quote(asOf *time.Time) (float64, error) {
	s.mu.RLock()
	series := s.series
	s.mu.RUnlock()
	if series == nil {
		return 0, domain.ErrNoQuotes
	}
	if asOf != nil {
		return series.At(*asOf)
	}
	return series.Current()
}

// Compile-time interface check.
var _ domain.Converter = (*PriceService)(nil)
