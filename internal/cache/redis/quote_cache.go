package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nkoval/govscan/internal/domain"
)

// dateLayout is the hash field format for daily quotes.
const dateLayout = "2006-01-02"

// QuoteCache implements domain.QuoteCache using one hash per network
// ("quotes:{network}" with date fields) plus a current-price hash carrying
// the price and its fetch timestamp.
type QuoteCache struct {
	rdb     *redis.Client
	network string
}

// NewQuoteCache creates a QuoteCache scoped to one network.
func NewQuoteCache(c *Client, network string) *QuoteCache {
	return &QuoteCache{rdb: c.Underlying(), network: network}
}

func (qc *QuoteCache) seriesKey() string {
	return "quotes:" + qc.network
}

func (qc *QuoteCache) currentKey() string {
	return "quotes:" + qc.network + ":current"
}

// PutSeries stores the daily quote series. Existing fields for the same
// dates are overwritten; older fields are left in place, so the cache only
// ever grows more complete.
func (qc *QuoteCache) PutSeries(ctx context.Context, quotes []domain.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(quotes))
	for _, q := range quotes {
		fields[q.Date.UTC().Format(dateLayout)] = strconv.FormatFloat(q.Price, 'f', -1, 64)
	}
	if err := qc.rdb.HSet(ctx, qc.seriesKey(), fields).Err(); err != nil {
		return fmt.Errorf("redis: put quote series: %w", err)
	}
	return nil
}

// GetSeries returns all cached quotes in date order. An empty cache returns
// domain.ErrNotFound.
func (qc *QuoteCache) GetSeries(ctx context.Context) ([]domain.Quote, error) {
	vals, err := qc.rdb.HGetAll(ctx, qc.seriesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get quote series: %w", err)
	}
	if len(vals) == 0 {
		return nil, domain.ErrNotFound
	}

	quotes := make([]domain.Quote, 0, len(vals))
	for dateStr, priceStr := range vals {
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			continue
		}
		quotes = append(quotes, domain.Quote{Date: date.UTC(), Price: price})
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Date.Before(quotes[j].Date) })
	return quotes, nil
}

// SetCurrent stores the present-day price and its fetch time.
func (qc *QuoteCache) SetCurrent(ctx context.Context, price float64, ts time.Time) error {
	fields := map[string]interface{}{
		"price": strconv.FormatFloat(price, 'f', -1, 64),
		"ts":    strconv.FormatInt(ts.UnixNano(), 10),
	}
	if err := qc.rdb.HSet(ctx, qc.currentKey(), fields).Err(); err != nil {
		return fmt.Errorf("redis: set current quote: %w", err)
	}
	return nil
}

// GetCurrent returns the cached present-day price and when it was fetched.
func (qc *QuoteCache) GetCurrent(ctx context.Context) (float64, time.Time, error) {
	vals, err := qc.rdb.HGetAll(ctx, qc.currentKey()).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: get current quote: %w", err)
	}
	if len(vals) == 0 {
		return 0, time.Time{}, domain.ErrNotFound
	}

	price, err := strconv.ParseFloat(vals["price"], 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: parse current quote: %w", err)
	}
	tsNano, err := strconv.ParseInt(vals["ts"], 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: parse current quote ts: %w", err)
	}
	return price, time.Unix(0, tsNano).UTC(), nil
}

// Compile-time interface check.
var _ domain.QuoteCache = (*QuoteCache)(nil)
