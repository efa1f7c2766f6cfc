package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkoval/govscan/internal/domain"
)

type fakeQuoteSource struct {
	history []domain.Quote
	current float64
	fail    bool
}

func (f *fakeQuoteSource) Current(ctx context.Context) (float64, error) {
	if f.fail {
		return 0, errors.New("source down")
	}
	return f.current, nil
}

func (f *fakeQuoteSource) History(ctx context.Context, from, to time.Time) ([]domain.Quote, error) {
	if f.fail {
		return nil, errors.New("source down")
	}
	return f.history, nil
}

type fakeQuoteCache struct {
	series     []domain.Quote
	current    float64
	currentSet bool
}

func (f *fakeQuoteCache) PutSeries(ctx context.Context, quotes []domain.Quote) error {
	f.series = quotes
	return nil
}

func (f *fakeQuoteCache) GetSeries(ctx context.Context) ([]domain.Quote, error) {
	return f.series, nil
}

func (f *fakeQuoteCache) SetCurrent(ctx context.Context, price float64, at time.Time) error {
	f.current, f.currentSet = price, true
	return nil
}

func (f *fakeQuoteCache) GetCurrent(ctx context.Context) (float64, time.Time, error) {
	if !f.currentSet {
		return 0, time.Time{}, domain.ErrNotFound
	}
	return f.current, time.Now(), nil
}

func TestQuoteLoaderWritesThroughToCache(t *testing.T) {
	source := &fakeQuoteSource{
		history: []domain.Quote{{Date: day(1), Price: 8}},
		current: 9,
	}
	cache := &fakeQuoteCache{}
	loader := NewQuoteLoader(source, cache, day(1), discardLogger())

	series, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, series.Len())

	cur, err := series.Current()
	require.NoError(t, err)
	assert.Equal(t, 9.0, cur)

	// The cache was hydrated for the next outage.
	assert.Len(t, cache.series, 1)
	assert.True(t, cache.currentSet)
	assert.Equal(t, 9.0, cache.current)
}

func TestQuoteLoaderFallsBackToCache(t *testing.T) {
	cache := &fakeQuoteCache{
		series:     []domain.Quote{{Date: day(1), Price: 8}},
		current:    8.5,
		currentSet: true,
	}
	loader := NewQuoteLoader(&fakeQuoteSource{fail: true}, cache, day(1), discardLogger())

	series, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, series.Len())

	cur, err := series.Current()
	require.NoError(t, err)
	assert.Equal(t, 8.5, cur)
}

func TestQuoteLoaderFailsWhenNothingAvailable(t *testing.T) {
	loader := NewQuoteLoader(&fakeQuoteSource{fail: true}, nil, day(1), discardLogger())

	_, err := loader.Load(context.Background())
	assert.Error(t, err)
}
