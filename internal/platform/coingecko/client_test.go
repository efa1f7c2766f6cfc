package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkoval/govscan/internal/domain"
)

func TestCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/simple/price", r.URL.Path)
		assert.Equal(t, "polkadot", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		assert.Equal(t, "secret", r.Header.Get("x-cg-demo-api-key"))

		_, _ = w.Write([]byte(`{"polkadot": {"usd": 7.25}}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "secret", "polkadot")
	price, err := client.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7.25, price)
}

func TestCurrentUnknownCoin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "", "polkadot")
	_, err := client.Current(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/coins/kusama/market_chart/range", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.NotEmpty(t, r.URL.Query().Get("from"))
		assert.NotEmpty(t, r.URL.Query().Get("to"))

		_, _ = w.Write([]byte(`{"prices": [[1735689600000, 30.5], [1735776000000, 31.25]]}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "", "kusama")
	quotes, err := client.History(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	require.NoError(t, err)

	require.Len(t, quotes, 2)
	assert.Equal(t, time.UnixMilli(1735689600000).UTC(), quotes[0].Date)
	assert.Equal(t, 30.5, quotes[0].Price)
	assert.Equal(t, 31.25, quotes[1].Price)
}

func TestRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := New(srv.URL, "", "polkadot")
	_, err := client.Current(context.Background())
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}
