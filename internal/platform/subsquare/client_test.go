package subsquare

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

func TestListReferenda(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/gov2/referendums", r.URL.Path)
		// Zero-based pages map to the API's one-based ones.
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("page_size"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{"referendumIndex": 1500, "title": "Infrastructure grant", "state": {"name": "Executed"}},
				{"referendumIndex": 1499, "title": "Marketing spend", "state": {"name": "Rejected"}}
			],
			"total": 1501,
			"page": 3,
			"pageSize": 50
		}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	summaries, total, err := client.ListReferenda(context.Background(), 2, 50)
	require.NoError(t, err)

	assert.Equal(t, 1501, total)
	require.Len(t, summaries, 2)
	assert.Equal(t, domain.ProposalSummary{ID: 1500, Title: "Infrastructure grant", State: "Executed"}, summaries[0])
	assert.Equal(t, uint32(1499), summaries[1].ID)
}

func TestGetReferendum(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/gov2/referendums/1500", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"referendumIndex": 1500,
			"title": "Infrastructure grant",
			"track": "big_spender",
			"state": {"name": "Executed"},
			"createdAt": "2025-01-02T03:04:05Z",
			"onchainData": {
				"proposal": {
					"call": {"callIndex": "0x3c03", "args": [{"name": "amount", "value": "10000000000"}]}
				},
				"timeline": [
					{"name": "Submitted", "indexer": {"blockHeight": 100, "blockTime": 1735700000000}},
					{"name": "Executed", "indexer": {"blockHeight": 200, "blockTime": 1735786445000}}
				]
			}
		}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	prop, err := client.GetReferendum(context.Background(), 1500)
	require.NoError(t, err)

	assert.Equal(t, uint32(1500), prop.ID)
	assert.Equal(t, "big_spender", prop.Track)
	assert.Equal(t, "Executed", prop.State)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), prop.SubmittedAt)
	require.NotNil(t, prop.ExecutedAt)
	assert.Equal(t, time.UnixMilli(1735786445000).UTC(), *prop.ExecutedAt)
	require.NotNil(t, prop.Call)
	assert.Equal(t, "0x3c03", prop.Call.CallIndex)
	assert.NotEmpty(t, prop.Raw)
}

func TestGetReferendumWithoutPreimage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"referendumIndex": 42,
			"title": "No preimage yet",
			"state": {"name": "Deciding"},
			"onchainData": {"timeline": []}
		}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	prop, err := client.GetReferendum(context.Background(), 42)
	require.NoError(t, err)

	assert.Nil(t, prop.Call)
	assert.Nil(t, prop.ExecutedAt)
}

func TestGetReferendumNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.GetReferendum(context.Background(), 999999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListReferendaUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream broke"))
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, _, err := client.ListReferenda(context.Background(), 0, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
