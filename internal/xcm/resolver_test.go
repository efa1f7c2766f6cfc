package xcm

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nkoval/govscan/internal/domain"
)

func newTestResolver() *Resolver {
	return NewResolver(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestResolveNativeAsset(t *testing.T) {
	r := newTestResolver()

	cases := []struct {
		name string
		raw  string
	}{
		{
			"v4 relay native",
			`{"v4": {"location": {"parents": 0, "interior": "here"},
			         "assetId": {"parents": 1, "interior": "here"}}}`,
		},
		{
			"v4 local native",
			`{"v4": {"location": {"parents": 0, "interior": "here"},
			         "assetId": {"parents": 0, "interior": "here"}}}`,
		},
		{
			"v3 concrete native",
			`{"v3": {"location": {"parents": 0, "interior": {"here": null}},
			         "assetId": {"concrete": {"parents": 1, "interior": {"here": null}}}}}`,
		},
		{
			"v5 via system parachain",
			`{"v5": {"location": {"parents": 0, "interior": {"x1": [{"parachain": 1000}]}},
			         "assetId": {"parents": 1, "interior": "here"}}}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, domain.KindNative, r.Resolve(json.RawMessage(tc.raw)))
		})
	}
}

func TestResolveStablecoins(t *testing.T) {
	r := newTestResolver()

	usdc := `{"v4": {"location": {"parents": 0, "interior": {"x1": [{"parachain": 1000}]}},
	          "assetId": {"parents": 0, "interior": {"x2": [{"palletInstance": 50}, {"generalIndex": 1337}]}}}}`
	assert.Equal(t, domain.KindUSDC, r.Resolve(json.RawMessage(usdc)))

	// v3 shape: x2 segments as objects, assetId behind "concrete".
	usdt := `{"v3": {"location": {"parents": 0, "interior": {"x1": {"parachain": 1000}}},
	          "assetId": {"concrete": {"parents": 0, "interior": {"x2": [{"palletInstance": 50}, {"generalIndex": 1984}]}}}}}`
	assert.Equal(t, domain.KindUSDT, r.Resolve(json.RawMessage(usdt)))

	ded := `{"v4": {"location": {"parents": 0, "interior": "here"},
	         "assetId": {"parents": 0, "interior": {"x2": [{"palletInstance": 50}, {"generalIndex": 30}]}}}}`
	assert.Equal(t, domain.KindDED, r.Resolve(json.RawMessage(ded)))

	// String-encoded general index with separators.
	usdtStr := `{"v4": {"location": {"parents": 0, "interior": "here"},
	             "assetId": {"parents": 0, "interior": {"x2": [{"palletInstance": 50}, {"generalIndex": "1,984"}]}}}}`
	assert.Equal(t, domain.KindUSDT, r.Resolve(json.RawMessage(usdtStr)))
}

func TestResolveInvalid(t *testing.T) {
	r := newTestResolver()

	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ``},
		{"no version tag", `{"v9": {}}`},
		{"missing location", `{"v4": {"assetId": {"parents": 1, "interior": "here"}}}`},
		{
			"non-system parachain",
			`{"v4": {"location": {"parents": 0, "interior": {"x1": [{"parachain": 2004}]}},
			         "assetId": {"parents": 1, "interior": "here"}}}`,
		},
		{
			"known-bad general index",
			`{"v4": {"location": {"parents": 0, "interior": "here"},
			         "assetId": {"parents": 0, "interior": {"x2": [{"palletInstance": 50}, {"generalIndex": 1336}]}}}}`,
		},
		{
			"unmapped general index",
			`{"v4": {"location": {"parents": 0, "interior": "here"},
			         "assetId": {"parents": 0, "interior": {"x2": [{"palletInstance": 50}, {"generalIndex": 21}]}}}}`,
		},
		{
			"wrong pallet instance",
			`{"v4": {"location": {"parents": 0, "interior": "here"},
			         "assetId": {"parents": 0, "interior": {"x2": [{"palletInstance": 51}, {"generalIndex": 1337}]}}}}`,
		},
		{
			"here asset with too many parents",
			`{"v4": {"location": {"parents": 0, "interior": "here"},
			         "assetId": {"parents": 2, "interior": "here"}}}`,
		},
		{
			"multi-hop location",
			`{"v4": {"location": {"parents": 0, "interior": {"x2": [{"parachain": 1000}, {"palletInstance": 50}]}},
			         "assetId": {"parents": 1, "interior": "here"}}}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, domain.KindInvalid, r.Resolve(json.RawMessage(tc.raw)))
		})
	}
}
