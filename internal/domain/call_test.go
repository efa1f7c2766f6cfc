package domain

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallUnmarshalUnwrapsEnvelope(t *testing.T) {
	// Some explorer payloads wrap the call in a single-key envelope,
	// occasionally more than once.
	payload := `{"call": {"call": {"callIndex": "0x3c03", "args": [{"name": "amount", "value": "100"}]}}}`

	var c Call
	require.NoError(t, json.Unmarshal([]byte(payload), &c))
	assert.Equal(t, "0x3c03", c.CallIndex)
	require.Len(t, c.Args, 1)
	assert.Equal(t, "amount", c.Args[0].Name)
}

func TestCallEmpty(t *testing.T) {
	var nilCall *Call
	assert.True(t, nilCall.Empty())
	assert.True(t, (&Call{}).Empty())
	assert.False(t, (&Call{CallIndex: "0x0000"}).Empty())
}

func TestCallArgCalls(t *testing.T) {
	payload := `{
		"callIndex": "0x2802",
		"args": [{"name": "calls", "value": [
			{"callIndex": "0x3c03", "args": []},
			{"callIndex": "0x0000", "args": []}
		]}]
	}`
	var c Call
	require.NoError(t, json.Unmarshal([]byte(payload), &c))

	inners, err := c.ArgCalls("calls")
	require.NoError(t, err)
	require.Len(t, inners, 2)
	assert.Equal(t, "0x3c03", inners[0].CallIndex)

	_, err = c.ArgCalls("nope")
	assert.Error(t, err)
}

func TestCallArgAccount(t *testing.T) {
	payload := `{
		"callIndex": "0x0a02",
		"args": [
			{"name": "source", "value": {"id": "13UVJyLnbVp9RBZYFwFGyDvVd1y27Tt8tkntv6Q7JVPhFsTB"}},
			{"name": "dest", "value": "F3opxRbN5ZbjJNU511Kj2TLuzFcDq9BGduA9TgiECafpg29"},
			{"name": "weird", "value": 42}
		]
	}`
	var c Call
	require.NoError(t, json.Unmarshal([]byte(payload), &c))

	source, err := c.ArgAccount("source")
	require.NoError(t, err)
	assert.Equal(t, "13UVJyLnbVp9RBZYFwFGyDvVd1y27Tt8tkntv6Q7JVPhFsTB", source)

	dest, err := c.ArgAccount("dest")
	require.NoError(t, err)
	assert.Equal(t, "F3opxRbN5ZbjJNU511Kj2TLuzFcDq9BGduA9TgiECafpg29", dest)

	_, err = c.ArgAccount("weird")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"number", `1000000000`, "1000000000"},
		{"decimal string", `"5000000000000"`, "5000000000000"},
		{"separators", `"1,000,000,000,000"`, "1000000000000"},
		{"hex", `"0x38d7ea4c68000"`, "1000000000000000"},
		{"scientific", `1e12`, "1000000000000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := ParseAmount(json.RawMessage(tc.raw))
			require.NoError(t, err)
			want, _ := new(big.Int).SetString(tc.want, 10)
			assert.Zero(t, n.Cmp(want))
		})
	}

	for _, bad := range []string{`""`, `null`, `"abc"`, `"0xZZ"`} {
		_, err := ParseAmount(json.RawMessage(bad))
		assert.Error(t, err, "input %s", bad)
	}
}
