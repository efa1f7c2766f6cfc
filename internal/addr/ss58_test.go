package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkoval/govscan/internal/domain"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	return key
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	key := testKey()

	for _, prefix := range []uint16{0, 2, 42, 63, 64, 2013} {
		addr, err := Encode(prefix, key)
		require.NoError(t, err, "prefix %d", prefix)

		gotPrefix, gotKey, err := Decode(addr)
		require.NoError(t, err, "prefix %d", prefix)
		assert.Equal(t, prefix, gotPrefix)
		assert.Equal(t, key, gotKey)
	}
}

func TestEncodeRejectsBadInput(t *testing.T) {
	_, err := Encode(0, []byte{1, 2, 3})
	assert.ErrorIs(t, err, domain.ErrBadAddress)

	_, err = Encode(20000, testKey())
	assert.ErrorIs(t, err, domain.ErrBadAddress)
}

func TestDecodeRejectsBadInput(t *testing.T) {
	for _, bad := range []string{
		"",
		"not-base58-0OIl",
		"abc",
	} {
		_, _, err := Decode(bad)
		assert.ErrorIs(t, err, domain.ErrBadAddress, "input %q", bad)
	}

	// Corrupt the checksum of an otherwise valid address.
	addr, err := Encode(0, testKey())
	require.NoError(t, err)
	corrupted := addr[:len(addr)-1] + flipChar(addr[len(addr)-1])
	_, _, err = Decode(corrupted)
	assert.ErrorIs(t, err, domain.ErrBadAddress)
}

func TestSameAccountAcrossPrefixes(t *testing.T) {
	key := testKey()
	polkadot, err := Encode(0, key)
	require.NoError(t, err)
	kusama, err := Encode(2, key)
	require.NoError(t, err)

	assert.True(t, SameAccount(polkadot, kusama))
	assert.True(t, SameAccount(polkadot, polkadot))

	other := make([]byte, 32)
	copy(other, key)
	other[31] ^= 0xff
	otherAddr, err := Encode(0, other)
	require.NoError(t, err)
	assert.False(t, SameAccount(polkadot, otherAddr))

	// Undecodable inputs only match on exact string equality.
	assert.True(t, SameAccount("garbage", "garbage"))
	assert.False(t, SameAccount("garbage", polkadot))
}

// flipChar swaps the final character for a different base58 character so the
// checksum no longer matches.
func flipChar(c byte) string {
	if c == '1' {
		return "2"
	}
	return "1"
}
