// Package addr implements the SS58 account-id codec. Treasury accounts show
// up in proposal data under whatever network prefix the indexer used, so
// account comparison has to go through the underlying 32-byte key rather
// than the string form.
package addr

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	"github.com/nkoval/govscan/internal/domain"
)

// checksumPreimage is the fixed prefix mixed into the SS58 checksum hash.
var checksumPreimage = []byte("SS58PRE")

// checksumLen is the checksum width for 32-byte account ids.
const checksumLen = 2

// Decode parses an SS58 address into its network prefix and 32-byte account
// id, verifying the checksum.
func Decode(address string) (uint16, []byte, error) {
	data, err := base58.Decode(address)
	if err != nil {
		return 0, nil, fmt.Errorf("addr: %w: %v", domain.ErrBadAddress, err)
	}
	if len(data) < 1+32+checksumLen {
		return 0, nil, fmt.Errorf("addr: %w: too short", domain.ErrBadAddress)
	}

	var prefix uint16
	var prefixLen int
	switch {
	case data[0] < 64:
		prefix = uint16(data[0])
		prefixLen = 1
	case data[0] < 128:
		if len(data) < 2+32+checksumLen {
			return 0, nil, fmt.Errorf("addr: %w: too short for two-byte prefix", domain.ErrBadAddress)
		}
		prefix = uint16(data[0]&0b0011_1111)<<2 | uint16(data[1])>>6 | uint16(data[1]&0b0011_1111)<<8
		prefixLen = 2
	default:
		return 0, nil, fmt.Errorf("addr: %w: reserved prefix byte", domain.ErrBadAddress)
	}

	body := data[:len(data)-checksumLen]
	sum := data[len(data)-checksumLen:]
	hash := blake2b.Sum512(append(append([]byte{}, checksumPreimage...), body...))
	if !bytes.Equal(sum, hash[:checksumLen]) {
		return 0, nil, fmt.Errorf("addr: %w: checksum mismatch", domain.ErrBadAddress)
	}

	pubkey := body[prefixLen:]
	if len(pubkey) != 32 {
		return 0, nil, fmt.Errorf("addr: %w: account id is %d bytes", domain.ErrBadAddress, len(pubkey))
	}
	return prefix, pubkey, nil
}

// Encode renders a 32-byte account id as an SS58 address under the given
// network prefix.
func Encode(prefix uint16, pubkey []byte) (string, error) {
	if len(pubkey) != 32 {
		return "", fmt.Errorf("addr: %w: account id is %d bytes", domain.ErrBadAddress, len(pubkey))
	}
	var body []byte
	switch {
	case prefix < 64:
		body = append(body, byte(prefix))
	case prefix < 16384:
		body = append(body,
			byte((prefix&0b0000_0000_1111_1100)>>2|0b0100_0000),
			byte(prefix>>8|(prefix&0b0000_0000_0000_0011)<<6),
		)
	default:
		return "", fmt.Errorf("addr: %w: prefix out of range", domain.ErrBadAddress)
	}
	body = append(body, pubkey...)
	hash := blake2b.Sum512(append(append([]byte{}, checksumPreimage...), body...))
	return base58.Encode(append(body, hash[:checksumLen]...)), nil
}

// SameAccount reports whether two addresses refer to the same account id,
// regardless of the network prefix they were encoded under. Addresses that
// fail to decode fall back to exact string comparison.
func SameAccount(a, b string) bool {
	if a == b {
		return true
	}
	_, keyA, errA := Decode(a)
	_, keyB, errB := Decode(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(keyA, keyB)
}
