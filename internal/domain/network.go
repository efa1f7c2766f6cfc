package domain

import (
	"fmt"
	"math/big"
)

// NetworkConfig holds the per-network constants the interpreter and resolver
// need. It is built once at wire time and never mutated.
type NetworkConfig struct {
	// Name is the canonical lowercase network name ("polkadot", "kusama").
	Name string

	// NativeSymbol is the ticker of the native token (DOT, KSM).
	NativeSymbol string

	// Digits maps each asset kind to its denomination digit count: the
	// power-of-ten divisor turning raw on-chain units into human amounts.
	Digits map[AssetKind]int

	// TreasuryAccount is the on-chain treasury account in the network's own
	// SS58 encoding. Outgoing transfers from this account are what
	// governance-approved spending looks like.
	TreasuryAccount string

	// EraCutoverID is the first referendum id whose enactment ran on the
	// settlement chain (Asset Hub) instead of the relay chain. Proposals at
	// or above this id use the post-migration call selectors.
	EraCutoverID uint32

	// SS58Prefix is the network's address format prefix, used to sanity
	// check node connections at startup.
	SS58Prefix uint16

	// CoinID is the CoinGecko identifier of the native token.
	CoinID string
}

// Polkadot returns the Polkadot network configuration.
func Polkadot() NetworkConfig {
	return NetworkConfig{
		Name:         "polkadot",
		NativeSymbol: "DOT",
		Digits: map[AssetKind]int{
			KindNative: 10,
			KindUSDC:   6,
			KindUSDT:   6,
			KindDED:    10,
		},
		TreasuryAccount: "13UVJyLnbVp9RBZYFwFGyDvVd1y27Tt8tkntv6Q7JVPhFsTB",
		EraCutoverID:    1104,
		SS58Prefix:      0,
		CoinID:          "polkadot",
	}
}

// Kusama returns the Kusama network configuration.
func Kusama() NetworkConfig {
	return NetworkConfig{
		Name:         "kusama",
		NativeSymbol: "KSM",
		Digits: map[AssetKind]int{
			KindNative: 12,
			KindUSDC:   6,
			KindUSDT:   6,
			KindDED:    10,
		},
		TreasuryAccount: "F3opxRbN5ZbjJNU511Kj2TLuzFcDq9BGduA9TgiECafpg29",
		EraCutoverID:    544,
		SS58Prefix:      2,
		CoinID:          "kusama",
	}
}

// NetworkByName returns the configuration for a supported network name.
func NetworkByName(name string) (NetworkConfig, error) {
	switch name {
	case "polkadot":
		return Polkadot(), nil
	case "kusama":
		return Kusama(), nil
	default:
		return NetworkConfig{}, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
	}
}

// Denominate converts a raw on-chain integer amount into the human-readable
// amount for the given kind, dividing by 10^digits. Unknown kinds fall back
// to the native digit count.
func (n NetworkConfig) Denominate(kind AssetKind, raw *big.Int) float64 {
	digits, ok := n.Digits[kind]
	if !ok {
		digits = n.Digits[KindNative]
	}
	div := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil))
	out, _ := new(big.Float).Quo(new(big.Float).SetInt(raw), div).Float64()
	return out
}
