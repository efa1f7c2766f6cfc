package domain

// AssetKind identifies one of the fixed set of assets the treasury is known
// to move. The set is closed on purpose: anything the resolver cannot map to
// one of these kinds is KindInvalid, which poisons the evaluating ledger.
type AssetKind string

const (
	// KindNative is the network's own token (DOT on Polkadot, KSM on Kusama).
	KindNative AssetKind = "native"

	// KindUSDC is the Asset Hub USDC asset (general index 1337).
	KindUSDC AssetKind = "usdc"

	// KindUSDT is the Asset Hub USDT asset (general index 1984).
	KindUSDT AssetKind = "usdt"

	// KindDED is the DED memecoin (general index 30). It is tracked because a
	// handful of proposals moved it, but it is valued at zero.
	KindDED AssetKind = "ded"

	// KindInvalid is a sentinel for asset locations that could not be
	// resolved. It is never a tradable asset.
	KindInvalid AssetKind = "invalid"
)

// Stablecoin reports whether the kind is one of the USD-pegged assets.
func (k AssetKind) Stablecoin() bool {
	return k == KindUSDC || k == KindUSDT
}

// Tradable reports whether the kind represents a real asset (everything
// except the KindInvalid sentinel).
func (k AssetKind) Tradable() bool {
	switch k {
	case KindNative, KindUSDC, KindUSDT, KindDED:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (k AssetKind) String() string {
	return string(k)
}
