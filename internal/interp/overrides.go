package interp

// Override forces a fixed outcome for a proposal before any interpretation
// happens. The entries encode known historical data anomalies; they are an
// explicit, reviewable allow-list, not derived logic, and should be
// re-validated whenever the upstream indexer republishes old payloads.
type Override int

const (
	// OverrideZero leaves the ledger empty and valid: the proposal is known
	// to have moved nothing.
	OverrideZero Override = iota
	// OverrideInvalid poisons the ledger: the proposal's payload is known to
	// be undecodable or wrong at the source.
	OverrideInvalid
)

func (o Override) String() string {
	if o == OverrideInvalid {
		return "invalid"
	}
	return "zero"
}

// overrides is keyed by network name, then referendum id.
var overrides = map[string]map[uint32]Override{
	"polkadot": {
		// The indexer published this preimage decoded against the wrong
		// runtime version; the args are garbage.
		457: OverrideInvalid,
		// Cancelled before enactment but indexed as executed.
		711: OverrideZero,
	},
	"kusama": {
		// Re-submission of 207; the second execution failed on-chain, so it
		// moved nothing.
		208: OverrideZero,
	},
}

func overrideFor(network string, proposalID uint32) (Override, bool) {
	byID, ok := overrides[network]
	if !ok {
		return 0, false
	}
	o, ok := byID[proposalID]
	return o, ok
}
