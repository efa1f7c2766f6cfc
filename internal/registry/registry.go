// Package registry maps semantic call names to the concrete call-index
// selectors in effect at a given referendum, and classifies selectors back
// into interpreter dispatch classes. The tables are static configuration:
// a runtime upgrade that relocates pallets changes selectors, so era-specific
// operations carry one selector per era, keyed off the referendum id.
package registry

// Selector is a hex-encoded pallet+method pair as emitted by the explorer,
// e.g. "0x1a02" for utility.batch_all on the relay chain.
type Selector string

// Operation is the era-independent semantic name of a call.
type Operation string

// Operations known to the registry. Era-specific operations resolve to
// different selectors before and after the Asset Hub migration; invariant
// ones never moved.
const (
	// Era-invariant primitives.
	OpSystemRemark           Operation = "system.remark"
	OpSystemRemarkWithEvent  Operation = "system.remark_with_event"
	OpSchedulerSchedule      Operation = "scheduler.schedule"
	OpSchedulerScheduleAfter Operation = "scheduler.schedule_after"
	OpWhitelistDispatch      Operation = "whitelist.dispatch_whitelisted_call_with_preimage"
	OpReferendaCancel        Operation = "referenda.cancel"
	OpReferendaKill          Operation = "referenda.kill"

	// Legacy-only administrative operations (pre-OpenGov treasury flow);
	// they were removed rather than remapped by the migration.
	OpTreasuryProposeSpend    Operation = "treasury.propose_spend"
	OpTreasuryApproveProposal Operation = "treasury.approve_proposal"
	OpTreasuryRejectProposal  Operation = "treasury.reject_proposal"

	// Era-specific operations.
	OpBalancesForceTransfer  Operation = "balances.force_transfer"
	OpTreasurySpend          Operation = "treasury.spend"
	OpTreasurySpendLocal     Operation = "treasury.spend_local"
	OpTreasuryRemoveApproval Operation = "treasury.remove_approval"
	OpUtilityBatch           Operation = "utility.batch"
	OpUtilityBatchAll        Operation = "utility.batch_all"
	OpUtilityForceBatch      Operation = "utility.force_batch"
	OpUtilityDispatchAs      Operation = "utility.dispatch_as"
	OpXCMTeleport            Operation = "xcm.limited_teleport_assets"
	OpXCMReserveTransfer     Operation = "xcm.limited_reserve_transfer_assets"
	OpXCMExecute             Operation = "xcm.execute"
)

// invariantTable holds selectors that are byte-identical across eras: the
// system, scheduler, referenda, and whitelist pallets kept their indices
// through the migration.
var invariantTable = map[Operation]Selector{
	OpSystemRemark:           "0x0000",
	OpSystemRemarkWithEvent:  "0x0007",
	OpSchedulerSchedule:      "0x0100",
	OpSchedulerScheduleAfter: "0x0104",
	OpWhitelistDispatch:      "0x1703",
	OpReferendaCancel:        "0x1503",
	OpReferendaKill:          "0x1504",
}

// legacyOnlyTable holds selectors for operations that existed only before
// the cutover and were never remapped.
var legacyOnlyTable = map[Operation]Selector{
	OpTreasuryProposeSpend:    "0x1300",
	OpTreasuryApproveProposal: "0x1302",
	OpTreasuryRejectProposal:  "0x1301",
}

// legacyTable and settlementTable cover the same era-specific operations
// with the selectors in effect before and after the cutover. The migration
// moved balances (0x05 -> 0x0a), treasury (0x13 -> 0x3c), utility
// (0x1a -> 0x28), and the XCM pallet (0x63 -> 0x1f).
var legacyTable = map[Operation]Selector{
	OpBalancesForceTransfer:  "0x0502",
	OpTreasurySpendLocal:     "0x1303",
	OpTreasuryRemoveApproval: "0x1304",
	OpTreasurySpend:          "0x1305",
	OpUtilityBatch:           "0x1a00",
	OpUtilityBatchAll:        "0x1a02",
	OpUtilityDispatchAs:      "0x1a03",
	OpUtilityForceBatch:      "0x1a04",
	OpXCMReserveTransfer:     "0x6308",
	OpXCMTeleport:            "0x6309",
	OpXCMExecute:             "0x6303",
}

var settlementTable = map[Operation]Selector{
	OpBalancesForceTransfer:  "0x0a02",
	OpTreasurySpendLocal:     "0x3c03",
	OpTreasuryRemoveApproval: "0x3c04",
	OpTreasurySpend:          "0x3c05",
	OpUtilityBatch:           "0x2800",
	OpUtilityBatchAll:        "0x2802",
	OpUtilityDispatchAs:      "0x2803",
	OpUtilityForceBatch:      "0x2804",
	OpXCMReserveTransfer:     "0x1f08",
	OpXCMTeleport:            "0x1f09",
	OpXCMExecute:             "0x1f03",
}

// era selects which era-specific table applies to a referendum.
type era int

const (
	eraLegacy era = iota
	eraSettlement
)

// Registry resolves operations to selectors and selectors to interpreter
// classifications for one network. It is immutable after New and safe for
// concurrent use.
type Registry struct {
	cutoverID uint32
	reverse   map[era]map[Selector]Classification
}

// New builds a registry for a network whose era cutover is at the given
// referendum id. The reverse classification maps are derived once here by
// inverting the forward tables against the static classification sets.
func New(cutoverID uint32) *Registry {
	r := &Registry{
		cutoverID: cutoverID,
		reverse: map[era]map[Selector]Classification{
			eraLegacy:     make(map[Selector]Classification),
			eraSettlement: make(map[Selector]Classification),
		},
	}
	for op, sel := range invariantTable {
		r.reverse[eraLegacy][sel] = classify(op)
		r.reverse[eraSettlement][sel] = classify(op)
	}
	for op, sel := range legacyOnlyTable {
		r.reverse[eraLegacy][sel] = classify(op)
	}
	for op, sel := range legacyTable {
		r.reverse[eraLegacy][sel] = classify(op)
	}
	for op, sel := range settlementTable {
		r.reverse[eraSettlement][sel] = classify(op)
	}
	return r
}

// eraOf picks the era for a referendum id.
func (r *Registry) eraOf(proposalID uint32) era {
	if proposalID >= r.cutoverID {
		return eraSettlement
	}
	return eraLegacy
}

// Resolve returns the selector the operation used on-chain at the time of
// the given referendum. The second return is false when the operation is not
// known for that era.
func (r *Registry) Resolve(op Operation, proposalID uint32) (Selector, bool) {
	if sel, ok := invariantTable[op]; ok {
		return sel, true
	}
	if sel, ok := legacyOnlyTable[op]; ok {
		if r.eraOf(proposalID) != eraLegacy {
			return "", false
		}
		return sel, true
	}
	table := legacyTable
	if r.eraOf(proposalID) == eraSettlement {
		table = settlementTable
	}
	sel, ok := table[op]
	return sel, ok
}

// Classify maps a selector seen in a proposal back to its interpreter
// dispatch class for the era of the given referendum. Selectors not found in
// any table classify as Unknown.
func (r *Registry) Classify(sel Selector, proposalID uint32) Classification {
	if cls, ok := r.reverse[r.eraOf(proposalID)][sel]; ok {
		return cls
	}
	return Classification{Class: ClassUnknown}
}

// String implements fmt.Stringer for log output.
func (s Selector) String() string {
	return string(s)
}
