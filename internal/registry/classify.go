package registry

// Class is the interpreter dispatch class of a call selector.
type Class int

const (
	// ClassUnknown marks selectors absent from every table; interpreting one
	// poisons the ledger.
	ClassUnknown Class = iota
	// ClassNoValue marks administrative calls with no direct treasury
	// effect. This is an explicit allow-list, never inferred.
	ClassNoValue
	// ClassWrapping marks calls that carry inner calls to recurse into.
	ClassWrapping
	// ClassDirect marks calls that move assets themselves.
	ClassDirect
)

// WrapKind says where a wrapping call keeps its inner call(s).
type WrapKind int

const (
	WrapNone WrapKind = iota
	// WrapSchedule: single inner call under the "call" argument
	// (scheduler.schedule, scheduler.schedule_after, whitelist dispatch).
	WrapSchedule
	// WrapDispatchAs: inner call under "call", gated on the declared origin
	// matching the treasury account.
	WrapDispatchAs
	// WrapBatch: ordered inner calls under the "calls" argument.
	WrapBatch
)

// DirectKind says how a direct call moves value.
type DirectKind int

const (
	DirectNone DirectKind = iota
	// DirectForceTransfer: balances.force_transfer sourced from the
	// treasury account.
	DirectForceTransfer
	// DirectSpend: parameterized treasury.spend with an asset-kind location
	// and amount.
	DirectSpend
	// DirectSpendLocal: treasury.spend_local, always the native token.
	DirectSpendLocal
	// DirectXCMTransfer: reserve-transfer or teleport of native tokens with
	// an embedded assets vector.
	DirectXCMTransfer
	// DirectXCMExecute: embedded XCM program; interpretation is
	// unimplemented and always poisons the ledger.
	DirectXCMExecute
)

// Classification is the closed result of classifying one selector.
type Classification struct {
	Class  Class
	Wrap   WrapKind
	Direct DirectKind
	// Op is the semantic operation the selector resolved to, for logging.
	Op Operation
}

// noValueOps is the explicit allow-list of operations verified to have no
// treasury effect.
var noValueOps = map[Operation]struct{}{
	OpSystemRemark:            {},
	OpSystemRemarkWithEvent:   {},
	OpReferendaCancel:         {},
	OpReferendaKill:           {},
	OpTreasuryProposeSpend:    {},
	OpTreasuryApproveProposal: {},
	OpTreasuryRejectProposal:  {},
	OpTreasuryRemoveApproval:  {},
}

// wrappingOps maps wrapping operations to where their inner calls live.
var wrappingOps = map[Operation]WrapKind{
	OpSchedulerSchedule:      WrapSchedule,
	OpSchedulerScheduleAfter: WrapSchedule,
	OpWhitelistDispatch:      WrapSchedule,
	OpUtilityDispatchAs:      WrapDispatchAs,
	OpUtilityBatch:           WrapBatch,
	OpUtilityBatchAll:        WrapBatch,
	OpUtilityForceBatch:      WrapBatch,
}

// directOps maps value-moving operations to their direct kind.
var directOps = map[Operation]DirectKind{
	OpBalancesForceTransfer: DirectForceTransfer,
	OpTreasurySpend:         DirectSpend,
	OpTreasurySpendLocal:    DirectSpendLocal,
	OpXCMReserveTransfer:    DirectXCMTransfer,
	OpXCMTeleport:           DirectXCMTransfer,
	OpXCMExecute:            DirectXCMExecute,
}

// classify places an operation into its dispatch class. Every operation in
// the forward tables must land in exactly one classification set; an
// operation in none of them would classify as Unknown, which the registry
// tests treat as a table bug.
func classify(op Operation) Classification {
	if _, ok := noValueOps[op]; ok {
		return Classification{Class: ClassNoValue, Op: op}
	}
	if wrap, ok := wrappingOps[op]; ok {
		return Classification{Class: ClassWrapping, Wrap: wrap, Op: op}
	}
	if direct, ok := directOps[op]; ok {
		return Classification{Class: ClassDirect, Direct: direct, Op: op}
	}
	return Classification{Class: ClassUnknown, Op: op}
}
