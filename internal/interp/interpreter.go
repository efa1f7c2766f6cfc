// Package interp walks decoded proposal call trees and accumulates the
// assets they move into a ledger. Untrusted-data surprises never escape as
// errors: anything the interpreter cannot classify or decode poisons the
// ledger, so one bad proposal cannot abort a batch while still being
// auditable through the log.
package interp

import (
	"encoding/json"
	"log/slog"
	"math/big"
	"strings"

	"github.com/nkoval/govscan/internal/addr"
	"github.com/nkoval/govscan/internal/domain"
	"github.com/nkoval/govscan/internal/registry"
	"github.com/nkoval/govscan/internal/xcm"
)

// maxDepth caps call-tree recursion. Real proposals nest a handful of
// levels; anything deeper is treated as malformed.
const maxDepth = 16

// Interpreter evaluates call trees for one network. It holds no per-proposal
// state, so a single instance may evaluate many proposals concurrently.
type Interpreter struct {
	reg      *registry.Registry
	resolver *xcm.Resolver
	net      domain.NetworkConfig
	logger   *slog.Logger
}

// New creates an Interpreter from an already-built registry and resolver.
func New(reg *registry.Registry, resolver *xcm.Resolver, net domain.NetworkConfig, logger *slog.Logger) *Interpreter {
	return &Interpreter{
		reg:      reg,
		resolver: resolver,
		net:      net,
		logger:   logger.With(slog.String("component", "interp"), slog.String("network", net.Name)),
	}
}

// Interpret walks the proposal's call tree and writes the moved assets into
// ledger. An empty call (no preimage) is a no-op. The per-proposal override
// table is consulted first; overridden proposals skip interpretation
// entirely.
func (it *Interpreter) Interpret(call *domain.Call, proposalID uint32, ledger *domain.Ledger) {
	if o, ok := overrideFor(it.net.Name, proposalID); ok {
		it.logger.Info("applying proposal override",
			slog.Uint64("proposal_id", uint64(proposalID)),
			slog.String("override", o.String()),
		)
		if o == OverrideInvalid {
			ledger.MarkInvalid()
		}
		return
	}
	it.interpret(call, proposalID, ledger, 0)
}

func (it *Interpreter) interpret(call *domain.Call, proposalID uint32, ledger *domain.Ledger, depth int) {
	if call.Empty() {
		return
	}
	if depth >= maxDepth {
		it.poison(ledger, proposalID, call, "call tree exceeds depth ceiling")
		return
	}

	cls := it.reg.Classify(registry.Selector(call.CallIndex), proposalID)
	switch cls.Class {
	case registry.ClassNoValue:
		return
	case registry.ClassWrapping:
		it.interpretWrapping(call, cls, proposalID, ledger, depth)
	case registry.ClassDirect:
		it.interpretDirect(call, cls, proposalID, ledger)
	default:
		it.poison(ledger, proposalID, call, "unknown call selector")
	}
}

func (it *Interpreter) interpretWrapping(call *domain.Call, cls registry.Classification, proposalID uint32, ledger *domain.Ledger, depth int) {
	switch cls.Wrap {
	case registry.WrapSchedule:
		inner, err := call.ArgCall("call")
		if err != nil {
			it.poison(ledger, proposalID, call, err.Error())
			return
		}
		it.interpret(inner, proposalID, ledger, depth+1)

	case registry.WrapDispatchAs:
		origin, ok := dispatchOrigin(call)
		if !ok {
			it.poison(ledger, proposalID, call, "undecodable dispatch_as origin")
			return
		}
		if !addr.SameAccount(origin, it.net.TreasuryAccount) {
			// Dispatching as some other account is a policy mismatch, not a
			// data error: the call verifiably has no treasury effect.
			it.logger.Warn("dispatch_as origin is not the treasury; ignoring call",
				slog.Uint64("proposal_id", uint64(proposalID)),
				slog.String("origin", origin),
			)
			return
		}
		inner, err := call.ArgCall("call")
		if err != nil {
			it.poison(ledger, proposalID, call, err.Error())
			return
		}
		it.interpret(inner, proposalID, ledger, depth+1)

	case registry.WrapBatch:
		inners, err := call.ArgCalls("calls")
		if err != nil {
			it.poison(ledger, proposalID, call, err.Error())
			return
		}
		for _, inner := range inners {
			// Once the outcome is undefined, the remaining members cannot
			// change it.
			if ledger.Invalid() {
				return
			}
			it.interpret(inner, proposalID, ledger, depth+1)
		}

	default:
		it.poison(ledger, proposalID, call, "wrapping call without a wrap kind")
	}
}

func (it *Interpreter) interpretDirect(call *domain.Call, cls registry.Classification, proposalID uint32, ledger *domain.Ledger) {
	switch cls.Direct {
	case registry.DirectForceTransfer:
		source, err := call.ArgAccount("source")
		if err != nil {
			it.poison(ledger, proposalID, call, err.Error())
			return
		}
		if !addr.SameAccount(source, it.net.TreasuryAccount) {
			// The caller only hands us treasury-scoped proposals, so a
			// non-treasury source means our own pipeline is broken.
			it.logger.Error("force_transfer source is not the treasury account",
				slog.Uint64("proposal_id", uint64(proposalID)),
				slog.String("source", source),
			)
			ledger.MarkInvalid()
			return
		}
		amount, err := call.ArgAmount("value")
		if err != nil {
			it.poison(ledger, proposalID, call, err.Error())
			return
		}
		ledger.Add(domain.KindNative, it.net.Denominate(domain.KindNative, amount))

	case registry.DirectSpendLocal:
		amount, err := call.ArgAmount("amount")
		if err != nil {
			it.poison(ledger, proposalID, call, err.Error())
			return
		}
		ledger.Add(domain.KindNative, it.net.Denominate(domain.KindNative, amount))

	case registry.DirectSpend:
		assetRaw, ok := call.Arg("assetKind")
		if !ok {
			assetRaw, ok = call.Arg("asset_kind")
		}
		if !ok {
			it.poison(ledger, proposalID, call, "treasury spend missing asset kind")
			return
		}
		kind := it.resolver.Resolve(assetRaw)
		if kind == domain.KindInvalid {
			it.poison(ledger, proposalID, call, "unresolvable asset kind")
			return
		}
		amount, err := call.ArgAmount("amount")
		if err != nil {
			it.poison(ledger, proposalID, call, err.Error())
			return
		}
		ledger.Add(kind, it.net.Denominate(kind, amount))

	case registry.DirectXCMTransfer:
		amount, err := fungibleTotal(call)
		if err != nil {
			it.poison(ledger, proposalID, call, err.Error())
			return
		}
		ledger.Add(domain.KindNative, it.net.Denominate(domain.KindNative, amount))

	case registry.DirectXCMExecute:
		// Interpreting arbitrary embedded XCM programs is unimplemented.
		it.poison(ledger, proposalID, call, "embedded xcm program interpretation is unimplemented")

	default:
		it.poison(ledger, proposalID, call, "direct call without a direct kind")
	}
}

// poison marks the ledger undefined and logs the offending fragment so the
// proposal can be audited by hand.
func (it *Interpreter) poison(ledger *domain.Ledger, proposalID uint32, call *domain.Call, reason string) {
	it.logger.Warn("poisoning ledger",
		slog.Uint64("proposal_id", uint64(proposalID)),
		slog.String("reason", reason),
		slog.String("call", call.JSON()),
	)
	ledger.MarkInvalid()
}

// dispatchOrigin extracts the signed account from a dispatch_as origin
// argument, shaped like {"system": {"signed": "<address>"}}.
func dispatchOrigin(call *domain.Call) (string, bool) {
	raw, ok := call.Arg("asOrigin")
	if !ok {
		raw, ok = call.Arg("as_origin")
	}
	if !ok {
		return "", false
	}
	var origin struct {
		System struct {
			Signed string `json:"signed"`
		} `json:"system"`
	}
	if err := json.Unmarshal(raw, &origin); err != nil || origin.System.Signed == "" {
		return "", false
	}
	return origin.System.Signed, true
}

// fungibleTotal sums the fungible amounts in a reserve-transfer or teleport
// assets vector, tolerating the v2..v5 envelope variants.
func fungibleTotal(call *domain.Call) (*big.Int, error) {
	raw, ok := call.Arg("assets")
	if !ok {
		return nil, errMissingAssets(call)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errBadAssets(call, err)
	}
	var list json.RawMessage
	for key, val := range envelope {
		if k := strings.ToLower(key); len(k) == 2 && k[0] == 'v' {
			list = val
			break
		}
	}
	if list == nil {
		return nil, errMissingAssets(call)
	}

	var assets []struct {
		Fun struct {
			Fungible json.RawMessage `json:"fungible"`
		} `json:"fun"`
	}
	if err := json.Unmarshal(list, &assets); err != nil {
		return nil, errBadAssets(call, err)
	}

	total := new(big.Int)
	seen := false
	for _, a := range assets {
		if len(a.Fun.Fungible) == 0 {
			continue
		}
		n, err := domain.ParseAmount(a.Fun.Fungible)
		if err != nil {
			return nil, errBadAssets(call, err)
		}
		total.Add(total, n)
		seen = true
	}
	if !seen {
		return nil, errMissingAssets(call)
	}
	return total, nil
}
