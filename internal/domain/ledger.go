package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Converter turns an amount of one asset kind into another. Implemented by
// service.PriceService; asOf pins the conversion to a historic quote when
// non-nil. Conversions between non-convertible kinds are caller bugs and
// return an error rather than a silent zero.
type Converter interface {
	Convert(from AssetKind, amount float64, to AssetKind, asOf *time.Time) (float64, error)
}

// Ledger accumulates the per-asset amounts a single proposal moves. It is
// created fresh for each evaluation, mutated only by the interpreter, valued
// once, and discarded.
//
// A ledger can be poisoned (MarkInvalid) when the interpreter hits a call or
// asset it cannot classify. Poisoning is irreversible: every subsequent
// amount or valuation read returns NaN, so an undetermined proposal can
// never masquerade as a zero-value one.
type Ledger struct {
	amounts map[AssetKind]float64
	invalid bool
}

// NewLedger returns an empty, valid ledger.
func NewLedger() *Ledger {
	return &Ledger{amounts: make(map[AssetKind]float64)}
}

// Add accumulates amount into the entry for kind, creating it if absent.
func (l *Ledger) Add(kind AssetKind, amount float64) {
	l.amounts[kind] += amount
}

// Remove subtracts amount from the entry for kind, deleting the entry when
// the remainder drops to zero or below. Removing a kind that was never added
// signals a caller bug and returns ErrNotFound.
func (l *Ledger) Remove(kind AssetKind, amount float64) error {
	cur, ok := l.amounts[kind]
	if !ok {
		return fmt.Errorf("ledger: remove %s: %w", kind, ErrNotFound)
	}
	rest := cur - amount
	if rest <= 0 {
		delete(l.amounts, kind)
		return nil
	}
	l.amounts[kind] = rest
	return nil
}

// MarkInvalid permanently poisons the ledger. Idempotent.
func (l *Ledger) MarkInvalid() {
	l.invalid = true
}

// Invalid reports whether the ledger has been poisoned.
func (l *Ledger) Invalid() bool {
	return l.invalid
}

// AmountOf returns the accumulated amount for kind, zero for kinds never
// added, and NaN for every kind once the ledger is poisoned.
func (l *Ledger) AmountOf(kind AssetKind) float64 {
	if l.invalid {
		return math.NaN()
	}
	return l.amounts[kind]
}

// Kinds returns the held asset kinds in stable order.
func (l *Ledger) Kinds() []AssetKind {
	kinds := make([]AssetKind, 0, len(l.amounts))
	for k := range l.amounts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Empty reports whether the ledger holds no amounts.
func (l *Ledger) Empty() bool {
	return len(l.amounts) == 0
}

// TotalValue sums the ledger's holdings expressed in target, converting each
// entry through conv, optionally pinned to a historic date. A poisoned
// ledger values to NaN; an empty one to zero. Conversion errors are contract
// violations and propagate.
func (l *Ledger) TotalValue(conv Converter, target AssetKind, asOf *time.Time) (float64, error) {
	if l.invalid {
		return math.NaN(), nil
	}
	var total float64
	for _, kind := range l.Kinds() {
		v, err := conv.Convert(kind, l.amounts[kind], target, asOf)
		if err != nil {
			return 0, fmt.Errorf("ledger: value %s as %s: %w", kind, target, err)
		}
		total += v
	}
	return total, nil
}

// Snapshot returns a copy of the held amounts for persistence. The poison
// flag travels separately via Invalid.
func (l *Ledger) Snapshot() map[AssetKind]float64 {
	out := make(map[AssetKind]float64, len(l.amounts))
	for k, v := range l.amounts {
		out[k] = v
	}
	return out
}
