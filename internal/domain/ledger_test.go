package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConverter converts everything at a fixed native price of 5 USD,
// stablecoins 1:1, DED to zero.
type stubConverter struct{}

func (stubConverter) Convert(from AssetKind, amount float64, to AssetKind, asOf *time.Time) (float64, error) {
	if from == to || (from.Stablecoin() && to.Stablecoin()) {
		return amount, nil
	}
	if from == KindDED || to == KindDED {
		return 0, nil
	}
	if from == KindNative {
		return amount * 5, nil
	}
	return amount / 5, nil
}

func TestLedgerAddAccumulates(t *testing.T) {
	l := NewLedger()
	l.Add(KindNative, 100)
	l.Add(KindNative, 50)
	l.Add(KindUSDC, 7)

	assert.Equal(t, 150.0, l.AmountOf(KindNative))
	assert.Equal(t, 7.0, l.AmountOf(KindUSDC))
	assert.Equal(t, 0.0, l.AmountOf(KindUSDT))
	assert.Equal(t, []AssetKind{KindNative, KindUSDC}, l.Kinds())
}

func TestLedgerRemove(t *testing.T) {
	l := NewLedger()
	l.Add(KindNative, 100)

	require.NoError(t, l.Remove(KindNative, 40))
	assert.Equal(t, 60.0, l.AmountOf(KindNative))

	// Removing down to zero drops the entry entirely.
	require.NoError(t, l.Remove(KindNative, 60))
	assert.True(t, l.Empty())

	err := l.Remove(KindUSDC, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedgerPoisonIsSticky(t *testing.T) {
	l := NewLedger()
	l.Add(KindNative, 100)
	l.MarkInvalid()
	l.MarkInvalid() // idempotent

	assert.True(t, l.Invalid())
	assert.True(t, math.IsNaN(l.AmountOf(KindNative)))
	assert.True(t, math.IsNaN(l.AmountOf(KindUSDC)))

	total, err := l.TotalValue(stubConverter{}, KindUSDC, nil)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(total))
}

func TestLedgerTotalValue(t *testing.T) {
	l := NewLedger()
	l.Add(KindNative, 10) // 50 USD at the stub price
	l.Add(KindUSDT, 25)   // 1:1
	l.Add(KindDED, 9999)  // worthless

	total, err := l.TotalValue(stubConverter{}, KindUSDC, nil)
	require.NoError(t, err)
	assert.Equal(t, 75.0, total)
}

func TestLedgerEmptyValuesToZero(t *testing.T) {
	total, err := NewLedger().TotalValue(stubConverter{}, KindUSDC, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
}

func TestLedgerSnapshotIsACopy(t *testing.T) {
	l := NewLedger()
	l.Add(KindNative, 3)

	snap := l.Snapshot()
	snap[KindNative] = 999

	assert.Equal(t, 3.0, l.AmountOf(KindNative))
}
