package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkoval/govscan/internal/domain"
	"github.com/nkoval/govscan/internal/interp"
	"github.com/nkoval/govscan/internal/registry"
	"github.com/nkoval/govscan/internal/xcm"
)

type fakeProposalSource struct {
	proposals map[uint32]domain.Proposal
}

func (f *fakeProposalSource) ListReferenda(ctx context.Context, page, pageSize int) ([]domain.ProposalSummary, int, error) {
	return nil, 0, nil
}

func (f *fakeProposalSource) GetReferendum(ctx context.Context, id uint32) (domain.Proposal, error) {
	p, ok := f.proposals[id]
	if !ok {
		return domain.Proposal{}, domain.ErrNotFound
	}
	return p, nil
}

type memValuationStore struct {
	mu   sync.Mutex
	rows map[uint32]domain.Valuation
}

func newMemValuationStore() *memValuationStore {
	return &memValuationStore{rows: make(map[uint32]domain.Valuation)}
}

func (m *memValuationStore) Upsert(ctx context.Context, v domain.Valuation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[v.ProposalID] = v
	return nil
}

func (m *memValuationStore) Get(ctx context.Context, network string, id uint32) (domain.Valuation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.rows[id]
	if !ok {
		return domain.Valuation{}, domain.ErrNotFound
	}
	return v, nil
}

func (m *memValuationStore) List(ctx context.Context, network string, limit, offset int) ([]domain.Valuation, error) {
	return nil, nil
}

func (m *memValuationStore) MaxProposalID(ctx context.Context, network string) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var max uint32
	for id := range m.rows {
		if id > max {
			max = id
		}
	}
	return max, nil
}

func proposalWithCall(t *testing.T, id uint32, callJSON string, executedAt *time.Time) domain.Proposal {
	t.Helper()
	var call domain.Call
	require.NoError(t, json.Unmarshal([]byte(callJSON), &call))
	return domain.Proposal{
		ID:         id,
		Title:      fmt.Sprintf("referendum %d", id),
		State:      "Executed",
		ExecutedAt: executedAt,
		Call:       &call,
		Raw:        []byte(callJSON),
	}
}

func newValuationService(t *testing.T, source domain.ProposalSource, store domain.ValuationStore) *ValuationService {
	t.Helper()
	logger := discardLogger()
	net := domain.Polkadot()
	interpreter := interp.New(registry.New(net.EraCutoverID), xcm.NewResolver(logger), net, logger)
	prices := NewPriceService(testSeries(), logger)
	return NewValuationService(source, interpreter, prices, store, nil, net, logger)
}

func TestEvaluatePersistsValuation(t *testing.T) {
	executed := day(11) // pins the historic quote at 10 USD
	source := &fakeProposalSource{proposals: map[uint32]domain.Proposal{
		2000: proposalWithCall(t, 2000,
			`{"callIndex": "0x3c03", "args": [{"name": "amount", "value": "20000000000"}]}`,
			&executed),
	}}
	store := newMemValuationStore()
	svc := newValuationService(t, source, store)

	v, err := svc.Evaluate(context.Background(), 2000)
	require.NoError(t, err)

	assert.Equal(t, "polkadot", v.Network)
	assert.False(t, v.Undetermined)
	assert.Equal(t, 2.0, v.Amounts[domain.KindNative])
	require.NotNil(t, v.USDValue)
	assert.Equal(t, 20.0, *v.USDValue)
	require.NotNil(t, v.NativeValue)
	assert.Equal(t, 2.0, *v.NativeValue)

	stored, err := store.Get(context.Background(), "polkadot", 2000)
	require.NoError(t, err)
	assert.Equal(t, v.USDValue, stored.USDValue)
}

func TestEvaluateUndeterminedCarriesNilScalars(t *testing.T) {
	source := &fakeProposalSource{proposals: map[uint32]domain.Proposal{
		2001: proposalWithCall(t, 2001, `{"callIndex": "0xbeef", "args": []}`, nil),
	}}
	svc := newValuationService(t, source, newMemValuationStore())

	v, err := svc.Evaluate(context.Background(), 2001)
	require.NoError(t, err)

	assert.True(t, v.Undetermined)
	assert.Nil(t, v.USDValue)
	assert.Nil(t, v.NativeValue)
}

func TestEvaluateMissingPreimageValuesToZero(t *testing.T) {
	source := &fakeProposalSource{proposals: map[uint32]domain.Proposal{
		2002: {ID: 2002, Title: "no preimage", State: "Deciding"},
	}}
	svc := newValuationService(t, source, newMemValuationStore())

	v, err := svc.Evaluate(context.Background(), 2002)
	require.NoError(t, err)

	assert.False(t, v.Undetermined)
	require.NotNil(t, v.USDValue)
	assert.Equal(t, 0.0, *v.USDValue)
}

func TestEvaluateUnknownProposal(t *testing.T) {
	svc := newValuationService(t, &fakeProposalSource{proposals: map[uint32]domain.Proposal{}}, nil)

	_, err := svc.Evaluate(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvaluateMany(t *testing.T) {
	proposals := make(map[uint32]domain.Proposal)
	ids := make([]uint32, 0, 10)
	for i := uint32(2000); i < 2010; i++ {
		proposals[i] = proposalWithCall(t, i,
			`{"callIndex": "0x3c03", "args": [{"name": "amount", "value": "10000000000"}]}`, nil)
		ids = append(ids, i)
	}
	source := &fakeProposalSource{proposals: proposals}
	store := newMemValuationStore()
	svc := newValuationService(t, source, store)

	results, err := svc.EvaluateMany(context.Background(), ids, 4)
	require.NoError(t, err)
	require.Len(t, results, len(ids))

	for i, v := range results {
		assert.Equal(t, ids[i], v.ProposalID)
		assert.Equal(t, 1.0, v.Amounts[domain.KindNative])
	}

	maxID, err := store.MaxProposalID(context.Background(), "polkadot")
	require.NoError(t, err)
	assert.Equal(t, uint32(2009), maxID)
}
