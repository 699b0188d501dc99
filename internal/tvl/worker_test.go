package tvl

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goverland-labs/treasury-tvl/pkg/sdk/subgraph"
)

type fakeStorage struct {
	created []*Snapshot
	err     error
}

func (f *fakeStorage) Create(snapshot *Snapshot) error {
	f.created = append(f.created, snapshot)

	return f.err
}

type fakeSnapshotPublisher struct {
	published []*Snapshot
}

func (f *fakeSnapshotPublisher) Publish(snapshot *Snapshot) error {
	f.published = append(f.published, snapshot)

	return nil
}

func TestUnitRefreshWorkerProcess(t *testing.T) {
	indexer := &fakeIndexer{
		last: subgraph.IndexedBlock{Number: 100, Timestamp: testNow},
		records: records(testNow,
			subgraph.TokenRecord{TokenAddress: "0xa", Balance: "1", Category: CategoryProtocolOwnedLiquidity},
		),
	}
	caller := &fakeCaller{
		balances: map[string]*big.Int{
			stakingContracts[0]: big.NewInt(1),
			stakingContracts[1]: big.NewInt(2),
		},
	}
	cache := NewCache(16, time.Minute)
	storage := &fakeStorage{err: errors.New("db is down")}
	pub := &fakeSnapshotPublisher{}

	w := NewRefreshWorker(newTestAdapter(t, indexer, caller), cache, storage, pub, time.Minute)
	w.process(context.Background())

	// ethereum: tvl, staking, pool2; arbitrum: tvl, pool2
	require.Len(t, storage.created, 5)
	require.Len(t, pub.published, 5)

	for _, key := range []struct {
		chain Chain
		kind  Kind
	}{
		{ChainEthereum, KindTVL},
		{ChainEthereum, KindStaking},
		{ChainEthereum, KindPool2},
		{ChainArbitrum, KindTVL},
		{ChainArbitrum, KindPool2},
	} {
		_, ok := cache.Get(key.chain, key.kind)
		require.True(t, ok, fmt.Sprintf("%s/%s", key.chain, key.kind))
	}
}

func TestUnitRefreshWorkerSkipsFailedSnapshots(t *testing.T) {
	stale := testNow.Add(-7 * 24 * time.Hour)
	indexer := &fakeIndexer{
		last:    subgraph.IndexedBlock{Number: 100, Timestamp: stale},
		records: records(stale, subgraph.TokenRecord{TokenAddress: "0xa", Balance: "1"}),
	}
	caller := &fakeCaller{
		balances: map[string]*big.Int{
			stakingContracts[0]: big.NewInt(1),
			stakingContracts[1]: big.NewInt(2),
		},
	}
	cache := NewCache(16, time.Minute)
	storage := &fakeStorage{}

	w := NewRefreshWorker(newTestAdapter(t, indexer, caller), cache, storage, nil, time.Minute)
	w.process(context.Background())

	require.Len(t, storage.created, 1)
	require.Equal(t, KindStaking, storage.created[0].Kind)

	_, ok := cache.Get(ChainEthereum, KindTVL)
	require.False(t, ok)
}

func TestUnitRefreshWorkerEvictsOutdatedSnapshots(t *testing.T) {
	stale := testNow.Add(-4 * 24 * time.Hour)
	indexer := &fakeIndexer{
		last:    subgraph.IndexedBlock{Number: 100, Timestamp: stale},
		records: records(stale, subgraph.TokenRecord{TokenAddress: "0xa", Balance: "1"}),
	}
	caller := &fakeCaller{
		balances: map[string]*big.Int{
			stakingContracts[0]: big.NewInt(1),
			stakingContracts[1]: big.NewInt(2),
		},
	}
	cache := NewCache(16, time.Minute)
	cache.Set(&Snapshot{Chain: ChainEthereum, Kind: KindTVL, Block: 90})
	cache.Set(&Snapshot{Chain: ChainArbitrum, Kind: KindPool2, Block: 90})

	w := NewRefreshWorker(newTestAdapter(t, indexer, caller), cache, nil, nil, time.Minute)
	w.process(context.Background())

	_, ok := cache.Get(ChainEthereum, KindTVL)
	require.False(t, ok)

	_, ok = cache.Get(ChainArbitrum, KindPool2)
	require.False(t, ok)

	_, ok = cache.Get(ChainEthereum, KindStaking)
	require.True(t, ok)
}

func TestUnitRefreshWorkerStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewRefreshWorker(newTestAdapter(t, &fakeIndexer{}, &fakeCaller{}), NewCache(1, time.Minute), nil, nil, time.Hour)
	require.NoError(t, w.Start(ctx))
}

func TestUnitErrReason(t *testing.T) {
	for name, tc := range map[string]struct {
		err      error
		expected string
	}{
		"outdated": {err: fmt.Errorf("wrap: %w", ErrOutdatedData), expected: "outdated"},
		"no data":  {err: ErrNoData, expected: "no_data"},
		"other":    {err: errors.New("boom"), expected: "failure"},
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.expected, errReason(tc.err))
		})
	}
}
