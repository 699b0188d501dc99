package tvl

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/goverland-labs/treasury-tvl/pkg/sdk/subgraph"
)

const (
	// OHM is the protocol native token.
	OHM = "0x383518188c0c6d7730d91b2c03a03c837814a899"

	maxDataAge = 3 * 24 * time.Hour
)

var (
	stakingContracts = []string{
		"0x0822F3C03dcc24d200AFF33493Dc08d0e1f274A2", // old staking
		"0xFd31c7d00Ca47653c6Ce64Af53c1571f9C36566a", // new staking
	}

	// adapterStart is March 24th, 2021.
	adapterStart = time.Unix(1616569200, 0).UTC()

	chainKinds = map[Chain][]Kind{
		ChainEthereum: {KindTVL, KindStaking, KindPool2},
		ChainArbitrum: {KindTVL, KindPool2},
		ChainPolygon:  {KindTVL, KindPool2},
		ChainFantom:   {KindTVL, KindPool2},
	}
)

type Adapter struct {
	indexers  map[Chain]Indexer
	callers   map[Chain]TokenCaller
	addresses *AddressMap

	now func() time.Time
}

func NewAdapter(indexers map[Chain]Indexer, callers map[Chain]TokenCaller, addresses *AddressMap) *Adapter {
	return &Adapter{
		indexers:  indexers,
		callers:   callers,
		addresses: addresses,
		now:       time.Now,
	}
}

func (a *Adapter) Metadata() Metadata {
	chains := make(map[Chain][]Kind, len(chainKinds))
	for chain, kinds := range chainKinds {
		if _, ok := a.indexers[chain]; !ok {
			continue
		}

		chains[chain] = append([]Kind(nil), kinds...)
	}

	return Metadata{
		Start:                adapterStart,
		TimeTravel:           false,
		MisrepresentedTokens: true,
		Chains:               chains,
	}
}

// Supports reports whether the kind is exposed for the chain.
func (a *Adapter) Supports(chain Chain, kind Kind) bool {
	if _, ok := a.indexers[chain]; !ok {
		return false
	}

	for _, k := range chainKinds[chain] {
		if k == kind {
			return true
		}
	}

	return false
}

// Staking sums OHM held by the staking contracts. The result is keyed by the bare OHM address.
func (a *Adapter) Staking(ctx context.Context, req Request) (Balances, error) {
	if req.Chain != "" && req.Chain != ChainEthereum {
		return nil, ErrStakingUnsupported
	}

	caller, ok := a.callers[ChainEthereum]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedChain, ChainEthereum)
	}

	block := req.Block
	if block == nil {
		block = req.ChainBlocks[ChainEthereum]
	}

	total := new(big.Int)
	for _, holder := range stakingContracts {
		balance, err := caller.BalanceOf(ctx, OHM, holder, block)
		if err != nil {
			return nil, fmt.Errorf("balance of %s: %w", holder, err)
		}

		total.Add(total, balance)
	}

	return Balances{OHM: total}, nil
}

func (a *Adapter) TVL(ctx context.Context, req Request) (Balances, error) {
	return a.Treasury(ctx, req, false)
}

// Pool2 is TVL limited to protocol-owned liquidity.
func (a *Adapter) Pool2(ctx context.Context, req Request) (Balances, error) {
	return a.Treasury(ctx, req, true)
}

func (a *Adapter) Treasury(ctx context.Context, req Request, poolsOnly bool) (Balances, error) {
	balances, _, err := a.treasury(ctx, req.Chain, poolsOnly)

	return balances, err
}

// Snapshot computes the given kind for the chain and wraps the result with indexing details.
func (a *Adapter) Snapshot(ctx context.Context, chain Chain, kind Kind) (*Snapshot, error) {
	if _, ok := a.indexers[chain]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedChain, chain)
	}

	if !a.Supports(chain, kind) {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedKind, kind, chain)
	}

	snapshot := &Snapshot{
		ID:        uuid.New(),
		CreatedAt: a.now(),
		Chain:     chain,
		Kind:      kind,
	}

	var err error
	switch kind {
	case KindStaking:
		snapshot.Balances, snapshot.Block, err = a.stakingAtHead(ctx, snapshot.CreatedAt)
	default:
		var block subgraph.IndexedBlock
		snapshot.Balances, block, err = a.treasury(ctx, chain, kind == KindPool2)
		if err == nil {
			snapshot.Block = block.Number
			snapshot.IndexedAt = &block.Timestamp
		}
	}
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// stakingAtHead reads staking balances pinned to the current ethereum head.
func (a *Adapter) stakingAtHead(ctx context.Context, ts time.Time) (Balances, int64, error) {
	caller, ok := a.callers[ChainEthereum]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedChain, ChainEthereum)
	}

	head, err := caller.BlockNumber(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("head block: %w", err)
	}

	balances, err := a.Staking(ctx, Request{
		Timestamp: ts,
		Block:     new(big.Int).SetUint64(head),
		Chain:     ChainEthereum,
	})
	if err != nil {
		return nil, 0, err
	}

	return balances, int64(head), nil
}

func (a *Adapter) treasury(ctx context.Context, chain Chain, poolsOnly bool) (Balances, subgraph.IndexedBlock, error) {
	indexer, ok := a.indexers[chain]
	if !ok {
		return nil, subgraph.IndexedBlock{}, fmt.Errorf("%w: %s", ErrUnsupportedChain, chain)
	}

	caller, ok := a.callers[chain]
	if !ok {
		return nil, subgraph.IndexedBlock{}, fmt.Errorf("%w: no rpc for %s", ErrUnsupportedChain, chain)
	}

	// token records must be requested at a block the indexer has, not the chain head
	last, err := indexer.LatestIndexedBlock(ctx)
	if errors.Is(err, subgraph.ErrEmptyResponse) {
		return nil, subgraph.IndexedBlock{}, fmt.Errorf("%w: no indexed block on %s", ErrNoData, chain)
	}
	if err != nil {
		return nil, subgraph.IndexedBlock{}, fmt.Errorf("latest indexed block: %w", err)
	}

	records, err := indexer.TokenRecords(ctx, last.Number)
	if err != nil {
		return nil, subgraph.IndexedBlock{}, fmt.Errorf("token records: %w", err)
	}

	if len(records) == 0 {
		return nil, subgraph.IndexedBlock{}, fmt.Errorf("%w: no token records at block %d on %s", ErrNoData, last.Number, chain)
	}

	indexed := subgraph.IndexedBlock{
		Number:    last.Number,
		Timestamp: records[0].Timestamp,
	}
	if age := a.now().Sub(indexed.Timestamp); age > maxDataAge {
		return nil, indexed, fmt.Errorf("%w: %s data indexed at %s is %s old", ErrOutdatedData, chain, indexed.Timestamp.Format(time.RFC3339), age.Truncate(time.Second))
	}

	aggregated, err := aggregateRecords(normalizeRecords(filterRecords(records, poolsOnly), a.addresses))
	if err != nil {
		return nil, indexed, err
	}

	balances, err := a.toBalances(ctx, chain, caller, aggregated)
	if err != nil {
		return nil, indexed, err
	}

	log.Debug().
		Str("chain", string(chain)).
		Bool("pools_only", poolsOnly).
		Int64("block", indexed.Number).
		Int("records", len(records)).
		Int("tokens", len(balances)).
		Msg("treasury balances computed")

	return balances, indexed, nil
}

// toBalances looks up decimals for every token concurrently. Any failure fails the whole call.
func (a *Adapter) toBalances(ctx context.Context, chain Chain, caller TokenCaller, aggregated []AggregatedBalance) (Balances, error) {
	amounts := make([]*big.Int, len(aggregated))

	g, gctx := errgroup.WithContext(ctx)
	for i, token := range aggregated {
		g.Go(func() error {
			decimals, err := caller.Decimals(gctx, token.TokenAddress)
			if err != nil {
				return fmt.Errorf("decimals of %s on %s: %w", token.TokenAddress, chain, err)
			}

			amounts[i] = toBaseUnits(token.Balance, decimals)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	balances := make(Balances, len(aggregated))
	for i, token := range aggregated {
		balances[chainKey(chain, token.TokenAddress)] = amounts[i]
	}

	return balances, nil
}
