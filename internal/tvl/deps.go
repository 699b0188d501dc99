package tvl

import (
	"context"
	"math/big"

	"github.com/goverland-labs/treasury-tvl/pkg/sdk/subgraph"
)

type Indexer interface {
	LatestIndexedBlock(ctx context.Context) (subgraph.IndexedBlock, error)
	TokenRecords(ctx context.Context, block int64) ([]subgraph.TokenRecord, error)
}

type TokenCaller interface {
	BalanceOf(ctx context.Context, token, holder string, block *big.Int) (*big.Int, error)
	Decimals(ctx context.Context, token string) (uint8, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

type SnapshotStorage interface {
	Create(snapshot *Snapshot) error
}

type SnapshotPublisher interface {
	Publish(snapshot *Snapshot) error
}
