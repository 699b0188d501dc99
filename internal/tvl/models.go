package tvl

import (
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainArbitrum Chain = "arbitrum"
	ChainFantom   Chain = "fantom"
	ChainPolygon  Chain = "polygon"
)

type Kind string

const (
	KindTVL     Kind = "tvl"
	KindPool2   Kind = "pool2"
	KindStaking Kind = "staking"
)

const CategoryProtocolOwnedLiquidity = "Protocol-Owned Liquidity"

// Request mirrors the host runner invocation: timestamp, block of the
// requested chain and the blocks of the other chains.
type Request struct {
	Timestamp   time.Time
	Block       *big.Int
	ChainBlocks map[Chain]*big.Int
	Chain       Chain
}

// Balances maps a token identifier to an integer amount in the token's smallest unit.
type Balances map[string]*big.Int

// AggregatedBalance is the sum of all indexer records reported for one normalized token.
type AggregatedBalance struct {
	TokenAddress string
	Balance      decimal.Decimal
	Category     string
}

type Snapshot struct {
	ID        uuid.UUID  `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Chain     Chain      `json:"chain"`
	Kind      Kind       `json:"kind"`
	Block     int64      `json:"block"`
	IndexedAt *time.Time `json:"indexed_at,omitempty"`
	Balances  Balances   `json:"balances"`
}

type Metadata struct {
	Start                time.Time        `json:"start"`
	TimeTravel           bool             `json:"timetravel"`
	MisrepresentedTokens bool             `json:"misrepresented_tokens"`
	Chains               map[Chain][]Kind `json:"chains"`
}
