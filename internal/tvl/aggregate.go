package tvl

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/goverland-labs/treasury-tvl/pkg/sdk/subgraph"
)

func filterRecords(records []subgraph.TokenRecord, poolsOnly bool) []subgraph.TokenRecord {
	if !poolsOnly {
		return records
	}

	list := make([]subgraph.TokenRecord, 0, len(records))
	for _, rec := range records {
		if rec.Category == CategoryProtocolOwnedLiquidity {
			list = append(list, rec)
		}
	}

	return list
}

func normalizeRecords(records []subgraph.TokenRecord, addresses *AddressMap) []subgraph.TokenRecord {
	list := make([]subgraph.TokenRecord, len(records))
	for i, rec := range records {
		rec.TokenAddress = addresses.Normalize(rec.TokenAddress)
		list[i] = rec
	}

	return list
}

// aggregateRecords folds records by token address. It must run after normalization,
// otherwise two addresses mapped to the same target produce duplicate result keys.
// The first seen category and order are kept.
func aggregateRecords(records []subgraph.TokenRecord) ([]AggregatedBalance, error) {
	index := make(map[string]int, len(records))
	list := make([]AggregatedBalance, 0, len(records))

	for _, rec := range records {
		balance, err := decimal.NewFromString(rec.Balance)
		if err != nil {
			return nil, fmt.Errorf("parse balance %q of %s: %w", rec.Balance, rec.TokenAddress, err)
		}

		if idx, ok := index[rec.TokenAddress]; ok {
			list[idx].Balance = list[idx].Balance.Add(balance)
			continue
		}

		index[rec.TokenAddress] = len(list)
		list = append(list, AggregatedBalance{
			TokenAddress: rec.TokenAddress,
			Balance:      balance,
			Category:     rec.Category,
		})
	}

	return list, nil
}

// toBaseUnits scales balance by 10^decimals and rounds half away from zero.
func toBaseUnits(balance decimal.Decimal, decimals uint8) *big.Int {
	return balance.Shift(int32(decimals)).Round(0).BigInt()
}

func chainKey(chain Chain, address string) string {
	return fmt.Sprintf("%s:%s", chain, address)
}
