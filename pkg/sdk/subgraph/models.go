package subgraph

import (
	"time"
)

type (
	// BigInt is a subgraph BigInt scalar. The type name is used as the graphql variable type.
	BigInt string

	lastBlockGql struct {
		Block     string `graphql:"block"`
		Timestamp string `graphql:"timestamp"`
	}

	tokenRecordGql struct {
		Block        string `graphql:"block"`
		Timestamp    string `graphql:"timestamp"`
		Category     string `graphql:"category"`
		TokenAddress string `graphql:"tokenAddress"`
		Balance      string `graphql:"balance"`
	}

	IndexedBlock struct {
		Number    int64
		Timestamp time.Time
	}

	TokenRecord struct {
		Block        int64
		Timestamp    time.Time
		Category     string
		TokenAddress string
		// Balance is a decimal string in whole token units.
		Balance string
	}
)
