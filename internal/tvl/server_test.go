package tvl

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/goverland-labs/treasury-tvl/pkg/sdk/subgraph"
)

type fakeHistory struct {
	filters []Filter
	list    []Snapshot
	err     error
}

func (f *fakeHistory) GetByFilters(filters []Filter) ([]Snapshot, error) {
	f.filters = filters

	return f.list, f.err
}

func doRequest(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}

	return rec, body
}

func TestUnitServerSnapshot(t *testing.T) {
	indexer := &fakeIndexer{
		last: subgraph.IndexedBlock{Number: 100, Timestamp: testNow},
		records: records(testNow,
			subgraph.TokenRecord{TokenAddress: "0xa", Balance: "100", Category: "X"},
			subgraph.TokenRecord{TokenAddress: "0xa", Balance: "50", Category: "X"},
		),
	}
	caller := &fakeCaller{decimals: map[string]uint8{"0xa": 6}}
	cache := NewCache(8, time.Minute)
	s := NewServer(newTestAdapter(t, indexer, caller), cache, nil)

	rec, body := doRequest(t, s, "/v1/chains/ethereum/tvl")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, map[string]interface{}{"ethereum:0xa": float64(150000000)}, body["balances"])
	require.Equal(t, float64(100), body["block"])

	// served from cache, the indexer is not queried again
	rec, _ = doRequest(t, s, "/v1/chains/ethereum/tvl")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, indexer.requested, 1)
}

func TestUnitServerErrors(t *testing.T) {
	stale := testNow.Add(-4 * 24 * time.Hour)

	for name, tc := range map[string]struct {
		indexer  *fakeIndexer
		path     string
		status   int
		expected string
	}{
		"outdated": {
			indexer: &fakeIndexer{
				last:    subgraph.IndexedBlock{Number: 1, Timestamp: stale},
				records: records(stale, subgraph.TokenRecord{TokenAddress: "0xa", Balance: "1"}),
			},
			path:     "/v1/chains/ethereum/pool2",
			status:   http.StatusServiceUnavailable,
			expected: "outdated",
		},
		"no data": {
			indexer:  &fakeIndexer{lastErr: subgraph.ErrEmptyResponse},
			path:     "/v1/chains/arbitrum/tvl",
			status:   http.StatusNotFound,
			expected: "no data available",
		},
		"upstream": {
			indexer:  &fakeIndexer{lastErr: errors.New("502 bad gateway")},
			path:     "/v1/chains/ethereum/tvl",
			status:   http.StatusBadGateway,
			expected: "upstream failure",
		},
		"unknown chain": {
			indexer:  &fakeIndexer{},
			path:     "/v1/chains/solana/tvl",
			status:   http.StatusNotFound,
			expected: "unsupported chain or kind",
		},
		"staking on arbitrum": {
			indexer:  &fakeIndexer{},
			path:     "/v1/chains/arbitrum/staking",
			status:   http.StatusNotFound,
			expected: "unsupported chain or kind",
		},
	} {
		t.Run(name, func(t *testing.T) {
			s := NewServer(newTestAdapter(t, tc.indexer, &fakeCaller{}), NewCache(8, time.Minute), nil)

			rec, body := doRequest(t, s, tc.path)
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.expected, body["error"])
		})
	}
}

func TestUnitServerMetadata(t *testing.T) {
	s := NewServer(newTestAdapter(t, &fakeIndexer{}, &fakeCaller{}), NewCache(8, time.Minute), nil)

	rec, body := doRequest(t, s, "/v1/adapter")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, body["timetravel"])
	require.Equal(t, true, body["misrepresented_tokens"])
	require.Contains(t, body["chains"], "ethereum")
}

func TestUnitServerHistory(t *testing.T) {
	history := &fakeHistory{list: []Snapshot{{ID: uuid.New(), Chain: ChainEthereum, Kind: KindTVL}}}
	s := NewServer(newTestAdapter(t, &fakeIndexer{}, &fakeCaller{}), NewCache(8, time.Minute), history)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/chains/ethereum/tvl/history?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list []Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	require.Len(t, history.filters, 2)
	filter, ok := history.filters[0].(SnapshotFilter)
	require.True(t, ok)
	require.Equal(t, ChainEthereum, *filter.Chain)
	require.Equal(t, KindTVL, *filter.Kind)
	require.Equal(t, PageFilter{Limit: 5}, history.filters[1])

	rec, body := doRequest(t, s, "/v1/chains/ethereum/tvl/history?limit=-1")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid limit", body["error"])

	disabled := NewServer(newTestAdapter(t, &fakeIndexer{}, &fakeCaller{}), NewCache(8, time.Minute), nil)
	rec, _ = doRequest(t, disabled, "/v1/chains/ethereum/tvl/history")
	require.Equal(t, http.StatusNotImplemented, rec.Code)
}
