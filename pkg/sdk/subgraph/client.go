package subgraph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shurcooL/graphql"
)

var ErrEmptyResponse = errors.New("empty response")

type (
	Client struct {
		gql *graphql.Client
	}
)

func NewClient(url string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		gql: graphql.NewClient(url, &http.Client{
			Transport: &aliasTransport{next: client.Transport},
			Timeout:   client.Timeout,
		}),
	}
}

// LatestIndexedBlock returns the most recent block for which the subgraph holds token records.
func (c *Client) LatestIndexedBlock(ctx context.Context) (IndexedBlock, error) {
	var query struct {
		LastBlock []lastBlockGql `graphql:"lastBlock: tokenRecords(first: 1, orderBy: block, orderDirection: desc)"`
	}

	err := c.gql.Query(withAlias(ctx, "last-block"), &query, nil)
	if err != nil {
		return IndexedBlock{}, fmt.Errorf("query last block: %w", err)
	}

	if len(query.LastBlock) == 0 {
		return IndexedBlock{}, fmt.Errorf("query last block: %w", ErrEmptyResponse)
	}

	number, err := parseBlock(query.LastBlock[0].Block)
	if err != nil {
		return IndexedBlock{}, err
	}

	ts, err := parseTimestamp(query.LastBlock[0].Timestamp)
	if err != nil {
		return IndexedBlock{}, err
	}

	return IndexedBlock{
		Number:    number,
		Timestamp: ts,
	}, nil
}

// TokenRecords returns all treasury token records indexed at exactly the given block.
func (c *Client) TokenRecords(ctx context.Context, block int64) ([]TokenRecord, error) {
	var query struct {
		TokenRecords []tokenRecordGql `graphql:"tokenRecords(orderDirection: desc, orderBy: block, where: {block: $block})"`
	}

	variables := map[string]interface{}{
		"block": BigInt(strconv.FormatInt(block, 10)),
	}

	err := c.gql.Query(withAlias(ctx, "token-records"), &query, variables)
	if err != nil {
		return nil, fmt.Errorf("query token records at %d: %w", block, err)
	}

	list := make([]TokenRecord, 0, len(query.TokenRecords))
	for _, rec := range query.TokenRecords {
		number, err := parseBlock(rec.Block)
		if err != nil {
			return nil, err
		}

		ts, err := parseTimestamp(rec.Timestamp)
		if err != nil {
			return nil, err
		}

		list = append(list, TokenRecord{
			Block:        number,
			Timestamp:    ts,
			Category:     rec.Category,
			TokenAddress: strings.ToLower(rec.TokenAddress),
			Balance:      rec.Balance,
		})
	}

	return list, nil
}

func parseBlock(value string) (int64, error) {
	number, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse block %q: %w", value, err)
	}

	return number, nil
}

func parseTimestamp(value string) (time.Time, error) {
	sec, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}

	return time.Unix(sec, 0).UTC(), nil
}
