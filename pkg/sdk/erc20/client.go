package erc20

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"}
]`

var parsedABI = mustParseABI(erc20ABI)

type contractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

type (
	Client struct {
		eth contractCaller
		rpc *rpc.Client
	}
)

// Dial connects to the json-rpc endpoint. Options are passed to rpc.DialOptions as is.
func Dial(ctx context.Context, url string, opts ...rpc.ClientOption) (*Client, error) {
	rc, err := rpc.DialOptions(ctx, url, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	return NewClient(rc), nil
}

func NewClient(rc *rpc.Client) *Client {
	return &Client{
		eth: ethclient.NewClient(rc),
		rpc: rc,
	}
}

// BalanceOf returns balanceOf(holder) of the token at the given block. Nil block means chain head.
func (c *Client) BalanceOf(ctx context.Context, token, holder string, block *big.Int) (*big.Int, error) {
	if !common.IsHexAddress(holder) {
		return nil, fmt.Errorf("invalid holder address: %s", holder)
	}

	out, err := c.call(ctx, token, block, "balanceOf", common.HexToAddress(holder))
	if err != nil {
		return nil, err
	}

	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf %s: unexpected output type %T", token, out[0])
	}

	return balance, nil
}

// Decimals returns decimals() of the token at the chain head.
func (c *Client) Decimals(ctx context.Context, token string) (uint8, error) {
	out, err := c.call(ctx, token, nil, "decimals")
	if err != nil {
		return 0, err
	}

	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals %s: unexpected output type %T", token, out[0])
	}

	return decimals, nil
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

func (c *Client) Close() {
	if c.rpc != nil {
		c.rpc.Close()
	}
}

func (c *Client) call(ctx context.Context, token string, block *big.Int, method string, args ...interface{}) ([]interface{}, error) {
	if !common.IsHexAddress(token) {
		return nil, fmt.Errorf("invalid token address: %s", token)
	}

	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	to := common.HexToAddress(token)
	res, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, block)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, token, err)
	}

	out, err := parsedABI.Unpack(method, res)
	if err != nil {
		return nil, fmt.Errorf("unpack %s on %s: %w", method, token, err)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%s on %s: empty output", method, token)
	}

	return out, nil
}

func mustParseABI(data string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(data))
	if err != nil {
		panic(err)
	}

	return parsed
}
