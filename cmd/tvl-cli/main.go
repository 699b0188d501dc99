package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/goverland-labs/treasury-tvl/internal/tvl"
	"github.com/goverland-labs/treasury-tvl/pkg/sdk/erc20"
	"github.com/goverland-labs/treasury-tvl/pkg/sdk/subgraph"
)

const envVarPrefix = "TVL_CLI"

func prefixEnvVars(name string) []string {
	return []string{envVarPrefix + "_" + name}
}

var (
	chainFlag = &cli.StringFlag{
		Name:    "chain",
		Usage:   "chain to compute: ethereum, arbitrum, fantom or polygon",
		Value:   string(tvl.ChainEthereum),
		EnvVars: prefixEnvVars("CHAIN"),
	}
	kindFlag = &cli.StringFlag{
		Name:    "kind",
		Usage:   "entry point: tvl, pool2 or staking",
		Value:   string(tvl.KindTVL),
		EnvVars: prefixEnvVars("KIND"),
	}
	rpcFlag = &cli.StringFlag{
		Name:     "rpc-url",
		Usage:    "json-rpc endpoint of the chain",
		EnvVars:  prefixEnvVars("RPC_URL"),
		Required: true,
	}
	subgraphFlag = &cli.StringFlag{
		Name:    "subgraph-url",
		Usage:   "protocol metrics subgraph, defaults to the known endpoint of the chain",
		EnvVars: prefixEnvVars("SUBGRAPH_URL"),
	}
	blockFlag = &cli.Uint64Flag{
		Name:  "block",
		Usage: "block for staking balances, chain head when omitted",
	}
	addressMapFlag = &cli.StringFlag{
		Name:    "address-map",
		Usage:   "path to the address map yaml, embedded map when omitted",
		EnvVars: prefixEnvVars("ADDRESS_MAP"),
	}
	timeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "overall timeout",
		Value: 2 * time.Minute,
	}
)

var defaultSubgraphs = map[tvl.Chain]string{
	tvl.ChainEthereum: "https://api.thegraph.com/subgraphs/name/olympusdao/olympus-protocol-metrics",
	tvl.ChainArbitrum: "https://api.thegraph.com/subgraphs/name/olympusdao/protocol-metrics-arbitrum",
	tvl.ChainFantom:   "https://api.thegraph.com/subgraphs/name/olympusdao/protocol-metrics-fantom",
	tvl.ChainPolygon:  "https://api.thegraph.com/subgraphs/name/olympusdao/protocol-metrics-polygon",
}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.App{
		Name:  "tvl-cli",
		Usage: "compute olympus treasury balances once and print them as json",
		Flags: []cli.Flag{
			chainFlag,
			kindFlag,
			rpcFlag,
			subgraphFlag,
			blockFlag,
			addressMapFlag,
			timeoutFlag,
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("tvl-cli")
	}
}

func run(c *cli.Context) error {
	chain := tvl.Chain(c.String(chainFlag.Name))
	kind := tvl.Kind(c.String(kindFlag.Name))

	subgraphURL := c.String(subgraphFlag.Name)
	if subgraphURL == "" {
		subgraphURL = defaultSubgraphs[chain]
	}
	if subgraphURL == "" {
		return fmt.Errorf("%w: %s", tvl.ErrUnsupportedChain, chain)
	}

	addresses, err := tvl.LoadAddressMap(c.String(addressMapFlag.Name))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration(timeoutFlag.Name))
	defer cancel()

	caller, err := erc20.Dial(ctx, c.String(rpcFlag.Name))
	if err != nil {
		return err
	}
	defer caller.Close()

	adapter := tvl.NewAdapter(
		map[tvl.Chain]tvl.Indexer{chain: subgraph.NewClient(subgraphURL, nil)},
		map[tvl.Chain]tvl.TokenCaller{chain: caller},
		addresses,
	)

	req := tvl.Request{
		Timestamp: time.Now(),
		Chain:     chain,
	}
	if c.IsSet(blockFlag.Name) {
		req.Block = new(big.Int).SetUint64(c.Uint64(blockFlag.Name))
	}

	var balances tvl.Balances
	switch kind {
	case tvl.KindTVL:
		balances, err = adapter.TVL(ctx, req)
	case tvl.KindPool2:
		balances, err = adapter.Pool2(ctx, req)
	case tvl.KindStaking:
		balances, err = adapter.Staking(ctx, req)
	default:
		return fmt.Errorf("%w: %s", tvl.ErrUnsupportedKind, kind)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")

	return enc.Encode(balances)
}
