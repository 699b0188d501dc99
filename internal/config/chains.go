package config

// Subgraph holds the protocol-metrics indexer endpoint per chain.
type Subgraph struct {
	Ethereum string `env:"SUBGRAPH_ETHEREUM_URL" envDefault:"https://api.thegraph.com/subgraphs/name/olympusdao/olympus-protocol-metrics"`
	Arbitrum string `env:"SUBGRAPH_ARBITRUM_URL" envDefault:"https://api.thegraph.com/subgraphs/name/olympusdao/protocol-metrics-arbitrum"`
	Fantom   string `env:"SUBGRAPH_FANTOM_URL" envDefault:"https://api.thegraph.com/subgraphs/name/olympusdao/protocol-metrics-fantom"`
	Polygon  string `env:"SUBGRAPH_POLYGON_URL" envDefault:"https://api.thegraph.com/subgraphs/name/olympusdao/protocol-metrics-polygon"`
}

func (s Subgraph) ByChain() map[string]string {
	return map[string]string{
		"ethereum": s.Ethereum,
		"arbitrum": s.Arbitrum,
		"fantom":   s.Fantom,
		"polygon":  s.Polygon,
	}
}

// RPC holds json-rpc endpoints per chain. Empty values may be filled from vault.
type RPC struct {
	Ethereum string `env:"RPC_ETHEREUM_URL"`
	Arbitrum string `env:"RPC_ARBITRUM_URL"`
	Fantom   string `env:"RPC_FANTOM_URL"`
	Polygon  string `env:"RPC_POLYGON_URL"`
}

func (r RPC) ByChain() map[string]string {
	return map[string]string{
		"ethereum": r.Ethereum,
		"arbitrum": r.Arbitrum,
		"fantom":   r.Fantom,
		"polygon":  r.Polygon,
	}
}
