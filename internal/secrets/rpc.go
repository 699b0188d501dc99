package secrets

import (
	"errors"
	"fmt"

	vaultapi "github.com/hashicorp/vault/api"
)

const (
	keyData = "data"
	rpcPath = "rpc"
)

type vaultReader interface {
	Read(path string) (*vaultapi.Secret, error)
}

var ErrUnableToCastData = errors.New("failed to cast data")

// RPCResolver reads json-rpc endpoints per chain from vault.
// The secret is expected at "<basePath>rpc" with chain names as keys.
type RPCResolver struct {
	cli      vaultReader
	basePath string
}

func NewRPCResolver(cli vaultReader, basePath string) *RPCResolver {
	return &RPCResolver{
		cli:      cli,
		basePath: basePath,
	}
}

// Resolve fills empty endpoints from vault. Values set explicitly are kept.
func (r *RPCResolver) Resolve(endpoints map[string]string) (map[string]string, error) {
	sec, err := r.cli.Read(r.basePath + rpcPath)
	if err != nil {
		return nil, fmt.Errorf("read rpc secret: %w", err)
	}

	res := make(map[string]string, len(endpoints))
	for chain, url := range endpoints {
		res[chain] = url
	}

	if sec == nil || sec.Data == nil {
		return res, nil
	}

	data := sec.Data
	// kv v2 wraps the payload into "data"
	if nested, ok := sec.Data[keyData]; ok {
		data, ok = nested.(map[string]interface{})
		if !ok {
			return nil, ErrUnableToCastData
		}
	}

	for chain, url := range res {
		if url != "" {
			continue
		}

		raw, ok := data[chain]
		if !ok {
			continue
		}

		value, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: rpc url for %s", ErrUnableToCastData, chain)
		}

		res[chain] = value
	}

	return res, nil
}
