package tvl

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"
)

//go:embed address_map.yaml
var defaultAddressMap []byte

type (
	addressMapFile struct {
		Version string            `yaml:"version"`
		Tokens  []addressMapEntry `yaml:"tokens"`
	}

	addressMapEntry struct {
		Derivative string `yaml:"derivative"`
		Underlying string `yaml:"underlying"`
		Label      string `yaml:"label"`
	}

	// AddressMap substitutes staked or wrapped token addresses with the
	// address of the priced token. It is immutable after loading.
	AddressMap struct {
		version *version.Version
		mapping map[string]string
	}
)

// DefaultAddressMap returns the address map shipped with the binary.
func DefaultAddressMap() (*AddressMap, error) {
	return ParseAddressMap(defaultAddressMap)
}

// LoadAddressMap reads the map from path or falls back to the embedded one when path is empty.
func LoadAddressMap(path string) (*AddressMap, error) {
	if path == "" {
		return DefaultAddressMap()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read address map: %w", err)
	}

	return ParseAddressMap(data)
}

func ParseAddressMap(data []byte) (*AddressMap, error) {
	var file addressMapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal address map: %w", err)
	}

	ver, err := version.NewSemver(file.Version)
	if err != nil {
		return nil, fmt.Errorf("address map version %q: %w", file.Version, err)
	}

	mapping := make(map[string]string, len(file.Tokens))
	for _, entry := range file.Tokens {
		if !common.IsHexAddress(entry.Derivative) || !common.IsHexAddress(entry.Underlying) {
			return nil, fmt.Errorf("invalid address map entry: %s -> %s", entry.Derivative, entry.Underlying)
		}

		from := strings.ToLower(entry.Derivative)
		if _, ok := mapping[from]; ok {
			return nil, fmt.Errorf("duplicate address map entry: %s", from)
		}

		mapping[from] = strings.ToLower(entry.Underlying)
	}

	return &AddressMap{
		version: ver,
		mapping: mapping,
	}, nil
}

func (m *AddressMap) Version() string {
	return m.version.String()
}

func (m *AddressMap) Len() int {
	return len(m.mapping)
}

// Normalize returns the mapped address or the address itself.
// Substitution is applied once, mapped addresses are not resolved further.
func (m *AddressMap) Normalize(address string) string {
	if target, ok := m.mapping[strings.ToLower(address)]; ok {
		return target
	}

	return address
}

// Entries returns a copy of the mapping.
func (m *AddressMap) Entries() map[string]string {
	res := make(map[string]string, len(m.mapping))
	for k, v := range m.mapping {
		res[k] = v
	}

	return res
}
