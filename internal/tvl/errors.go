package tvl

import (
	"errors"
)

var (
	// ErrOutdatedData is returned when the indexed snapshot is older than maxDataAge.
	ErrOutdatedData       = errors.New("outdated")
	ErrNoData             = errors.New("no data available")
	ErrUnsupportedChain   = errors.New("unsupported chain")
	ErrUnsupportedKind    = errors.New("unsupported kind")
	ErrStakingUnsupported = errors.New("staking is tracked on ethereum only")
)
