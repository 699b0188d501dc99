package config

import (
	"time"
)

type Refresh struct {
	Interval       time.Duration `env:"REFRESH_INTERVAL" envDefault:"10m"`
	CacheTTL       time.Duration `env:"SNAPSHOT_CACHE_TTL" envDefault:"15m"`
	CacheSize      int           `env:"SNAPSHOT_CACHE_SIZE" envDefault:"64"`
	AddressMapPath string        `env:"ADDRESS_MAP_PATH"`
}
