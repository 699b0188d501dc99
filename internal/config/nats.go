package config

import (
	"time"
)

type Nats struct {
	URL              string        `env:"NATS_URL"`
	MaxReconnects    int           `env:"NATS_MAX_RECONNECTS" envDefault:"10"`
	ReconnectTimeout time.Duration `env:"NATS_RECONNECT_TIMEOUT" envDefault:"10s"`
	Subject          string        `env:"NATS_SNAPSHOT_SUBJECT" envDefault:"treasury.tvl.snapshot"`
}

func (n Nats) Enabled() bool {
	return n.URL != ""
}
