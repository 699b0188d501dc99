package config

type DB struct {
	DSN                string `env:"DB_DSN"`
	MaxOpenConnections int    `env:"DB_MAX_OPEN_CONNECTIONS" envDefault:"10"`
	Debug              bool   `env:"DB_DEBUG" envDefault:"false"`
}

// Enabled reports whether snapshot history should be persisted.
func (d DB) Enabled() bool {
	return d.DSN != ""
}
