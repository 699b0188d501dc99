package config

type API struct {
	Bind string `env:"API_HTTP_BIND" envDefault:":11000"`
}
