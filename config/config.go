package config

import "github.com/kelseyhightower/envconfig"

type Config struct {
	HttpPort uint16 `envconfig:"HEALTHHIVE_HTTP_SERVER_PORT" default:"8080" required:"true"`

	// DebugErrors exposes internal error detail in responses. Never
	// enable outside of development.
	DebugErrors bool `envconfig:"HEALTHHIVE_DEBUG_ERRORS" default:"false"`
}

func New() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, err
	}
	return c, nil
}
