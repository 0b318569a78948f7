package store

import "github.com/kelseyhightower/envconfig"

// AggregationMode selects how latest-visit joins and group-bys are
// computed: natively in the document store or in memory after a plain
// find. Both backends must produce identical results.
const (
	AggregationModePipeline = "pipeline"
	AggregationModeMemory   = "memory"
)

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

type Config struct {
	DatabaseName    string `envconfig:"HEALTHHIVE_DATABASE_NAME" default:"healthhive"`
	Hosts           string `envconfig:"HEALTHHIVE_STORE_ADDRESSES" default:"localhost"`
	Password        string `envconfig:"HEALTHHIVE_STORE_PASSWORD"`
	Scheme          string `envconfig:"HEALTHHIVE_STORE_SCHEME" default:"mongodb"`
	Ssl             bool   `envconfig:"HEALTHHIVE_STORE_TLS"`
	User            string `envconfig:"HEALTHHIVE_STORE_USERNAME"`
	AggregationMode string `envconfig:"HEALTHHIVE_STORE_AGGREGATION_MODE" default:"pipeline"`
}

func (c *Config) GetConnectionString() (string, error) {
	cs := c.Scheme
	if cs == "" {
		cs = "mongodb"
	}
	cs += "://"

	if c.User != "" {
		cs += c.User
		if c.Password != "" {
			cs += ":"
			cs += c.Password
		}
		cs += "@"
	}

	if c.Hosts != "" {
		cs += c.Hosts
	} else {
		cs += "localhost"
	}
	cs += "/"

	if c.Ssl {
		cs += "?ssl=true"
	} else {
		cs += "?ssl=false"
	}

	return cs, nil
}
