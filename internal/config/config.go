// Package config loads the server settings from the environment.
package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultHost = "0.0.0.0"
	DefaultPort = 8000

	envPrefix = "NOCONTENT"
)

// Config is the server configuration.  The zero environment yields the
// listen address 0.0.0.0:8000.
type Config struct {
	Host     string `default:"0.0.0.0"`
	Port     int    `default:"8000"`
	LogLevel string `split_words:"true" default:"info"`

	// Collector endpoints.  Empty means export to stdout.
	TraceEndpoint   string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	MetricsEndpoint string `envconfig:"OTEL_COLLECTOR_ENDPOINT"`
}

// Load reads NOCONTENT_* variables and the OTel collector endpoints.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration Load yields from an empty environment.
func Default() Config {
	return Config{
		Host:     DefaultHost,
		Port:     DefaultPort,
		LogLevel: "info",
	}
}

// Validate checks that the port is a usable TCP port; 0 picks an
// ephemeral one.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be within 0..65535", c.Port)
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
