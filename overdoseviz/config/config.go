/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package config holds the OverdoseViz server configuration.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config configures the OverdoseViz server.
type Config struct {
	// The port to serve on.
	Port int `env:"OVERDOSEVIZ_PORT" envDefault:"7410"`
	// The directory holding dataset collections.
	DataRoot string `env:"OVERDOSEVIZ_DATA_ROOT" envDefault:"."`
	// The collection shown when a request names none.  It must load at
	// startup.
	DefaultCollection string `env:"OVERDOSEVIZ_DEFAULT_COLLECTION" envDefault:"drugoverdose.csv"`
	// The number of datasets to keep loaded.
	CacheSize int `env:"OVERDOSEVIZ_CACHE_SIZE" envDefault:"10"`
	// The OTLP/HTTP endpoint traces are exported to.  Empty disables tracing.
	OTLPEndpoint string `env:"OVERDOSEVIZ_OTEL_ENDPOINT"`
}

// FromEnv returns a Config populated from the environment, with defaults for
// unset variables.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// RegisterFlags registers a flag for each field of the receiver on fs.  Each
// flag defaults to the receiver's current value, so flags override the
// environment.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Port, "port", c.Port, "Port to serve OverdoseViz clients on")
	fs.StringVar(&c.DataRoot, "data_root", c.DataRoot, "The root path for dataset collections")
	fs.StringVar(&c.DefaultCollection, "default_collection", c.DefaultCollection, "The collection shown by default")
	fs.IntVar(&c.CacheSize, "cache_size", c.CacheSize, "The number of datasets to keep loaded")
	fs.StringVar(&c.OTLPEndpoint, "otel_endpoint", c.OTLPEndpoint, "The OTLP/HTTP trace endpoint; empty disables tracing")
}

// Validate reports whether the receiver is usable.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.DefaultCollection == "" {
		return fmt.Errorf("no default collection")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", c.CacheSize)
	}
	return nil
}

// Load returns a Config populated from the environment and then from the
// provided command-line arguments.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
