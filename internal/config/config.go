// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

// Package config loads CLI-level configuration: log format, RuleSet store
// DSN, cache staleness threshold, and the observability bind address. None
// of this reaches the core packages (value, expr, ruleset, interpreter,
// linter) — those take only the RuleSet/Case/expression values they're
// handed and never consult global or environment state.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds everything the meddsl CLI needs outside the pure core.
type Config struct {
	LogFormat     string        `koanf:"log_format"`
	StoreDSN      string        `koanf:"store_dsn"`
	MetricsAddr   string        `koanf:"metrics_addr"`
	CacheStale    time.Duration `koanf:"cache_stale"`
	CacheCapacity int           `koanf:"cache_capacity"`
}

// Defaults mirror the flag defaults cmd/meddsl registers.
func Defaults() Config {
	return Config{
		LogFormat:     "json",
		StoreDSN:      "",
		MetricsAddr:   "127.0.0.1:9101",
		CacheStale:    30 * time.Second,
		CacheCapacity: 256,
	}
}

// Load layers defaults, an optional YAML config file, and flag overrides,
// in that order, matching the precedence github.com/knadh/koanf's own
// documentation recommends: later providers win.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")
	cfg := Defaults()

	if err := k.Load(structProvider(cfg), nil); err != nil {
		return Config{}, oops.Code("CONFIG_DEFAULTS_FAILED").Wrap(err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_LOAD_FAILED").Wrap(err)
		}
	}

	var out Config
	if err := k.Unmarshal("", &out); err != nil {
		return Config{}, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := out.Validate(); err != nil {
		return Config{}, err
	}
	return out, nil
}

// Validate checks invariants Load can't express through struct tags alone.
func (c Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.CacheStale < 0 {
		return oops.Code("CONFIG_INVALID").Errorf("cache_stale must not be negative")
	}
	if c.CacheCapacity <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("cache_capacity must be positive")
	}
	return nil
}

// structProvider adapts a Config literal into a koanf.Provider so defaults
// flow through the same Load/merge path as the file and flag layers.
func structProvider(cfg Config) koanf.Provider {
	return confmapProvider{cfg}
}

type confmapProvider struct{ cfg Config }

func (p confmapProvider) ReadBytes() ([]byte, error) {
	return nil, oops.Code("CONFIG_UNSUPPORTED").Errorf("confmapProvider does not support ReadBytes")
}

func (p confmapProvider) Read() (map[string]interface{}, error) {
	return map[string]interface{}{
		"log_format":     p.cfg.LogFormat,
		"store_dsn":      p.cfg.StoreDSN,
		"metrics_addr":   p.cfg.MetricsAddr,
		"cache_stale":    p.cfg.CacheStale,
		"cache_capacity": p.cfg.CacheCapacity,
	}, nil
}
