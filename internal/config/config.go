// Package config handles tool configuration.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the optional per-directory configuration file.
const ConfigFile = "papers.yaml"

// Config holds tool settings. Every field has a built-in default so no
// configuration file is required; flags override file values.
type Config struct {
	// DelaySeconds is the pause between records during enrichment.
	DelaySeconds float64 `yaml:"delay_seconds"`

	// MinIntervalSeconds is the hard floor between external calls.
	MinIntervalSeconds float64 `yaml:"min_interval_seconds"`

	// TimeoutSeconds is the per-request HTTP timeout.
	TimeoutSeconds float64 `yaml:"timeout_seconds"`

	// UserAgent is sent on every lookup request.
	UserAgent string `yaml:"user_agent"`

	// CachePath is the lookup cache database location. Empty disables
	// the cache.
	CachePath string `yaml:"cache_path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DelaySeconds:       1.0,
		MinIntervalSeconds: 1.0,
		TimeoutSeconds:     30,
		UserAgent:          "academic-research-utilities/1.0",
	}
}

// Load reads papers.yaml from the given directory, falling back to the
// defaults when the file does not exist. Unknown keys are an error so
// typos in the file surface instead of silently becoming defaults.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}

// Delay returns the configured per-record delay as a duration.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

// MinInterval returns the configured call floor as a duration.
func (c *Config) MinInterval() time.Duration {
	return time.Duration(c.MinIntervalSeconds * float64(time.Second))
}

// Timeout returns the configured HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}
