package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	API struct {
		BaseURL        string `yaml:"base_url"`
		UserAgent      string `yaml:"user_agent"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"api"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Refresh struct {
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"refresh"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is fine; defaults cover everything.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("GEWATCH_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("GEWATCH_USER_AGENT"); v != "" {
		cfg.API.UserAgent = v
	}
	if v := os.Getenv("GEWATCH_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("GEWATCH_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Refresh.IntervalSeconds = n
		}
	}

	// Defaults
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://prices.runescape.wiki/api/v1/osrs"
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = "GEWatch price tracker"
	}
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = 10
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/gewatch.db"
	}
	if cfg.Refresh.IntervalSeconds == 0 {
		cfg.Refresh.IntervalSeconds = 5
	}

	return cfg, nil
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive")
	}
	if c.Refresh.IntervalSeconds <= 0 {
		return fmt.Errorf("refresh.interval_seconds must be positive")
	}
	return nil
}

// Timeout returns the HTTP client timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// Interval returns the refresh interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Refresh.IntervalSeconds) * time.Second
}
