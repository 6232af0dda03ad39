package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the cads CLI.
type Config struct {
	URL             string        // processing API base URL
	CatalogueURL    string        // catalogue API base URL (defaults to URL)
	Key             string        // API auth token
	Target          string        // default download target path
	Bucket          string        // optional bucket URL to mirror downloads into
	SleepMax        time.Duration // poll interval ceiling
	DownloadTimeout time.Duration // overall timeout for one artifact transfer
	Progress        bool          // report status changes and transfer progress
	Retry           RetryConfig
}

// RetryConfig defines transport retry behavior.
type RetryConfig struct {
	Attempts   int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		SleepMax:        120 * time.Second,
		DownloadTimeout: 60 * time.Second,
		Retry: RetryConfig{
			Attempts:   5,
			Backoff:    time.Second,
			MaxBackoff: 30 * time.Second,
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	URL             string          `yaml:"url"`
	CatalogueURL    string          `yaml:"catalogue_url"`
	Key             string          `yaml:"key"`
	Target          string          `yaml:"target"`
	Bucket          string          `yaml:"bucket"`
	SleepMax        string          `yaml:"sleep_max"`
	DownloadTimeout string          `yaml:"download_timeout"`
	Progress        bool            `yaml:"progress"`
	Retry           yamlRetryConfig `yaml:"retry"`
}

type yamlRetryConfig struct {
	Attempts   int    `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.URL != "" {
		cfg.URL = yc.URL
	}
	if yc.CatalogueURL != "" {
		cfg.CatalogueURL = yc.CatalogueURL
	}
	if yc.Key != "" {
		cfg.Key = yc.Key
	}
	if yc.Target != "" {
		cfg.Target = yc.Target
	}
	if yc.Bucket != "" {
		cfg.Bucket = yc.Bucket
	}
	if yc.SleepMax != "" {
		d, err := time.ParseDuration(yc.SleepMax)
		if err != nil {
			return Config{}, fmt.Errorf("parse sleep_max: %w", err)
		}
		cfg.SleepMax = d
	}
	if yc.DownloadTimeout != "" {
		d, err := time.ParseDuration(yc.DownloadTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse download_timeout: %w", err)
		}
		cfg.DownloadTimeout = d
	}
	cfg.Progress = yc.Progress
	if yc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = yc.Retry.Attempts
	}
	if yc.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if yc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the CADS_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("CADS_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("CADS_CATALOGUE_URL"); v != "" {
		c.CatalogueURL = v
	}
	if v := os.Getenv("CADS_KEY"); v != "" {
		c.Key = v
	}
	if v := os.Getenv("CADS_TARGET"); v != "" {
		c.Target = v
	}
	if v := os.Getenv("CADS_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("CADS_SLEEP_MAX"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse CADS_SLEEP_MAX: %w", err)
		}
		c.SleepMax = d
	}
	if v := os.Getenv("CADS_DOWNLOAD_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse CADS_DOWNLOAD_TIMEOUT: %w", err)
		}
		c.DownloadTimeout = d
	}
	if v := os.Getenv("CADS_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("CADS_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse CADS_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	if v := os.Getenv("CADS_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse CADS_RETRY_BACKOFF: %w", err)
		}
		c.Retry.Backoff = d
	}
	if v := os.Getenv("CADS_RETRY_MAX_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse CADS_RETRY_MAX_BACKOFF: %w", err)
		}
		c.Retry.MaxBackoff = d
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("config: URL is required")
	}
	if c.SleepMax <= 0 {
		return errors.New("config: sleep_max must be positive")
	}
	if c.DownloadTimeout <= 0 {
		return errors.New("config: download_timeout must be positive")
	}
	if c.Retry.Attempts < 0 {
		return errors.New("config: retry.attempts must not be negative")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.URL != "" {
		c.URL = override.URL
	}
	if override.CatalogueURL != "" {
		c.CatalogueURL = override.CatalogueURL
	}
	if override.Key != "" {
		c.Key = override.Key
	}
	if override.Target != "" {
		c.Target = override.Target
	}
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	if override.SleepMax != 0 {
		c.SleepMax = override.SleepMax
	}
	if override.DownloadTimeout != 0 {
		c.DownloadTimeout = override.DownloadTimeout
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.Retry.Attempts != 0 {
		c.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.Backoff != 0 {
		c.Retry.Backoff = override.Retry.Backoff
	}
	if override.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = override.Retry.MaxBackoff
	}
	return c
}
