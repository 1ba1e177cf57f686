package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML config file. Keys mirror the flags.
type fileConfig struct {
	HTTP       string `yaml:"http"`
	LogLevel   string `yaml:"log_level"`
	Git        *bool  `yaml:"git"`
	JWTSecret  string `yaml:"jwt_secret"`
	SessionTTL string `yaml:"session_ttl"`
	RateLimit  *int   `yaml:"rate_limit"`
}

// options points at the flag values a config file may fill.
type options struct {
	http       *string
	logLevel   *string
	git        *bool
	jwtSecret  *string
	sessionTTL *time.Duration
	rateLimit  *int
}

// loadConfig reads path. A missing file yields an empty config.
func loadConfig(path string) (*fileConfig, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &fileConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := &fileConfig{}
	d := yaml.NewDecoder(bytes.NewReader(raw))
	d.KnownFields(true)
	if err := d.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// apply copies the values of c into o for the flags not in set.
func (c *fileConfig) apply(set map[string]bool, o *options) error {
	if !set["http"] && c.HTTP != "" {
		*o.http = c.HTTP
	}
	if !set["log-level"] && c.LogLevel != "" {
		*o.logLevel = c.LogLevel
	}
	if !set["git"] && c.Git != nil {
		*o.git = *c.Git
	}
	if !set["jwt-secret"] && c.JWTSecret != "" {
		*o.jwtSecret = c.JWTSecret
	}
	if !set["session-ttl"] && c.SessionTTL != "" {
		d, err := time.ParseDuration(c.SessionTTL)
		if err != nil {
			return fmt.Errorf("session_ttl: %w", err)
		}
		*o.sessionTTL = d
	}
	if !set["rate-limit"] && c.RateLimit != nil {
		*o.rateLimit = *c.RateLimit
	}
	return nil
}
