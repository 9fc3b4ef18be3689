// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for bookbyline with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Built-in defaults
//
// Per-document header markers can be kept in the configuration file under
// documents, so scheduled runs only need the file name.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirseerhq/bookbyline/internal/loader"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .bookbyline.yaml (current directory)
//   - .bookbyline.yml (current directory)
//   - ~/.bookbyline/config.yaml
//   - ~/.bookbyline/config.yml
//
// Environment variables are applied after loading the config file.
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		defaultPaths := []string{
			".bookbyline.yaml",
			".bookbyline.yml",
			filepath.Join(os.Getenv("HOME"), ".bookbyline", "config.yaml"),
			filepath.Join(os.Getenv("HOME"), ".bookbyline", "config.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Store.Path = expandPath(cfg.Store.Path)
	cfg.Log.File = expandPath(cfg.Log.File)

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.Documents == nil {
		cfg.Documents = make(map[string]DocumentConfig)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) error {
	if path := os.Getenv("BOOKBYLINE_DB"); path != "" {
		cfg.Store.Path = path
	}
	if endpoint := os.Getenv("BOOKBYLINE_API_ENDPOINT"); endpoint != "" {
		cfg.Twitter.APIEndpoint = endpoint
	}
	if timeout := os.Getenv("BOOKBYLINE_TIMEOUT"); timeout != "" {
		d, err := parsePositiveDuration(timeout)
		if err != nil {
			return fmt.Errorf("BOOKBYLINE_TIMEOUT: %w", err)
		}
		cfg.Twitter.Timeout = d
	}
	if alg := os.Getenv("BOOKBYLINE_FINGERPRINT"); alg != "" {
		cfg.Loader.Fingerprint = alg
	}
	if level := os.Getenv("BOOKBYLINE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("BOOKBYLINE_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
	if file := os.Getenv("BOOKBYLINE_LOG_FILE"); file != "" {
		cfg.Log.File = file
	}
	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveDuration parses a duration such as "45s" that must be > 0
func parsePositiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration from '%s': %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got: %s", d)
	}
	return d, nil
}

// DocumentFor returns the settings for the document at path, looked up by
// the path as given and then by its base name.
func (c *Config) DocumentFor(path string) (DocumentConfig, bool) {
	if doc, ok := c.Documents[path]; ok {
		return doc, true
	}
	doc, ok := c.Documents[filepath.Base(path)]
	return doc, ok
}

// Algorithm returns the configured fingerprint digest.
func (c *Config) Algorithm() (loader.Algorithm, error) {
	return loader.ParseAlgorithm(c.Loader.Fingerprint)
}

// Validate checks if the configuration contains valid values. This should
// be called after loading configuration to catch invalid settings early.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store path cannot be empty")
	}
	for name, raw := range map[string]string{
		"api_endpoint":      c.Twitter.APIEndpoint,
		"request_token_url": c.Twitter.RequestTokenURL,
		"authorize_url":     c.Twitter.AuthorizeURL,
		"access_token_url":  c.Twitter.AccessTokenURL,
	} {
		if err := validateURL(raw); err != nil {
			return fmt.Errorf("twitter %s: %w", name, err)
		}
	}
	if c.Twitter.Timeout <= 0 {
		return fmt.Errorf("twitter timeout must be positive, got: %s", c.Twitter.Timeout)
	}
	if _, err := c.Algorithm(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q (want debug, info, warn or error)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.Log.Format)
	}
	for name, doc := range c.Documents {
		for _, h := range doc.Headers {
			if strings.TrimSpace(h) == "" {
				return fmt.Errorf("document %s: header markers must not be blank", name)
			}
		}
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must be an http or https URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}
