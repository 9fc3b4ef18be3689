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

// Package config types define the configuration structures used throughout
// bookbyline. These types represent settings that can be loaded from
// YAML configuration files, environment variables, or command-line flags.
package config

import "time"

// Config represents the complete configuration for bookbyline.
type Config struct {
	Store     StoreConfig               `yaml:"store"`
	Twitter   TwitterConfig             `yaml:"twitter"`
	Loader    LoaderConfig              `yaml:"loader"`
	Log       LogConfig                 `yaml:"log"`
	Documents map[string]DocumentConfig `yaml:"documents"`
}

// StoreConfig locates the position store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// TwitterConfig contains API endpoints and the names of the environment
// variables that may carry credentials for unattended first runs.
type TwitterConfig struct {
	APIEndpoint     string           `yaml:"api_endpoint"`
	RequestTokenURL string           `yaml:"request_token_url"`
	AuthorizeURL    string           `yaml:"authorize_url"`
	AccessTokenURL  string           `yaml:"access_token_url"`
	Timeout         time.Duration    `yaml:"timeout"`
	CredentialEnv   CredentialEnvMap `yaml:"credential_env"`
}

// CredentialEnvMap names the four credential environment variables.
type CredentialEnvMap struct {
	ConsumerKey    string `yaml:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret"`
	AccessKey      string `yaml:"access_key"`
	AccessSecret   string `yaml:"access_secret"`
}

// LoaderConfig controls how documents are read.
type LoaderConfig struct {
	// Fingerprint is the digest name, sha1 or blake2b. Changing it makes
	// every document look new.
	Fingerprint string `yaml:"fingerprint"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// DocumentConfig holds per-document settings, keyed in Config.Documents by
// file name or path. Headers listed here are used when none are given on
// the command line.
type DocumentConfig struct {
	Headers []string `yaml:"headers"`
	Regexp  bool     `yaml:"regexp"`
}

// DefaultConfig returns a Config with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "tweet_books.db",
		},
		Twitter: TwitterConfig{
			APIEndpoint:     "https://api.twitter.com",
			RequestTokenURL: "https://api.twitter.com/oauth/request_token",
			AuthorizeURL:    "https://api.twitter.com/oauth/authorize",
			AccessTokenURL:  "https://api.twitter.com/oauth/access_token",
			Timeout:         30 * time.Second,
			CredentialEnv: CredentialEnvMap{
				ConsumerKey:    "BOOKBYLINE_CONSUMER_KEY",
				ConsumerSecret: "BOOKBYLINE_CONSUMER_SECRET",
				AccessKey:      "BOOKBYLINE_ACCESS_KEY",
				AccessSecret:   "BOOKBYLINE_ACCESS_SECRET",
			},
		},
		Loader: LoaderConfig{
			Fingerprint: "sha1",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Documents: make(map[string]DocumentConfig),
	}
}
