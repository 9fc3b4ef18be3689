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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dghubble/oauth1"
	"github.com/sirseerhq/bookbyline/internal/config"
	"github.com/sirseerhq/bookbyline/internal/credentials"
	"github.com/sirseerhq/bookbyline/internal/ctxlog"
	bberrors "github.com/sirseerhq/bookbyline/internal/errors"
	"github.com/sirseerhq/bookbyline/internal/loader"
	"github.com/sirseerhq/bookbyline/internal/logging"
	"github.com/sirseerhq/bookbyline/internal/store"
)

// session holds the resources opened for one command.
type session struct {
	cfg      *config.Config
	ctx      context.Context
	log      *slog.Logger
	store    *store.Store
	closeLog func() error
}

// loadConfig applies flag overrides on top of file, environment and defaults.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.dbPath != "" {
		cfg.Store.Path = a.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger logs to the configured file. Without a file, logs only appear
// on stderr in verbose mode.
func (a *app) newLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	level := cfg.Log.Level
	fallback := io.Discard
	if a.verbose {
		level = "debug"
		fallback = a.stderr
	}
	return logging.Open(cfg.Log.File, level, cfg.Log.Format, fallback)
}

// openSession loads configuration, starts logging and opens the store.
func (a *app) openSession(ctx context.Context) (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := a.newLogger(cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("opening position store %s: %w: %w", cfg.Store.Path, bberrors.ErrPersistence, err)
	}
	logger.Debug("Opened position store", "path", st.Path())

	return &session{
		cfg:      cfg,
		ctx:      ctxlog.WithLogger(ctx, logger),
		log:      logger,
		store:    st,
		closeLog: closeLog,
	}, nil
}

// Close releases the store and log file.
func (s *session) Close() error {
	return errors.Join(s.store.Close(), s.closeLog())
}

// algorithm returns the configured fingerprint digest. Validate has already
// rejected unknown names.
func (s *session) algorithm() loader.Algorithm {
	alg, _ := s.cfg.Algorithm()
	return alg
}

func oauthEndpoint(cfg *config.Config) oauth1.Endpoint {
	return oauth1.Endpoint{
		RequestTokenURL: cfg.Twitter.RequestTokenURL,
		AuthorizeURL:    cfg.Twitter.AuthorizeURL,
		AccessTokenURL:  cfg.Twitter.AccessTokenURL,
	}
}

// provisioner reads credentials from the environment when all four
// variables are set and otherwise runs the interactive flow, prompting on
// prompts. When file is "-" standard input holds the document, so there is
// nothing left to answer prompts with.
func (a *app) provisioner(cfg *config.Config, file string, prompts io.Writer) credentials.Provisioner {
	names := cfg.Twitter.CredentialEnv
	env := &credentials.Env{
		Names: credentials.EnvNames{
			ConsumerKey:    names.ConsumerKey,
			ConsumerSecret: names.ConsumerSecret,
			AccessKey:      names.AccessKey,
			AccessSecret:   names.AccessSecret,
		},
		Lookup: a.lookupEnv,
	}
	if file == "-" {
		return credentials.Chain(env, stdinInUse(names))
	}
	return credentials.Chain(env, credentials.NewInteractive(a.stdin, prompts, oauthEndpoint(cfg)))
}

func stdinInUse(names config.CredentialEnvMap) credentials.Provisioner {
	return credentials.ProvisionerFunc(func(context.Context) (store.Credentials, error) {
		return store.Credentials{}, fmt.Errorf(
			"credentials can't be entered while the document is read from standard input; set %s, %s, %s and %s (see bookbyline auth): %w",
			names.ConsumerKey, names.ConsumerSecret, names.AccessKey, names.AccessSecret, bberrors.ErrAuthSetup)
	})
}

// source maps "-" to standard input.
func (a *app) source(file string) loader.Source {
	if file == "-" {
		return loader.ReaderSource("stdin", a.stdin)
	}
	return loader.PathSource(file)
}

// headersFor returns the markers from the command line, or from the
// config file when none were given.
func headersFor(cfg *config.Config, file string, args []string, useRegexp bool) ([]string, bool) {
	if len(args) > 0 {
		return args, useRegexp
	}
	if doc, ok := cfg.DocumentFor(file); ok && len(doc.Headers) > 0 {
		return doc.Headers, useRegexp || doc.Regexp
	}
	return nil, useRegexp
}
