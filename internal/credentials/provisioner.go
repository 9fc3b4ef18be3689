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

package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	bberrors "github.com/sirseerhq/bookbyline/internal/errors"
	"github.com/sirseerhq/bookbyline/internal/store"
)

// ErrNotConfigured is returned by a provisioner that has nothing to offer,
// letting a Chain fall through to the next one.
var ErrNotConfigured = errors.New("credential source not configured")

// Provisioner obtains a fresh set of credentials.
// Failures wrap bberrors.ErrAuthSetup.
type Provisioner interface {
	Provision(ctx context.Context) (store.Credentials, error)
}

// ProvisionerFunc adapts a function to the Provisioner interface.
type ProvisionerFunc func(ctx context.Context) (store.Credentials, error)

// Provision calls f.
func (f ProvisionerFunc) Provision(ctx context.Context) (store.Credentials, error) {
	return f(ctx)
}

// Static returns a Provisioner that always yields creds.
func Static(creds store.Credentials) Provisioner {
	return ProvisionerFunc(func(context.Context) (store.Credentials, error) {
		return creds, nil
	})
}

// EnvNames lists the environment variables read by Env.
type EnvNames struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessKey      string
	AccessSecret   string
}

// DefaultEnvNames returns the standard variable names.
func DefaultEnvNames() EnvNames {
	return EnvNames{
		ConsumerKey:    "BOOKBYLINE_CONSUMER_KEY",
		ConsumerSecret: "BOOKBYLINE_CONSUMER_SECRET",
		AccessKey:      "BOOKBYLINE_ACCESS_KEY",
		AccessSecret:   "BOOKBYLINE_ACCESS_SECRET",
	}
}

// Env reads credentials from environment variables.
type Env struct {
	Names EnvNames

	// Lookup defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

// Provision returns the four values when all are set. When none are set it
// returns ErrNotConfigured; when only some are set it names the missing ones.
func (e *Env) Provision(ctx context.Context) (store.Credentials, error) {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	get := func(name string) string {
		if name == "" {
			return ""
		}
		v, _ := lookup(name)
		return strings.TrimSpace(v)
	}

	creds := store.Credentials{
		ConsumerKey:    get(e.Names.ConsumerKey),
		ConsumerSecret: get(e.Names.ConsumerSecret),
		AccessKey:      get(e.Names.AccessKey),
		AccessSecret:   get(e.Names.AccessSecret),
	}
	if creds.Complete() {
		return creds, nil
	}

	// Names may be blank or repeated in a config file, so count values,
	// not names.
	fields := []struct{ name, value string }{
		{e.Names.ConsumerKey, creds.ConsumerKey},
		{e.Names.ConsumerSecret, creds.ConsumerSecret},
		{e.Names.AccessKey, creds.AccessKey},
		{e.Names.AccessSecret, creds.AccessSecret},
	}
	unset := 0
	var missing []string
	for _, f := range fields {
		if f.value != "" {
			continue
		}
		unset++
		switch {
		case f.name == "":
			missing = append(missing, "(unnamed)")
		case !slices.Contains(missing, f.name):
			missing = append(missing, f.name)
		}
	}
	if unset == len(fields) {
		return store.Credentials{}, fmt.Errorf("environment: %w: %w", ErrNotConfigured, bberrors.ErrAuthSetup)
	}
	return store.Credentials{}, fmt.Errorf("environment variables %s are not set: %w",
		strings.Join(missing, ", "), bberrors.ErrAuthSetup)
}

// Chain tries each provisioner in order, skipping those that report
// ErrNotConfigured. Any other failure stops the chain.
func Chain(provisioners ...Provisioner) Provisioner {
	return ProvisionerFunc(func(ctx context.Context) (store.Credentials, error) {
		lastErr := fmt.Errorf("no credential source available: %w", bberrors.ErrAuthSetup)
		for _, p := range provisioners {
			creds, err := p.Provision(ctx)
			if err == nil {
				return creds, nil
			}
			if !errors.Is(err, ErrNotConfigured) {
				return store.Credentials{}, err
			}
			lastErr = err
		}
		return store.Credentials{}, lastErr
	})
}
