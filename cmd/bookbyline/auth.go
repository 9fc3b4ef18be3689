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
	"fmt"

	"github.com/sirseerhq/bookbyline/internal/credentials"
	"github.com/spf13/cobra"
)

func newAuthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Obtain posting credentials",
		Long: `Run the PIN-based authorization flow and print the four credential values.
Set them as BOOKBYLINE_CONSUMER_KEY, BOOKBYLINE_CONSUMER_SECRET,
BOOKBYLINE_ACCESS_KEY and BOOKBYLINE_ACCESS_SECRET to let a scheduled first
run proceed without prompting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(cmd.Context(), a)
		},
	}
}

// runAuth executes the auth command
func runAuth(ctx context.Context, a *app) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	creds, err := credentials.NewInteractive(a.stdin, a.stdout, oauthEndpoint(cfg)).Provision(ctx)
	if err != nil {
		return err
	}

	names := cfg.Twitter.CredentialEnv
	_, err = fmt.Fprintf(a.stdout, "\n%s=%s\n%s=%s\n%s=%s\n%s=%s\n",
		names.ConsumerKey, creds.ConsumerKey,
		names.ConsumerSecret, creds.ConsumerSecret,
		names.AccessKey, creds.AccessKey,
		names.AccessSecret, creds.AccessSecret)
	return err
}
