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
	"os"
	"os/signal"
	"strings"

	bberrors "github.com/sirseerhq/bookbyline/internal/errors"
	"github.com/sirseerhq/bookbyline/pkg/version"
	"github.com/spf13/cobra"
)

// app carries the process environment and global flags into the commands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// lookupEnv reads credential variables; os.LookupEnv outside tests.
	lookupEnv func(string) (string, bool)

	configPath string
	dbPath     string
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], &app{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		lookupEnv: os.LookupEnv,
	})
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, a *app) int {
	rootCmd := newRootCommand(a)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(a.stderr, err, a.verbose)
		return mapErrorToExitCode(err)
	}
	return 0
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bookbyline",
		Short: "Post a text file one line at a time",
		Long: `bookbyline reads a text file, skips blank lines, and posts the next line
each time it runs. Header lines start a new numbered section; body lines are
posted under the most recent header. The position in each file is saved, keyed
by the file's content, so runs can be scheduled from cron.`,
		Version:       version.Version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: .bookbyline.yaml or ~/.bookbyline/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "Position store path (overrides BOOKBYLINE_DB and the config file)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Print the full error chain and debug logs")

	rootCmd.AddCommand(newEmitCommand(a))
	rootCmd.AddCommand(newStatusCommand(a))
	rootCmd.AddCommand(newAuthCommand(a))

	return rootCmd
}

// printError writes err on one line, followed in verbose mode by each error
// in its chain.
func printError(w io.Writer, err error, verbose bool) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if !verbose {
		return
	}
	fmt.Fprintln(w, "Error chain:")
	writeChain(w, err, 1)
}

func writeChain(w io.Writer, err error, depth int) {
	fmt.Fprintf(w, "%s%T: %v\n", strings.Repeat("  ", depth), err, err)
	switch x := err.(type) {
	case interface{ Unwrap() error }:
		if inner := x.Unwrap(); inner != nil {
			writeChain(w, inner, depth+1)
		}
	case interface{ Unwrap() []error }:
		for _, inner := range x.Unwrap() {
			writeChain(w, inner, depth+1)
		}
	}
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, bberrors.ErrRead):
		return 2
	case errors.Is(err, bberrors.ErrAuthSetup):
		return 3
	case errors.Is(err, bberrors.ErrMatch):
		return 4
	case errors.Is(err, bberrors.ErrEndOfContent):
		return 5
	case errors.Is(err, bberrors.ErrPersistence):
		return 6
	case errors.Is(err, bberrors.ErrPost):
		return 7
	default:
		return 1 // General error
	}
}
