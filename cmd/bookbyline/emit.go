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
	"path/filepath"
	"time"

	"github.com/sirseerhq/bookbyline/internal/emitter"
	"github.com/sirseerhq/bookbyline/internal/output"
	"github.com/sirseerhq/bookbyline/internal/tracker"
	"github.com/sirseerhq/bookbyline/internal/twitter"
	"github.com/spf13/cobra"
)

type emitOptions struct {
	live      bool
	useRegexp bool
	format    string
	journal   string
}

func newEmitCommand(a *app) *cobra.Command {
	var opts emitOptions

	cmd := &cobra.Command{
		Use:   "emit <file> [header...]",
		Short: "Post the next line of a file",
		Long: `Post the next line of a file, or show it without --live.

Header markers are case-sensitive and match the start of a line, ignoring
leading whitespace. Give as many as the text uses, for example:
  bookbyline emit purgatorio.txt Canto
  bookbyline emit piers.txt Prologus Passus

When no markers are given they are taken from the documents section of the
config file. Use "-" as the file to read standard input.

The first run for a file asks for posting credentials, unless the
BOOKBYLINE_CONSUMER_KEY, BOOKBYLINE_CONSUMER_SECRET, BOOKBYLINE_ACCESS_KEY and
BOOKBYLINE_ACCESS_SECRET environment variables are set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(cmd.Context(), a, args[0], args[1:], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.live, "live", "l", false, "Post the line; otherwise it is only displayed")
	cmd.Flags().BoolVar(&opts.useRegexp, "regexp", false, "Treat header markers as regular expressions")
	cmd.Flags().StringVar(&opts.format, "format", output.FormatText, "Display format: text or json")
	cmd.Flags().StringVar(&opts.journal, "journal", "", "Append each emitted post to this NDJSON file")

	return cmd
}

// runEmit executes the emit command
func runEmit(ctx context.Context, a *app, file string, args []string, opts emitOptions) error {
	out, err := output.New(opts.format, a.stdout)
	if err != nil {
		return err
	}
	defer out.Close()

	var journal *output.Writer
	if opts.journal != "" {
		if journal, err = output.NewFileWriter(opts.journal); err != nil {
			return err
		}
		defer journal.Close()
	}

	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	headers, useRegexp := headersFor(sess.cfg, file, args, opts.useRegexp)
	if len(headers) == 0 {
		return fmt.Errorf("no header markers for %s: pass them after the file name or set documents.%q.headers in the config file",
			file, filepath.Base(file))
	}
	matcher, err := tracker.NewMatcher(headers, useRegexp)
	if err != nil {
		return err
	}

	posters := emitter.DryRun(out)
	if opts.live {
		posters = emitter.Live(
			twitter.WithEndpoint(sess.cfg.Twitter.APIEndpoint),
			twitter.WithTimeout(sess.cfg.Twitter.Timeout),
		)
	}

	e := emitter.New(
		tracker.New(sess.store, a.provisioner(sess.cfg, file, a.stderr)),
		matcher,
		posters,
		emitter.WithAlgorithm(sess.algorithm()),
	)

	res, err := e.Emit(sess.ctx, a.source(file))
	if err != nil {
		return err
	}

	entry := output.Entry{
		Fingerprint: res.Record.Fingerprint,
		Line:        res.Record.LastLine,
		Text:        res.Text,
		Length:      twitter.Length(res.Text),
		Live:        opts.live,
		PostID:      res.Post.ID,
		Time:        time.Now().UTC(),
	}
	if journal != nil {
		if err := journal.Write(entry); err != nil {
			sess.log.Warn("Couldn't write journal entry", "path", opts.journal, "error", err)
		}
	}

	// Dry runs were already shown by the poster.
	if opts.live {
		sess.log.Info("Posted", "id", res.Post.ID, "line", res.Record.LastLine)
		return out.Write(entry)
	}
	return nil
}
