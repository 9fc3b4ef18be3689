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
	"io"
	"text/tabwriter"

	"github.com/sirseerhq/bookbyline/internal/emitter"
	bberrors "github.com/sirseerhq/bookbyline/internal/errors"
	"github.com/sirseerhq/bookbyline/internal/output"
	"github.com/sirseerhq/bookbyline/internal/store"
	"github.com/sirseerhq/bookbyline/internal/tracker"
	"github.com/spf13/cobra"
)

func newStatusCommand(a *app) *cobra.Command {
	var (
		asJSON    bool
		useRegexp bool
	)

	cmd := &cobra.Command{
		Use:   "status [file] [header...]",
		Short: "Show saved positions",
		Long: `Show how far through a file bookbyline has got, and what it will post next
when header markers are known. Without a file, list every saved position.
Nothing is posted or saved.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runList(cmd.Context(), a, asJSON)
			}
			return runStatus(cmd.Context(), a, args[0], args[1:], useRegexp, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Write NDJSON instead of text")
	cmd.Flags().BoolVar(&useRegexp, "regexp", false, "Treat header markers as regular expressions")

	return cmd
}

// runStatus executes the status command for one file
func runStatus(ctx context.Context, a *app, file string, args []string, useRegexp, asJSON bool) error {
	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	var matcher *tracker.Matcher
	if headers, re := headersFor(sess.cfg, file, args, useRegexp); len(headers) > 0 {
		if matcher, err = tracker.NewMatcher(headers, re); err != nil {
			return err
		}
	}

	e := emitter.New(tracker.New(sess.store, nil), matcher, nil, emitter.WithAlgorithm(sess.algorithm()))
	st, err := e.Status(sess.ctx, a.source(file))
	if err != nil {
		return err
	}

	if asJSON {
		return output.NewWriter(a.stdout).Write(st)
	}
	return printStatus(a.stdout, st)
}

func printStatus(w io.Writer, st *emitter.Status) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "File:\t%s\n", st.Name)
	fmt.Fprintf(tw, "Fingerprint:\t%s (%s)\n", st.Fingerprint, st.Algorithm)
	fmt.Fprintf(tw, "State:\t%s\n", st.State)
	if !st.Known {
		fmt.Fprintf(tw, "Position:\tnot started, %d lines\n", st.TotalLines)
	} else {
		fmt.Fprintf(tw, "Position:\tline %d of %d, %d remaining\n", st.LastLine, st.TotalLines, st.Remaining)
		if st.Prefix != "" {
			fmt.Fprintf(tw, "Section:\t%s, line %d\n", st.Prefix, st.DisplayLine)
		}
		fmt.Fprintf(tw, "Posts:\t%d\n", st.Emitted)
		if st.LastPostID != "" {
			fmt.Fprintf(tw, "Last post:\t%s\n", st.LastPostID)
		}
		if st.UpdatedAt != nil {
			fmt.Fprintf(tw, "Updated:\t%s\n", st.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	switch {
	case st.Next != "":
		_, err := fmt.Fprintf(w, "\nNext post:\n%s\n", st.Next)
		return err
	case st.NextError != "":
		_, err := fmt.Fprintf(w, "\nNo next post: %s\n", st.NextError)
		return err
	}
	return nil
}

// listEntry is the listing view of a record, without credentials.
type listEntry struct {
	Fingerprint string `json:"fingerprint"`
	Source      string `json:"source,omitempty"`
	State       string `json:"state"`
	LastLine    int    `json:"last_line"`
	DisplayLine int    `json:"display_line"`
	Emitted     int    `json:"emitted"`
	UpdatedAt   string `json:"updated_at"`
}

func newListEntry(rec store.Record) listEntry {
	return listEntry{
		Fingerprint: rec.Fingerprint,
		Source:      rec.Source,
		State:       tracker.StateOf(&rec).String(),
		LastLine:    rec.LastLine,
		DisplayLine: rec.DisplayLine,
		Emitted:     rec.Emitted,
		UpdatedAt:   rec.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// runList prints every saved position
func runList(ctx context.Context, a *app, asJSON bool) error {
	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	records, err := sess.store.List(sess.ctx)
	if err != nil {
		return fmt.Errorf("listing positions: %w: %w", bberrors.ErrPersistence, err)
	}

	if asJSON {
		w := output.NewWriter(a.stdout)
		for _, rec := range records {
			if err := w.Write(newListEntry(rec)); err != nil {
				return err
			}
		}
		return nil
	}

	if len(records) == 0 {
		_, err := fmt.Fprintf(a.stdout, "No saved positions in %s\n", sess.store.Path())
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FINGERPRINT\tLINE\tSECTION LINE\tPOSTS\tSOURCE")
	for _, rec := range records {
		e := newListEntry(rec)
		fmt.Fprintf(tw, "%.12s\t%d\t%d\t%d\t%s\n", e.Fingerprint, e.LastLine, e.DisplayLine, e.Emitted, e.Source)
	}
	return tw.Flush()
}
