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

package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirseerhq/bookbyline/internal/credentials"
	"github.com/sirseerhq/bookbyline/internal/ctxlog"
	bberrors "github.com/sirseerhq/bookbyline/internal/errors"
	"github.com/sirseerhq/bookbyline/internal/store"
)

// Store is the subset of *store.Store the tracker needs.
type Store interface {
	Get(ctx context.Context, fingerprint string) (*store.Record, error)
	Insert(ctx context.Context, rec store.Record) (*store.Record, error)
	UpdateCursor(ctx context.Context, fingerprint string, c store.Cursor) (*store.Record, error)
}

// State is the position of a document in the header/body cycle.
type State int

const (
	// AwaitingFirstMatch means nothing has been emitted yet; the next line
	// must be a header.
	AwaitingFirstMatch State = iota

	// InSection means at least one header has been emitted.
	InSection
)

func (s State) String() string {
	switch s {
	case AwaitingFirstMatch:
		return "awaiting-first-match"
	case InSection:
		return "in-section"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StateOf reports the state of rec. A nil record has not been seen yet.
func StateOf(rec *store.Record) State {
	if rec == nil || (rec.LastLine == 0 && rec.Prefix == "") {
		return AwaitingFirstMatch
	}
	return InSection
}

// Tracker resolves position records and writes them back.
type Tracker struct {
	store       Store
	provisioner credentials.Provisioner
}

// New creates a tracker. The provisioner is only consulted when a document
// is seen for the first time.
func New(s Store, p credentials.Provisioner) *Tracker {
	return &Tracker{store: s, provisioner: p}
}

// Lookup returns the record for fingerprint, or nil if there is none.
func (t *Tracker) Lookup(ctx context.Context, fingerprint string) (*store.Record, error) {
	rec, err := t.store.Get(ctx, fingerprint)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w: %w", fingerprint, bberrors.ErrPersistence, err)
	}
	return rec, nil
}

// ResolveOrCreate returns the record for fingerprint, creating it with a
// zeroed cursor and fresh credentials when absent. If the credential flow
// fails nothing is written. When another process inserts the same
// fingerprint first, its record is returned.
func (t *Tracker) ResolveOrCreate(ctx context.Context, fingerprint string) (*store.Record, error) {
	log := ctxlog.FromContext(ctx)

	rec, err := t.Lookup(ctx, fingerprint)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}

	log.Info("New document found, inserting record", "fingerprint", fingerprint)

	if t.provisioner == nil {
		return nil, fmt.Errorf("no credential source for %s: %w", fingerprint, bberrors.ErrAuthSetup)
	}
	creds, err := t.provisioner.Provision(ctx)
	if err == nil && !creds.Complete() {
		err = errors.New("incomplete credentials")
	}
	if err != nil {
		log.Error("Couldn't complete OAuth setup", "fingerprint", fingerprint, "error", err)
		if !errors.Is(err, bberrors.ErrAuthSetup) {
			err = fmt.Errorf("%w: %w", bberrors.ErrAuthSetup, err)
		}
		return nil, fmt.Errorf("couldn't complete OAuth setup for %s: %w", fingerprint, err)
	}

	rec, err = t.store.Insert(ctx, store.Record{
		Fingerprint: fingerprint,
		Credentials: creds,
	})
	if err != nil {
		return nil, fmt.Errorf("inserting record for %s: %w: %w", fingerprint, bberrors.ErrPersistence, err)
	}
	return rec, nil
}

// Persist writes the cursor fields of rec, along with its LastPostID and
// Source when set, and returns the stored record.
func (t *Tracker) Persist(ctx context.Context, rec store.Record) (*store.Record, error) {
	stored, err := t.store.UpdateCursor(ctx, rec.Fingerprint, store.Cursor{
		LastLine:    rec.LastLine,
		DisplayLine: rec.DisplayLine,
		Prefix:      rec.Prefix,
		PostID:      rec.LastPostID,
		Source:      rec.Source,
	})
	if err != nil {
		ctxlog.FromContext(ctx).Error("Couldn't write position",
			"fingerprint", rec.Fingerprint, "last_line", rec.LastLine, "error", err)
		return nil, fmt.Errorf("writing position for %s: %w: %w", rec.Fingerprint, bberrors.ErrPersistence, err)
	}
	return stored, nil
}

// NextWindow returns up to two lines starting at rec.LastLine. It is empty
// once the cursor has reached the end of lines.
func NextWindow(rec store.Record, lines []string) []string {
	start := rec.LastLine
	if start < 0 || start >= len(lines) {
		return nil
	}
	end := min(start+2, len(lines))
	return lines[start:end]
}

// ClassifyAndAdvance formats the next post from window and returns it with
// the advanced copy of rec. rec itself is not modified.
//
// A header line is posted together with the line after it as line 1 of a
// new section, and becomes the prefix for the section's later lines. Any
// other line is posted under the current prefix with the next line number,
// unless nothing has been emitted yet, which is a *errors.MatchError.
func ClassifyAndAdvance(rec store.Record, window []string, m *Matcher) (string, store.Record, error) {
	if len(window) == 0 {
		return "", rec, fmt.Errorf("%w: no lines left after line %d", bberrors.ErrEndOfContent, rec.LastLine)
	}

	current := window[0]
	next := rec

	if m.Match(current) {
		if len(window) < 2 {
			return "", rec, fmt.Errorf("%w: header %q on line %d has no following line",
				bberrors.ErrEndOfContent, strings.TrimSpace(current), rec.LastLine+1)
		}
		next.DisplayLine = 1
		next.LastLine += 2
		next.Prefix = current
		return fmt.Sprintf("%s\nl. %d: %s", strings.TrimSpace(current), next.DisplayLine, strings.TrimSpace(window[1])), next, nil
	}

	if rec.LastLine == 0 {
		return "", rec, &bberrors.MatchError{FirstLine: current, Headers: m.Markers()}
	}

	next.DisplayLine++
	next.LastLine++
	return fmt.Sprintf("%sl. %d: %s", rec.Prefix, next.DisplayLine, strings.TrimSpace(current)), next, nil
}
