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

package emitter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirseerhq/bookbyline/internal/ctxlog"
	bberrors "github.com/sirseerhq/bookbyline/internal/errors"
	"github.com/sirseerhq/bookbyline/internal/loader"
	"github.com/sirseerhq/bookbyline/internal/store"
	"github.com/sirseerhq/bookbyline/internal/tracker"
	"github.com/sirseerhq/bookbyline/internal/twitter"
)

// Emitter holds everything one run needs. It has no package-level state;
// the logger travels in the context passed to Emit.
type Emitter struct {
	tracker   *tracker.Tracker
	matcher   *tracker.Matcher
	posters   PosterFactory
	algorithm loader.Algorithm
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithAlgorithm selects the fingerprint digest. The default is SHA1.
func WithAlgorithm(alg loader.Algorithm) Option {
	return func(e *Emitter) {
		e.algorithm = alg
	}
}

// New creates an Emitter. matcher may be nil for an emitter only used for
// Status, in which case no preview is produced.
func New(t *tracker.Tracker, matcher *tracker.Matcher, posters PosterFactory, opts ...Option) *Emitter {
	e := &Emitter{
		tracker:   t,
		matcher:   matcher,
		posters:   posters,
		algorithm: loader.SHA1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result describes a successful tick.
type Result struct {
	// Text is what was posted.
	Text string

	// Header is true when the tick started a new section.
	Header bool

	// Post is the poster's result. Its ID is empty for dry runs.
	Post *twitter.Post

	// Record is the stored record after the update.
	Record store.Record
}

// Emit publishes the next line of src and advances its saved position.
func (e *Emitter) Emit(ctx context.Context, src loader.Source) (*Result, error) {
	log := ctxlog.FromContext(ctx)

	if e.matcher == nil {
		return nil, fmt.Errorf("no header markers configured")
	}
	if e.posters == nil {
		return nil, fmt.Errorf("no poster configured")
	}

	doc, err := loader.Load(src, loader.WithAlgorithm(e.algorithm))
	if err != nil {
		log.Error("Couldn't read source", "source", src.Name(), "error", err)
		return nil, err
	}
	ctx, log = ctxlog.With(ctx, "fingerprint", doc.Fingerprint)

	rec, err := e.tracker.ResolveOrCreate(ctx, doc.Fingerprint)
	if err != nil {
		return nil, err
	}

	window := tracker.NextWindow(*rec, doc.Lines)
	text, next, err := tracker.ClassifyAndAdvance(*rec, window, e.matcher)
	switch {
	case errors.Is(err, bberrors.ErrEndOfContent):
		log.Info("Reached end of content", "line", rec.LastLine, "lines", doc.Len())
		return nil, err
	case errors.Is(err, bberrors.ErrMatch):
		log.Error("Didn't match a header on the first run, not posting anything",
			"first_line", strings.TrimSpace(window[0]), "headers", e.matcher.Markers())
		return nil, err
	case err != nil:
		return nil, err
	}

	header := next.DisplayLine == 1 && next.LastLine == rec.LastLine+2
	if header {
		log.Info("New header line found", "line", rec.LastLine+1, "content", strings.TrimSpace(window[0]))
	}

	poster, err := e.posters(rec.Credentials)
	if err != nil {
		return nil, &bberrors.PostError{Reason: "creating poster", Err: err}
	}

	post, err := poster.Post(ctx, text)
	if err != nil {
		log.Error("Couldn't post, position not advanced", "line", rec.LastLine, "error", err)
		if !errors.Is(err, bberrors.ErrPost) {
			err = &bberrors.PostError{Err: err}
		}
		return nil, err
	}
	if post == nil {
		post = &twitter.Post{Text: text}
	}

	next.LastPostID = post.ID
	if src.IsPath() {
		next.Source = src.Name()
	}

	stored, err := e.tracker.Persist(ctx, next)
	if err != nil {
		log.Error("Posted but couldn't save position; the same text will be posted next run",
			"line", next.LastLine, "error", err)
		return nil, err
	}

	log.Debug("Position saved", "last_line", stored.LastLine, "display_line", stored.DisplayLine)
	return &Result{
		Text:   text,
		Header: header,
		Post:   post,
		Record: *stored,
	}, nil
}

// Status is a read-only view of a document's progress.
type Status struct {
	Name        string     `json:"name"`
	Fingerprint string     `json:"fingerprint"`
	Algorithm   string     `json:"algorithm"`
	Known       bool       `json:"known"`
	State       string     `json:"state"`
	TotalLines  int        `json:"total_lines"`
	LastLine    int        `json:"last_line"`
	DisplayLine int        `json:"display_line"`
	Remaining   int        `json:"remaining"`
	Prefix      string     `json:"prefix,omitempty"`
	Emitted     int        `json:"emitted"`
	LastPostID  string     `json:"last_post_id,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`

	// Next is what the next tick would post, when headers are known.
	Next string `json:"next,omitempty"`

	// NextError explains why there is no next post.
	NextError string `json:"next_error,omitempty"`
}

// Status reports the progress of src without changing anything. It never
// runs the credential flow.
func (e *Emitter) Status(ctx context.Context, src loader.Source) (*Status, error) {
	doc, err := loader.Load(src, loader.WithAlgorithm(e.algorithm))
	if err != nil {
		return nil, err
	}

	rec, err := e.tracker.Lookup(ctx, doc.Fingerprint)
	if err != nil {
		return nil, err
	}

	st := &Status{
		Name:        doc.Name,
		Fingerprint: doc.Fingerprint,
		Algorithm:   doc.Algorithm.String(),
		Known:       rec != nil,
		State:       tracker.StateOf(rec).String(),
		TotalLines:  doc.Len(),
	}

	cur := store.Record{Fingerprint: doc.Fingerprint}
	if rec != nil {
		cur = *rec
		st.LastLine = rec.LastLine
		st.DisplayLine = rec.DisplayLine
		st.Prefix = strings.TrimSpace(rec.Prefix)
		st.Emitted = rec.Emitted
		st.LastPostID = rec.LastPostID
		updated := rec.UpdatedAt
		st.UpdatedAt = &updated
	}
	st.Remaining = max(0, doc.Len()-cur.LastLine)

	if e.matcher != nil {
		text, _, err := tracker.ClassifyAndAdvance(cur, tracker.NextWindow(cur, doc.Lines), e.matcher)
		if err != nil {
			st.NextError = err.Error()
		} else {
			st.Next = text
		}
	}
	return st, nil
}
