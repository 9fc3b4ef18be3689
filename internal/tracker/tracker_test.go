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
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirseerhq/bookbyline/internal/credentials"
	bberrors "github.com/sirseerhq/bookbyline/internal/errors"
	"github.com/sirseerhq/bookbyline/internal/store"
)

var testCreds = store.Credentials{
	ConsumerKey:    "ck",
	ConsumerSecret: "cs",
	AccessKey:      "ak",
	AccessSecret:   "as",
}

var poem = []string{
	"Canto I\n",
	"Midway upon the journey of our life\n",
	"I found myself within a forest dark,\n",
	"For the straightforward pathway had been lost.\n",
	"Canto II\n",
	"Day was departing, and the embrown'd air\n",
}

func mustMatcher(t *testing.T, markers ...string) *Matcher {
	t.Helper()
	m, err := NewMatcher(markers, false)
	if err != nil {
		t.Fatalf("NewMatcher(%q): %v", markers, err)
	}
	return m
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "positions.json"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// countingProvisioner returns testCreds and counts calls.
func countingProvisioner(calls *atomic.Int32) credentials.Provisioner {
	return credentials.ProvisionerFunc(func(context.Context) (store.Credentials, error) {
		calls.Add(1)
		return testCreds, nil
	})
}

func TestNextWindow(t *testing.T) {
	tests := []struct {
		name     string
		lastLine int
		want     []string
	}{
		{name: "two available", lastLine: 0, want: poem[0:2]},
		{name: "middle", lastLine: 3, want: poem[3:5]},
		{name: "only one left", lastLine: 5, want: poem[5:6]},
		{name: "at end", lastLine: 6, want: nil},
		{name: "past end", lastLine: 40, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextWindow(store.Record{LastLine: tt.lastLine}, poem)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("NextWindow() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassifyAndAdvance(t *testing.T) {
	headers := mustMatcher(t, "Canto")

	tests := []struct {
		name    string
		rec     store.Record
		matcher *Matcher
		wantOut string
		wantRec store.Record
	}{
		{
			name:    "first header",
			rec:     store.Record{Fingerprint: "fp"},
			matcher: headers,
			wantOut: "Canto I\nl. 1: Midway upon the journey of our life",
			wantRec: store.Record{Fingerprint: "fp", LastLine: 2, DisplayLine: 1, Prefix: "Canto I\n"},
		},
		{
			name:    "body after header",
			rec:     store.Record{Fingerprint: "fp", LastLine: 2, DisplayLine: 1, Prefix: "Canto I\n"},
			matcher: headers,
			wantOut: "Canto I\nl. 2: I found myself within a forest dark,",
			wantRec: store.Record{Fingerprint: "fp", LastLine: 3, DisplayLine: 2, Prefix: "Canto I\n"},
		},
		{
			name:    "body with markers that no longer match",
			rec:     store.Record{Fingerprint: "fp", LastLine: 2, DisplayLine: 1, Prefix: "Canto I\n"},
			matcher: mustMatcher(t, "BOOK"),
			wantOut: "Canto I\nl. 2: I found myself within a forest dark,",
			wantRec: store.Record{Fingerprint: "fp", LastLine: 3, DisplayLine: 2, Prefix: "Canto I\n"},
		},
		{
			name:    "second header resets the count",
			rec:     store.Record{Fingerprint: "fp", LastLine: 4, DisplayLine: 3, Prefix: "Canto I\n"},
			matcher: headers,
			wantOut: "Canto II\nl. 1: Day was departing, and the embrown'd air",
			wantRec: store.Record{Fingerprint: "fp", LastLine: 6, DisplayLine: 1, Prefix: "Canto II\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.rec
			out, got, err := ClassifyAndAdvance(tt.rec, NextWindow(tt.rec, poem), tt.matcher)
			if err != nil {
				t.Fatalf("ClassifyAndAdvance() error = %v", err)
			}
			if out != tt.wantOut {
				t.Errorf("output = %q, want %q", out, tt.wantOut)
			}
			if diff := cmp.Diff(tt.wantRec, got); diff != "" {
				t.Errorf("record mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(before, tt.rec); diff != "" {
				t.Errorf("input record was modified (-before +after):\n%s", diff)
			}
		})
	}
}

func TestClassifyAndAdvanceErrors(t *testing.T) {
	headers := mustMatcher(t, "Canto")

	tests := []struct {
		name    string
		rec     store.Record
		window  []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "empty window",
			rec:     store.Record{LastLine: 6, DisplayLine: 1, Prefix: "Canto II\n"},
			window:  nil,
			wantErr: bberrors.ErrEndOfContent,
		},
		{
			name:    "header is the last line",
			rec:     store.Record{LastLine: 3, DisplayLine: 2, Prefix: "Canto I\n"},
			window:  []string{"Canto III\n"},
			wantErr: bberrors.ErrEndOfContent,
			wantMsg: "Canto III",
		},
		{
			name:    "first line is not a header",
			rec:     store.Record{},
			window:  []string{"Midway upon the journey\n", "Canto I\n"},
			wantErr: bberrors.ErrMatch,
			wantMsg: "Midway upon the journey",
		},
		{
			name:    "case-sensitive",
			rec:     store.Record{},
			window:  []string{"CANTO I\n", "Midway\n"},
			wantErr: bberrors.ErrMatch,
			wantMsg: "case-sensitive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, got, err := ClassifyAndAdvance(tt.rec, tt.window, headers)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err, tt.wantMsg)
			}
			if out != "" {
				t.Errorf("output = %q, want empty", out)
			}
			if diff := cmp.Diff(tt.rec, got); diff != "" {
				t.Errorf("record should be unchanged on error (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatchErrorDetails(t *testing.T) {
	_, _, err := ClassifyAndAdvance(store.Record{}, []string{"Prologue\n", "x\n"}, mustMatcher(t, "Canto", "BOOK"))

	var matchErr *bberrors.MatchError
	if !errors.As(err, &matchErr) {
		t.Fatalf("error %v is not a *MatchError", err)
	}
	if matchErr.FirstLine != "Prologue\n" {
		t.Errorf("FirstLine = %q", matchErr.FirstLine)
	}
	if diff := cmp.Diff([]string{"Canto", "BOOK"}, matchErr.Headers); diff != "" {
		t.Errorf("Headers mismatch (-want +got):\n%s", diff)
	}
}

func TestMatcher(t *testing.T) {
	tests := []struct {
		name      string
		markers   []string
		useRegexp bool
		line      string
		want      bool
	}{
		{name: "literal prefix", markers: []string{"Canto"}, line: "Canto XIV\n", want: true},
		{name: "leading whitespace ignored", markers: []string{"Canto"}, line: "   Canto XIV\n", want: true},
		{name: "not at start", markers: []string{"Canto"}, line: "The Canto\n", want: false},
		{name: "case-sensitive", markers: []string{"BOOK"}, line: "Book I\n", want: false},
		{name: "any of several", markers: []string{"Purgatory:", "BOOK", "Passus"}, line: "Passus Secundus\n", want: true},
		{name: "metacharacters are literal", markers: []string{"I."}, line: "IX\n", want: false},
		{name: "metacharacters match themselves", markers: []string{"I."}, line: "I. The Dark Wood\n", want: true},
		{name: "regexp mode", markers: []string{`[IVX]+\.`}, useRegexp: true, line: "XIV. Rain\n", want: true},
		{name: "regexp mode anchored", markers: []string{`[IVX]+\.`}, useRegexp: true, line: "Part XIV. Rain\n", want: false},
		{name: "regexp alternation stays grouped", markers: []string{"a|b", "Canto"}, useRegexp: true, line: "xb\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.markers, tt.useRegexp)
			if err != nil {
				t.Fatalf("NewMatcher() error = %v", err)
			}
			if got := m.Match(tt.line); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestNewMatcherErrors(t *testing.T) {
	tests := []struct {
		name      string
		markers   []string
		useRegexp bool
	}{
		{name: "no markers", markers: nil},
		{name: "blank marker", markers: []string{"Canto", "  "}},
		{name: "bad regexp", markers: []string{"(unclosed"}, useRegexp: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMatcher(tt.markers, tt.useRegexp); err == nil {
				t.Error("NewMatcher() should fail")
			}
		})
	}

	if _, err := NewMatcher([]string{"(unclosed"}, false); err != nil {
		t.Errorf("literal markers should be quoted, got %v", err)
	}
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		name string
		rec  *store.Record
		want State
	}{
		{name: "unknown document", rec: nil, want: AwaitingFirstMatch},
		{name: "fresh record", rec: &store.Record{}, want: AwaitingFirstMatch},
		{name: "after header", rec: &store.Record{LastLine: 2, DisplayLine: 1, Prefix: "Canto I\n"}, want: InSection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StateOf(tt.rec); got != tt.want {
				t.Errorf("StateOf() = %v, want %v", got, tt.want)
			}
		})
	}
	if InSection.String() != "in-section" || AwaitingFirstMatch.String() != "awaiting-first-match" {
		t.Error("unexpected state names")
	}
}

func TestResolveOrCreate(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	var calls atomic.Int32
	tr := New(s, countingProvisioner(&calls))

	first, err := tr.ResolveOrCreate(ctx, "fp1")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	if first.LastLine != 0 || first.DisplayLine != 0 || first.Prefix != "" {
		t.Errorf("new record should have a zeroed cursor: %+v", first)
	}
	if first.Credentials != testCreds {
		t.Errorf("Credentials = %+v, want %+v", first.Credentials, testCreds)
	}

	second, err := tr.ResolveOrCreate(ctx, "fp1")
	if err != nil {
		t.Fatalf("second ResolveOrCreate() error = %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("records differ (-first +second):\n%s", diff)
	}
	if calls.Load() != 1 {
		t.Errorf("provisioner called %d times, want 1", calls.Load())
	}
}

func TestResolveOrCreateProvisionFailure(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	tests := []struct {
		name string
		p    credentials.Provisioner
	}{
		{
			name: "abandoned",
			p: credentials.ProvisionerFunc(func(context.Context) (store.Credentials, error) {
				return store.Credentials{}, errors.New("OAuth process was abandoned")
			}),
		},
		{
			name: "incomplete",
			p:    credentials.Static(store.Credentials{ConsumerKey: "only"}),
		},
		{
			name: "none",
			p:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(s, tt.p).ResolveOrCreate(ctx, "fp-"+tt.name)
			if !errors.Is(err, bberrors.ErrAuthSetup) {
				t.Fatalf("error = %v, want ErrAuthSetup", err)
			}
			if _, err := s.Get(ctx, "fp-"+tt.name); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("no record should be created, Get() error = %v", err)
			}
		})
	}
}

func TestMatchErrorPersistsNothing(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	var calls atomic.Int32
	tr := New(s, countingProvisioner(&calls))

	rec, err := tr.ResolveOrCreate(ctx, "fp")
	if err != nil {
		t.Fatal(err)
	}
	lines := []string{"Prologue\n", "Canto I\n", "Midway\n"}
	if _, _, err := ClassifyAndAdvance(*rec, NextWindow(*rec, lines), mustMatcher(t, "Canto")); !errors.Is(err, bberrors.ErrMatch) {
		t.Fatalf("error = %v, want ErrMatch", err)
	}

	again, err := tr.ResolveOrCreate(ctx, "fp")
	if err != nil {
		t.Fatal(err)
	}
	if again.LastLine != 0 {
		t.Errorf("LastLine = %d after match failure, want 0", again.LastLine)
	}
}

func TestPersist(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	var calls atomic.Int32
	tr := New(s, countingProvisioner(&calls))

	rec, err := tr.ResolveOrCreate(ctx, "fp")
	if err != nil {
		t.Fatal(err)
	}

	updated := *rec
	updated.LastLine = 33
	updated.DisplayLine = 45
	updated.Prefix = "New Header"
	updated.Source = "/books/inferno.txt"

	stored, err := tr.Persist(ctx, updated)
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if stored.Emitted != 1 {
		t.Errorf("Emitted = %d, want 1", stored.Emitted)
	}

	got, err := tr.ResolveOrCreate(ctx, "fp")
	if err != nil {
		t.Fatal(err)
	}
	if got.LastLine != 33 || got.DisplayLine != 45 || got.Prefix != "New Header" {
		t.Errorf("read back %d/%d/%q, want 33/45/\"New Header\"", got.LastLine, got.DisplayLine, got.Prefix)
	}
	if got.Source != "/books/inferno.txt" {
		t.Errorf("Source = %q", got.Source)
	}
}

func TestPersistErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("closed store", func(t *testing.T) {
		s := openStore(t)
		var calls atomic.Int32
		tr := New(s, countingProvisioner(&calls))
		rec, err := tr.ResolveOrCreate(ctx, "fp")
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}

		rec.LastLine = 2
		_, err = tr.Persist(ctx, *rec)
		if !errors.Is(err, bberrors.ErrPersistence) || !errors.Is(err, store.ErrClosed) {
			t.Errorf("error = %v, want ErrPersistence wrapping ErrClosed", err)
		}
	})

	t.Run("unknown record", func(t *testing.T) {
		_, err := New(openStore(t), nil).Persist(ctx, store.Record{Fingerprint: "missing", LastLine: 1})
		if !errors.Is(err, bberrors.ErrPersistence) {
			t.Errorf("error = %v, want ErrPersistence", err)
		}
	})

	t.Run("lookup failure", func(t *testing.T) {
		s := openStore(t)
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
		var calls atomic.Int32
		_, err := New(s, countingProvisioner(&calls)).ResolveOrCreate(ctx, "fp")
		if !errors.Is(err, bberrors.ErrPersistence) {
			t.Errorf("error = %v, want ErrPersistence", err)
		}
		if calls.Load() != 0 {
			t.Error("provisioner should not run when the store is unreachable")
		}
	})
}

// racingStore reports not-found once, as if another process inserted the
// record between the lookup and the insert.
type racingStore struct {
	*store.Store
	missed bool
}

func (r *racingStore) Get(ctx context.Context, fp string) (*store.Record, error) {
	if !r.missed {
		r.missed = true
		return nil, store.ErrNotFound
	}
	return r.Store.Get(ctx, fp)
}

func TestResolveOrCreateConcurrentInsert(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	winner := store.Record{Fingerprint: "fp", Credentials: store.Credentials{ConsumerKey: "w", ConsumerSecret: "w", AccessKey: "w", AccessSecret: "w"}}
	if _, err := s.Insert(ctx, winner); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	got, err := New(&racingStore{Store: s}, countingProvisioner(&calls)).ResolveOrCreate(ctx, "fp")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	if got.Credentials != winner.Credentials {
		t.Errorf("Credentials = %+v, want the existing record's", got.Credentials)
	}
}
