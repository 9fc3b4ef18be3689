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

package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     bool
	}{
		{
			name:     "direct read error",
			err:      ErrRead,
			sentinel: ErrRead,
			want:     true,
		},
		{
			name:     "wrapped read error",
			err:      fmt.Errorf("open book.txt: %w", ErrRead),
			sentinel: ErrRead,
			want:     true,
		},
		{
			name:     "different error type",
			err:      ErrMatch,
			sentinel: ErrEndOfContent,
			want:     false,
		},
		{
			name:     "post error matches sentinel",
			err:      &PostError{Reason: "duplicate content", StatusCode: 403},
			sentinel: ErrPost,
			want:     true,
		},
		{
			name:     "wrapped post error matches sentinel",
			err:      fmt.Errorf("emit: %w", &PostError{Reason: "rate limited"}),
			sentinel: ErrPost,
			want:     true,
		},
		{
			name:     "match error matches sentinel",
			err:      &MatchError{FirstLine: "Canto I\n", Headers: []string{"BOOK"}},
			sentinel: ErrMatch,
			want:     true,
		},
		{
			name:     "nil error",
			err:      nil,
			sentinel: ErrRead,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.sentinel)
			if got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.sentinel, got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrRead, "source could not be read"},
		{ErrAuthSetup, "credential setup failed"},
		{ErrMatch, "no header matched on initial run"},
		{ErrEndOfContent, "end of content reached"},
		{ErrPersistence, "position could not be persisted"},
		{ErrPost, "post failed"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPostError(t *testing.T) {
	cause := errors.New("connection reset")
	err := &PostError{Reason: "network failure", StatusCode: 0, Err: cause}

	if !errors.Is(err, cause) {
		t.Error("PostError should unwrap to its cause")
	}
	if got := err.Error(); got != "post failed: network failure: connection reset" {
		t.Errorf("Error() = %q", got)
	}

	withStatus := &PostError{Reason: "unauthorized", StatusCode: 401}
	if got := withStatus.Error(); got != "post failed (status 401): unauthorized" {
		t.Errorf("Error() = %q", got)
	}

	var pe *PostError
	if !errors.As(fmt.Errorf("emit: %w", withStatus), &pe) || pe.StatusCode != 401 {
		t.Error("errors.As should recover the PostError")
	}
}

func TestMatchErrorMessage(t *testing.T) {
	err := &MatchError{FirstLine: "  Canto I\n", Headers: []string{"BOOK", "Passus"}}
	msg := err.Error()
	for _, want := range []string{"[BOOK Passus]", `"Canto I"`, "case-sensitive"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}
}
