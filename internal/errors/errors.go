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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrRead indicates the source text could not be opened or read.
	// Maps to exit code 2.
	ErrRead = errors.New("source could not be read")

	// ErrAuthSetup indicates the credential flow failed or was abandoned.
	// No position record is created when this is returned.
	// Maps to exit code 3.
	ErrAuthSetup = errors.New("credential setup failed")

	// ErrMatch indicates that none of the header markers matched the first
	// line of a document on its first run.
	// Maps to exit code 4.
	ErrMatch = errors.New("no header matched on initial run")

	// ErrEndOfContent indicates there is nothing left to emit: the cursor is
	// past the last line, or a header has no following body line.
	// Maps to exit code 5.
	ErrEndOfContent = errors.New("end of content reached")

	// ErrPersistence indicates the updated cursor could not be written.
	// When returned after a live post, the same line will be posted again.
	// Maps to exit code 6.
	ErrPersistence = errors.New("position could not be persisted")

	// ErrPost indicates the remote posting service rejected or failed the post.
	// The cursor is not advanced.
	// Maps to exit code 7.
	ErrPost = errors.New("post failed")
)

// PostError carries the reason a post was rejected.
type PostError struct {
	Reason     string
	StatusCode int
	Err        error
}

func (e *PostError) Error() string {
	var b strings.Builder
	b.WriteString("post failed")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns both ErrPost and the underlying cause so that errors.Is
// matches either.
func (e *PostError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPost}
	}
	return []error{ErrPost, e.Err}
}

// MatchError reports the first line of a document and the header markers that
// failed to match it.
type MatchError struct {
	FirstLine string
	Headers   []string
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("none of the header markers [%s] matched the first line %q; headers are case-sensitive",
		strings.Join(e.Headers, " "), strings.TrimSpace(e.FirstLine))
}

// Unwrap returns ErrMatch.
func (e *MatchError) Unwrap() error {
	return ErrMatch
}
