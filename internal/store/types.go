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

package store

import (
	"errors"
	"time"
)

// CurrentVersion is the current store schema version.
// Increment this when making breaking changes to the Record structure.
const CurrentVersion = 1

var (
	// ErrNotFound is returned when no record exists for a fingerprint.
	ErrNotFound = errors.New("record not found")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store is closed")

	// ErrCorrupt is returned when the store file cannot be trusted.
	ErrCorrupt = errors.New("store file is corrupted")

	// ErrCursorRegression is returned when an update would move a cursor backwards.
	ErrCursorRegression = errors.New("cursor cannot move backwards")
)

// Credentials holds the OAuth 1.0a values used to post on behalf of a document.
type Credentials struct {
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
	AccessKey      string `json:"access_key"`
	AccessSecret   string `json:"access_secret"`
}

// Complete reports whether all four values are set.
func (c Credentials) Complete() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" && c.AccessKey != "" && c.AccessSecret != ""
}

// Record is the persisted position of one source document.
type Record struct {
	// Fingerprint is the content digest of the document. It is the unique key.
	Fingerprint string `json:"fingerprint"`

	// LastLine is the index of the next non-blank line to consume.
	LastLine int `json:"last_line"`

	// DisplayLine is the line number shown to readers within the current section.
	DisplayLine int `json:"display_line"`

	// Prefix is the most recent header line, verbatim including its terminator.
	Prefix string `json:"prefix"`

	// Credentials are created once, when the record is first inserted.
	Credentials Credentials `json:"credentials"`

	// Source is the path the document was most recently loaded from.
	// Informational only.
	Source string `json:"source,omitempty"`

	// Emitted counts successful cursor updates.
	Emitted int `json:"emitted"`

	// LastPostID is the remote id of the most recent live post.
	LastPostID string `json:"last_post_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Cursor returns the position fields of the record.
func (r Record) Cursor() Cursor {
	return Cursor{
		LastLine:    r.LastLine,
		DisplayLine: r.DisplayLine,
		Prefix:      r.Prefix,
	}
}

// Cursor is the set of fields changed by one emission.
type Cursor struct {
	LastLine    int
	DisplayLine int
	Prefix      string

	// PostID, when set, replaces the record's LastPostID.
	PostID string

	// Source, when set, replaces the record's Source.
	Source string
}

// document is the decoded contents of the store file.
type document struct {
	Version int
	Records map[string]*Record
}
