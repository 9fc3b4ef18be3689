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

package output

import (
	"fmt"
	"io"
	"time"
)

// OutputWriter defines the interface for writing display records.
type OutputWriter interface {
	// Write writes a single record to the output.
	// The record should be immediately flushed.
	Write(record interface{}) error

	// Close closes the underlying writer and releases any resources.
	Close() error
}

// Entry is one rendered post.
type Entry struct {
	Fingerprint string    `json:"fingerprint,omitempty"`
	Line        int       `json:"line,omitempty"`
	Text        string    `json:"text"`
	Length      int       `json:"length"`
	Live        bool      `json:"live"`
	PostID      string    `json:"post_id,omitempty"`
	Time        time.Time `json:"time"`
}

// String returns the post text.
func (e Entry) String() string {
	return e.Text
}

// Format names accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a writer for the named format.
func New(format string, w io.Writer) (OutputWriter, error) {
	switch format {
	case "", FormatText:
		return NewTextWriter(w), nil
	case FormatJSON:
		return NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want %s or %s)", format, FormatText, FormatJSON)
	}
}
