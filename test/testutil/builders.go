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

package testutil

import (
	"fmt"
	"strings"
)

// BookBuilder assembles a sectioned text for tests.
type BookBuilder struct {
	b strings.Builder
}

// NewBook starts an empty text.
func NewBook() *BookBuilder {
	return &BookBuilder{}
}

// Line appends a raw line.
func (bb *BookBuilder) Line(s string) *BookBuilder {
	bb.b.WriteString(s)
	bb.b.WriteByte('\n')
	return bb
}

// Blank appends n blank lines, which loading skips.
func (bb *BookBuilder) Blank(n int) *BookBuilder {
	for range n {
		bb.b.WriteByte('\n')
	}
	return bb
}

// Section appends a header line followed by body lines.
func (bb *BookBuilder) Section(header string, body ...string) *BookBuilder {
	bb.Line(header)
	for _, l := range body {
		bb.Line(l)
	}
	return bb
}

// Numbered appends a header followed by n generated body lines. Body lines
// start with "Verse", so they never match the header's own marker.
func (bb *BookBuilder) Numbered(header string, n int) *BookBuilder {
	bb.Line(header)
	for i := 1; i <= n; i++ {
		bb.Line(fmt.Sprintf("Verse %d of %s", i, header))
	}
	return bb
}

// String returns the assembled text.
func (bb *BookBuilder) String() string {
	return bb.b.String()
}

// Inferno is a short two-canto text used across tests. Emitting it in full
// yields InfernoPosts.
var Inferno = NewBook().
	Section("Canto I",
		"Midway upon the journey of our life",
		"I found myself within a forest dark,").
	Blank(2).
	Section("  Canto II",
		"Day was departing, and the embrowned air").
	String()

// InfernoPosts are the successive post texts for Inferno under the marker
// "Canto".
var InfernoPosts = []string{
	"Canto I\nl. 1: Midway upon the journey of our life",
	"Canto I\nl. 2: I found myself within a forest dark,",
	"Canto II\nl. 1: Day was departing, and the embrowned air",
}
