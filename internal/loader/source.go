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

package loader

import (
	"io"
	"strings"
)

type sourceKind int

const (
	kindPath sourceKind = iota + 1
	kindReader
)

// Source identifies where a document's text comes from. It is either a path,
// which the loader opens and closes, or an already-open reader, which the
// loader reads but never closes.
type Source struct {
	kind   sourceKind
	path   string
	reader io.Reader
}

// PathSource returns a Source that the loader opens from disk.
func PathSource(path string) Source {
	return Source{kind: kindPath, path: path}
}

// ReaderSource returns a Source backed by an already-open reader. The name is
// used for diagnostics and for detecting compressed input; it may be empty.
func ReaderSource(name string, r io.Reader) Source {
	return Source{kind: kindReader, path: name, reader: r}
}

// Name returns the path or name the source was created with.
func (s Source) Name() string {
	return s.path
}

// IsPath reports whether the loader is responsible for opening the source.
func (s Source) IsPath() bool {
	return s.kind == kindPath
}

func (s Source) compressed() bool {
	return strings.HasSuffix(strings.ToLower(s.path), ".zst")
}
