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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zstd"
	bberrors "github.com/sirseerhq/bookbyline/internal/errors"
)

// Document is the loaded form of a source: its non-blank lines in order and
// the fingerprint that identifies the content.
type Document struct {
	// Name is the path or name of the source the document was read from.
	Name string

	// Lines holds the non-blank lines exactly as read, including their line
	// terminators. Callers must not modify it.
	Lines []string

	// Fingerprint is the hex digest of the concatenated Lines.
	Fingerprint string

	// Algorithm is the digest used for Fingerprint.
	Algorithm Algorithm
}

// Len returns the number of non-blank lines.
func (d *Document) Len() int {
	return len(d.Lines)
}

type options struct {
	algorithm Algorithm
}

// Option configures Load.
type Option func(*options)

// WithAlgorithm selects the fingerprint digest. The default is SHA1.
func WithAlgorithm(alg Algorithm) Option {
	return func(o *options) {
		o.algorithm = alg
	}
}

// Load reads a source, discards blank lines and computes the fingerprint.
// Any failure to open or read the source is returned wrapping ErrRead.
func Load(src Source, opts ...Option) (*Document, error) {
	o := options{algorithm: SHA1}
	for _, opt := range opts {
		opt(&o)
	}

	var r io.Reader
	switch src.kind {
	case kindPath:
		f, err := os.Open(src.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w: %w", src.path, bberrors.ErrRead, err)
		}
		defer f.Close()
		r = f
	case kindReader:
		if src.reader == nil {
			return nil, fmt.Errorf("source %q has no reader: %w", src.path, bberrors.ErrRead)
		}
		r = src.reader
	default:
		return nil, fmt.Errorf("empty source: %w", bberrors.ErrRead)
	}

	if src.compressed() {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open compressed source %s: %w: %w", src.path, bberrors.ErrRead, err)
		}
		defer dec.Close()
		r = dec
	}

	lines, err := readLines(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w: %w", src.path, bberrors.ErrRead, err)
	}
	for i, line := range lines {
		if !utf8.ValidString(line) {
			return nil, fmt.Errorf("line %d of %s is not valid UTF-8, convert it first (e.g. iconv -f latin1 -t utf-8): %w",
				i+1, src.path, bberrors.ErrRead)
		}
	}
	lines = Filter(lines)

	return &Document{
		Name:        src.path,
		Lines:       lines,
		Fingerprint: Fingerprint(lines, o.algorithm),
		Algorithm:   o.algorithm,
	}, nil
}

// Filter returns the lines whose trimmed content is not empty, in order.
func Filter(lines []string) []string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return kept
}

// readLines splits r into lines, keeping each line's terminator. A final
// line without a terminator is kept as is.
func readLines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	var lines []string
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
