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
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Matcher recognizes header lines.
type Matcher struct {
	markers []string
	re      *regexp.Regexp
}

// NewMatcher builds a matcher for markers. A line is a header when, after
// its leading whitespace is removed, it starts with one of the markers.
// Matching is case-sensitive. Markers are literal text unless useRegexp is
// set, in which case each is a regular expression anchored at the start of
// the line.
func NewMatcher(markers []string, useRegexp bool) (*Matcher, error) {
	if len(markers) == 0 {
		return nil, fmt.Errorf("at least one header marker is required")
	}

	alts := make([]string, 0, len(markers))
	for _, m := range markers {
		if strings.TrimSpace(m) == "" {
			return nil, fmt.Errorf("header markers must not be blank")
		}
		if useRegexp {
			alts = append(alts, "(?:"+m+")")
		} else {
			alts = append(alts, regexp.QuoteMeta(m))
		}
	}

	re, err := regexp.Compile("^(?:" + strings.Join(alts, "|") + ")")
	if err != nil {
		return nil, fmt.Errorf("invalid header pattern: %w", err)
	}

	return &Matcher{
		markers: append([]string(nil), markers...),
		re:      re,
	}, nil
}

// Match reports whether line is a header.
func (m *Matcher) Match(line string) bool {
	return m.re.MatchString(strings.TrimLeftFunc(line, unicode.IsSpace))
}

// Markers returns the markers the matcher was built from.
func (m *Matcher) Markers() []string {
	return append([]string(nil), m.markers...)
}
