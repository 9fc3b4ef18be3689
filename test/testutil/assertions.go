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
	"bufio"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

// AssertPosts compares the texts a mock server accepted with want.
func AssertPosts(t *testing.T, server *MockServer, want []string) {
	t.Helper()

	if diff := cmp.Diff(want, server.Posts()); diff != "" {
		t.Errorf("posts mismatch (-want +got):\n%s", diff)
	}
}

// DecodeNDJSON parses each non-empty line of out as a JSON object.
func DecodeNDJSON(t *testing.T, out string) []map[string]any {
	t.Helper()

	var records []map[string]any
	scanner := bufio.NewScanner(strings.NewReader(out))
	for n := 1; scanner.Scan(); n++ {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("Line %d: invalid JSON: %v\n%s", n, err, line)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("Error reading output: %v", err)
	}
	return records
}

// AssertStdoutContains checks that a successful run printed want.
func AssertStdoutContains(t *testing.T, result CLIResult, want string) {
	t.Helper()

	AssertCLISuccess(t, result)
	if !strings.Contains(result.Stdout, want) {
		t.Errorf("Expected stdout containing %q, got:\n%s", want, result.Stdout)
	}
}
