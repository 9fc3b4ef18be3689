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
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Algorithm selects the digest used for document fingerprints.
type Algorithm int

const (
	// SHA1 is the default. Existing position databases are keyed by it.
	SHA1 Algorithm = iota
	// Blake2b uses the 256-bit BLAKE2b digest.
	Blake2b
)

// String returns the configuration name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case SHA1:
		return "sha1"
	case Blake2b:
		return "blake2b"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm maps a configuration name to an Algorithm.
// An empty name selects SHA1.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sha1":
		return SHA1, nil
	case "blake2b":
		return Blake2b, nil
	default:
		return 0, fmt.Errorf("unknown fingerprint algorithm %q (want sha1 or blake2b)", name)
	}
}

// Fingerprint returns the lowercase hex digest of the concatenation of lines.
func Fingerprint(lines []string, alg Algorithm) string {
	data := []byte(strings.Join(lines, ""))
	switch alg {
	case Blake2b:
		sum := blake2b.Sum256(data)
		return hex.EncodeToString(sum[:])
	default:
		sum := sha1.Sum(data)
		return hex.EncodeToString(sum[:])
	}
}
