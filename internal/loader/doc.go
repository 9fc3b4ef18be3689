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

// Package loader reads source texts and turns them into documents: the ordered
// non-blank lines of the text plus a content fingerprint.
//
// The fingerprint is a digest of the concatenation of the non-blank lines, so
// two copies of the same text share a fingerprint even when they live at
// different paths or differ only in blank lines. Paths ending in ".zst" are
// decompressed before reading.
//
// Example usage:
//
//	doc, err := loader.Load(loader.PathSource("inferno.txt"))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(doc.Fingerprint, len(doc.Lines))
package loader
