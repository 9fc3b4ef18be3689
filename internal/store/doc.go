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

// Package store provides durable, keyed persistence for position records.
//
// Each source document is identified by its content fingerprint, and the store
// keeps at most one Record per fingerprint. All records live in a single JSON
// file. Every write is atomic, using a write-to-temp-and-rename pattern, and
// the file carries a schema version and an xxh3 checksum so that corruption is
// detected on the next read rather than silently resetting a cursor.
//
// Cross-process safety comes from an OS file lock on a sibling ".lock" file:
// reads take a shared lock, and read-modify-write operations take an exclusive
// lock for their whole duration, so two invocations against the same store
// cannot both read one cursor and advance it twice.
//
// Example usage:
//
//	s, err := store.Open("tweet_books.db")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	rec, err := s.Get(ctx, fingerprint)
package store
