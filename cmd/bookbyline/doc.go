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

// Package main implements the bookbyline command-line interface.
// bookbyline posts a text file one line at a time, remembering where it got
// to between runs. Header lines (canto, book, chapter titles) are recognized
// by the markers given on the command line; each header is posted together
// with the line after it, and later lines are numbered within the section
// and prefixed with the header.
//
// Usage:
//
//	bookbyline emit <file> [header...] [flags]
//	bookbyline status [file] [header...] [flags]
//	bookbyline auth
//
// Example:
//
//	bookbyline emit inferno.txt Canto          # show the next post
//	bookbyline emit inferno.txt Canto --live   # post it
//
// Without --live the post is only displayed, but the position still
// advances. Positions are kept in tweet_books.db in the working directory
// unless --db, BOOKBYLINE_DB or the config file says otherwise.
//
// Exit codes:
//   - 0: Success
//   - 1: General error (bad arguments, configuration)
//   - 2: The file could not be read
//   - 3: Credential setup failed or was abandoned
//   - 4: No header matched the first line on the first run
//   - 5: Nothing left to post
//   - 6: The new position could not be saved
//   - 7: Posting failed; the position was not advanced
package main
