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

package twitter

import (
	"context"
	"unicode/utf8"
)

// MaxLength is the maximum post length in characters.
const MaxLength = 280

// Post is a created post.
type Post struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Poster publishes text. Failures are *errors.PostError values wrapping
// errors.ErrPost.
type Poster interface {
	Post(ctx context.Context, text string) (*Post, error)
}

// Length returns the length of text as counted against MaxLength.
func Length(text string) int {
	return utf8.RuneCountInString(text)
}
