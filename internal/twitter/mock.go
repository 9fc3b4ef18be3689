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
	"strconv"
	"sync"

	bberrors "github.com/sirseerhq/bookbyline/internal/errors"
)

// MockPoster is a Poster for tests. It records every text it is given.
type MockPoster struct {
	mu sync.Mutex

	// Posts holds the texts accepted so far.
	Posts []string

	// Error, when set, is returned from every call.
	Error error

	// FailAfter lets the first FailAfter calls succeed and fails the rest.
	// Zero disables it.
	FailAfter int

	// CallCount counts calls, successful or not.
	CallCount int
}

// MockPosterOption configures a MockPoster.
type MockPosterOption func(*MockPoster)

// WithPostError makes every call fail with err.
func WithPostError(err error) MockPosterOption {
	return func(m *MockPoster) {
		m.Error = err
	}
}

// WithFailAfter lets n calls succeed and fails the rest.
func WithFailAfter(n int) MockPosterOption {
	return func(m *MockPoster) {
		m.FailAfter = n
	}
}

// NewMockPoster creates a mock poster.
func NewMockPoster(opts ...MockPosterOption) *MockPoster {
	m := &MockPoster{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Post implements Poster.
func (m *MockPoster) Post(ctx context.Context, text string) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++

	select {
	case <-ctx.Done():
		return nil, &bberrors.PostError{Reason: "canceled", Err: ctx.Err()}
	default:
	}

	if m.Error != nil {
		return nil, m.Error
	}
	if m.FailAfter > 0 && len(m.Posts) >= m.FailAfter {
		return nil, &bberrors.PostError{Reason: "mock failure", StatusCode: 503}
	}

	m.Posts = append(m.Posts, text)
	return &Post{ID: strconv.Itoa(1000 + len(m.Posts)), Text: text}, nil
}

// Last returns the most recently accepted text.
func (m *MockPoster) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Posts) == 0 {
		return ""
	}
	return m.Posts[len(m.Posts)-1]
}
