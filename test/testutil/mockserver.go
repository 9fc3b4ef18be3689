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

// Package testutil provides common test helpers for bookbyline
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// MockServer stands in for the posting API. It records every accepted post.
type MockServer struct {
	*httptest.Server

	mu       sync.Mutex
	posts    []string
	requests int
	failWith int
	failBody string
}

// NewMockServer starts a server that accepts every signed post.
func NewMockServer(t *testing.T) *MockServer {
	t.Helper()

	m := &MockServer{}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.Close)
	return m
}

// NewErrorServer starts a server that rejects every post with status and
// body.
func NewErrorServer(t *testing.T, status int, body string) *MockServer {
	t.Helper()

	m := NewMockServer(t)
	m.Fail(status, body)
	return m
}

// Fail makes later requests fail with status and body. A zero status
// restores normal behaviour.
func (m *MockServer) Fail(status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = status
	m.failBody = body
}

// Posts returns the texts accepted so far.
func (m *MockServer) Posts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.posts...)
}

// Requests returns how many requests were received, including failures.
func (m *MockServer) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

func (m *MockServer) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++

	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost || r.URL.Path != "/2/tweets" {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"title":"Not Found"}`)
		return
	}
	if !strings.HasPrefix(r.Header.Get("Authorization"), "OAuth ") {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"title":"Unauthorized","detail":"Unauthorized"}`)
		return
	}
	if m.failWith != 0 {
		w.WriteHeader(m.failWith)
		_, _ = io.WriteString(w, m.failBody)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"title":"Invalid Request","detail":"malformed body"}`)
		return
	}

	m.posts = append(m.posts, req.Text)
	id := strconv.Itoa(1000 + len(m.posts))

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]string{"id": id, "text": req.Text},
	})
}
