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
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	bberrors "github.com/sirseerhq/bookbyline/internal/errors"
	"github.com/sirseerhq/bookbyline/internal/store"
)

var testCreds = store.Credentials{
	ConsumerKey:    "ckey",
	ConsumerSecret: "csecret",
	AccessKey:      "akey",
	AccessSecret:   "asecret",
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestClient_Post(t *testing.T) {
	var gotAuth, gotUA, gotType, gotText string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/2/tweets" {
			http.Error(w, "unexpected request", http.StatusNotFound)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotType = r.Header.Get("Content-Type")

		var body struct {
			Text string `json:"text"`
		}
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		gotText = body.Text

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1445880548472328192","text":"echo"}}`))
	}))
	defer server.Close()

	client := NewClient(testCreds, WithEndpoint(server.URL+"/"))
	post, err := client.Post(context.Background(), "Canto I\nl. 1: Midway upon the journey")
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	if post.ID != "1445880548472328192" {
		t.Errorf("post ID = %q", post.ID)
	}
	if gotText != "Canto I\nl. 1: Midway upon the journey" {
		t.Errorf("server received text %q", gotText)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if !strings.HasPrefix(gotUA, "bookbyline/") {
		t.Errorf("User-Agent = %q", gotUA)
	}
	for _, want := range []string{"OAuth ", `oauth_consumer_key="ckey"`, `oauth_token="akey"`, "oauth_signature=", `oauth_signature_method="HMAC-SHA1"`} {
		if !strings.Contains(gotAuth, want) {
			t.Errorf("Authorization header %q missing %q", gotAuth, want)
		}
	}
}

func TestClient_PostErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantReason string
	}{
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"title":"Unauthorized","type":"about:blank","status":401,"detail":"Unauthorized"}`,
			wantStatus: 401,
			wantReason: "credentials rejected",
		},
		{
			name:       "duplicate",
			status:     http.StatusForbidden,
			body:       `{"detail":"You are not allowed to create a Tweet with duplicate content.","type":"about:blank","title":"Forbidden","status":403}`,
			wantStatus: 403,
			wantReason: "duplicate content rejected",
		},
		{
			name:       "rate limited",
			status:     http.StatusTooManyRequests,
			body:       `{"title":"Too Many Requests","detail":"Too Many Requests","type":"about:blank","status":429}`,
			wantStatus: 429,
			wantReason: "rate limited, try again later",
		},
		{
			name:       "errors array",
			status:     http.StatusBadRequest,
			body:       `{"errors":[{"message":"Tweet text is too long"}],"title":"Invalid Request"}`,
			wantStatus: 400,
			wantReason: "text too long",
		},
		{
			name:       "non-JSON server error",
			status:     http.StatusInternalServerError,
			body:       "upstream exploded",
			wantStatus: 500,
			wantReason: "",
		},
		{
			name:       "success without id",
			status:     http.StatusCreated,
			body:       `{"data":{}}`,
			wantStatus: 201,
			wantReason: "response carried no post id",
		},
		{
			name:       "success with garbage",
			status:     http.StatusCreated,
			body:       `not json`,
			wantStatus: 201,
			wantReason: "decoding response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(testCreds, WithEndpoint(server.URL)).Post(context.Background(), "l. 2: text")
			if !errors.Is(err, bberrors.ErrPost) {
				t.Fatalf("error = %v, want ErrPost", err)
			}

			var postErr *bberrors.PostError
			if !errors.As(err, &postErr) {
				t.Fatalf("error %T is not a *PostError", err)
			}
			if postErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", postErr.StatusCode, tt.wantStatus)
			}
			if postErr.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", postErr.Reason, tt.wantReason)
			}
		})
	}
}

func TestClient_PostTooLong(t *testing.T) {
	called := false
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		called = true
		return nil, errors.New("should not be called")
	})

	text := strings.Repeat("é", MaxLength+1)
	_, err := NewClient(testCreds, WithBaseTransport(rt)).Post(context.Background(), text)
	if !errors.Is(err, bberrors.ErrPost) {
		t.Fatalf("error = %v, want ErrPost", err)
	}
	if !strings.Contains(err.Error(), "281 characters") {
		t.Errorf("error %q should state the length", err)
	}
	if called {
		t.Error("over-long text should be rejected before any request")
	}

	// Exactly at the limit is allowed through to the transport.
	_, _ = NewClient(testCreds, WithBaseTransport(rt)).Post(context.Background(), strings.Repeat("é", MaxLength))
	if !called {
		t.Error("text at the limit should be sent")
	}
}

func TestClient_PostNetworkError(t *testing.T) {
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	_, err := NewClient(testCreds, WithEndpoint("http://api.test"), WithBaseTransport(rt)).
		Post(context.Background(), "l. 2: text")

	var postErr *bberrors.PostError
	if !errors.As(err, &postErr) {
		t.Fatalf("error = %v, want *PostError", err)
	}
	if postErr.Reason != "API unreachable" {
		t.Errorf("Reason = %q, want %q", postErr.Reason, "API unreachable")
	}
	if postErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", postErr.StatusCode)
	}
}

func TestClient_PostTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := NewClient(testCreds, WithEndpoint(server.URL), WithTimeout(50*time.Millisecond)).
		Post(context.Background(), "l. 2: text")
	if !errors.Is(err, bberrors.ErrPost) {
		t.Fatalf("error = %v, want ErrPost", err)
	}
}
