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

package credentials

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dghubble/oauth1"
	bberrors "github.com/sirseerhq/bookbyline/internal/errors"
	"github.com/sirseerhq/bookbyline/internal/store"
)

// newOAuthServer serves the three OAuth 1.0a endpoints. When failRequest is
// set the request-token endpoint rejects the consumer.
func newOAuthServer(t *testing.T, failRequest bool) (*httptest.Server, oauth1.Endpoint) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/request_token", func(w http.ResponseWriter, r *http.Request) {
		if failRequest {
			http.Error(w, "Could not authenticate you.", http.StatusUnauthorized)
			return
		}
		if !strings.Contains(r.Header.Get("Authorization"), `oauth_consumer_key="ckey"`) {
			http.Error(w, "wrong consumer", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		_, _ = w.Write([]byte("oauth_token=reqtok&oauth_token_secret=reqsec&oauth_callback_confirmed=true"))
	})
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Authorization"), `oauth_verifier="1234"`) {
			http.Error(w, "bad verifier", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		_, _ = w.Write([]byte("oauth_token=acctok&oauth_token_secret=accsec"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server, oauth1.Endpoint{
		RequestTokenURL: server.URL + "/oauth/request_token",
		AuthorizeURL:    server.URL + "/oauth/authorize",
		AccessTokenURL:  server.URL + "/oauth/access_token",
	}
}

func TestInteractiveProvision(t *testing.T) {
	_, endpoint := newOAuthServer(t, false)
	var out bytes.Buffer
	p := NewInteractive(strings.NewReader("\nckey\ncsecret\n1234\n"), &out, endpoint)

	creds, err := p.Provision(context.Background())
	if err != nil {
		t.Fatalf("Provision failed: %v\noutput:\n%s", err, out.String())
	}

	want := store.Credentials{
		ConsumerKey:    "ckey",
		ConsumerSecret: "csecret",
		AccessKey:      "acctok",
		AccessSecret:   "accsec",
	}
	if creds != want {
		t.Errorf("Provision() = %+v, want %+v", creds, want)
	}
	if !strings.Contains(out.String(), "/oauth/authorize?oauth_token=reqtok") {
		t.Errorf("output should contain the authorization URL, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Key: acctok") {
		t.Errorf("output should show the access token, got:\n%s", out.String())
	}
}

func TestInteractiveProvisionFailures(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		failRequest bool
		wantMsg     string
	}{
		{
			name:    "operator quits",
			input:   "q\n",
			wantMsg: "abandoned",
		},
		{
			name:    "input ends early",
			input:   "\nckey\n",
			wantMsg: "consumer secret",
		},
		{
			name:    "missing consumer key",
			input:   "\n\ncsecret\n",
			wantMsg: "consumer key and secret are required",
		},
		{
			name:        "request token rejected",
			input:       "\nckey\ncsecret\n",
			failRequest: true,
			wantMsg:     "request token",
		},
		{
			name:    "wrong PIN",
			input:   "\nckey\ncsecret\n9999\n",
			wantMsg: "access token",
		},
		{
			name:    "empty PIN",
			input:   "\nckey\ncsecret\n\n",
			wantMsg: "no PIN entered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, endpoint := newOAuthServer(t, tt.failRequest)
			p := NewInteractive(strings.NewReader(tt.input), &bytes.Buffer{}, endpoint)

			_, err := p.Provision(context.Background())
			if err == nil {
				t.Fatal("Provision should fail")
			}
			if !errors.Is(err, bberrors.ErrAuthSetup) {
				t.Errorf("error %v should wrap ErrAuthSetup", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestInteractiveCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewInteractive(strings.NewReader(""), &bytes.Buffer{}, oauth1.Endpoint{})
	if _, err := p.Provision(ctx); !errors.Is(err, bberrors.ErrAuthSetup) {
		t.Errorf("error = %v, want ErrAuthSetup", err)
	}
}
