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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/goccy/go-json"
	"github.com/sirseerhq/bookbyline/internal/apierror"
	bberrors "github.com/sirseerhq/bookbyline/internal/errors"
	"github.com/sirseerhq/bookbyline/internal/store"
)

const (
	// DefaultEndpoint is the API base URL.
	DefaultEndpoint = "https://api.twitter.com"

	// DefaultTimeout bounds a single post request.
	DefaultTimeout = 30 * time.Second

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 1 << 20
)

// Client posts through the v2 API.
type Client struct {
	endpoint  string
	http      *http.Client
	inspector apierror.Inspector
}

type clientOptions struct {
	endpoint string
	timeout  time.Duration
	base     http.RoundTripper
}

// Option configures a Client.
type Option func(*clientOptions)

// WithEndpoint sets the API base URL, e.g. for a test server.
func WithEndpoint(endpoint string) Option {
	return func(o *clientOptions) {
		if endpoint != "" {
			o.endpoint = endpoint
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithBaseTransport sets the transport under the signing layer.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.base = rt
	}
}

// NewClient creates a client that signs requests with creds.
func NewClient(creds store.Credentials, opts ...Option) *Client {
	o := clientOptions{
		endpoint: DefaultEndpoint,
		timeout:  DefaultTimeout,
		base:     http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(&o)
	}

	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessKey, creds.AccessSecret)

	// oauth1 takes its base transport from the client stored in the context.
	base := &http.Client{Transport: &userAgentTransport{base: o.base}}
	httpClient := config.Client(context.WithValue(context.Background(), oauth1.HTTPClient, base), token)
	httpClient.Timeout = o.timeout

	return &Client{
		endpoint:  strings.TrimRight(o.endpoint, "/"),
		http:      httpClient,
		inspector: apierror.NewErrorChainInspector(apierror.NewInspector()),
	}
}

type createRequest struct {
	Text string `json:"text"`
}

type createResponse struct {
	Data *Post `json:"data"`
}

type errorResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Post creates a post with text.
func (c *Client) Post(ctx context.Context, text string) (*Post, error) {
	if n := Length(text); n > MaxLength {
		return nil, &bberrors.PostError{
			Reason: fmt.Sprintf("text is %d characters, limit is %d", n, MaxLength),
		}
	}

	body, err := json.Marshal(createRequest{Text: text})
	if err != nil {
		return nil, &bberrors.PostError{Reason: "encoding request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return nil, &bberrors.PostError{Reason: "building request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &bberrors.PostError{Reason: apierror.Reason(c.inspector, err), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &bberrors.PostError{
			Reason:     "reading response",
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		statusErr := &apierror.StatusError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
		return nil, &bberrors.PostError{
			Reason:     apierror.Reason(c.inspector, statusErr),
			StatusCode: resp.StatusCode,
			Err:        statusErr,
		}
	}

	var created createResponse
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, &bberrors.PostError{
			Reason:     "decoding response",
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	if created.Data == nil || created.Data.ID == "" {
		return nil, &bberrors.PostError{
			Reason:     "response carried no post id",
			StatusCode: resp.StatusCode,
		}
	}
	return created.Data, nil
}

// errorMessage extracts the most specific message from an error body.
func errorMessage(data []byte) string {
	var body errorResponse
	if err := json.Unmarshal(data, &body); err != nil {
		msg := strings.TrimSpace(string(data))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return msg
	}
	switch {
	case body.Detail != "":
		return body.Detail
	case len(body.Errors) > 0 && body.Errors[0].Message != "":
		return body.Errors[0].Message
	default:
		return body.Title
	}
}
