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

package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Inspector provides methods to classify API errors.
type Inspector interface {
	// IsAuthError returns true if the credentials were rejected.
	IsAuthError(err error) bool

	// IsRateLimitError returns true if the request was throttled.
	IsRateLimitError(err error) bool

	// IsDuplicateError returns true if the same text was already posted.
	IsDuplicateError(err error) bool

	// IsTooLongError returns true if the text exceeded the length limit.
	IsTooLongError(err error) bool

	// IsNetworkError returns true if the API could not be reached.
	IsNetworkError(err error) bool
}

// StatusError is a non-2xx response from the API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsAuthError reports whether the status is 401 or 403 and the message is
// not a duplicate-content rejection, which the API also sends as 403.
func (e *StatusError) IsAuthError() bool {
	return (e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden) &&
		!e.IsDuplicateError()
}

// IsRateLimitError reports whether the status is 429.
func (e *StatusError) IsRateLimitError() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsDuplicateError reports whether the message is a duplicate-content rejection.
func (e *StatusError) IsDuplicateError() bool {
	return isDuplicate(strings.ToLower(e.Message))
}

// IsTooLongError reports whether the message is a length rejection.
func (e *StatusError) IsTooLongError() bool {
	return isTooLong(strings.ToLower(e.Message))
}

// TwitterErrorInspector implements Inspector by matching error text.
type TwitterErrorInspector struct{}

// NewInspector creates a new TwitterErrorInspector.
func NewInspector() Inspector {
	return &TwitterErrorInspector{}
}

// IsAuthError checks if the error is an authentication or authorization error.
func (i *TwitterErrorInspector) IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	if isDuplicate(errStr) {
		return false
	}
	return strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "forbidden") ||
		strings.Contains(errStr, "could not authenticate") ||
		strings.Contains(errStr, "invalid or expired token")
}

// IsRateLimitError checks if the error is a rate limit error.
func (i *TwitterErrorInspector) IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "too many requests")
}

// IsDuplicateError checks if the error is a duplicate-content rejection.
func (i *TwitterErrorInspector) IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	return isDuplicate(strings.ToLower(err.Error()))
}

// IsTooLongError checks if the error is a length rejection.
func (i *TwitterErrorInspector) IsTooLongError(err error) bool {
	if err == nil {
		return false
	}
	return isTooLong(strings.ToLower(err.Error()))
}

// IsNetworkError checks if the error is a network connectivity error.
func (i *TwitterErrorInspector) IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "dial tcp") ||
		strings.Contains(errStr, "tls handshake") ||
		strings.Contains(errStr, "network is unreachable")
}

func isDuplicate(s string) bool {
	return strings.Contains(s, "duplicate")
}

func isTooLong(s string) bool {
	return strings.Contains(s, "too long") ||
		(strings.Contains(s, "exceeds") && strings.Contains(s, "character"))
}

// ErrorChainInspector wraps a base inspector and adds support for checking errors
// in the error chain using errors.As.
type ErrorChainInspector struct {
	base Inspector
}

// NewErrorChainInspector creates an inspector that checks the error chain
// first and falls back to string matching.
func NewErrorChainInspector(base Inspector) Inspector {
	return &ErrorChainInspector{base: base}
}

// IsAuthError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsAuthError(err error) bool {
	var authErr interface{ IsAuthError() bool }
	if errors.As(err, &authErr) {
		return authErr.IsAuthError()
	}
	return e.base.IsAuthError(err)
}

// IsRateLimitError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsRateLimitError(err error) bool {
	var rateLimitErr interface{ IsRateLimitError() bool }
	if errors.As(err, &rateLimitErr) {
		return rateLimitErr.IsRateLimitError()
	}
	return e.base.IsRateLimitError(err)
}

// IsDuplicateError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsDuplicateError(err error) bool {
	var dupErr interface{ IsDuplicateError() bool }
	if errors.As(err, &dupErr) {
		return dupErr.IsDuplicateError()
	}
	return e.base.IsDuplicateError(err)
}

// IsTooLongError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsTooLongError(err error) bool {
	var tooLongErr interface{ IsTooLongError() bool }
	if errors.As(err, &tooLongErr) {
		return tooLongErr.IsTooLongError()
	}
	return e.base.IsTooLongError(err)
}

// IsNetworkError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsNetworkError(err error) bool {
	var networkErr interface{ IsNetworkError() bool }
	if errors.As(err, &networkErr) && networkErr.IsNetworkError() {
		return true
	}
	var status *StatusError
	if errors.As(err, &status) {
		return false
	}
	return e.base.IsNetworkError(err)
}

// Reason returns a short operator-facing explanation of err, or "" when no
// class applies.
func Reason(in Inspector, err error) string {
	switch {
	case err == nil:
		return ""
	case in.IsDuplicateError(err):
		return "duplicate content rejected"
	case in.IsTooLongError(err):
		return "text too long"
	case in.IsRateLimitError(err):
		return "rate limited, try again later"
	case in.IsAuthError(err):
		return "credentials rejected"
	case in.IsNetworkError(err):
		return "API unreachable"
	default:
		return ""
	}
}
