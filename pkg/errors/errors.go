// Package errors defines the error taxonomy for GitHub API failures and
// the classification policy that decides which failures are retryable.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ValidationError reports invalid tool arguments. It is never retried and
// is surfaced verbatim to the caller with per-field detail.
type ValidationError struct {
	Tool   string
	Fields []FieldError
}

// FieldError is one offending field inside a ValidationError.
type FieldError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("invalid parameters for tool %s", e.Tool)
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Path != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s", f.Path, f.Message))
		} else {
			msgs = append(msgs, f.Message)
		}
	}
	return fmt.Sprintf("invalid parameters for tool %s: %s", e.Tool, strings.Join(msgs, "; "))
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(tool, path, message string) *ValidationError {
	return &ValidationError{Tool: tool, Fields: []FieldError{{Path: path, Message: message}}}
}

// ResourceNotFoundError maps a 404 from either transport.
type ResourceNotFoundError struct {
	Message string
}

func (e *ResourceNotFoundError) Error() string { return e.Message }

// UnauthorizedError maps a 401, or a 403 that carries no rate-limit signal.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// RateLimitError maps a 429, or a 403 with x-ratelimit-remaining == 0.
// Reset is zero when GitHub did not send a reset time.
type RateLimitError struct {
	Message string
	Reset   time.Time
}

func (e *RateLimitError) Error() string { return e.Message }

// GitHubAPIError is any other HTTP-status failure from GitHub. Body holds
// the raw response body when one was available.
type GitHubAPIError struct {
	Message string
	Status  int
	Body    string
}

func (e *GitHubAPIError) Error() string { return e.Message }

// ConfigurationError reports missing owner/repo/token at startup. Fatal.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

/// HTTPError is the transport-level failure shape the classifier consumes:
// an HTTP status plus the response headers and body that came with it.
// Both the GraphQL transport and the raw REST path produce it.
type HTTPError struct {
	Status int
	Header http.Header
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("github: unexpected status %d", e.Status)
}

// statusOf extracts an HTTP status from err, looking through wrapping for
// an HTTPError or a go-github *github.ErrorResponse-like carrier.
func statusOf(err error) (int, http.Header, string, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status, he.Header, he.Body, true
	}
	var sc interface{ StatusCode() int } // satisfied by wrappers that only know the code
	if errors.As(err, &sc) {
		return sc.StatusCode(), nil, "", true
	}
	var gh interface{ GetResponse() *http.Response } // go-github error responses
	if errors.As(err, &gh) {
		if resp := gh.GetResponse(); resp != nil {
			return resp.StatusCode, resp.Header, "", true
		}
	}
	return 0, nil, "", false
}

// Classify translates an arbitrary transport failure into the domain
// taxonomy. Errors already classified pass through unchanged; context
// tags the message so callers can tell which operation failed.
func Classify(err error, context string) error {
	if err == nil {
		return nil
	}
	if alreadyClassified(err) {
		return err
	}

	ctx := ""
	if context != "" {
		ctx = " (" + context + ")"
	}

	status, header, body, ok := statusOf(err)
	if !ok {
		return fmt.Errorf("github API error%s: %w", ctx, err)
	}

	switch {
	case status == http.StatusUnauthorized:
		return &UnauthorizedError{Message: "unauthorized access to GitHub API" + ctx}
	case status == http.StatusForbidden:
		if remaining := header.Get("x-ratelimit-remaining"); remaining == "0" {
			return &RateLimitError{
				Message: "GitHub API rate limit exceeded" + ctx,
				Reset:   parseResetHeader(header),
			}
		}
		return &UnauthorizedError{Message: "forbidden access to GitHub API" + ctx}
	case status == http.StatusNotFound:
		return &ResourceNotFoundError{Message: "resource not found on GitHub" + ctx}
	case status == http.StatusTooManyRequests:
		return &RateLimitError{
			Message: "GitHub API rate limit exceeded" + ctx,
			Reset:   parseResetHeader(header),
		}
	default:
		return &GitHubAPIError{
			Message: fmt.Sprintf("GitHub API error (status %d): %v%s", status, err, ctx),
			Status:  status,
			Body:    body,
		}
	}
}

func alreadyClassified(err error) bool {
	var (
		ve *ValidationError
		nf *ResourceNotFoundError
		ue *UnauthorizedError
		rl *RateLimitError
		ge *GitHubAPIError
		ce *ConfigurationError
	)
	return errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &ue) ||
		errors.As(err, &rl) || errors.As(err, &ge) || errors.As(err, &ce)
}

// retryableStatuses per GitHub's guidance: rate limiting and transient
// server-side failures.
var retryableStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

var networkErrorHints = []string{"timeout", "connection", "network", "econnreset"}

// IsRetryable reports whether the retry executor should attempt err again.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if status, _, _, ok := statusOf(err); ok {
		return retryableStatuses[status]
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range networkErrorHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

const (
	minRetryDelay = time.Second
	maxRetryDelay = 60 * time.Second
)

// RetryDelay computes how long to wait before retrying a rate-limited
// call, from the x-ratelimit-reset and retry-after response headers.
// Clamped to [1s, 60s].
func RetryDelay(header http.Header, now time.Time) time.Duration {
	delay := minRetryDelay

	if reset := parseResetHeader(header); !reset.IsZero() && reset.After(now) {
		delay = reset.Sub(now)
	}
	if ra := header.Get("retry-after"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil {
			if d := time.Duration(secs) * time.Second; d > delay {
				delay = d
			}
		}
	}

	if delay > maxRetryDelay {
		return maxRetryDelay
	}
	if delay < minRetryDelay {
		return minRetryDelay
	}
	return delay
}

func parseResetHeader(header http.Header) time.Time {
	if header == nil {
		return time.Time{}
	}
	raw := header.Get("x-ratelimit-reset")
	if raw == "" {
		return time.Time{}
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(unix, 0)
}
