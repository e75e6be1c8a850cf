package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header http.Header
		want   any
	}{
		{"unauthorized", 401, nil, &UnauthorizedError{}},
		{"forbidden without rate limit signal", 403, nil, &UnauthorizedError{}},
		{"forbidden with exhausted rate limit", 403, http.Header{"X-Ratelimit-Remaining": {"0"}}, &RateLimitError{}},
		{"not found", 404, nil, &ResourceNotFoundError{}},
		{"too many requests", 429, nil, &RateLimitError{}},
		{"server error", 500, nil, &GitHubAPIError{}},
		{"unprocessable", 422, nil, &GitHubAPIError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(&HTTPError{Status: tt.status, Header: tt.header}, "test op")
			switch want := tt.want.(type) {
			case *UnauthorizedError:
				var got *UnauthorizedError
				assert.ErrorAs(t, err, &got)
			case *RateLimitError:
				var got *RateLimitError
				assert.ErrorAs(t, err, &got)
			case *ResourceNotFoundError:
				var got *ResourceNotFoundError
				assert.ErrorAs(t, err, &got)
			case *GitHubAPIError:
				var got *GitHubAPIError
				require.ErrorAs(t, err, &got)
				assert.Equal(t, tt.status, got.Status)
			default:
				t.Fatalf("unexpected want type %T", want)
			}
			assert.Contains(t, err.Error(), "test op")
		})
	}
}

func TestClassifyNoStatus(t *testing.T) {
	err := Classify(errors.New("boom"), "listing issues")
	var apiErr *GitHubAPIError
	assert.False(t, errors.As(err, &apiErr), "statusless errors stay generic")
	assert.Contains(t, err.Error(), "listing issues")
	assert.Contains(t, err.Error(), "boom")
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	orig := &ResourceNotFoundError{Message: "milestone 7 not found"}
	assert.Same(t, orig, Classify(orig, "fetching milestone").(*ResourceNotFoundError))

	wrapped := fmt.Errorf("outer: %w", orig)
	assert.Equal(t, wrapped, Classify(wrapped, "fetching milestone"))
}

func TestIsRetryable(t *testing.T) {
	for _, status := range []int{429, 500, 502, 503, 504} {
		assert.True(t, IsRetryable(&HTTPError{Status: status}), "status %d", status)
	}
	for _, status := range []int{400, 401, 403, 404, 422} {
		assert.False(t, IsRetryable(&HTTPError{Status: status}), "status %d", status)
	}

	assert.True(t, IsRetryable(errors.New("dial tcp: i/o timeout")))
	assert.True(t, IsRetryable(errors.New("read: connection reset by peer")))
	assert.False(t, IsRetryable(errors.New("no such field")))
	assert.False(t, IsRetryable(nil))
}

func TestRetryDelay(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("defaults to floor", func(t *testing.T) {
		assert.Equal(t, time.Second, RetryDelay(http.Header{}, now))
	})

	t.Run("uses future rate limit reset", func(t *testing.T) {
		h := http.Header{"X-Ratelimit-Reset": {fmt.Sprint(now.Add(30 * time.Second).Unix())}}
		assert.Equal(t, 30*time.Second, RetryDelay(h, now))
	})

	t.Run("past reset falls back to floor", func(t *testing.T) {
		h := http.Header{"X-Ratelimit-Reset": {fmt.Sprint(now.Add(-10 * time.Second).Unix())}}
		assert.Equal(t, time.Second, RetryDelay(h, now))
	})

	t.Run("retry-after wins when larger", func(t *testing.T) {
		h := http.Header{"Retry-After": {"5"}}
		assert.Equal(t, 5*time.Second, RetryDelay(h, now))
	})

	t.Run("clamped to ceiling", func(t *testing.T) {
		h := http.Header{"Retry-After": {"3600"}}
		assert.Equal(t, 60*time.Second, RetryDelay(h, now))
	})
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Tool: "create_issue", Fields: []FieldError{
		{Path: "title", Message: "is required"},
		{Path: "labels.0", Message: "expected string"},
	}}
	assert.Equal(t, "invalid parameters for tool create_issue: title: is required; labels.0: expected string", err.Error())
}
