package tools

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghErrors "github.com/krsjen/github-project-mcp/pkg/errors"
)

func TestNewSuccessWrapsResultAsJSON(t *testing.T) {
	env := NewSuccess(map[string]any{"id": "P_1"})

	assert.Equal(t, "success", env.Status)
	assert.NotEmpty(t, env.RequestID)
	require.NotNil(t, env.Output)
	require.Len(t, env.Output.Content, 1)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(env.Output.Content[0].Text), &decoded))
	assert.Equal(t, "P_1", decoded["id"])
}

func TestNewSuccessNilResult(t *testing.T) {
	env := NewSuccess(nil)
	require.NotNil(t, env.Output)
	assert.Equal(t, "null", env.Output.Content[0].Text)
}

func TestNewSuccessAppendsExtraContent(t *testing.T) {
	env := NewSuccess(map[string]any{"ok": true}, Content{Type: "text", Text: "| Metric | Value |"})
	require.Len(t, env.Output.Content, 2)
	assert.Equal(t, "| Metric | Value |", env.Output.Content[1].Text)
}

func TestFromErrorMapsDomainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
	}{
		{
			name: "validation",
			err:  ghErrors.NewValidationError("create_issue", "title", "is required"),
			code: CodeValidationError,
		},
		{
			name: "not found",
			err:  &ghErrors.ResourceNotFoundError{Message: "project not found"},
			code: CodeResourceNotFound,
		},
		{
			name: "unauthorized",
			err:  &ghErrors.UnauthorizedError{Message: "bad credentials"},
			code: CodeUnauthorized,
		},
		{
			name: "rate limited",
			err:  &ghErrors.RateLimitError{Message: "rate limit exceeded"},
			code: CodeRateLimited,
		},
		{
			name: "client-side API error",
			err:  &ghErrors.GitHubAPIError{Message: "unprocessable", Status: 422},
			code: CodeInvalidRequest,
		},
		{
			name: "server-side API error",
			err:  &ghErrors.GitHubAPIError{Message: "bad gateway", Status: 502},
			code: CodeInternalError,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			code: CodeInternalError,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := FromError(tc.err)
			assert.Equal(t, "error", env.Status)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.code, env.Error.Code)
			assert.Nil(t, env.Output)
		})
	}
}

func TestFromErrorValidationCarriesFieldDetails(t *testing.T) {
	err := &ghErrors.ValidationError{
		Tool: "create_sprint",
		Fields: []ghErrors.FieldError{
			{Path: "start_date", Message: "is required"},
			{Path: "title", Message: "is required"},
		},
	}
	env := FromError(err)
	require.NotNil(t, env.Error)
	details, ok := env.Error.Details.([]ghErrors.FieldError)
	require.True(t, ok)
	assert.Len(t, details, 2)
}
