package tools

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krsjen/github-project-mcp/pkg/github"
	"github.com/krsjen/github-project-mcp/pkg/service"
	"github.com/krsjen/github-project-mcp/pkg/toolsnaps"
	"github.com/krsjen/github-project-mcp/pkg/translations"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultRegistryCatalog(t *testing.T) {
	r := DefaultRegistry(translations.NullTranslationHelper, discardLogger())

	names := r.Names()
	for _, want := range []string{
		"create_project", "list_projects", "get_project", "update_project", "delete_project",
		"create_project_field", "set_field_value", "clear_field_value",
		"create_issue", "update_issue", "search_issues",
		"create_milestone", "get_milestone_metrics", "get_overdue_milestones",
		"create_sprint", "get_current_sprint", "add_issues_to_sprint", "get_sprint_metrics",
		"create_roadmap", "plan_sprint",
	} {
		assert.Contains(t, names, want)
	}

	for _, tool := range r.List() {
		assert.NotEmpty(t, tool.Def.Description, "tool %s has no description", tool.Def.Name)
		assert.NotNil(t, tool.Handler, "tool %s has no handler", tool.Def.Name)
	}
}

func TestRegisterDuplicateWarnsAndOverwrites(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := NewRegistry(logger)

	first := GetIssueTool(translations.NullTranslationHelper)
	r.Register(first)
	r.Register(first)

	assert.Contains(t, buf.String(), "tool registered twice")
	assert.Len(t, r.List(), 1)
}

func TestToolSchemas(t *testing.T) {
	r := DefaultRegistry(translations.NullTranslationHelper, discardLogger())
	for _, name := range []string{
		"create_project", "create_project_field", "create_issue", "update_issue",
		"create_milestone", "create_sprint", "create_roadmap", "plan_sprint",
	} {
		tool, ok := r.Get(name)
		require.True(t, ok, name)
		require.NoError(t, toolsnaps.Test(name, tool.Def))
	}
}

// execHarness serves both API surfaces from one test server so Execute
// can be driven end to end.
func execHarness(t *testing.T, handler http.HandlerFunc) (*Registry, *service.Service) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := github.NewClient(github.Config{
		Owner:      "octo",
		Repo:       "demo",
		Token:      "test-token",
		APIBaseURL: srv.URL + "/",
		GraphQLURL: srv.URL + "/graphql",
	}, discardLogger())
	require.NoError(t, err)

	svc := service.New(client, service.Options{Logger: discardLogger()})
	return DefaultRegistry(translations.NullTranslationHelper, discardLogger()), svc
}

func TestExecuteUnknownTool(t *testing.T) {
	r := DefaultRegistry(translations.NullTranslationHelper, discardLogger())
	env := r.Execute(t.Context(), nil, "no_such_tool", nil)

	assert.Equal(t, "error", env.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, CodeResourceNotFound, env.Error.Code)
	assert.Contains(t, env.Error.Message, "no_such_tool")
}

func TestExecuteValidationFailure(t *testing.T) {
	r := DefaultRegistry(translations.NullTranslationHelper, discardLogger())
	env := r.Execute(t.Context(), nil, "get_issue", map[string]any{})

	require.NotNil(t, env.Error)
	assert.Equal(t, CodeValidationError, env.Error.Code)
	assert.Contains(t, env.Error.Message, "issue_number")
}

func TestExecuteRejectsUnparseableArguments(t *testing.T) {
	r := DefaultRegistry(translations.NullTranslationHelper, discardLogger())
	env := r.Execute(t.Context(), nil, "get_issue", "not structured at all")

	require.NotNil(t, env.Error)
	assert.Equal(t, CodeInvalidRequest, env.Error.Code)
}

func TestExecuteGetIssueEndToEnd(t *testing.T) {
	r, svc := execHarness(t, func(w http.ResponseWriter, req *http.Request) {
		if !strings.HasSuffix(req.URL.Path, "/repos/octo/demo/issues/7") {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"number": 7,
			"title": "Fix pagination",
			"state": "open",
			"created_at": "2026-01-05T10:00:00Z",
			"updated_at": "2026-01-06T10:00:00Z",
			"html_url": "https://github.com/octo/demo/issues/7"
		}`))
	})

	// Arguments arrive as a Python literal string to exercise the whole
	// normalization path.
	env := r.Execute(t.Context(), svc, "get_issue", `{'issue_number': 7}`)

	require.Nil(t, env.Error)
	assert.Equal(t, "success", env.Status)
	require.NotNil(t, env.Output)

	var issue map[string]any
	require.NoError(t, json.Unmarshal([]byte(env.Output.Content[0].Text), &issue))
	assert.Equal(t, float64(7), issue["number"])
	assert.Equal(t, "Fix pagination", issue["title"])
}

func TestExecuteCreateIssueEndToEnd(t *testing.T) {
	r, svc := execHarness(t, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost || !strings.HasSuffix(req.URL.Path, "/repos/octo/demo/issues") {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"number": 42,
			"title": "Fix bug",
			"body": "desc",
			"state": "open",
			"labels": [{"name": "bug"}],
			"created_at": "2026-01-05T10:00:00Z",
			"updated_at": "2026-01-05T10:00:00Z",
			"html_url": "https://github.com/octo/demo/issues/42"
		}`))
	})

	env := r.Execute(t.Context(), svc, "create_issue", map[string]any{
		"title":       "Fix bug",
		"description": "desc",
		"labels":      []any{"bug"},
	})

	require.Nil(t, env.Error)
	var issue map[string]any
	require.NoError(t, json.Unmarshal([]byte(env.Output.Content[0].Text), &issue))
	assert.Equal(t, float64(42), issue["number"])
	assert.Equal(t, "active", issue["status"])
	assert.Equal(t, []any{"bug"}, issue["labels"])
}

func TestExecuteMapsHandlerError(t *testing.T) {
	r, svc := execHarness(t, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Not Found"}`))
	})

	env := r.Execute(t.Context(), svc, "get_issue", map[string]any{"issue_number": 99})

	require.NotNil(t, env.Error)
	assert.Equal(t, CodeResourceNotFound, env.Error.Code)
}
