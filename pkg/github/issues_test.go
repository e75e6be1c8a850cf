package github

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gogithub "github.com/google/go-github/v79/github"
	"github.com/migueleliasweb/go-github-mock/src/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghErrors "github.com/krsjen/github-project-mcp/pkg/errors"
	"github.com/krsjen/github-project-mcp/pkg/types"
)

func restClient(t *testing.T, opts ...mock.MockBackendOption) *Client {
	t.Helper()
	mocked := mock.NewMockedHTTPClient(opts...)
	return newTestClient(gogithub.NewClient(mocked), nil)
}

func TestConvertIssue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		issue      *gogithub.Issue
		wantStatus types.ResourceStatus
	}{
		{
			name: "open",
			issue: &gogithub.Issue{
				Number: gogithub.Ptr(7),
				Title:  gogithub.Ptr("Add caching"),
				State:  gogithub.Ptr("open"),
			},
			wantStatus: types.StatusActive,
		},
		{
			name: "closed",
			issue: &gogithub.Issue{
				Number: gogithub.Ptr(8),
				State:  gogithub.Ptr("closed"),
			},
			wantStatus: types.StatusClosed,
		},
		{
			name: "open with marker label",
			issue: &gogithub.Issue{
				Number: gogithub.Ptr(9),
				State:  gogithub.Ptr("open"),
				Labels: []*gogithub.Label{{Name: gogithub.Ptr("in-progress")}},
			},
			wantStatus: types.StatusInProgress,
		},
		{
			name: "closed wins over marker label",
			issue: &gogithub.Issue{
				Number: gogithub.Ptr(10),
				State:  gogithub.Ptr("closed"),
				Labels: []*gogithub.Label{{Name: gogithub.Ptr("in-progress")}},
			},
			wantStatus: types.StatusClosed,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := convertIssue(tc.issue)
			assert.Equal(t, tc.wantStatus, got.Status)
			assert.Equal(t, tc.issue.GetNumber(), got.Number)
		})
	}

	t.Run("full conversion", func(t *testing.T) {
		issue := &gogithub.Issue{
			Number:    gogithub.Ptr(42),
			Title:     gogithub.Ptr("Ship it"),
			Body:      gogithub.Ptr("Details"),
			State:     gogithub.Ptr("open"),
			HTMLURL:   gogithub.Ptr("https://github.com/octo/demo/issues/42"),
			CreatedAt: &gogithub.Timestamp{Time: now},
			UpdatedAt: &gogithub.Timestamp{Time: now},
			Milestone: &gogithub.Milestone{Number: gogithub.Ptr(3)},
			Assignees: []*gogithub.User{{Login: gogithub.Ptr("octocat")}},
			Labels:    []*gogithub.Label{{Name: gogithub.Ptr("bug")}},
		}
		got := convertIssue(issue)
		assert.Equal(t, "42", got.ID)
		assert.Equal(t, "3", got.MilestoneID)
		assert.Equal(t, []string{"octocat"}, got.Assignees)
		assert.Equal(t, []string{"bug"}, got.Labels)
		assert.Equal(t, "2026-03-01T12:00:00Z", got.CreatedAt)
	})
}

func TestSanitizeBody(t *testing.T) {
	assert.Equal(t, "", sanitizeBody(""))
	assert.Equal(t, "hello <b>world</b>", sanitizeBody("hello <b>world</b>"))
	assert.NotContains(t, sanitizeBody(`hi <script>alert("x")</script>`), "<script>")
}

func TestIssuesGet(t *testing.T) {
	client := restClient(t, mock.WithRequestMatch(
		mock.GetReposIssuesByOwnerByRepoByIssueNumber,
		gogithub.Issue{
			Number: gogithub.Ptr(5),
			Title:  gogithub.Ptr("Fix pagination"),
			State:  gogithub.Ptr("open"),
		},
	))

	issue, err := client.Issues.Get(t.Context(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, issue.Number)
	assert.Equal(t, "Fix pagination", issue.Title)
	assert.Equal(t, types.StatusActive, issue.Status)
}

func TestIssuesGetNotFound(t *testing.T) {
	client := restClient(t, mock.WithRequestMatchHandler(
		mock.GetReposIssuesByOwnerByRepoByIssueNumber,
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			mock.WriteError(w, http.StatusNotFound, "Not Found")
		}),
	))

	_, err := client.Issues.Get(t.Context(), 999)
	require.Error(t, err)
	var nf *ghErrors.ResourceNotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestIssuesListFiltersPullRequests(t *testing.T) {
	client := restClient(t, mock.WithRequestMatch(
		mock.GetReposIssuesByOwnerByRepo,
		[]gogithub.Issue{
			{Number: gogithub.Ptr(1), State: gogithub.Ptr("open")},
			{
				Number:           gogithub.Ptr(2),
				State:            gogithub.Ptr("open"),
				PullRequestLinks: &gogithub.PullRequestLinks{URL: gogithub.Ptr("https://api.github.com/repos/octo/demo/pulls/2")},
			},
		},
	))

	issues, err := client.Issues.List(t.Context(), "open")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].Number)
}

func TestIssuesCreate(t *testing.T) {
	client := restClient(t, mock.WithRequestMatchHandler(
		mock.PostReposIssuesByOwnerByRepo,
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req gogithub.IssueRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "New issue", req.GetTitle())

			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(gogithub.Issue{
				Number: gogithub.Ptr(11),
				Title:  req.Title,
				State:  gogithub.Ptr("open"),
			})
		}),
	))

	issue, err := client.Issues.Create(t.Context(), types.CreateIssue{Title: "New issue"})
	require.NoError(t, err)
	assert.Equal(t, 11, issue.Number)
}

func TestIssuesCreateBadMilestoneID(t *testing.T) {
	client := restClient(t)
	_, err := client.Issues.Create(t.Context(), types.CreateIssue{Title: "x", MilestoneID: "not-a-number"})
	require.Error(t, err)
	var ve *ghErrors.ValidationError
	require.ErrorAs(t, err, &ve)
}

// TestIssuesCreateRawFallback drives the SDK path into a non-retryable
// failure and verifies the raw REST retry lands the create anyway. One
// server plays both roles: the SDK hits the /api/v3 prefix, the raw
// path hits the bare repos route.
func TestIssuesCreateRawFallback(t *testing.T) {
	var sdkCalls, rawCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v3/"):
			sdkCalls++
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"Validation Failed"}`))
		default:
			rawCalls++
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(gogithub.Issue{
				Number: gogithub.Ptr(21),
				Title:  gogithub.Ptr("Recovered"),
				State:  gogithub.Ptr("open"),
			})
		}
	}))
	defer srv.Close()

	rest, err := gogithub.NewClient(srv.Client()).WithEnterpriseURLs(srv.URL+"/", srv.URL+"/")
	require.NoError(t, err)
	client := newTestClient(rest, nil)
	client.cfg.APIBaseURL = srv.URL + "/"
	client.http = srv.Client()

	issue, err := client.Issues.Create(t.Context(), types.CreateIssue{Title: "Recovered"})
	require.NoError(t, err)
	assert.Equal(t, 21, issue.Number)
	assert.Equal(t, 1, sdkCalls)
	assert.Equal(t, 1, rawCalls)
}

func TestIssuesUpdateStatusTogglesMarkerLabel(t *testing.T) {
	var patched gogithub.IssueRequest
	client := restClient(t,
		mock.WithRequestMatch(
			mock.GetReposIssuesByOwnerByRepoByIssueNumber,
			gogithub.Issue{
				Number: gogithub.Ptr(6),
				State:  gogithub.Ptr("open"),
				Labels: []*gogithub.Label{{Name: gogithub.Ptr("bug")}},
			},
		),
		mock.WithRequestMatchHandler(
			mock.PatchReposIssuesByOwnerByRepoByIssueNumber,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
				_ = json.NewEncoder(w).Encode(gogithub.Issue{
					Number: gogithub.Ptr(6),
					State:  gogithub.Ptr("open"),
					Labels: []*gogithub.Label{
						{Name: gogithub.Ptr("bug")},
						{Name: gogithub.Ptr("in-progress")},
					},
				})
			}),
		),
	)

	issue, err := client.Issues.Update(t.Context(), 6, map[string]any{"status": "in_progress"})
	require.NoError(t, err)
	assert.Equal(t, types.StatusInProgress, issue.Status)
	assert.Equal(t, "open", patched.GetState())
	require.NotNil(t, patched.Labels)
	assert.Contains(t, *patched.Labels, "in-progress")
}

func TestIssuesUpdateUnknownStatus(t *testing.T) {
	client := restClient(t, mock.WithRequestMatch(
		mock.GetReposIssuesByOwnerByRepoByIssueNumber,
		gogithub.Issue{Number: gogithub.Ptr(6), State: gogithub.Ptr("open")},
	))
	_, err := client.Issues.Update(t.Context(), 6, map[string]any{"status": "paused"})
	require.Error(t, err)
	var ve *ghErrors.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestIssuesSearchScopesToRepo(t *testing.T) {
	var gotQuery string
	client := restClient(t,
		mock.WithRequestMatchHandler(
			mock.GetSearchIssues,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query().Get("q")
				_ = json.NewEncoder(w).Encode(gogithub.IssuesSearchResult{
					Total: gogithub.Ptr(1),
					Issues: []*gogithub.Issue{
						{Number: gogithub.Ptr(3), Title: gogithub.Ptr("hit"), State: gogithub.Ptr("open")},
					},
				})
			}),
		),
		mock.WithRequestMatch(
			mock.GetReposIssuesByOwnerByRepoByIssueNumber,
			gogithub.Issue{Number: gogithub.Ptr(3), Title: gogithub.Ptr("hit"), State: gogithub.Ptr("open")},
		),
	)

	issues, err := client.Issues.Search(t.Context(), "pagination bug")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "repo:octo/demo pagination bug", gotQuery)
}

func TestToStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, toStringSlice([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "1"}, toStringSlice([]any{"a", 1}))
	assert.Nil(t, toStringSlice(nil))
	assert.Equal(t, []string{"solo"}, toStringSlice("solo"))
}
