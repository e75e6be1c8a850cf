package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	gogithub "github.com/google/go-github/v79/github"
	"github.com/microcosm-cc/bluemonday"

	ghErrors "github.com/krsjen/github-project-mcp/pkg/errors"
	"github.com/krsjen/github-project-mcp/pkg/types"
)

// IssuesRepository manages repository issues over the REST API.
type IssuesRepository struct {
	client *Client
}

// inProgressLabel approximates the in_progress status, which GitHub's
// issue model does not have. An open issue carrying this label reads
// back as in_progress.
const inProgressLabel = "in-progress"

// bodyPolicy strips script and other unsafe HTML from user-authored
// bodies before they leave the adapter.
var bodyPolicy = bluemonday.UGCPolicy()

func sanitizeBody(body string) string {
	if body == "" {
		return ""
	}
	return bodyPolicy.Sanitize(body)
}

func convertIssue(issue *gogithub.Issue) *types.Issue {
	labels := make([]string, 0, len(issue.Labels))
	inProgress := false
	for _, l := range issue.Labels {
		name := l.GetName()
		labels = append(labels, name)
		if name == inProgressLabel {
			inProgress = true
		}
	}
	assignees := make([]string, 0, len(issue.Assignees))
	for _, a := range issue.Assignees {
		assignees = append(assignees, a.GetLogin())
	}

	status := types.StatusActive
	switch {
	case issue.GetState() == "closed":
		status = types.StatusClosed
	case inProgress:
		status = types.StatusInProgress
	}

	out := &types.Issue{
		ID:          strconv.Itoa(issue.GetNumber()),
		Number:      issue.GetNumber(),
		Title:       issue.GetTitle(),
		Description: sanitizeBody(issue.GetBody()),
		Status:      status,
		Assignees:   assignees,
		Labels:      labels,
		URL:         issue.GetHTMLURL(),
	}
	if m := issue.GetMilestone(); m != nil {
		out.MilestoneID = strconv.Itoa(m.GetNumber())
	}
	if t := issue.GetCreatedAt(); !t.IsZero() {
		out.CreatedAt = t.Format("2006-01-02T15:04:05Z07:00")
	}
	if t := issue.GetUpdatedAt(); !t.IsZero() {
		out.UpdatedAt = t.Format("2006-01-02T15:04:05Z07:00")
	}
	return out
}

func (r *IssuesRepository) buildCreateRequest(data types.CreateIssue) (*gogithub.IssueRequest, error) {
	req := &gogithub.IssueRequest{
		Title: gogithub.Ptr(data.Title),
	}
	if data.Description != "" {
		req.Body = gogithub.Ptr(data.Description)
	}
	if len(data.Assignees) > 0 {
		req.Assignees = &data.Assignees
	}
	if len(data.Labels) > 0 {
		req.Labels = &data.Labels
	}
	if data.MilestoneID != "" {
		num, err := strconv.Atoi(data.MilestoneID)
		if err != nil {
			return nil, ghErrors.NewValidationError("create_issue", "milestone_id",
				fmt.Sprintf("%q is not a milestone number", data.MilestoneID))
		}
		req.Milestone = gogithub.Ptr(num)
	}
	return req, nil
}

// Create opens a new issue. If the SDK path fails it falls back to a raw
// REST POST once; the SDK's strictness about response shapes has caused
// spurious failures on otherwise-successful creates.
func (r *IssuesRepository) Create(ctx context.Context, data types.CreateIssue) (*types.Issue, error) {
	req, err := r.buildCreateRequest(data)
	if err != nil {
		return nil, err
	}

	var created *gogithub.Issue
	sdkErr := r.client.withRetry(ctx, "creating issue", func() error {
		issue, _, err := r.client.rest.Issues.Create(ctx, r.client.Owner(), r.client.Repo(), req)
		if err != nil {
			return err
		}
		created = issue
		return nil
	})
	if sdkErr != nil {
		r.client.logger.Warn("SDK issue create failed, retrying over raw REST", "error", sdkErr)
		created, err = r.createRaw(ctx, req)
		if err != nil {
			return nil, sdkErr
		}
	}
	return convertIssue(created), nil
}

// createRaw posts the issue payload directly and decodes the response
// without SDK mediation.
func (r *IssuesRepository) createRaw(ctx context.Context, req *gogithub.IssueRequest) (*gogithub.Issue, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%srepos/%s/%s/issues",
		r.client.cfg.APIBaseURL, r.client.Owner(), r.client.Repo())

	var issue gogithub.Issue
	err = r.client.withRetry(ctx, "creating issue (raw)", func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Accept", "application/vnd.github+json")
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := r.client.http.Do(httpReq)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusCreated {
			return &ghErrors.HTTPError{Status: resp.StatusCode, Header: resp.Header, Body: string(body)}
		}
		return json.Unmarshal(body, &issue)
	})
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// Get fetches one issue by number.
func (r *IssuesRepository) Get(ctx context.Context, number int) (*types.Issue, error) {
	var issue *gogithub.Issue
	err := r.client.withRetry(ctx, fmt.Sprintf("fetching issue #%d", number), func() error {
		got, _, err := r.client.rest.Issues.Get(ctx, r.client.Owner(), r.client.Repo(), number)
		if err != nil {
			return err
		}
		issue = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return convertIssue(issue), nil
}

// List returns issues in the given state ("open", "closed", "all").
// Pull requests share the REST issues endpoint and are filtered out.
func (r *IssuesRepository) List(ctx context.Context, state string) ([]types.Issue, error) {
	if state == "" {
		state = "all"
	}
	opts := &gogithub.IssueListByRepoOptions{
		State:       state,
		ListOptions: gogithub.ListOptions{PerPage: 100},
	}

	var issues []types.Issue
	for {
		var page []*gogithub.Issue
		var resp *gogithub.Response
		err := r.client.withRetry(ctx, "listing issues", func() error {
			var err error
			page, resp, err = r.client.rest.Issues.ListByRepo(ctx, r.client.Owner(), r.client.Repo(), opts)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, issue := range page {
			if issue.IsPullRequest() {
				continue
			}
			issues = append(issues, *convertIssue(issue))
		}
		if resp.NextPage == 0 {
			return issues, nil
		}
		opts.ListOptions.Page = resp.NextPage
	}
}

// Update patches an issue. Recognized keys: title, description, status,
// assignees, labels, milestone_id. Status transitions keep the
// in-progress marker label consistent with the requested state.
func (r *IssuesRepository) Update(ctx context.Context, number int, data map[string]any) (*types.Issue, error) {
	current, err := r.Get(ctx, number)
	if err != nil {
		return nil, err
	}

	req := &gogithub.IssueRequest{}
	if title, ok := data["title"]; ok {
		req.Title = gogithub.Ptr(fmt.Sprint(title))
	}
	if desc, ok := data["description"]; ok {
		req.Body = gogithub.Ptr(fmt.Sprint(desc))
	}
	if assignees, ok := data["assignees"]; ok {
		req.Assignees = gogithub.Ptr(toStringSlice(assignees))
	}

	labels := current.Labels
	labelsTouched := false
	if raw, ok := data["labels"]; ok {
		labels = toStringSlice(raw)
		labelsTouched = true
	}

	if rawStatus, ok := data["status"]; ok {
		status := types.ResourceStatus(fmt.Sprint(rawStatus))
		switch status {
		case types.StatusClosed:
			req.State = gogithub.Ptr("closed")
		case types.StatusActive:
			req.State = gogithub.Ptr("open")
			if removed := removeString(labels, inProgressLabel); len(removed) != len(labels) {
				labels = removed
				labelsTouched = true
			}
		case types.StatusInProgress:
			req.State = gogithub.Ptr("open")
			if !containsString(labels, inProgressLabel) {
				labels = append(labels, inProgressLabel)
				labelsTouched = true
			}
		default:
			return nil, ghErrors.NewValidationError("update_issue", "status",
				fmt.Sprintf("unknown status %q", status))
		}
	}
	if labelsTouched {
		req.Labels = gogithub.Ptr(labels)
	}

	if rawMilestone, ok := data["milestone_id"]; ok {
		num, err := strconv.Atoi(fmt.Sprint(rawMilestone))
		if err != nil {
			return nil, ghErrors.NewValidationError("update_issue", "milestone_id",
				fmt.Sprintf("%q is not a milestone number", rawMilestone))
		}
		req.Milestone = gogithub.Ptr(num)
	}

	var updated *gogithub.Issue
	err = r.client.withRetry(ctx, fmt.Sprintf("updating issue #%d", number), func() error {
		issue, _, err := r.client.rest.Issues.Edit(ctx, r.client.Owner(), r.client.Repo(), number, req)
		if err != nil {
			return err
		}
		updated = issue
		return nil
	})
	if err != nil {
		return nil, err
	}
	return convertIssue(updated), nil
}

// Delete closes an issue. GitHub's API cannot delete issues, so close is
// the strongest removal available.
func (r *IssuesRepository) Delete(ctx context.Context, number int) error {
	_, err := r.Update(ctx, number, map[string]any{"status": string(types.StatusClosed)})
	return err
}

// Search runs a repository-scoped issue search. Search results carry a
// reduced issue shape, so each hit is re-fetched for full fidelity.
func (r *IssuesRepository) Search(ctx context.Context, query string) ([]types.Issue, error) {
	scoped := fmt.Sprintf("repo:%s/%s %s", r.client.Owner(), r.client.Repo(), query)
	opts := &gogithub.SearchOptions{ListOptions: gogithub.ListOptions{PerPage: 100}}

	var result *gogithub.IssuesSearchResult
	err := r.client.withRetry(ctx, "searching issues", func() error {
		res, _, err := r.client.rest.Search.Issues(ctx, scoped, opts)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	issues := make([]types.Issue, 0, len(result.Issues))
	for _, hit := range result.Issues {
		if hit.IsPullRequest() {
			continue
		}
		full, err := r.Get(ctx, hit.GetNumber())
		if err != nil {
			r.client.logger.Warn("search hit could not be re-fetched",
				"number", hit.GetNumber(), "error", err)
			full = convertIssue(hit)
		}
		issues = append(issues, *full)
	}
	return issues, nil
}

// GetNodeID resolves an issue number to its GraphQL node id, needed to
// place the issue on a Projects-v2 board.
func (r *IssuesRepository) GetNodeID(ctx context.Context, number int) (string, error) {
	var issue *gogithub.Issue
	err := r.client.withRetry(ctx, fmt.Sprintf("resolving issue #%d node id", number), func() error {
		got, _, err := r.client.rest.Issues.Get(ctx, r.client.Owner(), r.client.Repo(), number)
		if err != nil {
			return err
		}
		issue = got
		return nil
	})
	if err != nil {
		return "", err
	}
	if issue.GetNodeID() == "" {
		return "", &ghErrors.ResourceNotFoundError{Message: fmt.Sprintf("issue #%d has no node id", number)}
	}
	return issue.GetNodeID(), nil
}

func convertComment(c *gogithub.IssueComment) types.IssueComment {
	out := types.IssueComment{
		ID:     strconv.FormatInt(c.GetID(), 10),
		Body:   sanitizeBody(c.GetBody()),
		Author: c.GetUser().GetLogin(),
		URL:    c.GetHTMLURL(),
	}
	if t := c.GetCreatedAt(); !t.IsZero() {
		out.CreatedAt = t.Format("2006-01-02T15:04:05Z07:00")
	}
	if t := c.GetUpdatedAt(); !t.IsZero() {
		out.UpdatedAt = t.Format("2006-01-02T15:04:05Z07:00")
	}
	return out
}

// AddComment appends a comment to an issue.
func (r *IssuesRepository) AddComment(ctx context.Context, number int, body string) (*types.IssueComment, error) {
	var created *gogithub.IssueComment
	err := r.client.withRetry(ctx, fmt.Sprintf("commenting on issue #%d", number), func() error {
		c, _, err := r.client.rest.Issues.CreateComment(ctx, r.client.Owner(), r.client.Repo(), number,
			&gogithub.IssueComment{Body: gogithub.Ptr(body)})
		if err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	comment := convertComment(created)
	return &comment, nil
}

// ListComments returns all comments on an issue, oldest first.
func (r *IssuesRepository) ListComments(ctx context.Context, number int) ([]types.IssueComment, error) {
	opts := &gogithub.IssueListCommentsOptions{
		ListOptions: gogithub.ListOptions{PerPage: 100},
	}
	var comments []types.IssueComment
	for {
		var page []*gogithub.IssueComment
		var resp *gogithub.Response
		err := r.client.withRetry(ctx, fmt.Sprintf("listing comments on issue #%d", number), func() error {
			var err error
			page, resp, err = r.client.rest.Issues.ListComments(ctx, r.client.Owner(), r.client.Repo(), number, opts)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, c := range page {
			comments = append(comments, convertComment(c))
		}
		if resp.NextPage == 0 {
			return comments, nil
		}
		opts.ListOptions.Page = resp.NextPage
	}
}

// UpdateComment replaces a comment's body.
func (r *IssuesRepository) UpdateComment(ctx context.Context, commentID string, body string) (*types.IssueComment, error) {
	id, err := strconv.ParseInt(commentID, 10, 64)
	if err != nil {
		return nil, ghErrors.NewValidationError("update_issue_comment", "comment_id",
			fmt.Sprintf("%q is not a comment id", commentID))
	}
	var updated *gogithub.IssueComment
	err = r.client.withRetry(ctx, "updating issue comment", func() error {
		c, _, err := r.client.rest.Issues.EditComment(ctx, r.client.Owner(), r.client.Repo(), id,
			&gogithub.IssueComment{Body: gogithub.Ptr(body)})
		if err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	comment := convertComment(updated)
	return &comment, nil
}

// DeleteComment removes a comment.
func (r *IssuesRepository) DeleteComment(ctx context.Context, commentID string) error {
	id, err := strconv.ParseInt(commentID, 10, 64)
	if err != nil {
		return ghErrors.NewValidationError("delete_issue_comment", "comment_id",
			fmt.Sprintf("%q is not a comment id", commentID))
	}
	return r.client.withRetry(ctx, "deleting issue comment", func() error {
		_, err := r.client.rest.Issues.DeleteComment(ctx, r.client.Owner(), r.client.Repo(), id)
		return err
	})
}

// CreateLabel creates a repository label. Color is hex without the
// leading hash.
func (r *IssuesRepository) CreateLabel(ctx context.Context, label types.Label) (*types.Label, error) {
	req := &gogithub.Label{
		Name:  gogithub.Ptr(label.Name),
		Color: gogithub.Ptr(strings.TrimPrefix(label.Color, "#")),
	}
	if label.Description != "" {
		req.Description = gogithub.Ptr(label.Description)
	}
	var created *gogithub.Label
	err := r.client.withRetry(ctx, "creating label", func() error {
		l, _, err := r.client.rest.Issues.CreateLabel(ctx, r.client.Owner(), r.client.Repo(), req)
		if err != nil {
			return err
		}
		created = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &types.Label{
		Name:        created.GetName(),
		Color:       created.GetColor(),
		Description: created.GetDescription(),
	}, nil
}

// ListLabels returns the repository's labels.
func (r *IssuesRepository) ListLabels(ctx context.Context) ([]types.Label, error) {
	opts := &gogithub.ListOptions{PerPage: 100}
	var labels []types.Label
	for {
		var page []*gogithub.Label
		var resp *gogithub.Response
		err := r.client.withRetry(ctx, "listing labels", func() error {
			var err error
			page, resp, err = r.client.rest.Issues.ListLabels(ctx, r.client.Owner(), r.client.Repo(), opts)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, l := range page {
			labels = append(labels, types.Label{
				Name:        l.GetName(),
				Color:       l.GetColor(),
				Description: l.GetDescription(),
			})
		}
		if resp.NextPage == 0 {
			return labels, nil
		}
		opts.Page = resp.NextPage
	}
}

func toStringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case nil:
		return nil
	default:
		return []string{fmt.Sprint(vv)}
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func removeString(list []string, drop string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != drop {
			out = append(out, s)
		}
	}
	return out
}
