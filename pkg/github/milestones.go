package github

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	gogithub "github.com/google/go-github/v79/github"

	ghErrors "github.com/krsjen/github-project-mcp/pkg/errors"
	"github.com/krsjen/github-project-mcp/pkg/types"
)

// MilestonesRepository manages repository milestones over the REST API.
type MilestonesRepository struct {
	client *Client
}

var yearOnlyPattern = regexp.MustCompile(`^\d{4}$`)

// dueDateLayouts are tried in order after the year-only special case.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// parseDueDate accepts the date shapes users actually type. A bare year
// means the end of that year.
func parseDueDate(raw string) (time.Time, error) {
	if yearOnlyPattern.MatchString(raw) {
		year, _ := strconv.Atoi(raw)
		return time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC), nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ghErrors.NewValidationError("milestone", "due_date",
		fmt.Sprintf("could not parse %q; use YYYY-MM-DD, an ISO-8601 timestamp, or a year", raw))
}

func convertMilestone(m *gogithub.Milestone) *types.Milestone {
	out := &types.Milestone{
		ID:          strconv.Itoa(m.GetNumber()),
		Number:      m.GetNumber(),
		Title:       m.GetTitle(),
		Description: m.GetDescription(),
		Status:      types.StatusFromClosed(m.GetState() == "closed"),
		URL:         m.GetHTMLURL(),
	}
	if due := m.GetDueOn(); !due.IsZero() {
		out.DueDate = due.Format("2006-01-02")
	}
	if t := m.GetCreatedAt(); !t.IsZero() {
		out.CreatedAt = t.Format("2006-01-02T15:04:05Z07:00")
	}
	if t := m.GetUpdatedAt(); !t.IsZero() {
		out.UpdatedAt = t.Format("2006-01-02T15:04:05Z07:00")
	}
	open := m.GetOpenIssues()
	closed := m.GetClosedIssues()
	if total := open + closed; total > 0 {
		out.Progress = &types.Progress{
			OpenIssues:   open,
			ClosedIssues: closed,
			Percent:      float64(closed) / float64(total) * 100,
		}
	}
	return out
}

// Create creates a milestone.
func (r *MilestonesRepository) Create(ctx context.Context, data types.CreateMilestone) (*types.Milestone, error) {
	req := &gogithub.Milestone{
		Title: gogithub.Ptr(data.Title),
	}
	if data.Description != "" {
		req.Description = gogithub.Ptr(data.Description)
	}
	if data.DueDate != "" {
		due, err := parseDueDate(data.DueDate)
		if err != nil {
			return nil, err
		}
		req.DueOn = &gogithub.Timestamp{Time: due}
	}
	if data.Status == types.StatusClosed {
		req.State = gogithub.Ptr("closed")
	}

	var created *gogithub.Milestone
	err := r.client.withRetry(ctx, "creating milestone", func() error {
		m, _, err := r.client.rest.Issues.CreateMilestone(ctx, r.client.Owner(), r.client.Repo(), req)
		if err != nil {
			return err
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return convertMilestone(created), nil
}

// Get fetches one milestone by number.
func (r *MilestonesRepository) Get(ctx context.Context, number int) (*types.Milestone, error) {
	var milestone *gogithub.Milestone
	err := r.client.withRetry(ctx, fmt.Sprintf("fetching milestone %d", number), func() error {
		m, _, err := r.client.rest.Issues.GetMilestone(ctx, r.client.Owner(), r.client.Repo(), number)
		if err != nil {
			return err
		}
		milestone = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return convertMilestone(milestone), nil
}

// List returns milestones in the given state ("open", "closed", "all").
func (r *MilestonesRepository) List(ctx context.Context, state string) ([]types.Milestone, error) {
	if state == "" {
		state = "all"
	}
	opts := &gogithub.MilestoneListOptions{
		State:       state,
		ListOptions: gogithub.ListOptions{PerPage: 100},
	}
	var milestones []types.Milestone
	for {
		var page []*gogithub.Milestone
		var resp *gogithub.Response
		err := r.client.withRetry(ctx, "listing milestones", func() error {
			var err error
			page, resp, err = r.client.rest.Issues.ListMilestones(ctx, r.client.Owner(), r.client.Repo(), opts)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, m := range page {
			milestones = append(milestones, *convertMilestone(m))
		}
		if resp.NextPage == 0 {
			return milestones, nil
		}
		opts.ListOptions.Page = resp.NextPage
	}
}

// Update patches a milestone. Recognized keys: title, description,
// due_date, status.
func (r *MilestonesRepository) Update(ctx context.Context, number int, data map[string]any) (*types.Milestone, error) {
	req := &gogithub.Milestone{}
	if title, ok := data["title"]; ok {
		req.Title = gogithub.Ptr(fmt.Sprint(title))
	}
	if desc, ok := data["description"]; ok {
		req.Description = gogithub.Ptr(fmt.Sprint(desc))
	}
	if rawDue, ok := data["due_date"]; ok {
		due, err := parseDueDate(fmt.Sprint(rawDue))
		if err != nil {
			return nil, err
		}
		req.DueOn = &gogithub.Timestamp{Time: due}
	}
	if rawStatus, ok := data["status"]; ok {
		switch types.ResourceStatus(fmt.Sprint(rawStatus)) {
		case types.StatusClosed:
			req.State = gogithub.Ptr("closed")
		case types.StatusActive, types.StatusInProgress:
			req.State = gogithub.Ptr("open")
		default:
			return nil, ghErrors.NewValidationError("update_milestone", "status",
				fmt.Sprintf("unknown status %q", rawStatus))
		}
	}

	var updated *gogithub.Milestone
	err := r.client.withRetry(ctx, fmt.Sprintf("updating milestone %d", number), func() error {
		m, _, err := r.client.rest.Issues.EditMilestone(ctx, r.client.Owner(), r.client.Repo(), number, req)
		if err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return convertMilestone(updated), nil
}

// Delete removes a milestone. Issues keep existing but lose the
// milestone association.
func (r *MilestonesRepository) Delete(ctx context.Context, number int) error {
	return r.client.withRetry(ctx, fmt.Sprintf("deleting milestone %d", number), func() error {
		_, err := r.client.rest.Issues.DeleteMilestone(ctx, r.client.Owner(), r.client.Repo(), number)
		return err
	})
}

// GetIssues lists the issues assigned to a milestone.
func (r *MilestonesRepository) GetIssues(ctx context.Context, number int) ([]types.Issue, error) {
	opts := &gogithub.IssueListByRepoOptions{
		Milestone:   strconv.Itoa(number),
		State:       "all",
		ListOptions: gogithub.ListOptions{PerPage: 100},
	}
	var issues []types.Issue
	for {
		var page []*gogithub.Issue
		var resp *gogithub.Response
		err := r.client.withRetry(ctx, fmt.Sprintf("listing issues for milestone %d", number), func() error {
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
