package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/krsjen/github-project-mcp/pkg/types"
)

// MilestoneMetrics is the progress snapshot for one milestone.
type MilestoneMetrics struct {
	Milestone         types.Milestone `json:"milestone"`
	TotalIssues       int             `json:"total_issues"`
	OpenIssues        int             `json:"open_issues"`
	ClosedIssues      int             `json:"closed_issues"`
	CompletionPercent float64         `json:"completion_percent"`
	DaysRemaining     *int            `json:"days_remaining,omitempty"`
	Overdue           bool            `json:"overdue"`
	Issues            []types.Issue   `json:"issues,omitempty"`
}

// SprintMetrics is the progress snapshot for one sprint.
type SprintMetrics struct {
	Sprint            types.Sprint  `json:"sprint"`
	TotalIssues       int           `json:"total_issues"`
	CompletedIssues   int           `json:"completed_issues"`
	InProgressIssues  int           `json:"in_progress_issues"`
	RemainingIssues   int           `json:"remaining_issues"`
	CompletionPercent float64       `json:"completion_percent"`
	DaysRemaining     *int          `json:"days_remaining,omitempty"`
	Issues            []types.Issue `json:"issues,omitempty"`
}

const dateLayout = "2006-01-02"

// daysUntil counts whole days from now to the end of the given date.
// Negative means the date has passed.
func daysUntil(now time.Time, date string) (int, bool) {
	end, err := time.Parse(dateLayout, date)
	if err != nil {
		// Due dates may carry a time component.
		end, err = time.Parse(time.RFC3339, date)
		if err != nil {
			return 0, false
		}
	}
	days := int(end.Sub(now).Hours() / 24)
	return days, true
}

// MilestoneMetrics computes completion and schedule state for a
// milestone. includeIssues attaches the issue list to the result.
func (s *Service) MilestoneMetrics(ctx context.Context, number int, includeIssues bool) (*MilestoneMetrics, error) {
	milestone, err := s.client.Milestones.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	issues, err := s.client.Milestones.GetIssues(ctx, number)
	if err != nil {
		return nil, err
	}

	metrics := &MilestoneMetrics{
		Milestone:   *milestone,
		TotalIssues: len(issues),
	}
	for _, issue := range issues {
		if issue.Status == types.StatusClosed {
			metrics.ClosedIssues++
		} else {
			metrics.OpenIssues++
		}
	}
	if metrics.TotalIssues > 0 {
		metrics.CompletionPercent = float64(metrics.ClosedIssues) / float64(metrics.TotalIssues) * 100
	}
	if milestone.DueDate != "" {
		if days, ok := daysUntil(s.now().UTC(), milestone.DueDate); ok {
			metrics.DaysRemaining = &days
			metrics.Overdue = days < 0 && milestone.Status != types.StatusClosed
		}
	}
	if includeIssues {
		metrics.Issues = issues
	}
	return metrics, nil
}

// OverdueMilestones returns open milestones whose due date has passed,
// most overdue first.
func (s *Service) OverdueMilestones(ctx context.Context, limit int) ([]MilestoneMetrics, error) {
	milestones, err := s.client.Milestones.List(ctx, "open")
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var overdue []MilestoneMetrics
	for _, m := range milestones {
		if m.DueDate == "" {
			continue
		}
		days, ok := daysUntil(now, m.DueDate)
		if !ok || days >= 0 {
			continue
		}
		d := days
		overdue = append(overdue, MilestoneMetrics{
			Milestone:     m,
			DaysRemaining: &d,
			Overdue:       true,
		})
	}
	sort.Slice(overdue, func(i, j int) bool {
		return *overdue[i].DaysRemaining < *overdue[j].DaysRemaining
	})
	if limit > 0 && len(overdue) > limit {
		overdue = overdue[:limit]
	}
	return overdue, nil
}

// UpcomingMilestones returns open milestones due within daysAhead days,
// soonest first.
func (s *Service) UpcomingMilestones(ctx context.Context, daysAhead, limit int) ([]MilestoneMetrics, error) {
	if daysAhead <= 0 {
		daysAhead = 30
	}
	milestones, err := s.client.Milestones.List(ctx, "open")
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var upcoming []MilestoneMetrics
	for _, m := range milestones {
		if m.DueDate == "" {
			continue
		}
		days, ok := daysUntil(now, m.DueDate)
		if !ok || days < 0 || days > daysAhead {
			continue
		}
		d := days
		upcoming = append(upcoming, MilestoneMetrics{
			Milestone:     m,
			DaysRemaining: &d,
		})
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return *upcoming[i].DaysRemaining < *upcoming[j].DaysRemaining
	})
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming, nil
}

// SprintMetrics computes completion state for a sprint from its assigned
// issues.
func (s *Service) SprintMetrics(ctx context.Context, projectID, sprintID string, includeIssues bool) (*SprintMetrics, error) {
	sprint, err := s.client.Sprints.FindByID(ctx, projectID, sprintID)
	if err != nil {
		return nil, err
	}
	issues, err := s.client.Sprints.GetIssues(ctx, projectID, sprintID)
	if err != nil {
		return nil, err
	}

	metrics := &SprintMetrics{
		Sprint:      *sprint,
		TotalIssues: len(issues),
	}
	for _, issue := range issues {
		switch issue.Status {
		case types.StatusClosed:
			metrics.CompletedIssues++
		case types.StatusInProgress:
			metrics.InProgressIssues++
		default:
			metrics.RemainingIssues++
		}
	}
	if metrics.TotalIssues > 0 {
		metrics.CompletionPercent = float64(metrics.CompletedIssues) / float64(metrics.TotalIssues) * 100
	}
	if sprint.EndDate != "" && sprint.Status != types.StatusClosed {
		if days, ok := daysUntil(s.now().UTC(), sprint.EndDate); ok {
			metrics.DaysRemaining = &days
		}
	}
	if includeIssues {
		metrics.Issues = issues
	}
	return metrics, nil
}

// MarkdownMilestoneMetrics renders a metrics snapshot as a small
// markdown report for chat-facing output.
func MarkdownMilestoneMetrics(m *MilestoneMetrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Milestone: %s\n\n", m.Milestone.Title)
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Total issues | %d |\n", m.TotalIssues)
	fmt.Fprintf(&b, "| Closed | %d |\n", m.ClosedIssues)
	fmt.Fprintf(&b, "| Open | %d |\n", m.OpenIssues)
	fmt.Fprintf(&b, "| Completion | %.1f%% |\n", m.CompletionPercent)
	if m.DaysRemaining != nil {
		fmt.Fprintf(&b, "| Days remaining | %d |\n", *m.DaysRemaining)
	}
	if m.Overdue {
		fmt.Fprintf(&b, "| Overdue | yes |\n")
	}
	return b.String()
}

// MarkdownSprintMetrics renders a sprint metrics snapshot as markdown.
func MarkdownSprintMetrics(m *SprintMetrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Sprint: %s\n\n", m.Sprint.Title)
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Status | %s |\n", m.Sprint.Status)
	fmt.Fprintf(&b, "| Total issues | %d |\n", m.TotalIssues)
	fmt.Fprintf(&b, "| Completed | %d |\n", m.CompletedIssues)
	fmt.Fprintf(&b, "| In progress | %d |\n", m.InProgressIssues)
	fmt.Fprintf(&b, "| Remaining | %d |\n", m.RemainingIssues)
	fmt.Fprintf(&b, "| Completion | %.1f%% |\n", m.CompletionPercent)
	if m.DaysRemaining != nil {
		fmt.Fprintf(&b, "| Days remaining | %d |\n", *m.DaysRemaining)
	}
	return b.String()
}
