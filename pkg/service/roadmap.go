package service

import (
	"context"
	"fmt"

	"github.com/krsjen/github-project-mcp/pkg/types"
)

// RoadmapMilestone pairs a milestone with the issues to open under it.
type RoadmapMilestone struct {
	Milestone types.CreateMilestone
	Issues    []types.CreateIssue
}

// RoadmapRequest describes a whole roadmap: one project plus its
// milestones and their issues.
type RoadmapRequest struct {
	Project    types.CreateProject
	Milestones []RoadmapMilestone
}

// RoadmapMilestoneResult is one created milestone with its issues.
type RoadmapMilestoneResult struct {
	Milestone types.Milestone `json:"milestone"`
	Issues    []types.Issue   `json:"issues"`
}

// RoadmapResult is the created roadmap.
type RoadmapResult struct {
	Project    types.Project            `json:"project"`
	Milestones []RoadmapMilestoneResult `json:"milestones"`
}

// CreateRoadmap creates the project, then each milestone, then each
// milestone's issues wired to it. Creation is sequential; the first
// failure aborts and names where it stopped. Entities already created
// stay, so a retry after fixing the input duplicates them.
func (s *Service) CreateRoadmap(ctx context.Context, req RoadmapRequest) (*RoadmapResult, error) {
	project, err := s.CreateProject(ctx, req.Project)
	if err != nil {
		return nil, fmt.Errorf("creating roadmap project: %w", err)
	}
	result := &RoadmapResult{
		Project:    *project,
		Milestones: make([]RoadmapMilestoneResult, 0, len(req.Milestones)),
	}

	for i, rm := range req.Milestones {
		milestone, err := s.CreateMilestone(ctx, rm.Milestone)
		if err != nil {
			return nil, fmt.Errorf("creating roadmap milestone %d (%q): %w", i+1, rm.Milestone.Title, err)
		}
		entry := RoadmapMilestoneResult{Milestone: *milestone, Issues: []types.Issue{}}

		for j, ci := range rm.Issues {
			ci.MilestoneID = milestone.ID
			issue, err := s.CreateIssue(ctx, ci)
			if err != nil {
				return nil, fmt.Errorf("creating issue %d (%q) under milestone %q: %w",
					j+1, ci.Title, milestone.Title, err)
			}
			entry.Issues = append(entry.Issues, *issue)
		}
		result.Milestones = append(result.Milestones, entry)
	}
	return result, nil
}

// PlanSprintRequest describes a sprint to create plus the issues to pull
// into it.
type PlanSprintRequest struct {
	ProjectID    string
	Sprint       types.CreateSprint
	IssueNumbers []int
}

func issueRefs(numbers []int) []string {
	refs := make([]string, 0, len(numbers))
	for _, n := range numbers {
		refs = append(refs, fmt.Sprint(n))
	}
	return refs
}

// PlanSprint creates the sprint and assigns the requested issues in one
// flow.
func (s *Service) PlanSprint(ctx context.Context, req PlanSprintRequest) (*types.Sprint, error) {
	data := req.Sprint
	data.Issues = append(data.Issues, issueRefs(req.IssueNumbers)...)
	return s.CreateSprint(ctx, req.ProjectID, data)
}
