// Package service is the project-management façade the tool layer calls.
// It composes the resource repositories, keeps the event log and cache
// up to date, and owns the cross-resource flows (roadmaps, sprint
// planning, metrics).
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/krsjen/github-project-mcp/pkg/cache"
	ghErrors "github.com/krsjen/github-project-mcp/pkg/errors"
	"github.com/krsjen/github-project-mcp/pkg/events"
	"github.com/krsjen/github-project-mcp/pkg/github"
	"github.com/krsjen/github-project-mcp/pkg/types"
)

// statusFieldName is the project field consulted for the best-effort
// board column update on issue status changes.
const statusFieldName = "Status"

// statusFieldOptions maps domain statuses onto the column names GitHub
// seeds new boards with.
var statusFieldOptions = map[types.ResourceStatus]string{
	types.StatusActive:     "Todo",
	types.StatusInProgress: "In Progress",
	types.StatusClosed:     "Done",
}

// Service is safe for concurrent use.
type Service struct {
	client *github.Client
	logger *slog.Logger
	cache  *cache.ResourceCache
	events *events.Store
	now    func() time.Time
}

// Options tune the service; zero values get working defaults.
type Options struct {
	Logger *slog.Logger
	Cache  *cache.ResourceCache
	Events *events.Store
}

// New builds a service over client.
func New(client *github.Client, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Cache == nil {
		opts.Cache = cache.New(0)
	}
	if opts.Events == nil {
		opts.Events = events.NewStore(0)
	}
	return &Service{
		client: client,
		logger: opts.Logger,
		cache:  opts.Cache,
		events: opts.Events,
		now:    time.Now,
	}
}

// Events exposes the event log for the optional subscription surface.
func (s *Service) Events() *events.Store { return s.events }

// --- Projects ---

func (s *Service) CreateProject(ctx context.Context, data types.CreateProject) (*types.Project, error) {
	project, err := s.client.Projects.Create(ctx, data)
	if err != nil {
		return nil, err
	}
	s.cache.Set(types.ResourceProject, project.ID, project)
	s.events.Append(events.TypeCreated, types.ResourceProject, project.ID, project)
	return project, nil
}

func (s *Service) GetProject(ctx context.Context, id string) (*types.Project, error) {
	if cached, ok := s.cache.Get(types.ResourceProject, id); ok {
		if project, ok := cached.(*types.Project); ok {
			return project, nil
		}
	}
	project, err := s.client.Projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, &ghErrors.ResourceNotFoundError{Message: fmt.Sprintf("project %s not found", id)}
	}
	s.cache.Set(types.ResourceProject, id, project)
	return project, nil
}

func (s *Service) ListProjects(ctx context.Context, owner string) ([]types.Project, error) {
	if owner == "" {
		return s.client.Projects.FindAll(ctx)
	}
	return s.client.Projects.FindByOwner(ctx, owner)
}

func (s *Service) UpdateProject(ctx context.Context, id string, data map[string]any) (*types.Project, error) {
	project, err := s.client.Projects.Update(ctx, id, data)
	if err != nil {
		return nil, err
	}
	s.cache.Set(types.ResourceProject, id, project)
	s.events.Append(events.TypeUpdated, types.ResourceProject, id, project)
	return project, nil
}

func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := s.client.Projects.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(types.ResourceProject, id)
	s.events.Append(events.TypeDeleted, types.ResourceProject, id, nil)
	return nil
}

// --- Fields, views, items ---

func (s *Service) CreateField(ctx context.Context, projectID string, data types.CreateField) (*types.CustomField, error) {
	field, err := s.client.Projects.CreateField(ctx, projectID, data)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(types.ResourceProject, projectID)
	s.events.Append(events.TypeCreated, types.ResourceField, field.ID, field)
	return field, nil
}

func (s *Service) ListFields(ctx context.Context, projectID string) ([]types.CustomField, error) {
	return s.client.Projects.ListFields(ctx, projectID)
}

func (s *Service) UpdateField(ctx context.Context, projectID, fieldID string, data map[string]any) (*types.CustomField, error) {
	field, err := s.client.Projects.UpdateField(ctx, projectID, fieldID, data)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(types.ResourceProject, projectID)
	s.events.Append(events.TypeUpdated, types.ResourceField, fieldID, field)
	return field, nil
}

func (s *Service) CreateView(ctx context.Context, projectID, name string, layout types.ViewLayout) (*types.ProjectView, error) {
	view, err := s.client.Projects.CreateView(ctx, projectID, name, layout)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(types.ResourceProject, projectID)
	s.events.Append(events.TypeCreated, types.ResourceView, view.ID, view)
	return view, nil
}

func (s *Service) ListViews(ctx context.Context, projectID string) ([]types.ProjectView, error) {
	return s.client.Projects.ListViews(ctx, projectID)
}

func (s *Service) UpdateView(ctx context.Context, projectID, viewID string, data map[string]any) (*types.ProjectView, error) {
	view, err := s.client.Projects.UpdateView(ctx, projectID, viewID, data)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(types.ResourceProject, projectID)
	s.events.Append(events.TypeUpdated, types.ResourceView, viewID, view)
	return view, nil
}

func (s *Service) DeleteView(ctx context.Context, projectID, viewID string) error {
	if err := s.client.Projects.DeleteView(ctx, projectID, viewID); err != nil {
		return err
	}
	s.cache.Invalidate(types.ResourceProject, projectID)
	s.events.Append(events.TypeDeleted, types.ResourceView, viewID, nil)
	return nil
}

func (s *Service) AddProjectItem(ctx context.Context, projectID, contentID string) (string, error) {
	return s.client.Projects.AddItem(ctx, projectID, contentID)
}

func (s *Service) RemoveProjectItem(ctx context.Context, projectID, itemID string) error {
	return s.client.Projects.RemoveItem(ctx, projectID, itemID)
}

func (s *Service) ListProjectItems(ctx context.Context, projectID string) ([]types.ProjectItem, error) {
	return s.client.Projects.ListItems(ctx, projectID)
}

func (s *Service) SetFieldValue(ctx context.Context, projectID, itemID, fieldID string, value any) error {
	return s.client.Projects.SetFieldValue(ctx, projectID, itemID, fieldID, value)
}

func (s *Service) GetFieldValue(ctx context.Context, projectID, itemID, fieldID string) (any, error) {
	return s.client.Projects.GetFieldValue(ctx, projectID, itemID, fieldID)
}

func (s *Service) ClearFieldValue(ctx context.Context, projectID, itemID, fieldID string) error {
	return s.client.Projects.ClearFieldValue(ctx, projectID, itemID, fieldID)
}

// --- Issues ---

func (s *Service) CreateIssue(ctx context.Context, data types.CreateIssue) (*types.Issue, error) {
	issue, err := s.client.Issues.Create(ctx, data)
	if err != nil {
		return nil, err
	}
	s.cache.Set(types.ResourceIssue, issue.ID, issue)
	s.events.Append(events.TypeCreated, types.ResourceIssue, issue.ID, issue)
	return issue, nil
}

func (s *Service) GetIssue(ctx context.Context, number int) (*types.Issue, error) {
	return s.client.Issues.Get(ctx, number)
}

func (s *Service) ListIssues(ctx context.Context, state string) ([]types.Issue, error) {
	return s.client.Issues.List(ctx, state)
}

// UpdateIssue patches the issue, then, when projectID is given and the
// status changed, mirrors the new status onto the project's Status
// column. The mirror write is best effort: its failure is logged and the
// updated issue is still returned.
func (s *Service) UpdateIssue(ctx context.Context, number int, data map[string]any, projectID string) (*types.Issue, error) {
	issue, err := s.client.Issues.Update(ctx, number, data)
	if err != nil {
		return nil, err
	}
	s.cache.Set(types.ResourceIssue, issue.ID, issue)
	s.events.Append(events.TypeUpdated, types.ResourceIssue, issue.ID, issue)

	if _, changed := data["status"]; changed && projectID != "" {
		if err := s.mirrorIssueStatus(ctx, projectID, number, issue.Status); err != nil {
			s.logger.Warn("board status column not updated",
				"project_id", projectID, "issue", number, "error", err)
		}
	}
	return issue, nil
}

func (s *Service) mirrorIssueStatus(ctx context.Context, projectID string, issueNumber int, status types.ResourceStatus) error {
	option, ok := statusFieldOptions[status]
	if !ok {
		return nil
	}
	field, err := s.client.Projects.GetFieldByName(ctx, projectID, statusFieldName)
	if err != nil {
		return err
	}
	if field == nil {
		return fmt.Errorf("project %s has no %s field", projectID, statusFieldName)
	}
	itemID, err := s.client.Projects.GetItemIDForIssue(ctx, projectID, issueNumber)
	if err != nil {
		return err
	}
	return s.client.Projects.SetFieldValue(ctx, projectID, itemID, field.ID, option)
}

func (s *Service) DeleteIssue(ctx context.Context, number int) error {
	if err := s.client.Issues.Delete(ctx, number); err != nil {
		return err
	}
	s.cache.Invalidate(types.ResourceIssue, fmt.Sprint(number))
	s.events.Append(events.TypeDeleted, types.ResourceIssue, fmt.Sprint(number), nil)
	return nil
}

func (s *Service) SearchIssues(ctx context.Context, query string) ([]types.Issue, error) {
	return s.client.Issues.Search(ctx, query)
}

func (s *Service) AddIssueComment(ctx context.Context, number int, body string) (*types.IssueComment, error) {
	comment, err := s.client.Issues.AddComment(ctx, number, body)
	if err != nil {
		return nil, err
	}
	s.events.Append(events.TypeCreated, types.ResourceComment, comment.ID, comment)
	return comment, nil
}

func (s *Service) ListIssueComments(ctx context.Context, number int) ([]types.IssueComment, error) {
	return s.client.Issues.ListComments(ctx, number)
}

func (s *Service) UpdateIssueComment(ctx context.Context, commentID, body string) (*types.IssueComment, error) {
	comment, err := s.client.Issues.UpdateComment(ctx, commentID, body)
	if err != nil {
		return nil, err
	}
	s.events.Append(events.TypeUpdated, types.ResourceComment, commentID, comment)
	return comment, nil
}

func (s *Service) DeleteIssueComment(ctx context.Context, commentID string) error {
	if err := s.client.Issues.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	s.events.Append(events.TypeDeleted, types.ResourceComment, commentID, nil)
	return nil
}

func (s *Service) CreateLabel(ctx context.Context, label types.Label) (*types.Label, error) {
	created, err := s.client.Issues.CreateLabel(ctx, label)
	if err != nil {
		return nil, err
	}
	s.events.Append(events.TypeCreated, types.ResourceLabel, created.Name, created)
	return created, nil
}

func (s *Service) ListLabels(ctx context.Context) ([]types.Label, error) {
	return s.client.Issues.ListLabels(ctx)
}

// --- Milestones ---

func (s *Service) CreateMilestone(ctx context.Context, data types.CreateMilestone) (*types.Milestone, error) {
	milestone, err := s.client.Milestones.Create(ctx, data)
	if err != nil {
		return nil, err
	}
	s.events.Append(events.TypeCreated, types.ResourceMilestone, milestone.ID, milestone)
	return milestone, nil
}

func (s *Service) GetMilestone(ctx context.Context, number int) (*types.Milestone, error) {
	return s.client.Milestones.Get(ctx, number)
}

func (s *Service) ListMilestones(ctx context.Context, state string) ([]types.Milestone, error) {
	return s.client.Milestones.List(ctx, state)
}

func (s *Service) UpdateMilestone(ctx context.Context, number int, data map[string]any) (*types.Milestone, error) {
	milestone, err := s.client.Milestones.Update(ctx, number, data)
	if err != nil {
		return nil, err
	}
	s.events.Append(events.TypeUpdated, types.ResourceMilestone, milestone.ID, milestone)
	return milestone, nil
}

func (s *Service) DeleteMilestone(ctx context.Context, number int) error {
	if err := s.client.Milestones.Delete(ctx, number); err != nil {
		return err
	}
	s.events.Append(events.TypeDeleted, types.ResourceMilestone, fmt.Sprint(number), nil)
	return nil
}

// --- Sprints ---

func (s *Service) CreateSprint(ctx context.Context, projectID string, data types.CreateSprint) (*types.Sprint, error) {
	sprint, err := s.client.Sprints.Create(ctx, projectID, data)
	if err != nil {
		return nil, err
	}
	s.events.Append(events.TypeCreated, types.ResourceSprint, sprint.ID, sprint)
	return sprint, nil
}

func (s *Service) GetSprint(ctx context.Context, projectID, sprintID string) (*types.Sprint, error) {
	return s.client.Sprints.FindByID(ctx, projectID, sprintID)
}

func (s *Service) ListSprints(ctx context.Context, projectID string) ([]types.Sprint, error) {
	return s.client.Sprints.FindAll(ctx, projectID)
}

func (s *Service) CurrentSprint(ctx context.Context, projectID string) (*types.Sprint, error) {
	return s.client.Sprints.FindCurrent(ctx, projectID)
}

func (s *Service) UpdateSprint(ctx context.Context, projectID, sprintID string, data map[string]any) (*types.Sprint, error) {
	sprint, err := s.client.Sprints.Update(ctx, projectID, sprintID, data)
	if err != nil {
		return nil, err
	}
	s.events.Append(events.TypeUpdated, types.ResourceSprint, sprintID, sprint)
	return sprint, nil
}

func (s *Service) DeleteSprint(ctx context.Context, projectID, sprintID string) error {
	if err := s.client.Sprints.Delete(ctx, projectID, sprintID); err != nil {
		return err
	}
	s.events.Append(events.TypeDeleted, types.ResourceSprint, sprintID, nil)
	return nil
}

// AddIssuesToSprint assigns issues one at a time; the first failure
// aborts and names the issue so the caller knows where the batch
// stopped.
func (s *Service) AddIssuesToSprint(ctx context.Context, projectID, sprintID string, issueNumbers []int) (*types.Sprint, error) {
	for _, number := range issueNumbers {
		if err := s.client.Sprints.AddIssue(ctx, projectID, sprintID, number); err != nil {
			return nil, fmt.Errorf("adding issue #%d to sprint %s: %w", number, sprintID, err)
		}
	}
	return s.client.Sprints.FindByID(ctx, projectID, sprintID)
}

func (s *Service) RemoveIssuesFromSprint(ctx context.Context, projectID, sprintID string, issueNumbers []int) (*types.Sprint, error) {
	for _, number := range issueNumbers {
		if err := s.client.Sprints.RemoveIssue(ctx, projectID, sprintID, number); err != nil {
			return nil, fmt.Errorf("removing issue #%d from sprint %s: %w", number, sprintID, err)
		}
	}
	return s.client.Sprints.FindByID(ctx, projectID, sprintID)
}

func (s *Service) SprintIssues(ctx context.Context, projectID, sprintID string) ([]types.Issue, error) {
	return s.client.Sprints.GetIssues(ctx, projectID, sprintID)
}
