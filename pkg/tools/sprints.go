package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/krsjen/github-project-mcp/pkg/service"
	"github.com/krsjen/github-project-mcp/pkg/translations"
	"github.com/krsjen/github-project-mcp/pkg/types"
)

func CreateSprintTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("create_sprint",
			mcp.WithDescription(t("TOOL_CREATE_SPRINT_DESCRIPTION", "Create a sprint on a project's iteration field")),
			mcp.WithString("project_id", mcp.Required(), mcp.MinLength(1), mcp.Description("Project node ID")),
			mcp.WithString("title", mcp.Required(), mcp.MinLength(1), mcp.Description("Sprint title")),
			mcp.WithString("start_date", mcp.Required(), mcp.Description("First day, YYYY-MM-DD")),
			mcp.WithString("end_date", mcp.Description("Last day inclusive, YYYY-MM-DD; defaults to a two-week sprint")),
			mcp.WithString("description", mcp.Description("Sprint description")),
			mcp.WithArray("issues",
				mcp.Description("Issue numbers to pull into the sprint"),
				mcp.Items(map[string]any{"type": "string"}),
			),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID   string   `json:"project_id"`
				Title       string   `json:"title"`
				StartDate   string   `json:"start_date"`
				EndDate     string   `json:"end_date"`
				Description string   `json:"description"`
				Issues      []string `json:"issues"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			sprint, err := svc.CreateSprint(ctx, in.ProjectID, types.CreateSprint{
				Title:       in.Title,
				Description: in.Description,
				StartDate:   in.StartDate,
				EndDate:     in.EndDate,
				Issues:      in.Issues,
			})
			return sprint, nil, err
		},
	}
}

func ListSprintsTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("list_sprints",
			mcp.WithDescription(t("TOOL_LIST_SPRINTS_DESCRIPTION", "List a project's sprints, completed first")),
			mcp.WithString("project_id", mcp.Required(), mcp.MinLength(1), mcp.Description("Project node ID")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			sprints, err := svc.ListSprints(ctx, in.ProjectID)
			return sprints, nil, err
		},
	}
}

func GetSprintTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("get_sprint",
			mcp.WithDescription(t("TOOL_GET_SPRINT_DESCRIPTION", "Get one sprint with its assigned issues")),
			mcp.WithString("project_id", mcp.Required(), mcp.MinLength(1), mcp.Description("Project node ID")),
			mcp.WithString("sprint_id", mcp.Required(), mcp.MinLength(1), mcp.Description("Sprint (iteration) ID")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
				SprintID  string `json:"sprint_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			sprint, err := svc.GetSprint(ctx, in.ProjectID, in.SprintID)
			return sprint, nil, err
		},
	}
}

func GetCurrentSprintTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("get_current_sprint",
			mcp.WithDescription(t("TOOL_GET_CURRENT_SPRINT_DESCRIPTION", "The sprint whose date range covers today, or null when none does")),
			mcp.WithString("project_id", mcp.Required(), mcp.MinLength(1), mcp.Description("Project node ID")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			sprint, err := svc.CurrentSprint(ctx, in.ProjectID)
			return sprint, nil, err
		},
	}
}

func UpdateSprintTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("update_sprint",
			mcp.WithDescription(t("TOOL_UPDATE_SPRINT_DESCRIPTION", "Rename or reschedule a sprint; completed sprints are immutable")),
			mcp.WithString("project_id", mcp.Required(), mcp.MinLength(1), mcp.Description("Project node ID")),
			mcp.WithString("sprint_id", mcp.Required(), mcp.MinLength(1), mcp.Description("Sprint (iteration) ID")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("start_date", mcp.Description("New first day, YYYY-MM-DD")),
			mcp.WithString("end_date", mcp.Description("New last day inclusive, YYYY-MM-DD")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
				SprintID  string `json:"sprint_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			data := pick(args, "title", "start_date", "end_date")
			sprint, err := svc.UpdateSprint(ctx, in.ProjectID, in.SprintID, data)
			return sprint, nil, err
		},
	}
}

func DeleteSprintTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("delete_sprint",
			mcp.WithDescription(t("TOOL_DELETE_SPRINT_DESCRIPTION", "Remove a sprint from the iteration field; completed sprints are kept")),
			mcp.WithString("project_id", mcp.Required(), mcp.MinLength(1), mcp.Description("Project node ID")),
			mcp.WithString("sprint_id", mcp.Required(), mcp.MinLength(1), mcp.Description("Sprint (iteration) ID")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
				SprintID  string `json:"sprint_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			if err := svc.DeleteSprint(ctx, in.ProjectID, in.SprintID); err != nil {
				return nil, nil, err
			}
			return map[string]any{"deleted": true, "sprint_id": in.SprintID}, nil, nil
		},
	}
}

func AddIssuesToSprintTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("add_issues_to_sprint",
			mcp.WithDescription(t("TOOL_ADD_ISSUES_TO_SPRINT_DESCRIPTION", "Assign issues to a sprint")),
			mcp.WithString("project_id", mcp.Required(), mcp.MinLength(1), mcp.Description("Project node ID")),
			mcp.WithString("sprint_id", mcp.Required(), mcp.MinLength(1), mcp.Description("Sprint (iteration) ID")),
			mcp.WithArray("issue_numbers", mcp.Required(),
				mcp.Description("Issue numbers to assign"),
				mcp.Items(map[string]any{"type": "number"}),
			),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID    string `json:"project_id"`
				SprintID     string `json:"sprint_id"`
				IssueNumbers []int  `json:"issue_numbers"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			sprint, err := svc.AddIssuesToSprint(ctx, in.ProjectID, in.SprintID, in.IssueNumbers)
			return sprint, nil, err
		},
	}
}

func RemoveIssuesFromSprintTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("remove_issues_from_sprint",
			mcp.WithDescription(t("TOOL_REMOVE_ISSUES_FROM_SPRINT_DESCRIPTION", "Unassign issues from a sprint")),
			mcp.WithString("project_id", mcp.Required(), mcp.MinLength(1), mcp.Description("Project node ID")),
			mcp.WithString("sprint_id", mcp.Required(), mcp.MinLength(1), mcp.Description("Sprint (iteration) ID")),
			mcp.WithArray("issue_numbers", mcp.Required(),
				mcp.Description("Issue numbers to unassign"),
				mcp.Items(map[string]any{"type": "number"}),
			),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID    string `json:"project_id"`
				SprintID     string `json:"sprint_id"`
				IssueNumbers []int  `json:"issue_numbers"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			sprint, err := svc.RemoveIssuesFromSprint(ctx, in.ProjectID, in.SprintID, in.IssueNumbers)
			return sprint, nil, err
		},
	}
}

func GetSprintMetricsTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("get_sprint_metrics",
			mcp.WithDescription(t("TOOL_GET_SPRINT_METRICS_DESCRIPTION", "Completion and schedule metrics for a sprint")),
			mcp.WithString("project_id", mcp.Required(), mcp.MinLength(1), mcp.Description("Project node ID")),
			mcp.WithString("sprint_id", mcp.Required(), mcp.MinLength(1), mcp.Description("Sprint (iteration) ID")),
			mcp.WithBoolean("include_issues", mcp.Description("Attach the sprint's issues to the result")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID     string `json:"project_id"`
				SprintID      string `json:"sprint_id"`
				IncludeIssues bool   `json:"include_issues"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			metrics, err := svc.SprintMetrics(ctx, in.ProjectID, in.SprintID, in.IncludeIssues)
			if err != nil {
				return nil, nil, err
			}
			report := Content{Type: "text", Text: service.MarkdownSprintMetrics(metrics)}
			return metrics, []Content{report}, nil
		},
	}
}
