package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/krsjen/github-project-mcp/pkg/service"
	"github.com/krsjen/github-project-mcp/pkg/translations"
	"github.com/krsjen/github-project-mcp/pkg/types"
)

func CreateMilestoneTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("create_milestone",
			mcp.WithDescription(t("TOOL_CREATE_MILESTONE_DESCRIPTION", "Create a repository milestone")),
			mcp.WithString("title", mcp.Required(), mcp.MinLength(1), mcp.Description("Milestone title")),
			mcp.WithString("description", mcp.Description("Milestone description")),
			mcp.WithString("due_date",
				mcp.Description("Due date: YYYY-MM-DD, an ISO-8601 timestamp, or a bare year"),
			),
			mcp.WithString("status",
				mcp.Description("Initial state"), mcp.Enum("active", "closed"),
			),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				DueDate     string `json:"due_date"`
				Status      string `json:"status"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			milestone, err := svc.CreateMilestone(ctx, types.CreateMilestone{
				Title:       in.Title,
				Description: in.Description,
				DueDate:     in.DueDate,
				Status:      types.ResourceStatus(in.Status),
			})
			return milestone, nil, err
		},
	}
}

func GetMilestoneTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("get_milestone",
			mcp.WithDescription(t("TOOL_GET_MILESTONE_DESCRIPTION", "Get one milestone by number")),
			mcp.WithNumber("milestone_number", mcp.Required(), mcp.Description("Milestone number")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				MilestoneNumber int `json:"milestone_number"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			milestone, err := svc.GetMilestone(ctx, in.MilestoneNumber)
			return milestone, nil, err
		},
	}
}

func ListMilestonesTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("list_milestones",
			mcp.WithDescription(t("TOOL_LIST_MILESTONES_DESCRIPTION", "List the repository's milestones")),
			mcp.WithString("state",
				mcp.Description("State filter"), mcp.Enum("open", "closed", "all"),
			),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				State string `json:"state"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			milestones, err := svc.ListMilestones(ctx, in.State)
			return milestones, nil, err
		},
	}
}

func UpdateMilestoneTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("update_milestone",
			mcp.WithDescription(t("TOOL_UPDATE_MILESTONE_DESCRIPTION", "Update a milestone's title, description, due date, or status")),
			mcp.WithNumber("milestone_number", mcp.Required(), mcp.Description("Milestone number")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("description", mcp.Description("New description")),
			mcp.WithString("due_date", mcp.Description("New due date")),
			mcp.WithString("status",
				mcp.Description("New state"), mcp.Enum("active", "closed"),
			),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				MilestoneNumber int `json:"milestone_number"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			data := pick(args, "title", "description", "due_date", "status")
			milestone, err := svc.UpdateMilestone(ctx, in.MilestoneNumber, data)
			return milestone, nil, err
		},
	}
}

func DeleteMilestoneTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("delete_milestone",
			mcp.WithDescription(t("TOOL_DELETE_MILESTONE_DESCRIPTION", "Delete a milestone; its issues are kept")),
			mcp.WithNumber("milestone_number", mcp.Required(), mcp.Description("Milestone number")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				MilestoneNumber int `json:"milestone_number"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			if err := svc.DeleteMilestone(ctx, in.MilestoneNumber); err != nil {
				return nil, nil, err
			}
			return map[string]any{"deleted": true, "milestone_number": in.MilestoneNumber}, nil, nil
		},
	}
}

func GetMilestoneMetricsTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("get_milestone_metrics",
			mcp.WithDescription(t("TOOL_GET_MILESTONE_METRICS_DESCRIPTION", "Completion and schedule metrics for a milestone")),
			mcp.WithNumber("milestone_number", mcp.Required(), mcp.Description("Milestone number")),
			mcp.WithBoolean("include_issues", mcp.Description("Attach the milestone's issues to the result")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				MilestoneNumber int  `json:"milestone_number"`
				IncludeIssues   bool `json:"include_issues"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			metrics, err := svc.MilestoneMetrics(ctx, in.MilestoneNumber, in.IncludeIssues)
			if err != nil {
				return nil, nil, err
			}
			report := Content{Type: "text", Text: service.MarkdownMilestoneMetrics(metrics)}
			return metrics, []Content{report}, nil
		},
	}
}

func GetOverdueMilestonesTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("get_overdue_milestones",
			mcp.WithDescription(t("TOOL_GET_OVERDUE_MILESTONES_DESCRIPTION", "Open milestones whose due date has passed, most overdue first")),
			mcp.WithNumber("limit", mcp.Min(1), mcp.Description("Maximum results")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				Limit int `json:"limit"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			overdue, err := svc.OverdueMilestones(ctx, in.Limit)
			return overdue, nil, err
		},
	}
}

func GetUpcomingMilestonesTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("get_upcoming_milestones",
			mcp.WithDescription(t("TOOL_GET_UPCOMING_MILESTONES_DESCRIPTION", "Open milestones due within the coming days, soonest first")),
			mcp.WithNumber("days_ahead", mcp.Min(1), mcp.Description("Lookahead window in days; default 30")),
			mcp.WithNumber("limit", mcp.Min(1), mcp.Description("Maximum results")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				DaysAhead int `json:"days_ahead"`
				Limit     int `json:"limit"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			upcoming, err := svc.UpcomingMilestones(ctx, in.DaysAhead, in.Limit)
			return upcoming, nil, err
		},
	}
}
