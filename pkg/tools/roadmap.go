package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/krsjen/github-project-mcp/pkg/service"
	"github.com/krsjen/github-project-mcp/pkg/translations"
	"github.com/krsjen/github-project-mcp/pkg/types"
)

type roadmapIssueArgs struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Assignees   []string `json:"assignees"`
	Labels      []string `json:"labels"`
}

type roadmapMilestoneArgs struct {
	Milestone struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		DueDate     string `json:"due_date"`
	} `json:"milestone"`
	Issues []roadmapIssueArgs `json:"issues"`
}

func CreateRoadmapTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("create_roadmap",
			mcp.WithDescription(t("TOOL_CREATE_ROADMAP_DESCRIPTION", "Create a project, its milestones, and their issues in one call")),
			mcp.WithObject("project",
				mcp.Required(),
				mcp.Description("Project to create"),
				mcp.Properties(map[string]any{
					"title":       map[string]any{"type": "string", "minLength": 1, "description": "Project title"},
					"description": map[string]any{"type": "string", "description": "Short description"},
					"owner":       map[string]any{"type": "string", "description": "Owner login; defaults to the configured owner"},
					"visibility":  map[string]any{"type": "string", "enum": []string{"private", "public"}},
				}),
			),
			mcp.WithArray("milestones",
				mcp.Description("Milestones to create, each with its issues"),
				mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"milestone": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"title":       map[string]any{"type": "string", "minLength": 1},
								"description": map[string]any{"type": "string"},
								"due_date":    map[string]any{"type": "string"},
							},
							"required": []string{"title"},
						},
						"issues": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"title":       map[string]any{"type": "string", "minLength": 1},
									"description": map[string]any{"type": "string"},
									"assignees":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
									"labels":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
								},
								"required": []string{"title"},
							},
						},
					},
					"required": []string{"milestone"},
				}),
			),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				Project struct {
					Title       string `json:"title"`
					Description string `json:"description"`
					Owner       string `json:"owner"`
					Visibility  string `json:"visibility"`
				} `json:"project"`
				Milestones []roadmapMilestoneArgs `json:"milestones"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}

			req := service.RoadmapRequest{
				Project: types.CreateProject{
					Title:            in.Project.Title,
					ShortDescription: in.Project.Description,
					Owner:            in.Project.Owner,
					Visibility:       in.Project.Visibility,
				},
			}
			for _, rm := range in.Milestones {
				entry := service.RoadmapMilestone{
					Milestone: types.CreateMilestone{
						Title:       rm.Milestone.Title,
						Description: rm.Milestone.Description,
						DueDate:     rm.Milestone.DueDate,
					},
				}
				for _, ri := range rm.Issues {
					entry.Issues = append(entry.Issues, types.CreateIssue{
						Title:       ri.Title,
						Description: ri.Description,
						Assignees:   ri.Assignees,
						Labels:      ri.Labels,
					})
				}
				req.Milestones = append(req.Milestones, entry)
			}

			roadmap, err := svc.CreateRoadmap(ctx, req)
			return roadmap, nil, err
		},
	}
}

func PlanSprintTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("plan_sprint",
			mcp.WithDescription(t("TOOL_PLAN_SPRINT_DESCRIPTION", "Create a sprint and pull a set of issues into it")),
			mcp.WithString("project_id", mcp.Required(), mcp.MinLength(1), mcp.Description("Project node ID")),
			mcp.WithObject("sprint",
				mcp.Required(),
				mcp.Description("Sprint to create"),
				mcp.Properties(map[string]any{
					"title":       map[string]any{"type": "string", "minLength": 1, "description": "Sprint title"},
					"start_date":  map[string]any{"type": "string", "description": "First day, YYYY-MM-DD"},
					"end_date":    map[string]any{"type": "string", "description": "Last day inclusive, YYYY-MM-DD"},
					"description": map[string]any{"type": "string"},
				}),
			),
			mcp.WithArray("issue_numbers",
				mcp.Description("Issue numbers to assign to the sprint"),
				mcp.Items(map[string]any{"type": "number"}),
			),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
				Sprint    struct {
					Title       string `json:"title"`
					StartDate   string `json:"start_date"`
					EndDate     string `json:"end_date"`
					Description string `json:"description"`
				} `json:"sprint"`
				IssueNumbers []int `json:"issue_numbers"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			sprint, err := svc.PlanSprint(ctx, service.PlanSprintRequest{
				ProjectID: in.ProjectID,
				Sprint: types.CreateSprint{
					Title:       in.Sprint.Title,
					Description: in.Sprint.Description,
					StartDate:   in.Sprint.StartDate,
					EndDate:     in.Sprint.EndDate,
				},
				IssueNumbers: in.IssueNumbers,
			})
			return sprint, nil, err
		},
	}
}
