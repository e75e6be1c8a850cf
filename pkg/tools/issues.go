package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/krsjen/github-project-mcp/pkg/service"
	"github.com/krsjen/github-project-mcp/pkg/translations"
	"github.com/krsjen/github-project-mcp/pkg/types"
)

func CreateIssueTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("create_issue",
			mcp.WithDescription(t("TOOL_CREATE_ISSUE_DESCRIPTION", "Open an issue in the configured repository")),
			mcp.WithString("title", mcp.Required(), mcp.MinLength(1), mcp.Description("Issue title")),
			mcp.WithString("description", mcp.Description("Issue body, markdown allowed")),
			mcp.WithString("milestone_id", mcp.Description("Milestone number to assign")),
			mcp.WithArray("assignees",
				mcp.Description("Logins to assign"),
				mcp.Items(map[string]any{"type": "string"}),
			),
			mcp.WithArray("labels",
				mcp.Description("Label names to apply"),
				mcp.Items(map[string]any{"type": "string"}),
			),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				Title       string   `json:"title"`
				Description string   `json:"description"`
				MilestoneID string   `json:"milestone_id"`
				Assignees   []string `json:"assignees"`
				Labels      []string `json:"labels"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			issue, err := svc.CreateIssue(ctx, types.CreateIssue{
				Title:       in.Title,
				Description: in.Description,
				MilestoneID: in.MilestoneID,
				Assignees:   in.Assignees,
				Labels:      in.Labels,
			})
			return issue, nil, err
		},
	}
}

func ListIssuesTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("list_issues",
			mcp.WithDescription(t("TOOL_LIST_ISSUES_DESCRIPTION", "List issues in the configured repository")),
			mcp.WithString("state",
				mcp.Description("Issue state filter"), mcp.Enum("open", "closed", "all"),
			),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				State string `json:"state"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			issues, err := svc.ListIssues(ctx, in.State)
			return issues, nil, err
		},
	}
}

func GetIssueTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("get_issue",
			mcp.WithDescription(t("TOOL_GET_ISSUE_DESCRIPTION", "Get one issue by number")),
			mcp.WithNumber("issue_number", mcp.Required(), mcp.Description("Issue number")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				IssueNumber int `json:"issue_number"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			issue, err := svc.GetIssue(ctx, in.IssueNumber)
			return issue, nil, err
		},
	}
}

func UpdateIssueTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("update_issue",
			mcp.WithDescription(t("TOOL_UPDATE_ISSUE_DESCRIPTION", "Update an issue; optionally mirror the status onto a project board")),
			mcp.WithNumber("issue_number", mcp.Required(), mcp.Description("Issue number")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("description", mcp.Description("New body")),
			mcp.WithString("status",
				mcp.Description("New status"), mcp.Enum("active", "in_progress", "closed"),
			),
			mcp.WithArray("assignees",
				mcp.Description("Replacement assignee logins"),
				mcp.Items(map[string]any{"type": "string"}),
			),
			mcp.WithArray("labels",
				mcp.Description("Replacement label names"),
				mcp.Items(map[string]any{"type": "string"}),
			),
			mcp.WithString("milestone_id", mcp.Description("Milestone number to assign")),
			mcp.WithString("project_id",
				mcp.Description("Project whose Status column should follow the issue status"),
			),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				IssueNumber int    `json:"issue_number"`
				ProjectID   string `json:"project_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			data := pick(args, "title", "description", "status", "assignees", "labels", "milestone_id")
			issue, err := svc.UpdateIssue(ctx, in.IssueNumber, data, in.ProjectID)
			return issue, nil, err
		},
	}
}

func DeleteIssueTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("delete_issue",
			mcp.WithDescription(t("TOOL_DELETE_ISSUE_DESCRIPTION", "Close an issue; GitHub has no hard delete")),
			mcp.WithNumber("issue_number", mcp.Required(), mcp.Description("Issue number")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				IssueNumber int `json:"issue_number"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			if err := svc.DeleteIssue(ctx, in.IssueNumber); err != nil {
				return nil, nil, err
			}
			return map[string]any{"closed": true, "issue_number": in.IssueNumber}, nil, nil
		},
	}
}

func SearchIssuesTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("search_issues",
			mcp.WithDescription(t("TOOL_SEARCH_ISSUES_DESCRIPTION", "Search issues in the configured repository")),
			mcp.WithString("query", mcp.Required(), mcp.MinLength(1), mcp.Description("Search terms; GitHub search syntax allowed")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				Query string `json:"query"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			issues, err := svc.SearchIssues(ctx, in.Query)
			return issues, nil, err
		},
	}
}

func AddIssueCommentTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("add_issue_comment",
			mcp.WithDescription(t("TOOL_ADD_ISSUE_COMMENT_DESCRIPTION", "Comment on an issue")),
			mcp.WithNumber("issue_number", mcp.Required(), mcp.Description("Issue number")),
			mcp.WithString("body", mcp.Required(), mcp.MinLength(1), mcp.Description("Comment body")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				IssueNumber int    `json:"issue_number"`
				Body        string `json:"body"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			comment, err := svc.AddIssueComment(ctx, in.IssueNumber, in.Body)
			return comment, nil, err
		},
	}
}

func ListIssueCommentsTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("list_issue_comments",
			mcp.WithDescription(t("TOOL_LIST_ISSUE_COMMENTS_DESCRIPTION", "List comments on an issue, oldest first")),
			mcp.WithNumber("issue_number", mcp.Required(), mcp.Description("Issue number")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				IssueNumber int `json:"issue_number"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			comments, err := svc.ListIssueComments(ctx, in.IssueNumber)
			return comments, nil, err
		},
	}
}

func UpdateIssueCommentTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("update_issue_comment",
			mcp.WithDescription(t("TOOL_UPDATE_ISSUE_COMMENT_DESCRIPTION", "Replace a comment's body")),
			mcp.WithString("comment_id", mcp.Required(), mcp.Description("Comment ID")),
			mcp.WithString("body", mcp.Required(), mcp.MinLength(1), mcp.Description("New body")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				CommentID string `json:"comment_id"`
				Body      string `json:"body"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			comment, err := svc.UpdateIssueComment(ctx, in.CommentID, in.Body)
			return comment, nil, err
		},
	}
}

func DeleteIssueCommentTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("delete_issue_comment",
			mcp.WithDescription(t("TOOL_DELETE_ISSUE_COMMENT_DESCRIPTION", "Delete a comment")),
			mcp.WithString("comment_id", mcp.Required(), mcp.Description("Comment ID")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				CommentID string `json:"comment_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			if err := svc.DeleteIssueComment(ctx, in.CommentID); err != nil {
				return nil, nil, err
			}
			return map[string]any{"deleted": true, "comment_id": in.CommentID}, nil, nil
		},
	}
}

func CreateLabelTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("create_label",
			mcp.WithDescription(t("TOOL_CREATE_LABEL_DESCRIPTION", "Create a repository label")),
			mcp.WithString("name", mcp.Required(), mcp.MinLength(1), mcp.Description("Label name")),
			mcp.WithString("color", mcp.Description("Hex color, with or without leading #")),
			mcp.WithString("description", mcp.Description("Label description")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in types.Label
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			label, err := svc.CreateLabel(ctx, in)
			return label, nil, err
		},
	}
}

func ListLabelsTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("list_labels",
			mcp.WithDescription(t("TOOL_LIST_LABELS_DESCRIPTION", "List the repository's labels")),
		),
		Handler: func(ctx context.Context, svc *service.Service, _ map[string]any) (any, []Content, error) {
			labels, err := svc.ListLabels(ctx)
			return labels, nil, err
		},
	}
}
