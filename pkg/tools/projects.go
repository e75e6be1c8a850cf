package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/krsjen/github-project-mcp/pkg/service"
	"github.com/krsjen/github-project-mcp/pkg/translations"
	"github.com/krsjen/github-project-mcp/pkg/types"
)

// pick copies the named keys that are present in args into a fresh map,
// the shape the update methods expect.
func pick(args map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		if v, ok := args[key]; ok && v != nil {
			out[key] = v
		}
	}
	return out
}

func CreateProjectTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("create_project",
			mcp.WithDescription(t("TOOL_CREATE_PROJECT_DESCRIPTION", "Create a GitHub project board")),
			mcp.WithString("title",
				mcp.Required(), mcp.MinLength(1), mcp.Description("Project title"),
			),
			mcp.WithString("description", mcp.Description("Short description shown on the project")),
			mcp.WithString("owner", mcp.Description("Owner login; defaults to the configured owner")),
			mcp.WithString("visibility",
				mcp.Description("Project visibility"), mcp.Enum("private", "public"),
			),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				Owner       string `json:"owner"`
				Visibility  string `json:"visibility"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			project, err := svc.CreateProject(ctx, types.CreateProject{
				Title:            in.Title,
				ShortDescription: in.Description,
				Owner:            in.Owner,
				Visibility:       in.Visibility,
			})
			return project, nil, err
		},
	}
}

func ListProjectsTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("list_projects",
			mcp.WithDescription(t("TOOL_LIST_PROJECTS_DESCRIPTION", "List projects for a user or organization")),
			mcp.WithString("owner", mcp.Description("Owner login; defaults to the configured owner")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				Owner string `json:"owner"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			projects, err := svc.ListProjects(ctx, in.Owner)
			return projects, nil, err
		},
	}
}

func GetProjectTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("get_project",
			mcp.WithDescription(t("TOOL_GET_PROJECT_DESCRIPTION", "Get a project with its fields and views")),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			project, err := svc.GetProject(ctx, in.ProjectID)
			return project, nil, err
		},
	}
}

func UpdateProjectTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("update_project",
			mcp.WithDescription(t("TOOL_UPDATE_PROJECT_DESCRIPTION", "Update a project's title, description, or status")),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("description", mcp.Description("New description")),
			mcp.WithString("status",
				mcp.Description("Open or close the project"), mcp.Enum("active", "closed"),
			),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			project, err := svc.UpdateProject(ctx, in.ProjectID, pick(args, "title", "description", "status"))
			return project, nil, err
		},
	}
}

func DeleteProjectTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("delete_project",
			mcp.WithDescription(t("TOOL_DELETE_PROJECT_DESCRIPTION", "Permanently delete a project")),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			if err := svc.DeleteProject(ctx, in.ProjectID); err != nil {
				return nil, nil, err
			}
			return map[string]any{"deleted": true, "project_id": in.ProjectID}, nil, nil
		},
	}
}

func CreateProjectFieldTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("create_project_field",
			mcp.WithDescription(t("TOOL_CREATE_PROJECT_FIELD_DESCRIPTION", "Add a custom field to a project")),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
			mcp.WithString("name", mcp.Required(), mcp.MinLength(1), mcp.Description("Field name")),
			mcp.WithString("type",
				mcp.Required(), mcp.Description("Field type"),
				mcp.Enum("text", "number", "date", "single_select", "iteration"),
			),
			mcp.WithArray("options",
				mcp.Description("Options for single_select fields"),
				mcp.Items(map[string]any{
					"type":       "object",
					"properties": map[string]any{"name": map[string]any{"type": "string"}},
					"required":   []string{"name"},
				}),
			),
			mcp.WithString("description", mcp.Description("Field description")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID   string `json:"project_id"`
				Name        string `json:"name"`
				Type        string `json:"type"`
				Description string `json:"description"`
				Options     []struct {
					Name        string `json:"name"`
					Color       string `json:"color"`
					Description string `json:"description"`
				} `json:"options"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			data := types.CreateField{
				Name:        in.Name,
				Type:        types.FieldType(in.Type),
				Description: in.Description,
			}
			for _, opt := range in.Options {
				data.Options = append(data.Options, types.FieldOption{
					Name:        opt.Name,
					Color:       opt.Color,
					Description: opt.Description,
				})
			}
			field, err := svc.CreateField(ctx, in.ProjectID, data)
			return field, nil, err
		},
	}
}

func ListProjectFieldsTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("list_project_fields",
			mcp.WithDescription(t("TOOL_LIST_PROJECT_FIELDS_DESCRIPTION", "List a project's custom fields")),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			fields, err := svc.ListFields(ctx, in.ProjectID)
			return fields, nil, err
		},
	}
}

func UpdateProjectFieldTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("update_project_field",
			mcp.WithDescription(t("TOOL_UPDATE_PROJECT_FIELD_DESCRIPTION", "Rename a project field")),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
			mcp.WithString("field_id", mcp.Required(), mcp.Description("Field node ID")),
			mcp.WithString("name", mcp.Required(), mcp.MinLength(1), mcp.Description("New field name")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
				FieldID   string `json:"field_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			field, err := svc.UpdateField(ctx, in.ProjectID, in.FieldID, pick(args, "name"))
			return field, nil, err
		},
	}
}

func CreateProjectViewTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("create_project_view",
			mcp.WithDescription(t("TOOL_CREATE_PROJECT_VIEW_DESCRIPTION", "Add a saved view to a project")),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
			mcp.WithString("name", mcp.Required(), mcp.MinLength(1), mcp.Description("View name")),
			mcp.WithString("layout",
				mcp.Required(), mcp.Description("View layout"),
				mcp.Enum("board", "table", "timeline", "roadmap"),
			),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
				Name      string `json:"name"`
				Layout    string `json:"layout"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			view, err := svc.CreateView(ctx, in.ProjectID, in.Name, types.ViewLayout(in.Layout))
			return view, nil, err
		},
	}
}

func ListProjectViewsTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("list_project_views",
			mcp.WithDescription(t("TOOL_LIST_PROJECT_VIEWS_DESCRIPTION", "List a project's saved views")),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			views, err := svc.ListViews(ctx, in.ProjectID)
			return views, nil, err
		},
	}
}

func UpdateProjectViewTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("update_project_view",
			mcp.WithDescription(t("TOOL_UPDATE_PROJECT_VIEW_DESCRIPTION", "Rename a view or change its layout")),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
			mcp.WithString("view_id", mcp.Required(), mcp.Description("View node ID")),
			mcp.WithString("name", mcp.Description("New view name")),
			mcp.WithString("layout",
				mcp.Description("New layout"), mcp.Enum("board", "table", "timeline", "roadmap"),
			),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
				ViewID    string `json:"view_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			view, err := svc.UpdateView(ctx, in.ProjectID, in.ViewID, pick(args, "name", "layout"))
			return view, nil, err
		},
	}
}

func DeleteProjectViewTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("delete_project_view",
			mcp.WithDescription(t("TOOL_DELETE_PROJECT_VIEW_DESCRIPTION", "Delete a saved view")),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
			mcp.WithString("view_id", mcp.Required(), mcp.Description("View node ID")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
				ViewID    string `json:"view_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			if err := svc.DeleteView(ctx, in.ProjectID, in.ViewID); err != nil {
				return nil, nil, err
			}
			return map[string]any{"deleted": true, "view_id": in.ViewID}, nil, nil
		},
	}
}

func AddProjectItemTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("add_project_item",
			mcp.WithDescription(t("TOOL_ADD_PROJECT_ITEM_DESCRIPTION", "Add an issue or pull request to a project board")),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
			mcp.WithString("content_id", mcp.Required(), mcp.Description("Issue or pull request node ID")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
				ContentID string `json:"content_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			itemID, err := svc.AddProjectItem(ctx, in.ProjectID, in.ContentID)
			if err != nil {
				return nil, nil, err
			}
			return map[string]any{"item_id": itemID, "project_id": in.ProjectID}, nil, nil
		},
	}
}

func RemoveProjectItemTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("remove_project_item",
			mcp.WithDescription(t("TOOL_REMOVE_PROJECT_ITEM_DESCRIPTION", "Remove an item from a project board")),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
			mcp.WithString("item_id", mcp.Required(), mcp.Description("Project item ID")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
				ItemID    string `json:"item_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			if err := svc.RemoveProjectItem(ctx, in.ProjectID, in.ItemID); err != nil {
				return nil, nil, err
			}
			return map[string]any{"removed": true, "item_id": in.ItemID}, nil, nil
		},
	}
}

func ListProjectItemsTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("list_project_items",
			mcp.WithDescription(t("TOOL_LIST_PROJECT_ITEMS_DESCRIPTION", "List items on a project board")),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			items, err := svc.ListProjectItems(ctx, in.ProjectID)
			return items, nil, err
		},
	}
}

func SetFieldValueTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("set_field_value",
			mcp.WithDescription(t("TOOL_SET_FIELD_VALUE_DESCRIPTION", "Set a field value on a project item")),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
			mcp.WithString("item_id", mcp.Required(), mcp.Description("Project item ID")),
			mcp.WithString("field_id", mcp.Required(), mcp.Description("Field node ID")),
			mcp.WithString("value", mcp.Description("Value; interpreted by the field's type")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
				ItemID    string `json:"item_id"`
				FieldID   string `json:"field_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			if err := svc.SetFieldValue(ctx, in.ProjectID, in.ItemID, in.FieldID, args["value"]); err != nil {
				return nil, nil, err
			}
			return map[string]any{"updated": true, "item_id": in.ItemID, "field_id": in.FieldID}, nil, nil
		},
	}
}

func GetFieldValueTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("get_field_value",
			mcp.WithDescription(t("TOOL_GET_FIELD_VALUE_DESCRIPTION", "Read a field value from a project item")),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
			mcp.WithString("item_id", mcp.Required(), mcp.Description("Project item ID")),
			mcp.WithString("field_id", mcp.Required(), mcp.Description("Field node ID")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
				ItemID    string `json:"item_id"`
				FieldID   string `json:"field_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			value, err := svc.GetFieldValue(ctx, in.ProjectID, in.ItemID, in.FieldID)
			if err != nil {
				return nil, nil, err
			}
			return map[string]any{"field_id": in.FieldID, "value": value}, nil, nil
		},
	}
}

func ClearFieldValueTool(t translations.TranslationHelperFunc) Tool {
	return Tool{
		Def: mcp.NewTool("clear_field_value",
			mcp.WithDescription(t("TOOL_CLEAR_FIELD_VALUE_DESCRIPTION", "Clear a field value on a project item")),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
			mcp.WithString("item_id", mcp.Required(), mcp.Description("Project item ID")),
			mcp.WithString("field_id", mcp.Required(), mcp.Description("Field node ID")),
		),
		Handler: func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error) {
			var in struct {
				ProjectID string `json:"project_id"`
				ItemID    string `json:"item_id"`
				FieldID   string `json:"field_id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, nil, err
			}
			if err := svc.ClearFieldValue(ctx, in.ProjectID, in.ItemID, in.FieldID); err != nil {
				return nil, nil, err
			}
			return map[string]any{"cleared": true, "item_id": in.ItemID, "field_id": in.FieldID}, nil, nil
		},
	}
}
