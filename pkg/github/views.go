package github

import (
	"context"
	"fmt"
	"strings"

	ghErrors "github.com/krsjen/github-project-mcp/pkg/errors"
	"github.com/krsjen/github-project-mcp/pkg/types"
)

type viewNode struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Layout string `json:"layout"`
}

var viewLayoutToGraphQL = map[types.ViewLayout]string{
	types.LayoutBoard:    "BOARD_LAYOUT",
	types.LayoutTable:    "TABLE_LAYOUT",
	types.LayoutTimeline: "ROADMAP_LAYOUT",
	types.LayoutRoadmap:  "ROADMAP_LAYOUT",
}

func viewLayoutFromGraphQL(layout string) types.ViewLayout {
	switch strings.ToUpper(layout) {
	case "BOARD_LAYOUT":
		return types.LayoutBoard
	case "ROADMAP_LAYOUT":
		return types.LayoutRoadmap
	default:
		return types.LayoutTable
	}
}

func (v viewNode) toProjectView() types.ProjectView {
	return types.ProjectView{
		ID:     v.ID,
		Name:   v.Name,
		Layout: viewLayoutFromGraphQL(v.Layout),
	}
}

// CreateView adds a saved view to a project. Timeline and roadmap both
// map onto GitHub's roadmap layout.
func (r *ProjectsRepository) CreateView(ctx context.Context, projectID, name string, layout types.ViewLayout) (*types.ProjectView, error) {
	gqlLayout, ok := viewLayoutToGraphQL[layout]
	if !ok {
		return nil, ghErrors.NewValidationError("create_project_view", "layout",
			fmt.Sprintf("unsupported view layout %q", layout))
	}

	mutation := `
	mutation($input: CreateProjectV2ViewInput!) {
	  createProjectV2View(input: $input) {
	    projectV2View {
	      id
	      name
	      layout
	    }
	  }
	}`
	var resp struct {
		CreateProjectV2View struct {
			ProjectV2View viewNode `json:"projectV2View"`
		} `json:"createProjectV2View"`
	}
	err := r.client.graphql(ctx, "creating project view", mutation, map[string]any{
		"input": map[string]any{
			"projectId": projectID,
			"name":      name,
			"layout":    gqlLayout,
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	view := resp.CreateProjectV2View.ProjectV2View.toProjectView()
	return &view, nil
}

// UpdateView renames a view or changes its layout. Recognized keys:
// name, layout.
func (r *ProjectsRepository) UpdateView(ctx context.Context, projectID, viewID string, data map[string]any) (*types.ProjectView, error) {
	input := map[string]any{
		"projectId": projectID,
		"viewId":    viewID,
	}
	if name, ok := data["name"]; ok {
		input["name"] = name
	}
	if layout, ok := data["layout"]; ok {
		gqlLayout, known := viewLayoutToGraphQL[types.ViewLayout(fmt.Sprint(layout))]
		if !known {
			return nil, ghErrors.NewValidationError("update_project_view", "layout",
				fmt.Sprintf("unsupported view layout %q", layout))
		}
		input["layout"] = gqlLayout
	}

	mutation := `
	mutation($input: UpdateProjectV2ViewInput!) {
	  updateProjectV2View(input: $input) {
	    projectV2View {
	      id
	      name
	      layout
	    }
	  }
	}`
	var resp struct {
		UpdateProjectV2View struct {
			ProjectV2View viewNode `json:"projectV2View"`
		} `json:"updateProjectV2View"`
	}
	if err := r.client.graphql(ctx, "updating project view", mutation, map[string]any{"input": input}, &resp); err != nil {
		return nil, err
	}
	view := resp.UpdateProjectV2View.ProjectV2View.toProjectView()
	return &view, nil
}

// DeleteView removes a saved view.
func (r *ProjectsRepository) DeleteView(ctx context.Context, projectID, viewID string) error {
	mutation := `
	mutation($input: DeleteProjectV2ViewInput!) {
	  deleteProjectV2View(input: $input) {
	    projectV2View {
	      id
	    }
	  }
	}`
	return r.client.graphql(ctx, "deleting project view", mutation, map[string]any{
		"input": map[string]any{
			"projectId": projectID,
			"viewId":    viewID,
		},
	}, nil)
}

// ListViews returns the project's saved views.
func (r *ProjectsRepository) ListViews(ctx context.Context, projectID string) ([]types.ProjectView, error) {
	query := `
	query($id: ID!) {
	  node(id: $id) {
	    ... on ProjectV2 {
	      views(first: 20) {
	        nodes {
	          id
	          name
	          layout
	        }
	      }
	    }
	  }
	}`
	var resp struct {
		Node *struct {
			Views struct {
				Nodes []viewNode `json:"nodes"`
			} `json:"views"`
		} `json:"node"`
	}
	if err := r.client.graphql(ctx, "listing project views", query, map[string]any{"id": projectID}, &resp); err != nil {
		return nil, err
	}
	if resp.Node == nil {
		return nil, &ghErrors.ResourceNotFoundError{Message: fmt.Sprintf("project %s not found", projectID)}
	}
	views := make([]types.ProjectView, 0, len(resp.Node.Views.Nodes))
	for _, v := range resp.Node.Views.Nodes {
		views = append(views, v.toProjectView())
	}
	return views, nil
}
