package github

import (
	"context"
	"fmt"

	"github.com/krsjen/github-project-mcp/pkg/types"
)

// ProjectsRepository manages Projects-v2 projects over GraphQL. The
// GraphQL schema has no unified "owner" lookup, so owner logins are
// resolved by probing user(login) and then organization(login).
type ProjectsRepository struct {
	client *Client
}

const projectNodeFields = `
	id
	number
	title
	shortDescription
	url
	public
	closed
	createdAt
	updatedAt`

type projectNode struct {
	ID               string `json:"id"`
	Number           int    `json:"number"`
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	URL              string `json:"url"`
	Public           bool   `json:"public"`
	Closed           bool   `json:"closed"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
}

func (r *ProjectsRepository) convertProject(node projectNode, owner string) *types.Project {
	if owner == "" {
		owner = r.client.Owner()
	}
	visibility := "private"
	if node.Public {
		visibility = "public"
	}
	url := node.URL
	if url == "" {
		url = fmt.Sprintf("https://github.com/%s/projects/%d", owner, node.Number)
	}
	return &types.Project{
		ID:          node.ID,
		Title:       node.Title,
		Description: node.ShortDescription,
		Owner:       owner,
		Number:      node.Number,
		URL:         url,
		Fields:      []types.CustomField{},
		Closed:      node.Closed,
		Status:      types.StatusFromClosed(node.Closed),
		Visibility:  visibility,
		CreatedAt:   node.CreatedAt,
		UpdatedAt:   node.UpdatedAt,
	}
}

// resolveOwnerID maps an owner login to its GraphQL node id. The user
// probe runs first; a nullable-field miss falls through to the
// organization probe.
func (r *ProjectsRepository) resolveOwnerID(ctx context.Context, login string) (string, error) {
	userQuery := `
	query($login: String!) {
	  user(login: $login) {
	    id
	  }
	}`
	var userResp struct {
		User *struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	err := r.client.graphql(ctx, "resolving owner as user", userQuery, map[string]any{"login": login}, &userResp)
	if err == nil && userResp.User != nil && userResp.User.ID != "" {
		return userResp.User.ID, nil
	}

	orgQuery := `
	query($login: String!) {
	  organization(login: $login) {
	    id
	  }
	}`
	var orgResp struct {
		Organization *struct {
			ID string `json:"id"`
		} `json:"organization"`
	}
	if err := r.client.graphql(ctx, "resolving owner as organization", orgQuery, map[string]any{"login": login}, &orgResp); err != nil {
		return "", fmt.Errorf("could not resolve owner %q to a user or organization: %w", login, err)
	}
	if orgResp.Organization == nil || orgResp.Organization.ID == "" {
		return "", fmt.Errorf("could not resolve owner %q to a node ID", login)
	}
	return orgResp.Organization.ID, nil
}

// Create creates a project. GitHub's CreateProjectV2Input has no
// description field, so a non-empty description takes a follow-up
// update mutation.
func (r *ProjectsRepository) Create(ctx context.Context, data types.CreateProject) (*types.Project, error) {
	owner := data.Owner
	if owner == "" {
		owner = r.client.Owner()
	}
	ownerID, err := r.resolveOwnerID(ctx, owner)
	if err != nil {
		return nil, err
	}

	mutation := `
	mutation($input: CreateProjectV2Input!) {
	  createProjectV2(input: $input) {
	    projectV2 {` + projectNodeFields + `
	    }
	  }
	}`
	var resp struct {
		CreateProjectV2 struct {
			ProjectV2 projectNode `json:"projectV2"`
		} `json:"createProjectV2"`
	}
	input := map[string]any{
		"title":   data.Title,
		"ownerId": ownerID,
	}
	if err := r.client.graphql(ctx, "creating project", mutation, map[string]any{"input": input}, &resp); err != nil {
		return nil, err
	}
	node := resp.CreateProjectV2.ProjectV2

	if data.ShortDescription != "" {
		updated, err := r.Update(ctx, node.ID, map[string]any{"description": data.ShortDescription})
		if err != nil {
			return nil, err
		}
		if data.Visibility != "" {
			updated.Visibility = data.Visibility
		}
		return updated, nil
	}

	project := r.convertProject(node, owner)
	if data.Visibility != "" {
		project.Visibility = data.Visibility
	}
	return project, nil
}

// Update mutates title, description, or closed state. Recognized keys:
// title, description, status.
func (r *ProjectsRepository) Update(ctx context.Context, id string, data map[string]any) (*types.Project, error) {
	mutation := `
	mutation($input: UpdateProjectV2Input!) {
	  updateProjectV2(input: $input) {
	    projectV2 {` + projectNodeFields + `
	    }
	  }
	}`
	input := map[string]any{"projectId": id}
	if title, ok := data["title"]; ok {
		input["title"] = title
	}
	if desc, ok := data["description"]; ok {
		input["shortDescription"] = desc
	}
	if status, ok := data["status"]; ok {
		input["closed"] = fmt.Sprint(status) == string(types.StatusClosed)
	}

	var resp struct {
		UpdateProjectV2 struct {
			ProjectV2 projectNode `json:"projectV2"`
		} `json:"updateProjectV2"`
	}
	if err := r.client.graphql(ctx, "updating project", mutation, map[string]any{"input": input}, &resp); err != nil {
		return nil, err
	}
	return r.convertProject(resp.UpdateProjectV2.ProjectV2, ""), nil
}

// Delete permanently deletes a project. Irreversible on GitHub's side.
func (r *ProjectsRepository) Delete(ctx context.Context, id string) error {
	mutation := `
	mutation($input: DeleteProjectV2Input!) {
	  deleteProjectV2(input: $input) {
	    projectV2 {
	      id
	    }
	  }
	}`
	return r.client.graphql(ctx, "deleting project", mutation, map[string]any{
		"input": map[string]any{"projectId": id},
	}, nil)
}

// FindByID fetches a project with its fields and views. Returns nil when
// the node does not resolve to a project.
func (r *ProjectsRepository) FindByID(ctx context.Context, id string) (*types.Project, error) {
	query := `
	query($id: ID!) {
	  node(id: $id) {
	    ... on ProjectV2 {` + projectNodeFields + `
	      fields(first: 50) {
	        nodes {` + fieldNodeFragments + `
	        }
	      }
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
			projectNode
			Fields struct {
				Nodes []fieldNode `json:"nodes"`
			} `json:"fields"`
			Views struct {
				Nodes []viewNode `json:"nodes"`
			} `json:"views"`
		} `json:"node"`
	}
	if err := r.client.graphql(ctx, "fetching project", query, map[string]any{"id": id}, &resp); err != nil {
		return nil, err
	}
	if resp.Node == nil || resp.Node.ID == "" {
		return nil, nil
	}

	project := r.convertProject(resp.Node.projectNode, "")
	for _, f := range resp.Node.Fields.Nodes {
		if f.ID == "" {
			continue
		}
		project.Fields = append(project.Fields, f.toCustomField())
	}
	for _, v := range resp.Node.Views.Nodes {
		project.Views = append(project.Views, v.toProjectView())
	}
	return project, nil
}

const ownerProjectsPageSize = 100

// FindByOwner lists projects for a login, querying the user and
// organization branches separately and unioning the results. Either
// branch may be legitimately absent; only a double miss with no data is
// an error.
func (r *ProjectsRepository) FindByOwner(ctx context.Context, owner string) ([]types.Project, error) {
	userQuery := `
	query($owner: String!, $first: Int!) {
	  user(login: $owner) {
	    projectsV2(first: $first) {
	      nodes {` + projectNodeFields + `
	      }
	    }
	  }
	}`
	orgQuery := `
	query($owner: String!, $first: Int!) {
	  organization(login: $owner) {
	    projectsV2(first: $first) {
	      nodes {` + projectNodeFields + `
	      }
	    }
	  }
	}`

	type projectsConnection struct {
		ProjectsV2 struct {
			Nodes []projectNode `json:"nodes"`
		} `json:"projectsV2"`
	}
	vars := map[string]any{"owner": owner, "first": ownerProjectsPageSize}

	var userProjects, orgProjects []projectNode

	var userResp struct {
		User *projectsConnection `json:"user"`
	}
	userErr := r.client.graphql(ctx, "listing user projects", userQuery, vars, &userResp)
	if userErr == nil && userResp.User != nil {
		userProjects = userResp.User.ProjectsV2.Nodes
	} else if userErr != nil && !isNullableFieldError(userErr.Error()) {
		r.client.logger.Warn("user projects query failed", "owner", owner, "error", userErr)
	}

	var orgResp struct {
		Organization *projectsConnection `json:"organization"`
	}
	orgErr := r.client.graphql(ctx, "listing organization projects", orgQuery, vars, &orgResp)
	if orgErr == nil && orgResp.Organization != nil {
		orgProjects = orgResp.Organization.ProjectsV2.Nodes
	} else if orgErr != nil && !isNullableFieldError(orgErr.Error()) {
		if len(userProjects) == 0 {
			return nil, orgErr
		}
		r.client.logger.Warn("organization projects query failed", "owner", owner, "error", orgErr)
	}

	projects := make([]types.Project, 0, len(userProjects)+len(orgProjects))
	for _, node := range append(userProjects, orgProjects...) {
		projects = append(projects, *r.convertProject(node, owner))
	}
	return projects, nil
}

// FindAll lists projects for the configured owner.
func (r *ProjectsRepository) FindAll(ctx context.Context) ([]types.Project, error) {
	return r.FindByOwner(ctx, r.client.Owner())
}
