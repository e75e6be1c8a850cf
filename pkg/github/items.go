package github

import (
	"context"
	"fmt"
	"strings"

	ghErrors "github.com/krsjen/github-project-mcp/pkg/errors"
	"github.com/krsjen/github-project-mcp/pkg/types"
)

// AddItem adds content (an issue or pull request node) to a project and
// returns the new item id. Adding content that is already on the board
// is not an error; GitHub returns the existing item.
func (r *ProjectsRepository) AddItem(ctx context.Context, projectID, contentID string) (string, error) {
	mutation := `
	mutation($input: AddProjectV2ItemByIdInput!) {
	  addProjectV2ItemById(input: $input) {
	    item {
	      id
	    }
	  }
	}`
	var resp struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID string `json:"id"`
			} `json:"item"`
		} `json:"addProjectV2ItemById"`
	}
	err := r.client.graphql(ctx, "adding project item", mutation, map[string]any{
		"input": map[string]any{
			"projectId": projectID,
			"contentId": contentID,
		},
	}, &resp)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return r.findItemByContentID(ctx, projectID, contentID)
		}
		return "", err
	}
	return resp.AddProjectV2ItemByID.Item.ID, nil
}

// RemoveItem removes an item from a project. The underlying issue is
// untouched.
func (r *ProjectsRepository) RemoveItem(ctx context.Context, projectID, itemID string) error {
	mutation := `
	mutation($input: DeleteProjectV2ItemInput!) {
	  deleteProjectV2Item(input: $input) {
	    deletedItemId
	  }
	}`
	return r.client.graphql(ctx, "removing project item", mutation, map[string]any{
		"input": map[string]any{
			"projectId": projectID,
			"itemId":    itemID,
		},
	}, nil)
}

const itemsPageSize = 100

type itemContentNode struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Number int    `json:"number"`
}

type itemNode struct {
	ID      string           `json:"id"`
	Type    string           `json:"type"`
	Content *itemContentNode `json:"content"`
}

func (n itemNode) toProjectItem(projectID string) types.ProjectItem {
	item := types.ProjectItem{
		ItemID:      n.ID,
		ProjectID:   projectID,
		ContentType: strings.ToLower(n.Type),
	}
	if n.Content != nil {
		item.ContentID = n.Content.ID
		item.Title = n.Content.Title
		item.Number = n.Content.Number
	}
	return item
}

// ListItems pages through a project's items. Draft issues have no
// number; their content block still carries id and title.
func (r *ProjectsRepository) ListItems(ctx context.Context, projectID string) ([]types.ProjectItem, error) {
	query := `
	query($id: ID!, $first: Int!, $after: String) {
	  node(id: $id) {
	    ... on ProjectV2 {
	      items(first: $first, after: $after) {
	        pageInfo {
	          hasNextPage
	          endCursor
	        }
	        nodes {
	          id
	          type
	          content {
	            ... on Issue {
	              id
	              title
	              number
	            }
	            ... on PullRequest {
	              id
	              title
	              number
	            }
	            ... on DraftIssue {
	              id
	              title
	            }
	          }
	        }
	      }
	    }
	  }
	}`

	var items []types.ProjectItem
	var after *string
	for {
		var resp struct {
			Node *struct {
				Items struct {
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
					Nodes []itemNode `json:"nodes"`
				} `json:"items"`
			} `json:"node"`
		}
		vars := map[string]any{"id": projectID, "first": itemsPageSize}
		if after != nil {
			vars["after"] = *after
		}
		if err := r.client.graphql(ctx, "listing project items", query, vars, &resp); err != nil {
			return nil, err
		}
		if resp.Node == nil {
			return nil, &ghErrors.ResourceNotFoundError{Message: fmt.Sprintf("project %s not found", projectID)}
		}
		for _, n := range resp.Node.Items.Nodes {
			items = append(items, n.toProjectItem(projectID))
		}
		if !resp.Node.Items.PageInfo.HasNextPage {
			return items, nil
		}
		cursor := resp.Node.Items.PageInfo.EndCursor
		after = &cursor
	}
}

// findItemByContentID scans a project's items for the one whose content
// node matches contentID.
func (r *ProjectsRepository) findItemByContentID(ctx context.Context, projectID, contentID string) (string, error) {
	items, err := r.ListItems(ctx, projectID)
	if err != nil {
		return "", err
	}
	for _, item := range items {
		if item.ContentID == contentID {
			return item.ItemID, nil
		}
	}
	return "", &ghErrors.ResourceNotFoundError{
		Message: fmt.Sprintf("content %s is not an item of project %s", contentID, projectID),
	}
}

// GetItemIDForIssue locates the project item holding a given issue
// number, or reports ResourceNotFoundError.
func (r *ProjectsRepository) GetItemIDForIssue(ctx context.Context, projectID string, issueNumber int) (string, error) {
	items, err := r.ListItems(ctx, projectID)
	if err != nil {
		return "", err
	}
	for _, item := range items {
		if item.ContentType == "issue" && item.Number == issueNumber {
			return item.ItemID, nil
		}
	}
	return "", &ghErrors.ResourceNotFoundError{
		Message: fmt.Sprintf("issue #%d is not on project %s", issueNumber, projectID),
	}
}
