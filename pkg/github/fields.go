package github

import (
	"context"
	"fmt"
	"strings"

	ghErrors "github.com/krsjen/github-project-mcp/pkg/errors"
	"github.com/krsjen/github-project-mcp/pkg/types"
)

// fieldNodeFragments selects field definitions across the three concrete
// ProjectV2 field types. Plain fields carry no extra data; single-select
// fields carry options; iteration fields carry their configuration.
const fieldNodeFragments = `
	          ... on ProjectV2Field {
	            id
	            name
	            dataType
	          }
	          ... on ProjectV2SingleSelectField {
	            id
	            name
	            dataType
	            options {
	              id
	              name
	              color
	              description
	            }
	          }
	          ... on ProjectV2IterationField {
	            id
	            name
	            dataType
	            configuration {
	              startDate
	              duration
	              iterations {
	                id
	                title
	                startDate
	                duration
	              }
	              completedIterations {
	                id
	                title
	                startDate
	                duration
	              }
	            }
	          }`

type fieldOptionNode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type iterationNode struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StartDate string `json:"startDate"`
	Duration  int    `json:"duration"`
}

type iterationConfigurationNode struct {
	StartDate           string          `json:"startDate"`
	Duration            int             `json:"duration"`
	Iterations          []iterationNode `json:"iterations"`
	CompletedIterations []iterationNode `json:"completedIterations"`
}

type fieldNode struct {
	ID            string                      `json:"id"`
	Name          string                      `json:"name"`
	DataType      string                      `json:"dataType"`
	Options       []fieldOptionNode           `json:"options"`
	Configuration *iterationConfigurationNode `json:"configuration"`
}

func (f fieldNode) toCustomField() types.CustomField {
	field := types.CustomField{
		ID:   f.ID,
		Name: f.Name,
		Type: fieldTypeFromGraphQL(f.DataType),
	}
	for _, opt := range f.Options {
		field.Options = append(field.Options, types.FieldOption{
			ID:          opt.ID,
			Name:        opt.Name,
			Color:       opt.Color,
			Description: opt.Description,
		})
	}
	return field
}

var fieldTypeToGraphQL = map[types.FieldType]string{
	types.FieldText:         "TEXT",
	types.FieldNumber:       "NUMBER",
	types.FieldDate:         "DATE",
	types.FieldSingleSelect: "SINGLE_SELECT",
	types.FieldIteration:    "ITERATION",
	types.FieldMilestone:    "MILESTONE",
	types.FieldAssignees:    "ASSIGNEES",
	types.FieldLabels:       "LABELS",
	types.FieldRepository:   "REPOSITORY",
	types.FieldTrackedBy:    "TRACKED_BY",
	types.FieldTracks:       "TRACKS",
}

func fieldTypeFromGraphQL(dataType string) types.FieldType {
	upper := strings.ToUpper(dataType)
	for domain, gql := range fieldTypeToGraphQL {
		if gql == upper {
			return domain
		}
	}
	return types.FieldText
}

// CreateField creates a custom field. single_select requires at least
// one option; the GraphQL input wants name/color/description per option
// with color defaulting to GRAY.
func (r *ProjectsRepository) CreateField(ctx context.Context, projectID string, data types.CreateField) (*types.CustomField, error) {
	gqlType, ok := fieldTypeToGraphQL[data.Type]
	if !ok {
		return nil, ghErrors.NewValidationError("create_project_field", "type",
			fmt.Sprintf("unsupported field type %q", data.Type))
	}

	input := map[string]any{
		"projectId": projectID,
		"name":      data.Name,
		"dataType":  gqlType,
	}
	if data.Type == types.FieldSingleSelect {
		if len(data.Options) == 0 {
			return nil, ghErrors.NewValidationError("create_project_field", "options",
				"single_select fields require at least one option")
		}
		options := make([]map[string]any, 0, len(data.Options))
		for _, opt := range data.Options {
			color := opt.Color
			if color == "" {
				color = "GRAY"
			}
			options = append(options, map[string]any{
				"name":        opt.Name,
				"color":       strings.ToUpper(color),
				"description": opt.Description,
			})
		}
		input["singleSelectOptions"] = options
	}

	mutation := `
	mutation($input: CreateProjectV2FieldInput!) {
	  createProjectV2Field(input: $input) {
	    projectV2Field {` + fieldNodeFragments + `
	    }
	  }
	}`
	var resp struct {
		CreateProjectV2Field struct {
			ProjectV2Field fieldNode `json:"projectV2Field"`
		} `json:"createProjectV2Field"`
	}
	if err := r.client.graphql(ctx, "creating project field", mutation, map[string]any{"input": input}, &resp); err != nil {
		return nil, err
	}

	field := resp.CreateProjectV2Field.ProjectV2Field.toCustomField()
	field.Description = data.Description
	field.Required = data.Required
	return &field, nil
}

// UpdateField renames a field. GitHub only allows the name to change
// after creation.
func (r *ProjectsRepository) UpdateField(ctx context.Context, projectID, fieldID string, data map[string]any) (*types.CustomField, error) {
	mutation := `
	mutation($input: UpdateProjectV2FieldInput!) {
	  updateProjectV2Field(input: $input) {
	    projectV2Field {` + fieldNodeFragments + `
	    }
	  }
	}`
	input := map[string]any{
		"projectId": projectID,
		"fieldId":   fieldID,
	}
	if name, ok := data["name"]; ok {
		input["name"] = name
	}

	var resp struct {
		UpdateProjectV2Field struct {
			ProjectV2Field fieldNode `json:"projectV2Field"`
		} `json:"updateProjectV2Field"`
	}
	if err := r.client.graphql(ctx, "updating project field", mutation, map[string]any{"input": input}, &resp); err != nil {
		return nil, err
	}
	field := resp.UpdateProjectV2Field.ProjectV2Field.toCustomField()
	return &field, nil
}

// DeleteField deletes a custom field and all its item values.
func (r *ProjectsRepository) DeleteField(ctx context.Context, projectID, fieldID string) error {
	mutation := `
	mutation($input: DeleteProjectV2FieldInput!) {
	  deleteProjectV2Field(input: $input) {
	    projectV2Field {
	      ... on ProjectV2Field {
	        id
	      }
	    }
	  }
	}`
	return r.client.graphql(ctx, "deleting project field", mutation, map[string]any{
		"input": map[string]any{"projectId": projectID, "fieldId": fieldID},
	}, nil)
}

// listFieldNodes fetches the raw field definitions for a project.
func (r *ProjectsRepository) listFieldNodes(ctx context.Context, projectID string) ([]fieldNode, error) {
	query := `
	query($id: ID!) {
	  node(id: $id) {
	    ... on ProjectV2 {
	      fields(first: 50) {
	        nodes {` + fieldNodeFragments + `
	        }
	      }
	    }
	  }
	}`
	var resp struct {
		Node *struct {
			Fields struct {
				Nodes []fieldNode `json:"nodes"`
			} `json:"fields"`
		} `json:"node"`
	}
	if err := r.client.graphql(ctx, "listing project fields", query, map[string]any{"id": projectID}, &resp); err != nil {
		return nil, err
	}
	if resp.Node == nil {
		return nil, &ghErrors.ResourceNotFoundError{Message: fmt.Sprintf("project %s not found", projectID)}
	}
	return resp.Node.Fields.Nodes, nil
}

// ListFields returns the project's field definitions.
func (r *ProjectsRepository) ListFields(ctx context.Context, projectID string) ([]types.CustomField, error) {
	nodes, err := r.listFieldNodes(ctx, projectID)
	if err != nil {
		return nil, err
	}
	fields := make([]types.CustomField, 0, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			continue
		}
		fields = append(fields, n.toCustomField())
	}
	return fields, nil
}

// getFieldByID returns the raw field node, or a ResourceNotFoundError.
func (r *ProjectsRepository) getFieldByID(ctx context.Context, projectID, fieldID string) (*fieldNode, error) {
	nodes, err := r.listFieldNodes(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range nodes {
		if nodes[i].ID == fieldID {
			return &nodes[i], nil
		}
	}
	return nil, &ghErrors.ResourceNotFoundError{Message: fmt.Sprintf("field %s not found in project %s", fieldID, projectID)}
}

// getFieldByName matches case-insensitively; returns nil without error
// on a miss so callers can treat absence as optional.
func (r *ProjectsRepository) getFieldByName(ctx context.Context, projectID, name string) (*fieldNode, error) {
	nodes, err := r.listFieldNodes(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range nodes {
		if strings.EqualFold(nodes[i].Name, name) {
			return &nodes[i], nil
		}
	}
	return nil, nil
}

// GetFieldByName is the exported lookup used by the service layer's
// best-effort Status update.
func (r *ProjectsRepository) GetFieldByName(ctx context.Context, projectID, name string) (*types.CustomField, error) {
	node, err := r.getFieldByName(ctx, projectID, name)
	if err != nil || node == nil {
		return nil, err
	}
	field := node.toCustomField()
	return &field, nil
}

// shapeFieldValue builds the ProjectV2FieldValue payload for a write.
// The payload key depends on the field's declared type, which is why a
// lookup must precede every field-value mutation.
func shapeFieldValue(field *fieldNode, value any) (map[string]any, error) {
	switch fieldTypeFromGraphQL(field.DataType) {
	case types.FieldText:
		return map[string]any{"text": fmt.Sprint(value)}, nil
	case types.FieldNumber:
		switch v := value.(type) {
		case float64:
			return map[string]any{"number": v}, nil
		case int:
			return map[string]any{"number": float64(v)}, nil
		default:
			return nil, ghErrors.NewValidationError("set_field_value", "value",
				fmt.Sprintf("field %q expects a number, got %T", field.Name, value))
		}
	case types.FieldDate:
		return map[string]any{"date": fmt.Sprint(value)}, nil
	case types.FieldSingleSelect:
		name := fmt.Sprint(value)
		for _, opt := range field.Options {
			if strings.EqualFold(opt.Name, name) || opt.ID == name {
				return map[string]any{"singleSelectOptionId": opt.ID}, nil
			}
		}
		return nil, ghErrors.NewValidationError("set_field_value", "value",
			fmt.Sprintf("%q is not an option of field %q", name, field.Name))
	case types.FieldIteration:
		return map[string]any{"iterationId": fmt.Sprint(value)}, nil
	default:
		return nil, fmt.Errorf("Unsupported field type: %s", field.DataType)
	}
}

// SetFieldValue writes a field value on a project item, shaping the
// payload by the field's declared type.
func (r *ProjectsRepository) SetFieldValue(ctx context.Context, projectID, itemID, fieldID string, value any) error {
	field, err := r.getFieldByID(ctx, projectID, fieldID)
	if err != nil {
		return err
	}
	payload, err := shapeFieldValue(field, value)
	if err != nil {
		return err
	}

	mutation := `
	mutation($input: UpdateProjectV2ItemFieldValueInput!) {
	  updateProjectV2ItemFieldValue(input: $input) {
	    projectV2Item {
	      id
	    }
	  }
	}`
	return r.client.graphql(ctx, "setting field value", mutation, map[string]any{
		"input": map[string]any{
			"projectId": projectID,
			"itemId":    itemID,
			"fieldId":   fieldID,
			"value":     payload,
		},
	}, nil)
}

// GetFieldValue reads a single field value off a project item. Returns
// nil when the item has no value for the field.
func (r *ProjectsRepository) GetFieldValue(ctx context.Context, projectID, itemID, fieldID string) (any, error) {
	query := `
	query($id: ID!) {
	  node(id: $id) {
	    ... on ProjectV2Item {
	      fieldValues(first: 50) {
	        nodes {
	          ... on ProjectV2ItemFieldTextValue {
	            text
	            field { ... on ProjectV2FieldCommon { id } }
	          }
	          ... on ProjectV2ItemFieldNumberValue {
	            number
	            field { ... on ProjectV2FieldCommon { id } }
	          }
	          ... on ProjectV2ItemFieldDateValue {
	            date
	            field { ... on ProjectV2FieldCommon { id } }
	          }
	          ... on ProjectV2ItemFieldSingleSelectValue {
	            name
	            field { ... on ProjectV2FieldCommon { id } }
	          }
	          ... on ProjectV2ItemFieldIterationValue {
	            title
	            iterationId
	            field { ... on ProjectV2FieldCommon { id } }
	          }
	        }
	      }
	    }
	  }
	}`
	type valueNode struct {
		Text        *string  `json:"text"`
		Number      *float64 `json:"number"`
		Date        *string  `json:"date"`
		Name        *string  `json:"name"`
		Title       *string  `json:"title"`
		IterationID *string  `json:"iterationId"`
		Field       struct {
			ID string `json:"id"`
		} `json:"field"`
	}
	var resp struct {
		Node *struct {
			FieldValues struct {
				Nodes []valueNode `json:"nodes"`
			} `json:"fieldValues"`
		} `json:"node"`
	}
	if err := r.client.graphql(ctx, "reading field value", query, map[string]any{"id": itemID}, &resp); err != nil {
		return nil, err
	}
	if resp.Node == nil {
		return nil, &ghErrors.ResourceNotFoundError{Message: fmt.Sprintf("project item %s not found", itemID)}
	}
	for _, v := range resp.Node.FieldValues.Nodes {
		if v.Field.ID != fieldID {
			continue
		}
		switch {
		case v.Text != nil:
			return *v.Text, nil
		case v.Number != nil:
			return *v.Number, nil
		case v.Date != nil:
			return *v.Date, nil
		case v.Name != nil:
			return *v.Name, nil
		case v.IterationID != nil:
			if v.Title != nil {
				return map[string]any{"iteration_id": *v.IterationID, "title": *v.Title}, nil
			}
			return *v.IterationID, nil
		}
	}
	return nil, nil
}

// ClearFieldValue removes a field value from a project item.
func (r *ProjectsRepository) ClearFieldValue(ctx context.Context, projectID, itemID, fieldID string) error {
	mutation := `
	mutation($input: ClearProjectV2ItemFieldValueInput!) {
	  clearProjectV2ItemFieldValue(input: $input) {
	    projectV2Item {
	      id
	    }
	  }
	}`
	return r.client.graphql(ctx, "clearing field value", mutation, map[string]any{
		"input": map[string]any{
			"projectId": projectID,
			"itemId":    itemID,
			"fieldId":   fieldID,
		},
	}, nil)
}
