package github

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	ghErrors "github.com/krsjen/github-project-mcp/pkg/errors"
	"github.com/krsjen/github-project-mcp/pkg/types"
)

// SprintsRepository manages sprints, which GitHub models as iterations
// of a Projects-v2 iteration field. There is no iteration CRUD in the
// GraphQL schema; every write rewrites the owning field's whole
// configuration, so concurrent sprint writes on one project can lose
// updates.
type SprintsRepository struct {
	client *Client
}

const (
	sprintDateLayout      = "2006-01-02"
	defaultSprintDuration = 14
)

// iterationFieldNames are the field names treated as "the" sprint field,
// checked in order before falling back to any iteration-typed field.
var iterationFieldNames = []string{"iteration", "sprint", "iterations", "sprints"}

// findIterationField locates the project's iteration field. The error on
// a miss tells the caller how to fix their board.
func (r *SprintsRepository) findIterationField(ctx context.Context, projectID string) (*fieldNode, error) {
	nodes, err := r.client.Projects.listFieldNodes(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var fallback *fieldNode
	for i := range nodes {
		if fieldTypeFromGraphQL(nodes[i].DataType) != types.FieldIteration {
			continue
		}
		if fallback == nil {
			fallback = &nodes[i]
		}
		for _, want := range iterationFieldNames {
			if strings.EqualFold(nodes[i].Name, want) {
				return &nodes[i], nil
			}
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, &ghErrors.ResourceNotFoundError{
		Message: fmt.Sprintf("project %s has no iteration field; add one named %q in the project settings to enable sprints",
			projectID, "Sprint"),
	}
}

func sprintEndDate(startDate string, duration int) string {
	start, err := time.Parse(sprintDateLayout, startDate)
	if err != nil {
		return ""
	}
	return start.AddDate(0, 0, duration-1).Format(sprintDateLayout)
}

func convertSprint(iter iterationNode, completed bool, now time.Time) types.Sprint {
	sprint := types.Sprint{
		ID:        iter.ID,
		Title:     iter.Title,
		StartDate: iter.StartDate,
		EndDate:   sprintEndDate(iter.StartDate, iter.Duration),
		Status:    types.StatusActive,
		Issues:    []string{},
	}
	if completed {
		sprint.Status = types.StatusClosed
		return sprint
	}
	if start, err := time.Parse(sprintDateLayout, iter.StartDate); err == nil {
		end := start.AddDate(0, 0, iter.Duration)
		if !now.Before(start) && now.Before(end) {
			sprint.Status = types.StatusInProgress
		}
	}
	return sprint
}

// strippedIterations rewrites a configuration's iterations without their
// ids, the shape UpdateProjectV2Field accepts back.
func strippedIterations(iters []iterationNode) []map[string]any {
	out := make([]map[string]any, 0, len(iters))
	for _, it := range iters {
		out = append(out, map[string]any{
			"title":     it.Title,
			"startDate": it.StartDate,
			"duration":  it.Duration,
		})
	}
	return out
}

// writeConfiguration replaces an iteration field's active iterations.
// Completed iterations are immutable and stay out of the payload.
func (r *SprintsRepository) writeConfiguration(ctx context.Context, projectID, fieldID, startDate string, duration int, iterations []map[string]any) error {
	mutation := `
	mutation($input: UpdateProjectV2FieldInput!) {
	  updateProjectV2Field(input: $input) {
	    projectV2Field {
	      ... on ProjectV2IterationField {
	        id
	      }
	    }
	  }
	}`
	return r.client.graphql(ctx, "writing iteration configuration", mutation, map[string]any{
		"input": map[string]any{
			"projectId": projectID,
			"fieldId":   fieldID,
			"iterationConfiguration": map[string]any{
				"startDate":  startDate,
				"duration":   duration,
				"iterations": iterations,
			},
		},
	}, nil)
}

func minStartDate(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	ta, errA := time.Parse(sprintDateLayout, a)
	tb, errB := time.Parse(sprintDateLayout, b)
	if errA != nil {
		return b
	}
	if errB != nil || ta.Before(tb) {
		return a
	}
	return b
}

// Create appends a new iteration to the project's iteration field and
// optionally assigns issues to it.
func (r *SprintsRepository) Create(ctx context.Context, projectID string, data types.CreateSprint) (*types.Sprint, error) {
	start, err := time.Parse(sprintDateLayout, data.StartDate)
	if err != nil {
		return nil, ghErrors.NewValidationError("create_sprint", "start_date",
			fmt.Sprintf("could not parse %q; use YYYY-MM-DD", data.StartDate))
	}
	duration := defaultSprintDuration
	if data.EndDate != "" {
		end, err := time.Parse(sprintDateLayout, data.EndDate)
		if err != nil {
			return nil, ghErrors.NewValidationError("create_sprint", "end_date",
				fmt.Sprintf("could not parse %q; use YYYY-MM-DD", data.EndDate))
		}
		duration = int(end.Sub(start).Hours()/24) + 1
		if duration < 1 {
			return nil, ghErrors.NewValidationError("create_sprint", "end_date",
				"end_date precedes start_date")
		}
	}

	field, err := r.findIterationField(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var config iterationConfigurationNode
	if field.Configuration != nil {
		config = *field.Configuration
	}

	iterations := strippedIterations(config.Iterations)
	iterations = append(iterations, map[string]any{
		"title":     data.Title,
		"startDate": data.StartDate,
		"duration":  duration,
	})
	configStart := minStartDate(config.StartDate, data.StartDate)
	configDuration := config.Duration
	if configDuration == 0 {
		configDuration = defaultSprintDuration
	}

	if err := r.writeConfiguration(ctx, projectID, field.ID, configStart, configDuration, iterations); err != nil {
		return nil, err
	}

	created, err := r.findIterationByTitle(ctx, projectID, data.Title)
	if err != nil {
		return nil, err
	}

	sprint := convertSprint(*created, false, time.Now().UTC())
	sprint.Description = data.Description

	for _, rawNumber := range data.Issues {
		number, err := strconv.Atoi(rawNumber)
		if err != nil {
			return nil, ghErrors.NewValidationError("create_sprint", "issues",
				fmt.Sprintf("%q is not an issue number", rawNumber))
		}
		if err := r.assignIssue(ctx, projectID, field.ID, created.ID, number); err != nil {
			return nil, fmt.Errorf("sprint %q created but assigning issue #%d failed: %w", data.Title, number, err)
		}
		sprint.Issues = append(sprint.Issues, rawNumber)
	}
	return &sprint, nil
}

// findIterationByTitle re-reads the field and returns the active
// iteration with the given title. Needed after a configuration write,
// which does not echo the new iteration's server-assigned id.
func (r *SprintsRepository) findIterationByTitle(ctx context.Context, projectID, title string) (*iterationNode, error) {
	field, err := r.findIterationField(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if field.Configuration != nil {
		for i := range field.Configuration.Iterations {
			if field.Configuration.Iterations[i].Title == title {
				return &field.Configuration.Iterations[i], nil
			}
		}
	}
	return nil, &ghErrors.ResourceNotFoundError{
		Message: fmt.Sprintf("iteration %q not found after configuration write", title),
	}
}

// assignIssue puts an issue on the board (idempotently) and points its
// iteration field at the sprint.
func (r *SprintsRepository) assignIssue(ctx context.Context, projectID, fieldID, iterationID string, issueNumber int) error {
	nodeID, err := r.client.Issues.GetNodeID(ctx, issueNumber)
	if err != nil {
		return err
	}
	itemID, err := r.client.Projects.AddItem(ctx, projectID, nodeID)
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
	return r.client.graphql(ctx, "assigning issue to sprint", mutation, map[string]any{
		"input": map[string]any{
			"projectId": projectID,
			"itemId":    itemID,
			"fieldId":   fieldID,
			"value":     map[string]any{"iterationId": iterationID},
		},
	}, nil)
}

// locate returns the field plus the iteration with the given id and
// whether it is completed.
func (r *SprintsRepository) locate(ctx context.Context, projectID, sprintID string) (*fieldNode, *iterationNode, bool, error) {
	field, err := r.findIterationField(ctx, projectID)
	if err != nil {
		return nil, nil, false, err
	}
	if field.Configuration != nil {
		for i := range field.Configuration.Iterations {
			if field.Configuration.Iterations[i].ID == sprintID {
				return field, &field.Configuration.Iterations[i], false, nil
			}
		}
		for i := range field.Configuration.CompletedIterations {
			if field.Configuration.CompletedIterations[i].ID == sprintID {
				return field, &field.Configuration.CompletedIterations[i], true, nil
			}
		}
	}
	return nil, nil, false, &ghErrors.ResourceNotFoundError{
		Message: fmt.Sprintf("sprint %s not found on project %s", sprintID, projectID),
	}
}

// FindByID returns one sprint with its assigned issue numbers.
func (r *SprintsRepository) FindByID(ctx context.Context, projectID, sprintID string) (*types.Sprint, error) {
	field, iter, completed, err := r.locate(ctx, projectID, sprintID)
	if err != nil {
		return nil, err
	}
	sprint := convertSprint(*iter, completed, time.Now().UTC())
	issues, err := r.issuesForIteration(ctx, projectID, field.ID, sprintID)
	if err != nil {
		return nil, err
	}
	sprint.Issues = issues
	return &sprint, nil
}

// FindAll returns every sprint on the project, completed ones included.
func (r *SprintsRepository) FindAll(ctx context.Context, projectID string) ([]types.Sprint, error) {
	field, err := r.findIterationField(ctx, projectID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	var sprints []types.Sprint
	if field.Configuration != nil {
		for _, it := range field.Configuration.CompletedIterations {
			sprints = append(sprints, convertSprint(it, true, now))
		}
		for _, it := range field.Configuration.Iterations {
			sprints = append(sprints, convertSprint(it, false, now))
		}
	}
	return sprints, nil
}

// FindCurrent returns the sprint whose date range covers today, or nil.
func (r *SprintsRepository) FindCurrent(ctx context.Context, projectID string) (*types.Sprint, error) {
	sprints, err := r.FindAll(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range sprints {
		if sprints[i].Status == types.StatusInProgress {
			return &sprints[i], nil
		}
	}
	return nil, nil
}

// Update rewrites a sprint's title or dates. Completed sprints are
// immutable on GitHub's side. Recognized keys: title, start_date,
// end_date.
func (r *SprintsRepository) Update(ctx context.Context, projectID, sprintID string, data map[string]any) (*types.Sprint, error) {
	field, iter, completed, err := r.locate(ctx, projectID, sprintID)
	if err != nil {
		return nil, err
	}
	if completed {
		return nil, ghErrors.NewValidationError("update_sprint", "sprint_id",
			"completed sprints cannot be modified")
	}

	title := iter.Title
	if raw, ok := data["title"]; ok {
		title = fmt.Sprint(raw)
	}
	startDate := iter.StartDate
	if raw, ok := data["start_date"]; ok {
		startDate = fmt.Sprint(raw)
		if _, err := time.Parse(sprintDateLayout, startDate); err != nil {
			return nil, ghErrors.NewValidationError("update_sprint", "start_date",
				fmt.Sprintf("could not parse %q; use YYYY-MM-DD", startDate))
		}
	}
	duration := iter.Duration
	if raw, ok := data["end_date"]; ok {
		start, err := time.Parse(sprintDateLayout, startDate)
		if err != nil {
			return nil, ghErrors.NewValidationError("update_sprint", "start_date",
				fmt.Sprintf("could not parse %q; use YYYY-MM-DD", startDate))
		}
		end, err := time.Parse(sprintDateLayout, fmt.Sprint(raw))
		if err != nil {
			return nil, ghErrors.NewValidationError("update_sprint", "end_date",
				fmt.Sprintf("could not parse %q; use YYYY-MM-DD", raw))
		}
		duration = int(end.Sub(start).Hours()/24) + 1
		if duration < 1 {
			return nil, ghErrors.NewValidationError("update_sprint", "end_date",
				"end_date precedes start_date")
		}
	}

	config := field.Configuration
	iterations := make([]map[string]any, 0, len(config.Iterations))
	configStart := config.StartDate
	for _, it := range config.Iterations {
		if it.ID == sprintID {
			it = iterationNode{Title: title, StartDate: startDate, Duration: duration}
		}
		iterations = append(iterations, map[string]any{
			"title":     it.Title,
			"startDate": it.StartDate,
			"duration":  it.Duration,
		})
		configStart = minStartDate(configStart, it.StartDate)
	}
	if err := r.writeConfiguration(ctx, projectID, field.ID, configStart, config.Duration, iterations); err != nil {
		return nil, err
	}

	updated, err := r.findIterationByTitle(ctx, projectID, title)
	if err != nil {
		return nil, err
	}
	sprint := convertSprint(*updated, false, time.Now().UTC())
	return &sprint, nil
}

// Delete removes a sprint from the field configuration. Items that
// pointed at it lose their iteration value.
func (r *SprintsRepository) Delete(ctx context.Context, projectID, sprintID string) error {
	field, _, completed, err := r.locate(ctx, projectID, sprintID)
	if err != nil {
		return err
	}
	if completed {
		return ghErrors.NewValidationError("delete_sprint", "sprint_id",
			"completed sprints cannot be deleted")
	}

	config := field.Configuration
	iterations := make([]map[string]any, 0, len(config.Iterations))
	for _, it := range config.Iterations {
		if it.ID == sprintID {
			continue
		}
		iterations = append(iterations, map[string]any{
			"title":     it.Title,
			"startDate": it.StartDate,
			"duration":  it.Duration,
		})
	}
	return r.writeConfiguration(ctx, projectID, field.ID, config.StartDate, config.Duration, iterations)
}

// AddIssue assigns an issue to a sprint, adding it to the board first if
// needed.
func (r *SprintsRepository) AddIssue(ctx context.Context, projectID, sprintID string, issueNumber int) error {
	field, iter, completed, err := r.locate(ctx, projectID, sprintID)
	if err != nil {
		return err
	}
	if completed {
		return ghErrors.NewValidationError("add_issue_to_sprint", "sprint_id",
			"completed sprints cannot receive issues")
	}
	return r.assignIssue(ctx, projectID, field.ID, iter.ID, issueNumber)
}

// RemoveIssue clears an issue's iteration value. The issue stays on the
// board.
func (r *SprintsRepository) RemoveIssue(ctx context.Context, projectID, sprintID string, issueNumber int) error {
	field, _, _, err := r.locate(ctx, projectID, sprintID)
	if err != nil {
		return err
	}
	itemID, err := r.client.Projects.GetItemIDForIssue(ctx, projectID, issueNumber)
	if err != nil {
		return err
	}
	return r.client.Projects.ClearFieldValue(ctx, projectID, itemID, field.ID)
}

// GetIssues returns the issues assigned to a sprint.
func (r *SprintsRepository) GetIssues(ctx context.Context, projectID, sprintID string) ([]types.Issue, error) {
	field, _, _, err := r.locate(ctx, projectID, sprintID)
	if err != nil {
		return nil, err
	}
	numbers, err := r.issuesForIteration(ctx, projectID, field.ID, sprintID)
	if err != nil {
		return nil, err
	}
	issues := make([]types.Issue, 0, len(numbers))
	for _, raw := range numbers {
		number, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		issue, err := r.client.Issues.Get(ctx, number)
		if err != nil {
			return nil, err
		}
		issues = append(issues, *issue)
	}
	return issues, nil
}

// issuesForIteration scans the project's items for ones whose iteration
// field points at iterationID, returning their issue numbers.
func (r *SprintsRepository) issuesForIteration(ctx context.Context, projectID, fieldID, iterationID string) ([]string, error) {
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
	          content {
	            ... on Issue {
	              number
	            }
	          }
	          fieldValues(first: 50) {
	            nodes {
	              ... on ProjectV2ItemFieldIterationValue {
	                iterationId
	                field { ... on ProjectV2FieldCommon { id } }
	              }
	            }
	          }
	        }
	      }
	    }
	  }
	}`

	type itemWithValues struct {
		Content *struct {
			Number int `json:"number"`
		} `json:"content"`
		FieldValues struct {
			Nodes []struct {
				IterationID string `json:"iterationId"`
				Field       struct {
					ID string `json:"id"`
				} `json:"field"`
			} `json:"nodes"`
		} `json:"fieldValues"`
	}

	var numbers []string
	var after *string
	for {
		var resp struct {
			Node *struct {
				Items struct {
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
					Nodes []itemWithValues `json:"nodes"`
				} `json:"items"`
			} `json:"node"`
		}
		vars := map[string]any{"id": projectID, "first": itemsPageSize}
		if after != nil {
			vars["after"] = *after
		}
		if err := r.client.graphql(ctx, "listing sprint issues", query, vars, &resp); err != nil {
			return nil, err
		}
		if resp.Node == nil {
			return nil, &ghErrors.ResourceNotFoundError{Message: fmt.Sprintf("project %s not found", projectID)}
		}
		for _, item := range resp.Node.Items.Nodes {
			if item.Content == nil || item.Content.Number == 0 {
				continue
			}
			for _, v := range item.FieldValues.Nodes {
				if v.Field.ID == fieldID && v.IterationID == iterationID {
					numbers = append(numbers, strconv.Itoa(item.Content.Number))
					break
				}
			}
		}
		if !resp.Node.Items.PageInfo.HasNextPage {
			return numbers, nil
		}
		cursor := resp.Node.Items.PageInfo.EndCursor
		after = &cursor
	}
}
