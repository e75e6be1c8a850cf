// Package types holds the canonical domain model the repositories
// normalize GitHub's wire shapes into.
package types

// ResourceType identifies the kind of a domain resource.
type ResourceType string

const (
	ResourceProject   ResourceType = "project"
	ResourceIssue     ResourceType = "issue"
	ResourceMilestone ResourceType = "milestone"
	ResourceSprint    ResourceType = "sprint"
	ResourceLabel     ResourceType = "label"
	ResourceView      ResourceType = "view"
	ResourceField     ResourceType = "field"
	ResourceComment   ResourceType = "comment"
)

// ResourceStatus is the richer status vocabulary the tool surface
// accepts. GitHub issues only support open/closed; InProgress is
// approximated via an "in-progress" label.
type ResourceStatus string

const (
	StatusActive     ResourceStatus = "active"
	StatusInProgress ResourceStatus = "in_progress"
	StatusClosed     ResourceStatus = "closed"
)

// FieldType enumerates Projects-v2 custom field types.
type FieldType string

const (
	FieldText         FieldType = "text"
	FieldNumber       FieldType = "number"
	FieldDate         FieldType = "date"
	FieldSingleSelect FieldType = "single_select"
	FieldIteration    FieldType = "iteration"
	FieldMilestone    FieldType = "milestone"
	FieldAssignees    FieldType = "assignees"
	FieldLabels       FieldType = "labels"
	FieldRepository   FieldType = "repository"
	FieldTrackedBy    FieldType = "tracked_by"
	FieldTracks       FieldType = "tracks"
)

// ViewLayout enumerates Projects-v2 view layouts.
type ViewLayout string

const (
	LayoutBoard    ViewLayout = "board"
	LayoutTable    ViewLayout = "table"
	LayoutTimeline ViewLayout = "timeline"
	LayoutRoadmap  ViewLayout = "roadmap"
)

// Project is a GitHub Projects-v2 project. ID is the GraphQL node id.
type Project struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Owner       string         `json:"owner"`
	Number      int            `json:"number"`
	URL         string         `json:"url"`
	Fields      []CustomField  `json:"fields"`
	Views       []ProjectView  `json:"views,omitempty"`
	Closed      bool           `json:"closed"`
	Status      ResourceStatus `json:"status"`
	Visibility  string         `json:"visibility"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// Issue is a repository issue. ID is the issue number as a string.
type Issue struct {
	ID          string         `json:"id"`
	Number      int            `json:"number"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      ResourceStatus `json:"status"`
	Assignees   []string       `json:"assignees"`
	Labels      []string       `json:"labels"`
	MilestoneID string         `json:"milestone_id,omitempty"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
	URL         string         `json:"url"`
}

// IssueComment belongs to exactly one issue.
type IssueComment struct {
	ID        string `json:"id"`
	Body      string `json:"body"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	URL       string `json:"url"`
}

// Milestone is a repository milestone. ID is the milestone number as a
// string.
type Milestone struct {
	ID          string         `json:"id"`
	Number      int            `json:"number"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DueDate     string         `json:"due_date,omitempty"`
	Status      ResourceStatus `json:"status"`
	Progress    *Progress      `json:"progress,omitempty"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
	URL         string         `json:"url"`
}

// Progress summarizes issue completion for a milestone.
type Progress struct {
	OpenIssues   int     `json:"open_issues"`
	ClosedIssues int     `json:"closed_issues"`
	Percent      float64 `json:"percent"`
}

// Sprint is a Projects-v2 iteration. ID is the iteration id, which is
// only unique within its iteration field.
type Sprint struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	StartDate   string         `json:"start_date"`
	EndDate     string         `json:"end_date"`
	Status      ResourceStatus `json:"status"`
	Issues      []string       `json:"issues"`
}

// CustomField is a Projects-v2 field definition.
type CustomField struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        FieldType     `json:"type"`
	Options     []FieldOption `json:"options,omitempty"`
	Required    bool          `json:"required"`
	Description string        `json:"description,omitempty"`
}

// FieldOption is one choice of a single_select field.
type FieldOption struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}

// ProjectView is a saved view of a project.
type ProjectView struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Layout ViewLayout `json:"layout"`
}

// ProjectItem joins a project to a content entity. ItemID is distinct
// from both the project id and the content's own id; field values are
// keyed by field id.
type ProjectItem struct {
	ItemID      string `json:"item_id"`
	ProjectID   string `json:"project_id"`
	ContentID   string `json:"content_id,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Title       string `json:"title,omitempty"`
	Number      int    `json:"number,omitempty"`
}

// Label is a repository label.
type Label struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

// CreateProject carries the inputs for project creation.
type CreateProject struct {
	Title            string
	ShortDescription string
	Owner            string
	Visibility       string
}

// CreateIssue carries the inputs for issue creation.
type CreateIssue struct {
	Title       string
	Description string
	MilestoneID string
	Assignees   []string
	Labels      []string
}

// CreateMilestone carries the inputs for milestone creation. DueDate is
// parsed permissively; see the milestone repository.
type CreateMilestone struct {
	Title       string
	Description string
	DueDate     string
	Status      ResourceStatus
}

// CreateSprint carries the inputs for sprint creation. Issues are issue
// numbers (as strings) to assign to the new iteration.
type CreateSprint struct {
	Title       string
	Description string
	StartDate   string
	EndDate     string
	Issues      []string
	Goals       []string
}

// CreateField carries the inputs for custom field creation.
type CreateField struct {
	Name        string
	Type        FieldType
	Options     []FieldOption
	Description string
	Required    bool
}

// StatusFromClosed derives the project/milestone status from the wire
// closed flag.
func StatusFromClosed(closed bool) ResourceStatus {
	if closed {
		return StatusClosed
	}
	return StatusActive
}
