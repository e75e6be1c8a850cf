package tools

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/krsjen/github-project-mcp/pkg/service"
	"github.com/krsjen/github-project-mcp/pkg/translations"
)

// Handler runs a tool against the service with already-validated
// arguments. The optional extra content blocks follow the JSON result in
// the output.
type Handler func(ctx context.Context, svc *service.Service, args map[string]any) (any, []Content, error)

// Tool pairs an MCP tool declaration with its handler.
type Tool struct {
	Def     mcp.Tool
	Handler Handler
}

// Registry is the static tool catalog. It is populated once at startup
// and read-only afterwards.
type Registry struct {
	logger *slog.Logger
	tools  map[string]Tool
	order  []string
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger: logger,
		tools:  make(map[string]Tool),
	}
}

// Register adds a tool. Re-registering a name overwrites the previous
// entry with a warning; it is always a programming mistake worth seeing
// in the logs.
func (r *Registry) Register(tool Tool) {
	name := tool.Def.Name
	if _, exists := r.tools[name]; exists {
		r.logger.Warn("tool registered twice, keeping the newer definition", "tool", name)
	} else {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Get looks a tool up by name.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all tools in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Names returns the sorted tool names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry builds the full catalog.
func DefaultRegistry(t translations.TranslationHelperFunc, logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	for _, tool := range []Tool{
		// Projects
		CreateProjectTool(t),
		ListProjectsTool(t),
		GetProjectTool(t),
		UpdateProjectTool(t),
		DeleteProjectTool(t),
		// Fields
		CreateProjectFieldTool(t),
		ListProjectFieldsTool(t),
		UpdateProjectFieldTool(t),
		// Views
		CreateProjectViewTool(t),
		ListProjectViewsTool(t),
		UpdateProjectViewTool(t),
		DeleteProjectViewTool(t),
		// Items and field values
		AddProjectItemTool(t),
		RemoveProjectItemTool(t),
		ListProjectItemsTool(t),
		SetFieldValueTool(t),
		GetFieldValueTool(t),
		ClearFieldValueTool(t),
		// Issues
		CreateIssueTool(t),
		ListIssuesTool(t),
		GetIssueTool(t),
		UpdateIssueTool(t),
		DeleteIssueTool(t),
		SearchIssuesTool(t),
		// Comments and labels
		AddIssueCommentTool(t),
		ListIssueCommentsTool(t),
		UpdateIssueCommentTool(t),
		DeleteIssueCommentTool(t),
		CreateLabelTool(t),
		ListLabelsTool(t),
		// Milestones
		CreateMilestoneTool(t),
		GetMilestoneTool(t),
		ListMilestonesTool(t),
		UpdateMilestoneTool(t),
		DeleteMilestoneTool(t),
		GetMilestoneMetricsTool(t),
		GetOverdueMilestonesTool(t),
		GetUpcomingMilestonesTool(t),
		// Sprints
		CreateSprintTool(t),
		ListSprintsTool(t),
		GetSprintTool(t),
		GetCurrentSprintTool(t),
		UpdateSprintTool(t),
		DeleteSprintTool(t),
		AddIssuesToSprintTool(t),
		RemoveIssuesFromSprintTool(t),
		GetSprintMetricsTool(t),
		// Composites
		CreateRoadmapTool(t),
		PlanSprintTool(t),
	} {
		r.Register(tool)
	}
	return r
}
