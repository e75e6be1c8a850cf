// Package mcpserver is the composition root: it builds the GitHub
// client, the service layer, and the tool registry, and exposes them
// over MCP stdio. No business logic lives here, only wiring.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/krsjen/github-project-mcp/pkg/github"
	"github.com/krsjen/github-project-mcp/pkg/service"
	"github.com/krsjen/github-project-mcp/pkg/tools"
	"github.com/krsjen/github-project-mcp/pkg/translations"
)

const serverName = "github-project-mcp"

// Config carries everything the server needs at startup.
type Config struct {
	Version string

	Token string
	Owner string
	Repo  string

	// APIBaseURL and GraphQLURL override the GitHub endpoints for
	// Enterprise deployments. Empty means github.com.
	APIBaseURL string
	GraphQLURL string

	// ExportTranslationsPath, when set, receives a JSON dump of every
	// overridable description key after the catalog is built.
	ExportTranslationsPath string

	Logger *slog.Logger
}

// NewServer wires the full stack and returns a ready MCP server.
func NewServer(cfg Config) (*server.MCPServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := github.NewClient(github.Config{
		Owner:      cfg.Owner,
		Repo:       cfg.Repo,
		Token:      cfg.Token,
		APIBaseURL: cfg.APIBaseURL,
		GraphQLURL: cfg.GraphQLURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("building GitHub client: %w", err)
	}
	svc := service.New(client, service.Options{Logger: logger})

	t, dumpTranslations := translations.TranslationHelper()
	registry := tools.DefaultRegistry(t, logger)

	s := server.NewMCPServer(
		serverName,
		cfg.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	for _, tool := range registry.List() {
		s.AddTool(tool.Def, bridgeHandler(registry, svc, tool.Def.Name))
	}
	logger.Info("tool catalog registered", "tools", len(registry.List()))

	if cfg.ExportTranslationsPath != "" {
		dumpTranslations(cfg.ExportTranslationsPath)
	}
	return s, nil
}

// bridgeHandler adapts the registry's envelope pipeline to the mcp-go
// handler signature. The envelope travels as the text payload either
// way; MCP's IsError flag mirrors the envelope status.
func bridgeHandler(registry *tools.Registry, svc *service.Service, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		env := registry.Execute(ctx, svc, name, request.GetRawArguments())
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encoding response: %v", err)), nil
		}
		if env.Status == "error" {
			return mcp.NewToolResultError(string(data)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// RunStdio serves MCP over stdin/stdout until the client disconnects.
// Everything else, logs included, must stay off stdout.
func RunStdio(cfg Config) error {
	s, err := NewServer(cfg)
	if err != nil {
		return err
	}
	return server.ServeStdio(s)
}
