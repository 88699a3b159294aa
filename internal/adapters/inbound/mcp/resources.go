package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/dataval/internal/bootstrap"
	"github.com/abdidvp/dataval/internal/domain"
)

// registerResources registers all dataval MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	// 1. dataval://config - effective project configuration
	s.AddResource(
		mcplib.NewResource(
			"dataval://config",
			"Configuration",
			mcplib.WithResourceDescription("Effective dataval configuration for the project"),
			mcplib.WithMIMEType("application/json"),
		),
		handleConfigResource(projectPath),
	)

	// 2. dataval://history - recorded runs
	s.AddResource(
		mcplib.NewResource(
			"dataval://history",
			"Run History",
			mcplib.WithResourceDescription("Validation runs recorded for the project, oldest first"),
			mcplib.WithMIMEType("application/json"),
		),
		handleHistoryResource(projectPath),
	)
}

func handleConfigResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		cfg, err := bootstrap.LoadConfig(projectPath, "", domain.ProjectConfig{})
		if err != nil {
			return nil, err
		}
		return jsonResource("dataval://config", cfg)
	}
}

func handleHistoryResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		entries, err := bootstrap.NewHistoryService().List(projectPath)
		if err != nil {
			return nil, err
		}
		if entries == nil {
			entries = []domain.RunEntry{}
		}
		return jsonResource("dataval://history", entries)
	}
}

func jsonResource(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
