package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/abdidvp/dataval/internal/adapters/outbound/detector"
	"github.com/abdidvp/dataval/internal/bootstrap"
	"github.com/abdidvp/dataval/internal/domain"
	"github.com/abdidvp/dataval/internal/domain/summary"
)

// registerTools registers all dataval MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string, log *logrus.Logger) {
	schemaArgs := []mcplib.ToolOption{
		mcplib.WithString("xsd", mcplib.Description("XSD for .xml files (path or http(s) URL)")),
		mcplib.WithString("schematron", mcplib.Description("Schematron ruleset evaluated after the XSD")),
		mcplib.WithString("json_schema", mcplib.Description("JSON Schema for .json files (path or http(s) URL)")),
		mcplib.WithString("csv_schema", mcplib.Description("YAML column rules for .csv files")),
	}

	// 1. dataval_validate
	s.AddTool(
		mcplib.NewTool("dataval_validate", append([]mcplib.ToolOption{
			mcplib.WithDescription("Validate a file or directory and return one JSON report per file, with issues and suggestions"),
			mcplib.WithString("path", mcplib.Required(), mcplib.Description("File or directory, relative to the project root")),
		}, schemaArgs...)...),
		handleValidate(projectPath, log),
	)

	// 2. dataval_detect_kind
	s.AddTool(
		mcplib.NewTool("dataval_detect_kind",
			mcplib.WithDescription("Return the format kind (xml, json, csv or unknown) dataval assigns to a file name"),
			mcplib.WithString("path", mcplib.Required(), mcplib.Description("File name or path")),
		),
		handleDetectKind(),
	)

	// 3. dataval_summarize
	s.AddTool(
		mcplib.NewTool("dataval_summarize", append([]mcplib.ToolOption{
			mcplib.WithDescription("Validate a file or directory and return a short plain-text summary per file"),
			mcplib.WithString("path", mcplib.Required(), mcplib.Description("File or directory, relative to the project root")),
		}, schemaArgs...)...),
		handleSummarize(projectPath, log),
	)
}

// run validates the request's path with the project config plus any schema
// arguments.
func run(ctx context.Context, projectPath string, request mcplib.CallToolRequest, log *logrus.Logger) ([]domain.Result, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return nil, err
	}
	target := resolve(projectPath, path)
	if _, err := os.Stat(target); err != nil {
		return nil, fmt.Errorf("path not found: %s", path)
	}

	args := request.GetArguments()
	arg := func(key string) string {
		v, _ := args[key].(string)
		if v == "" || strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
			return v
		}
		return resolve(projectPath, v)
	}
	override := domain.ProjectConfig{
		XSD:        arg("xsd"),
		Schematron: arg("schematron"),
		JSONSchema: arg("json_schema"),
		CSVSchema:  arg("csv_schema"),
	}

	cfg, err := bootstrap.LoadConfig(projectPath, "", override)
	if err != nil {
		return nil, err
	}
	runner, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	return runner.Service.Run(ctx, target)
}

func handleValidate(projectPath string, log *logrus.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		results, err := run(ctx, projectPath, request, log)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		type response struct {
			Passed  bool             `json:"passed"`
			Reports []*domain.Report `json:"reports"`
		}
		resp := response{Passed: !domain.AnyFailed(results), Reports: make([]*domain.Report, 0, len(results))}
		for _, r := range results {
			resp.Reports = append(resp.Reports, r.Report)
		}
		return jsonResult(resp)
	}
}

func handleDetectKind() server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(map[string]string{
			"path": path,
			"kind": string(detector.Detect(path)),
		})
	}
}

func handleSummarize(projectPath string, log *logrus.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		results, err := run(ctx, projectPath, request, log)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		if len(results) == 0 {
			return textResult("No supported files found."), nil
		}

		parts := make([]string, 0, len(results))
		for _, r := range results {
			parts = append(parts, summary.Summarize(r.Report))
		}
		return textResult(strings.Join(parts, "\n\n")), nil
	}
}

func resolve(projectPath, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(projectPath, p)
}

// jsonResult marshals v as indented JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
