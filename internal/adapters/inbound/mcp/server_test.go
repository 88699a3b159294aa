package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpadapter "github.com/abdidvp/dataval/internal/adapters/inbound/mcp"
)

func examplesDir(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs("../../../../testdata/examples")
	require.NoError(t, err)
	return abs
}

func TestNewDatavalMCPServer(t *testing.T) {
	s := mcpadapter.NewDatavalMCPServer(".", nil)
	require.NotNil(t, s)
}

func TestMCPServerHasTools(t *testing.T) {
	s := mcpadapter.NewDatavalMCPServer(".", nil)
	require.NotNil(t, s)

	tools := s.ListTools()
	require.NotNil(t, tools)

	expectedTools := []string{
		"dataval_validate",
		"dataval_detect_kind",
		"dataval_summarize",
	}

	for _, name := range expectedTools {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}

	assert.Len(t, tools, len(expectedTools), "should have exactly %d tools", len(expectedTools))
}

func callTool(t *testing.T, projectPath, name string, args map[string]any) *mcplib.CallToolResult {
	t.Helper()
	s := mcpadapter.NewDatavalMCPServer(projectPath, nil)
	tool, ok := s.ListTools()[name]
	require.True(t, ok, "tool %q", name)

	req := mcplib.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestValidateTool(t *testing.T) {
	res := callTool(t, examplesDir(t), "dataval_validate", map[string]any{"path": "data/json"})
	require.False(t, res.IsError, text(t, res))

	var resp struct {
		Passed  bool `json:"passed"`
		Reports []struct {
			File   string `json:"file"`
			Passed bool   `json:"passed"`
		} `json:"reports"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &resp))
	assert.False(t, resp.Passed)
	require.Len(t, resp.Reports, 2)
	assert.True(t, resp.Reports[0].Passed)
	assert.False(t, resp.Reports[1].Passed)
}

func TestValidateTool_SchemaArgument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.json"), []byte(`{"title": "x", "count": 1}`), 0644))
	schema := filepath.Join(examplesDir(t), "schemas", "record.schema.json")

	res := callTool(t, dir, "dataval_validate", map[string]any{"path": "doc.json", "json_schema": schema})
	require.False(t, res.IsError, text(t, res))
	assert.Contains(t, text(t, res), `"passed": true`)
}

func TestValidateTool_MissingPath(t *testing.T) {
	res := callTool(t, t.TempDir(), "dataval_validate", map[string]any{"path": "nope"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "path not found")
}

func TestValidateTool_RequiresPath(t *testing.T) {
	res := callTool(t, t.TempDir(), "dataval_validate", map[string]any{})
	assert.True(t, res.IsError)
}

func TestDetectKindTool(t *testing.T) {
	tests := map[string]string{
		"label.XML":  "xml",
		"data.json":  "json",
		"table.csv":  "csv",
		"readme.txt": "unknown",
	}
	for path, want := range tests {
		res := callTool(t, ".", "dataval_detect_kind", map[string]any{"path": path})
		require.False(t, res.IsError)

		var got map[string]string
		require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
		assert.Equal(t, want, got["kind"], path)
		assert.Equal(t, path, got["path"])
	}
}

func TestSummarizeTool(t *testing.T) {
	res := callTool(t, examplesDir(t), "dataval_summarize", map[string]any{"path": "data/xml/reversed.xml"})
	require.False(t, res.IsError, text(t, res))
	assert.Contains(t, text(t, res), "reversed.xml")
}

func TestSummarizeTool_NoSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))

	res := callTool(t, dir, "dataval_summarize", map[string]any{"path": "."})
	require.False(t, res.IsError)
	assert.Equal(t, "No supported files found.", text(t, res))
}
