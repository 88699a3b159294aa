package mcp

import (
	"io"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// NewDatavalMCPServer creates an MCP server with all dataval tools and
// resources registered. Relative paths in tool calls are resolved against
// projectPath.
func NewDatavalMCPServer(projectPath string, log *logrus.Logger) *server.MCPServer {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	s := server.NewMCPServer(
		"dataval",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath, log)
	registerResources(s, projectPath)

	return s
}
