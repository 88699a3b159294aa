package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	mcpadapter "github.com/abdidvp/dataval/internal/adapters/inbound/mcp"
)

func newMCPCmd(log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the dataval MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(log))
	return cmd
}

func newMCPServeCmd(log *logrus.Logger) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dataval MCP server (stdio)",
		Long:  "Start the dataval MCP server using stdio transport. Assistants can validate files, detect formats and read the run history.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectPath == "" {
				projectPath = "."
			}
			s := mcpadapter.NewDatavalMCPServer(projectPath, log)
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")

	return cmd
}
