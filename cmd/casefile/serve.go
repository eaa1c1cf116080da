// Package main provides the entry point for the git-casefile CLI.
package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/caseflow/git-casefile/internal/mcpserver"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run git-casefile as a Model Context Protocol (MCP) server over stdio.

This exposes casefile operations as MCP tools that any MCP-capable agent
environment can use (Claude Code, Cursor, Windsurf, Gemini CLI, etc).

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "git-casefile": {
        "command": "casefile",
        "args": ["serve"]
      }
    }
  }

Available tools: share, list, get, deleted, locate`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keeper, _ := newKeeper(cmd)
			server := mcpserver.NewServer(buildVersion(), keeper)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
