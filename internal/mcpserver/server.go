// Package mcpserver provides a Model Context Protocol server for
// git-casefile. It exposes casefile operations as MCP tools that any
// MCP-capable agent can use, the way the teacher's internal/mcp exposes
// ledger operations — repointed at CasefileKeeper instead of a ledger
// Storage.
package mcpserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/caseflow/git-casefile/internal/collab"
)

// NewServer creates an MCP server with every casefile tool registered.
func NewServer(version string, keeper *collab.CasefileKeeper) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "git-casefile",
		Version: version,
	}, nil)
	registerTools(server, keeper)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for read-only tools.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations returns annotations for write tools (additive, not
// destructive: sharing an unchanged casefile is a no-op).
func writeAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(false),
		OpenWorldHint:   boolPtr(false),
	}
}

// registerTools adds every casefile tool to the server.
func registerTools(server *mcp.Server, keeper *collab.CasefileKeeper) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "share",
		Description: "Publish a bookmark forest to the shared casefile tree and push it to the remote. Sharing an unchanged casefile is a no-op.",
		Annotations: writeAnnotations(),
	}, handleShare(keeper))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list",
		Description: "List every group in the shared casefile tree, along with its instances.",
		Annotations: readOnlyAnnotations(),
	}, handleList(keeper))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get",
		Description: "Read and return the casefile at a <group>/<instance> path in the shared tree.",
		Annotations: readOnlyAnnotations(),
	}, handleGet(keeper))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "deleted",
		Description: "List deleted-casefile records recoverable from the shared ref's history, optionally filtered by a partial group name.",
		Annotations: readOnlyAnnotations(),
	}, handleDeleted(keeper))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "locate",
		Description: "Resolve a bookmark's current (file, line, col), combining blame-based pinpointing with a diff-hunk fallback search.",
		Annotations: readOnlyAnnotations(),
	}, handleLocate(keeper))
}
