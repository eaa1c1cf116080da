package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/caseflow/git-casefile/internal/casefile"
	"github.com/caseflow/git-casefile/internal/collab"
	"github.com/caseflow/git-casefile/internal/relocator"
)

// --- Share tool ---

// ShareInput is the input for the share tool.
type ShareInput struct {
	Path      string               `json:"path"      jsonschema:"casefile path, <group>/<instance>"`
	Bookmarks []casefile.Bookmark `json:"bookmarks" jsonschema:"bookmark forest to publish"`
}

// ShareOutput is the output for the share tool.
type ShareOutput struct {
	Message string `json:"message" jsonschema:"human-readable result"`
	Commit  string `json:"commit"  jsonschema:"resulting commit SHA, or the shared ref's current tip commit SHA on no-op"`
	NoOp    bool   `json:"no_op"   jsonschema:"true when the casefile was already shared unchanged"`
}

func handleShare(keeper *collab.CasefileKeeper) mcp.ToolHandlerFor[ShareInput, ShareOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ShareInput) (*mcp.CallToolResult, ShareOutput, error) {
		if input.Path == "" {
			return nil, ShareOutput{}, errors.New("path is required")
		}
		result, err := keeper.DefaultRemote().Share(input.Path, input.Bookmarks)
		if err != nil {
			return nil, ShareOutput{}, fmt.Errorf("sharing casefile: %w", err)
		}
		return nil, ShareOutput{Message: result.Message, Commit: result.Commit, NoOp: result.NoOp}, nil
	}
}

// --- List tool ---

// ListInput is the input for the list tool (no parameters needed).
type ListInput struct{}

// ListOutput is the output for the list tool.
type ListOutput struct {
	Groups []collab.CasefileGroup `json:"groups" jsonschema:"every group in the shared tree, with its instances"`
}

func handleList(keeper *collab.CasefileKeeper) mcp.ToolHandlerFor[ListInput, ListOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, ListOutput, error) {
		groups, err := keeper.ListGroups()
		if err != nil {
			return nil, ListOutput{}, fmt.Errorf("listing groups: %w", err)
		}
		return nil, ListOutput{Groups: groups}, nil
	}
}

// --- Get tool ---

// GetInput is the input for the get tool.
type GetInput struct {
	Path string `json:"path" jsonschema:"casefile path, <group>/<instance>"`
}

// GetOutput is the output for the get tool.
type GetOutput struct {
	Casefile casefile.Casefile `json:"casefile" jsonschema:"the retrieved casefile"`
}

func handleGet(keeper *collab.CasefileKeeper) mcp.ToolHandlerFor[GetInput, GetOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input GetInput) (*mcp.CallToolResult, GetOutput, error) {
		if input.Path == "" {
			return nil, GetOutput{}, errors.New("path is required")
		}
		cf, err := keeper.GetCasefile(input.Path)
		if err != nil {
			return nil, GetOutput{}, fmt.Errorf("getting casefile: %w", err)
		}
		return nil, GetOutput{Casefile: cf}, nil
	}
}

// --- Deleted tool ---

// DeletedInput is the input for the deleted tool.
type DeletedInput struct {
	Partial string `json:"partial,omitempty" jsonschema:"restrict results to groups whose name contains this substring"`
}

// DeletedOutput is the output for the deleted tool.
type DeletedOutput struct {
	Refs []collab.DeletedCasefileRef `json:"refs" jsonschema:"deleted-casefile records recovered from history"`
}

func handleDeleted(keeper *collab.CasefileKeeper) mcp.ToolHandlerFor[DeletedInput, DeletedOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input DeletedInput) (*mcp.CallToolResult, DeletedOutput, error) {
		refs, err := keeper.ListDeleted(input.Partial)
		if err != nil {
			return nil, DeletedOutput{}, fmt.Errorf("listing deleted casefiles: %w", err)
		}
		return nil, DeletedOutput{Refs: refs}, nil
	}
}

// --- Locate tool ---

// LocateInput is the input for the locate tool.
type LocateInput struct {
	File      string `json:"file"                 jsonschema:"path to the file on disk"`
	Line      int    `json:"line"                 jsonschema:"last-known line (1-based)"`
	MarkText  string `json:"mark_text"            jsonschema:"substring the bookmark's line must contain"`
	PegCommit string `json:"peg_commit,omitempty" jsonschema:"commit the bookmark was pegged to"`
	PegLine   int    `json:"peg_line,omitempty"   jsonschema:"line the bookmark was pegged to"`
}

// LocateOutput is the output for the locate tool.
type LocateOutput struct {
	Location casefile.Location `json:"location" jsonschema:"the bookmark's resolved current position"`
}

func handleLocate(keeper *collab.CasefileKeeper) mcp.ToolHandlerFor[LocateInput, LocateOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input LocateInput) (*mcp.CallToolResult, LocateOutput, error) {
		q := relocator.Query{File: input.File, Line: input.Line, MarkText: input.MarkText}
		if input.PegCommit != "" {
			q.Peg = &casefile.Peg{Commit: input.PegCommit, Line: input.PegLine}
		}
		loc, err := keeper.Locate(q)
		if err != nil {
			return nil, LocateOutput{}, fmt.Errorf("locating bookmark: %w", err)
		}
		return nil, LocateOutput{Location: loc}, nil
	}
}
