// Package main provides the entry point for the git-casefile CLI.
package main

import (
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/caseflow/git-casefile/internal/casefile"
	"github.com/caseflow/git-casefile/internal/collab"
	"github.com/caseflow/git-casefile/internal/output"
)

// newShareCmd creates the share command.
func newShareCmd() *cobra.Command {
	return newShareCmdInternal(nil)
}

func newShareCmdInternal(keeper *collab.CasefileKeeper) *cobra.Command {
	var bookmarksFile string

	cmd := &cobra.Command{
		Use:   "share <group>[/<instance>]",
		Short: "Publish a bookmark forest to the shared tree",
		Long: `Publish bookmarks under <group>/<instance> in the shared tree and push
them to the remote. If <instance> is omitted, a fresh opaque instance
identifier is generated.

Sharing an unchanged casefile is a no-op, not an error.

Examples:
  casefile share refactor --bookmarks bookmarks.json
  cat bookmarks.json | casefile share refactor/8f2c1a9e-... --bookmarks -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShare(cmd, keeper, args[0], bookmarksFile)
		},
	}

	cmd.Flags().StringVar(&bookmarksFile, "bookmarks", "-", "File containing the bookmark forest as JSON (- for stdin)")

	return cmd
}

func runShare(cmd *cobra.Command, keeper *collab.CasefileKeeper, pathArg, bookmarksFile string) error {
	printer := printerFor(cmd)

	if keeper == nil {
		keeper, _ = newKeeper(cmd)
	}

	path := resolveSharePath(pathArg)

	bookmarks, err := readBookmarks(cmd, bookmarksFile)
	if err != nil {
		wrapped := output.NewUserError(err.Error())
		printer.Error(wrapped)
		return wrapped
	}

	result, err := keeper.DefaultRemote().Share(path, bookmarks)
	if err != nil {
		wrapped := asExitError(err)
		printer.Error(wrapped)
		return wrapped
	}

	if printer.IsJSON() {
		return printer.WriteJSON(struct {
			Path    string `json:"path"`
			Message string `json:"message"`
			Commit  string `json:"commit"`
			NoOp    bool   `json:"noOp"`
		}{Path: path, Message: result.Message, Commit: result.Commit, NoOp: result.NoOp})
	}

	printer.Println(path + ": " + result.Message)
	return nil
}

// resolveSharePath returns pathArg unchanged if it already parses as a
// CasefilePath ("<group>/<instance>"); otherwise pathArg is treated as a
// bare group and given a freshly generated instance.
func resolveSharePath(pathArg string) string {
	if _, ok := casefile.ParsePath(pathArg); ok {
		return pathArg
	}
	return pathArg + "/" + uuid.NewString()
}

// readBookmarks reads a bookmark forest as JSON from file ("-" for stdin)
// and decodes it via casefile.ParseCasefile, which accepts both the
// `{"bookmarks": [...]}` object form and the legacy bare-array form.
func readBookmarks(cmd *cobra.Command, file string) ([]casefile.Bookmark, error) {
	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	cf, err := casefile.ParseCasefile(data)
	if err != nil {
		return nil, err
	}
	return cf.Bookmarks, nil
}
