// Package main provides the entry point for the git-casefile CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/caseflow/git-casefile/internal/casefile"
	"github.com/caseflow/git-casefile/internal/collab"
	"github.com/caseflow/git-casefile/internal/output"
)

// newGetCmd creates the get command.
func newGetCmd() *cobra.Command {
	return newGetCmdInternal(nil)
}

func newGetCmdInternal(keeper *collab.CasefileKeeper) *cobra.Command {
	return &cobra.Command{
		Use:   "get <group>/<instance>",
		Short: "Read a shared casefile",
		Long: `Read and print the casefile at <group>/<instance> in the shared tree.

Examples:
  casefile get refactor/8f2c1a9e-...
  casefile get refactor/8f2c1a9e-... --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, keeper, args[0])
		},
	}
}

func runGet(cmd *cobra.Command, keeper *collab.CasefileKeeper, path string) error {
	printer := printerFor(cmd)

	if keeper == nil {
		keeper, _ = newKeeper(cmd)
	}

	cf, err := keeper.GetCasefile(path)
	if err != nil {
		wrapped := asExitError(err)
		printer.Error(wrapped)
		return wrapped
	}

	if printer.IsJSON() {
		return printer.WriteJSON(cf)
	}

	outputGetHuman(printer, cf)
	return nil
}

func outputGetHuman(printer *output.Printer, cf casefile.Casefile) {
	printer.Println(cf.Path)
	printer.Bookmarks(cf.Bookmarks)
}
