// Package main provides the entry point for the git-casefile CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/caseflow/git-casefile/internal/collab"
	"github.com/caseflow/git-casefile/internal/output"
)

// newDeletedCmd creates the deleted command.
func newDeletedCmd() *cobra.Command {
	return newDeletedCmdInternal(nil)
}

func newDeletedCmdInternal(keeper *collab.CasefileKeeper) *cobra.Command {
	return &cobra.Command{
		Use:   "deleted [partial]",
		Short: "List deleted casefiles recoverable from history",
		Long: `List deleted-casefile records recovered from the shared ref's history,
optionally restricted to groups whose name contains partial.

Examples:
  casefile deleted
  casefile deleted refactor`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			partial := ""
			if len(args) > 0 {
				partial = args[0]
			}
			return runDeleted(cmd, keeper, partial)
		},
	}
}

func runDeleted(cmd *cobra.Command, keeper *collab.CasefileKeeper, partial string) error {
	printer := printerFor(cmd)

	if keeper == nil {
		keeper, _ = newKeeper(cmd)
	}

	refs, err := keeper.ListDeleted(partial)
	if err != nil {
		wrapped := asExitError(err)
		printer.Error(wrapped)
		return wrapped
	}

	if printer.IsJSON() {
		return printer.WriteJSON(refs)
	}

	outputDeletedHuman(printer, refs)
	return nil
}

func outputDeletedHuman(printer *output.Printer, refs []collab.DeletedCasefileRef) {
	if len(refs) == 0 {
		printer.Println("no deleted casefiles found")
		return
	}
	rows := make([][]string, len(refs))
	for i, r := range refs {
		rows[i] = []string{r.Path, shortSHA(r.DeletionCommit), r.Committed.Format("2006-01-02 15:04:05 UTC")}
	}
	printer.Table([]string{"Path", "Commit", "Deleted"}, rows)
}
