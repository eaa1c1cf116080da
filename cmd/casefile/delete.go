// Package main provides the entry point for the git-casefile CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/caseflow/git-casefile/internal/collab"
)

// newDeleteCmd creates the delete command.
func newDeleteCmd() *cobra.Command {
	return newDeleteCmdInternal(nil)
}

func newDeleteCmdInternal(keeper *collab.CasefileKeeper) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <group>/<instance>...",
		Short: "Remove casefiles from the shared tree",
		Long: `Remove one or more casefiles from the shared tree and push the result.

Deleting paths that are already gone is a no-op, not an error.

Examples:
  casefile delete refactor/8f2c1a9e-...
  casefile delete refactor/a refactor/b`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, keeper, args)
		},
	}
}

func runDelete(cmd *cobra.Command, keeper *collab.CasefileKeeper, paths []string) error {
	printer := printerFor(cmd)

	if keeper == nil {
		keeper, _ = newKeeper(cmd)
	}

	result, err := keeper.DefaultRemote().Delete(paths)
	if err != nil {
		wrapped := asExitError(err)
		printer.Error(wrapped)
		return wrapped
	}

	if printer.IsJSON() {
		return printer.WriteJSON(struct {
			Changed bool   `json:"changed"`
			Commit  string `json:"commit"`
		}{Changed: result.Changed, Commit: result.Commit})
	}

	if !result.Changed {
		printer.Println("nothing changed")
		return nil
	}
	if result.Commit == "" {
		printer.Println("deleted; shared ref removed (tree now empty)")
		return nil
	}
	printer.Println("deleted: " + shortSHA(result.Commit))
	return nil
}
