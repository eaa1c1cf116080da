// Package main provides the entry point for the git-casefile CLI.
package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/caseflow/git-casefile/internal/collab"
	"github.com/caseflow/git-casefile/internal/output"
)

// newListCmd creates the list command.
func newListCmd() *cobra.Command {
	return newListCmdInternal(nil)
}

// newListCmdInternal creates the list command with optional keeper
// injection. If keeper is nil, a real one is built from config when the
// command runs.
func newListCmdInternal(keeper *collab.CasefileKeeper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List shared casefile groups and instances",
		Long: `List every group in the shared tree, along with its instances.

Examples:
  casefile list
  casefile list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, keeper)
		},
	}
}

func runList(cmd *cobra.Command, keeper *collab.CasefileKeeper) error {
	printer := printerFor(cmd)

	if keeper == nil {
		keeper, _ = newKeeper(cmd)
	}

	groups, err := keeper.ListGroups()
	if err != nil {
		wrapped := asExitError(err)
		printer.Error(wrapped)
		return wrapped
	}

	if printer.IsJSON() {
		return printer.WriteJSON(groups)
	}

	outputListHuman(printer, groups)
	return nil
}

func outputListHuman(printer *output.Printer, groups []collab.CasefileGroup) {
	if len(groups) == 0 {
		printer.Println("no shared casefiles")
		return
	}
	rows := make([][]string, len(groups))
	for i, g := range groups {
		rows[i] = []string{g.Name, strings.Join(g.Instances, ", ")}
	}
	printer.Table([]string{"Group", "Instances"}, rows)
}
