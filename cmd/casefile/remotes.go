// Package main provides the entry point for the git-casefile CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/caseflow/git-casefile/internal/collab"
)

// newRemotesCmd creates the remotes command.
func newRemotesCmd() *cobra.Command {
	return newRemotesCmdInternal(nil)
}

func newRemotesCmdInternal(keeper *collab.CasefileKeeper) *cobra.Command {
	return &cobra.Command{
		Use:   "remotes",
		Short: "List configured Git remotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRemotes(cmd, keeper)
		},
	}
}

func runRemotes(cmd *cobra.Command, keeper *collab.CasefileKeeper) error {
	printer := printerFor(cmd)

	if keeper == nil {
		keeper, _ = newKeeper(cmd)
	}

	remotes, err := keeper.ListRemotes()
	if err != nil {
		wrapped := asExitError(err)
		printer.Error(wrapped)
		return wrapped
	}

	if printer.IsJSON() {
		return printer.WriteJSON(remotes)
	}

	if len(remotes) == 0 {
		printer.Println("no remotes configured")
		return nil
	}
	for _, r := range remotes {
		printer.Println(r)
	}
	return nil
}
