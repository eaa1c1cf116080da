// Package main provides the entry point for the git-casefile CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/caseflow/git-casefile/internal/collab"
)

// newFetchCmd creates the fetch command.
func newFetchCmd() *cobra.Command {
	return newFetchCmdInternal(nil)
}

func newFetchCmdInternal(keeper *collab.CasefileKeeper) *cobra.Command {
	var sharedOnly bool

	cmd := &cobra.Command{
		Use:   "fetch [remote]",
		Short: "Fetch casefile refs from a remote",
		Long: `Fetch from remote (default: the configured remote). With --shared-only,
only the shared-casefiles ref namespace is fetched; otherwise a plain
fetch runs.

Examples:
  casefile fetch
  casefile fetch origin --shared-only`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, keeper, args, sharedOnly)
		},
	}

	cmd.Flags().BoolVar(&sharedOnly, "shared-only", false, "Fetch only the shared-casefiles ref namespace")

	return cmd
}

func runFetch(cmd *cobra.Command, keeper *collab.CasefileKeeper, args []string, sharedOnly bool) error {
	printer := printerFor(cmd)

	if keeper == nil {
		keeper, _ = newKeeper(cmd)
	}

	remote := keeper.DefaultRemote()
	if len(args) > 0 {
		remote = keeper.Remote(args[0])
	}

	var err error
	if sharedOnly {
		err = remote.FetchSharedCasefiles()
	} else {
		err = remote.Fetch()
	}
	if err != nil {
		wrapped := asExitError(err)
		printer.Error(wrapped)
		return wrapped
	}

	if printer.IsJSON() {
		return printer.WriteJSON(struct {
			Remote string `json:"remote"`
		}{Remote: remote.Name()})
	}
	printer.Println("fetched from " + remote.Name())
	return nil
}
