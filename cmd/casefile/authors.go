// Package main provides the entry point for the git-casefile CLI.
package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/caseflow/git-casefile/internal/collab"
)

// newAuthorsCmd creates the authors command.
func newAuthorsCmd() *cobra.Command {
	return newAuthorsCmdInternal(nil)
}

func newAuthorsCmdInternal(keeper *collab.CasefileKeeper) *cobra.Command {
	return &cobra.Command{
		Use:   "authors <group>/<instance>",
		Short: "List the authors who have touched a casefile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthors(cmd, keeper, args[0])
		},
	}
}

func runAuthors(cmd *cobra.Command, keeper *collab.CasefileKeeper, path string) error {
	printer := printerFor(cmd)

	if keeper == nil {
		keeper, _ = newKeeper(cmd)
	}

	authors, err := keeper.GetAuthors(path)
	if err != nil {
		wrapped := asExitError(err)
		printer.Error(wrapped)
		return wrapped
	}

	if printer.IsJSON() {
		return printer.WriteJSON(authors)
	}

	if len(authors) == 0 {
		printer.Println("no authors found")
		return nil
	}
	printer.Println(strings.Join(authors, ", "))
	return nil
}
