// Package main provides the entry point for the git-casefile CLI.
package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/caseflow/git-casefile/internal/casefile"
	"github.com/caseflow/git-casefile/internal/collab"
	"github.com/caseflow/git-casefile/internal/output"
	"github.com/caseflow/git-casefile/internal/relocator"
)

// newLocateCmd creates the locate command.
func newLocateCmd() *cobra.Command {
	return newLocateCmdInternal(nil)
}

func newLocateCmdInternal(keeper *collab.CasefileKeeper) *cobra.Command {
	var pegCommit string
	var pegLine int

	cmd := &cobra.Command{
		Use:   "locate <file> <line> <text>",
		Short: "Resolve a bookmark's current (file, line, col)",
		Long: `Resolve a bookmark's current position, combining blame-based pinpointing
with a diff-hunk fallback search when a peg is given (--peg-commit and
--peg-line), or spiraling out from line when it is not.

Examples:
  casefile locate main.go 42 "func handleRequest"
  casefile locate main.go 42 "func handleRequest" --peg-commit deadbeef --peg-line 40`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[1])
			if err != nil {
				wrapped := output.NewUserError("line must be an integer: " + args[1])
				printerFor(cmd).Error(wrapped)
				return wrapped
			}
			return runLocate(cmd, keeper, args[0], line, args[2], pegCommit, pegLine)
		},
	}

	cmd.Flags().StringVar(&pegCommit, "peg-commit", "", "Commit the bookmark was pegged to")
	cmd.Flags().IntVar(&pegLine, "peg-line", 0, "Line the bookmark was pegged to")

	return cmd
}

func runLocate(cmd *cobra.Command, keeper *collab.CasefileKeeper, file string, line int, text, pegCommit string, pegLine int) error {
	printer := printerFor(cmd)

	if keeper == nil {
		keeper, _ = newKeeper(cmd)
	}

	q := relocator.Query{File: file, Line: line, MarkText: text}
	if pegCommit != "" {
		q.Peg = &casefile.Peg{Commit: pegCommit, Line: pegLine}
	}

	loc, err := keeper.Locate(q)
	if err != nil {
		wrapped := asExitError(err)
		printer.Error(wrapped)
		return wrapped
	}

	if printer.IsJSON() {
		return printer.WriteJSON(loc)
	}

	printer.Location(loc)
	return nil
}
