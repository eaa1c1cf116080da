// Package main provides the entry point for the git-casefile CLI.
package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/caseflow/git-casefile/internal/collab"
	"github.com/caseflow/git-casefile/internal/output"
)

// newPegCmd creates the peg command.
func newPegCmd() *cobra.Command {
	return newPegCmdInternal(nil)
}

func newPegCmdInternal(keeper *collab.CasefileKeeper) *cobra.Command {
	var commit string

	cmd := &cobra.Command{
		Use:   "peg <file> <line>",
		Short: "Mint a fresh peg for a live line",
		Long: `Compute a (commit, line) peg for line in file as it currently stands,
resolving it relative to commit (default: HEAD).

Examples:
  casefile peg main.go 42
  casefile peg main.go 42 --commit deadbeef`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[1])
			if err != nil {
				wrapped := output.NewUserError("line must be an integer: " + args[1])
				printerFor(cmd).Error(wrapped)
				return wrapped
			}
			return runPeg(cmd, keeper, args[0], line, commit)
		},
	}

	cmd.Flags().StringVar(&commit, "commit", "", "Commit to resolve the peg relative to (default: HEAD)")

	return cmd
}

func runPeg(cmd *cobra.Command, keeper *collab.CasefileKeeper, file string, line int, commit string) error {
	printer := printerFor(cmd)

	if keeper == nil {
		keeper, _ = newKeeper(cmd)
	}

	peg := keeper.ComputeLinePeg(file, line, commit)

	if printer.IsJSON() {
		return printer.WriteJSON(peg)
	}

	printer.Peg(peg)
	return nil
}
