// Package main provides the entry point for the git-casefile CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/caseflow/git-casefile/internal/config"
	"github.com/caseflow/git-casefile/internal/output"
)

// Build info set via ldflags at build time by goreleaser.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	flag := cmd.Flags().Lookup("json")
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup("json")
	}
	return flag != nil && flag.Value.String() == "true"
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	code := run()
	os.Exit(code)
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the git-casefile CLI.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "casefile",
		Short: "Shared, relocatable source-code bookmarks tracked in Git",
		Long: `git-casefile maintains shared collections of source-code bookmarks
("casefiles") inside an ordinary Git repository, distributing them to
collaborators via refs/collaboration/shared-casefiles. Each bookmark pegs a
file/line at a specific commit so it can be relocated as the file evolves.

All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isJSONMode(cmd) {
				printer := output.NewPrinter(cmd.OutOrStdout(), true, false)
				err := output.NewUserError("no command specified. Run 'casefile --help' for usage")
				printer.Error(err)
				return err
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		config.LoadEnvFiles()
		return nil
	}

	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("remote", "", "Remote to operate against (default: configured remote)")
	cmd.PersistentFlags().String("color", "auto", "Color output: auto, always, never")

	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd)

	return cmd
}

// addCommandGroups defines the command groups for help output.
func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "sync", Title: "Sync Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "query", Title: "Query Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "locate", Title: "Relocation Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "admin", Title: "Admin Commands:"})
}

// addCommands adds all subcommands with their group assignments.
func addCommands(cmd *cobra.Command) {
	addGroupedCommand(cmd, newShareCmd(), "sync")
	addGroupedCommand(cmd, newDeleteCmd(), "sync")
	addGroupedCommand(cmd, newFetchCmd(), "sync")

	addGroupedCommand(cmd, newListCmd(), "query")
	addGroupedCommand(cmd, newGetCmd(), "query")
	addGroupedCommand(cmd, newAuthorsCmd(), "query")
	addGroupedCommand(cmd, newDeletedCmd(), "query")

	addGroupedCommand(cmd, newLocateCmd(), "locate")
	addGroupedCommand(cmd, newPegCmd(), "locate")

	addGroupedCommand(cmd, newRemotesCmd(), "admin")

	cmd.AddCommand(newServeCmd())
}

// addGroupedCommand adds a subcommand with a group assignment.
func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}
