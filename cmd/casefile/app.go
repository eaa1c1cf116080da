package main

import (
	"github.com/spf13/cobra"

	"github.com/caseflow/git-casefile/internal/casefileerr"
	"github.com/caseflow/git-casefile/internal/collab"
	"github.com/caseflow/git-casefile/internal/config"
	"github.com/caseflow/git-casefile/internal/output"
)

// printerFor builds an output.Printer for cmd, honoring --json, --color,
// and TTY detection.
func printerFor(cmd *cobra.Command) *output.Printer {
	jsonMode := isJSONMode(cmd)
	colorMode, _ := cmd.Flags().GetString("color")
	if colorMode == "" {
		colorMode, _ = cmd.Root().PersistentFlags().GetString("color")
	}
	isTTY := output.ResolveColorMode(colorMode, output.IsTTY(cmd.OutOrStdout()))
	return output.NewPrinter(cmd.OutOrStdout(), jsonMode, !jsonMode && isTTY)
}

// newKeeper builds a CasefileKeeper from the resolved config, applying the
// --remote flag (if set) on top of the config/env/flag-resolved remote.
func newKeeper(cmd *cobra.Command) (*collab.CasefileKeeper, config.Options) {
	cfg := config.Load()
	if remote, _ := cmd.Flags().GetString("remote"); remote != "" {
		cfg.Remote = remote
	}
	return collab.New(cfg, nil, printerLogger{cmd}), cfg
}

// printerLogger adapts a cobra command's printer into a collab.Logger,
// so warnings surfaced from the drivers render the same way CLI errors do.
type printerLogger struct{ cmd *cobra.Command }

func (l printerLogger) Warn(format string, args ...any) {
	printerFor(l.cmd).Warn(format, args...)
}

// asExitError translates a casefileerr.Error into the output package's
// ExitError, per the CLI boundary's coded-to-exit-code mapping: not-found
// outcomes are user errors, everything else backed by a subprocess or
// plumbing failure is a system error. "Nothing changed" from an idempotent
// share/delete is not an error at all and never reaches this function.
func asExitError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case casefileerr.HasCode(err, casefileerr.CodeMarkNotFound),
		casefileerr.HasCode(err, casefileerr.CodeLineNotFound),
		casefileerr.HasCode(err, casefileerr.CodeNoCommitFound),
		casefileerr.HasCode(err, casefileerr.CodeInvalidCommittish),
		casefileerr.HasCode(err, casefileerr.CodeInvalidSeparator):
		return output.NewUserError(err.Error())
	default:
		return output.NewSystemErrorWithCause(err.Error(), err)
	}
}
