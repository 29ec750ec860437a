// Package commands implements CLI command handlers for uvingest.
package commands

import (
	"errors"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/uvingest/internal/fileset"
)

// ErrValidationFailed is returned after the full violation report has been
// written to stderr.
var ErrValidationFailed = errors.New("validation failed")

// newLogger builds the command logger from the root --verbose/--quiet flags.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// printViolations writes the full joined violation list to stderr, one line
// per violation. The report is never truncated.
func printViolations(report fileset.Report) {
	red := color.New(color.FgRed)

	for _, violation := range report {
		red.Fprintln(os.Stderr, violation)
	}
}

// reportIfInvalid surfaces a *fileset.ValidationError as a printed report.
func reportIfInvalid(err error) error {
	var verr *fileset.ValidationError
	if errors.As(err, &verr) {
		printViolations(verr.Violations)

		return ErrValidationFailed
	}

	return err
}

