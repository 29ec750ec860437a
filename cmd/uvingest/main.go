// Package main provides the entry point for the uvingest CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/uvingest/cmd/uvingest/commands"
	"github.com/Sumatoshi-tech/uvingest/pkg/version"
)

var (
	verbose bool
	quiet   bool
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "uvingest",
		Short: "uvingest - memory-bounded ingestion of visibility file sets",
		Long: `uvingest classifies, validates, and reads heterogeneous telescope data
files into a single in-memory dataset without exceeding a memory budget.

Commands:
  read      Accumulate visibility data through the registered decoder
  inspect   Preview classification and validation without data I/O
  plan      Preview the memory-bounded batch plan`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(commands.NewReadCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewPlanCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "uvingest %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
