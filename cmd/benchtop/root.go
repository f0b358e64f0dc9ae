package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "benchtop",
	Short: "benchtop runs and serves micro-benchmarks",
	Long: `benchtop executes registered benchmark cases with adaptive scheduling,
collects throughput, timing and memory statistics, and renders the results
as a table, CSV, JSON or an HTML scatter chart. Results can be persisted
to SQLite and served over HTTP.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
