// Package main provides the resultsctl operator CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "resultsctl",
		Short: "Operate the school results engine",
		Long: `resultsctl applies database migrations, triggers result computation for a school,
and simulates a computation over a YAML dataset without a database.`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newMigrateCmd(),
		newComputeCmd(),
		newSimulateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
