// Package main provides the entry point for the recordsctl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for recordsctl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recordsctl",
		Short: "Retrieve aggregate views of the record collection",
		Long: `recordsctl fetches one page of the record collection together with probes
of both adjacent pages, and prints the aggregate view: record ids in page
order, open records with primary-color marking, the closed-primary count,
and which neighboring pages exist.

Failures degrade instead of aborting: a failed page prints an empty view
with status "failed", and a failed probe reports the neighbor as absent
with status "partial".`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewGetCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
