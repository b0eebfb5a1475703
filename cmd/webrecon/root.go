// Package main provides the entry point for the webrecon CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for webrecon.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webrecon",
		Short: "Read-only reconnaissance crawler for authorized security testing",
		Long: `webrecon maps the attack surface of a web application you are authorized
to test. It crawls the target, extracts forms, API endpoints, and script
references, and optionally enumerates subdomains and probes for guessable
endpoints and hidden files.

All requests are read-only (GET and HEAD). Forms are catalogued, never
submitted. Use this tool only against systems you have permission to test.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
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
