package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for linkprobe.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkprobe",
		Short: "Concurrent live/dead link checker",
		Long: `linkprobe probes a list of URLs and sorts them into valid and dead links.

Requests run concurrently with a bounded number in flight, a random delay
before each request and a rotating set of browser identities. URLs that
produce no HTTP status on the first pass are retried once, one at a time,
over fresh connections. Every URL ends up valid, dead or listed as
unresolved so nothing is silently dropped.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCheckCmd())
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
