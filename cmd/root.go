// Package cmd defines and implements the CLI commands for the kapwire
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kapwire",
		Short: "Syndicates KAP disclosures from the Fintables feed to X.",
		Long: `kapwire snapshots the Fintables borsa haber akışı page, extracts KAP
disclosure items, skips everything posted before, and publishes the new ones
to X within an informal rate budget. State lives in a single JSON file; when
the posting credentials are absent the bot runs in simulation mode.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (defaults and KAPWIRE_* environment variables are used when omitted)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newWatchCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "kapwire:", err)
		os.Exit(1)
	}
}
