package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// newRunCmd creates the 'run' subcommand: one syndication pass, then exit.
// Exit code 0 covers "nothing new" and "in cooldown"; only unexpected faults
// exit non-zero.
func newRunCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Executes one syndication pass",
		Long: `Takes one snapshot of the feed, posts whatever is new since the last run,
and exits. Meant to be invoked by an external scheduler; overlapping
invocations against the same state file are not supported.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := buildApp(dryRun)
			if err != nil {
				return err
			}
			defer appInstance.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return appInstance.runOnce(ctx)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "extract and compose but never post")
	return cmd
}
