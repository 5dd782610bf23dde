package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newWatchCmd creates the 'watch' subcommand: the same pass as 'run', driven
// by an in-process cron schedule for hosts without a system scheduler.
func newWatchCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Runs syndication passes on a cron schedule",
		Long: `Keeps the process alive and executes a syndication pass on the configured
schedule (watch.schedule, cron syntax or @every intervals). One pass runs
immediately on startup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := buildApp(dryRun)
			if err != nil {
				return err
			}
			defer appInstance.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			scheduler := cron.New()
			_, err = scheduler.AddFunc(appInstance.cfg.Watch.Schedule, func() {
				if err := appInstance.runOnce(ctx); err != nil {
					appInstance.logger.Error("scheduled run failed", zap.Error(err))
				}
			})
			if err != nil {
				return fmt.Errorf("parse watch schedule %q: %w", appInstance.cfg.Watch.Schedule, err)
			}

			appInstance.logger.Info("watch started",
				zap.String("schedule", appInstance.cfg.Watch.Schedule),
			)
			scheduler.Start()

			if err := appInstance.runOnce(ctx); err != nil {
				appInstance.logger.Error("initial run failed", zap.Error(err))
			}

			<-ctx.Done()
			<-scheduler.Stop().Done()
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "extract and compose but never post")
	return cmd
}
