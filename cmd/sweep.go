package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var sweepEvery bool

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the maintenance pass (reminders, no-shows, strikes)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()

		if !sweepEvery {
			stats, err := svc.Sweeper.Run()
			if err != nil {
				return err
			}
			if err := svc.Save(); err != nil {
				return err
			}
			return printJSON(cmd, stats)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		svc.StartMetrics(ctx)

		ticker := time.NewTicker(svc.SweepInterval())
		defer ticker.Stop()
		for {
			stats, err := svc.Sweeper.Run()
			if err != nil {
				return err
			}
			if err := svc.Save(); err != nil {
				return err
			}
			if err := printJSON(cmd, stats); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	},
}

func init() {
	sweepCmd.Flags().BoolVar(&sweepEvery, "every", false, "keep sweeping on the configured interval")
	rootCmd.AddCommand(sweepCmd)
}
