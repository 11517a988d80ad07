package commands

import (
	"appdeck/internal/catalog"
	"appdeck/internal/components/chrono"
	"appdeck/internal/components/telemetry"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	watchEvery     *string
	watchAll       *bool
	watchPerfStats *time.Duration
)

func init() {
	watchEvery = watchCmd.Flags().String("every", "@every 15m", "The cron spec on which the catalog is refreshed.")
	watchAll = watchCmd.Flags().Bool("all", false, "Watch the whole catalog instead of the favorites.")
	watchPerfStats = watchCmd.Flags().Duration("perf-stats", time.Minute, "How often process stats are sampled, 0 disables sampling.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--every <cron spec>] [--all]",
	Short: "Prints the favorite apps every time the catalog or the favorites change.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		// a refresh that is still pending is enough, ticks are dropped while
		// one is queued
		refresh := make(chan struct{}, 1)
		cron := chrono.NewStandardCron(app.tel)
		defer cron.Stop()
		err = cron.Cron(*watchEvery, func() {
			select {
			case refresh <- struct{}{}:
			default:
			}
		})
		if err != nil {
			return fmt.Errorf("schedule refresh '%s': %w", *watchEvery, err)
		}

		if *watchPerfStats > 0 {
			telemetry.InstrumentPerfStats(ctx, *watchPerfStats, app.tel)
		}

		stream := app.service.ObserveFavoriteCatalog
		if *watchAll {
			stream = app.service.WatchCatalog
		}

		for outcome := range stream(ctx, refresh) {
			slog.Info("catalog changed", "outcome", outcome.String())
			if outcome.State == catalog.StateLoading {
				continue
			}
			renderOutcome(os.Stdout, outcome)
		}
		return nil
	},
}
