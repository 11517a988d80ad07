package commands

import (
	"appdeck/internal/catalog"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var fetchJson *bool

func init() {
	fetchJson = fetchCmd.Flags().Bool("json", false, "Print the outcome as JSON instead of a table.")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [--json]",
	Short: "Fetches the developer page once and prints the catalog.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		var last catalog.Outcome
		for outcome := range app.service.FetchCatalog(cmd.Context()) {
			last = outcome
			if outcome.State == catalog.StateLoading {
				slog.Info("loading catalog", "url", app.config.Catalog.pageUrl())
				continue
			}
			if *fetchJson {
				err = renderOutcomeJson(os.Stdout, outcome)
				if err != nil {
					return err
				}
				continue
			}
			renderOutcome(os.Stdout, outcome)
		}

		switch last.State {
		case catalog.StateError:
			return fmt.Errorf("fetch catalog: %s: %w", last.Kind, last.Cause)
		case catalog.StateLoading:
			return cmd.Context().Err()
		}
		return nil
	},
}
