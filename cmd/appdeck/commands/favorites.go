package commands

import (
	"appdeck/internal/catalog"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Lists and edits the favorite apps.",
}

var (
	listJson   *bool
	listStored *bool
)

func init() {
	listJson = listCmd.Flags().Bool("json", false, "Print the view as JSON instead of a table.")
	listStored = listCmd.Flags().Bool("stored", false, "Print the stored favorites without fetching the catalog.")
	favoritesCmd.AddCommand(listCmd)
	favoritesCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(favoritesCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [--json] [--stored]",
	Short: "Prints the favorite apps that are in the catalog.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if *listStored {
			stored, err := app.store.List(cmd.Context())
			if err != nil {
				return err
			}
			renderFavorites(os.Stdout, stored)
			return nil
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		for outcome := range app.service.ObserveFavoriteCatalog(ctx, nil) {
			if outcome.State == catalog.StateLoading {
				continue
			}
			if *listJson {
				err = renderOutcomeJson(os.Stdout, outcome)
			} else {
				renderOutcome(os.Stdout, outcome)
			}
			if outcome.State == catalog.StateError {
				return fmt.Errorf("fetch catalog: %s: %w", outcome.Kind, outcome.Cause)
			}
			return err
		}
		return cmd.Context().Err()
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <identifier|name>",
	Short: "Adds an app to the favorites, or removes it if it already is one.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		identifier := args[0]
		prefix := app.config.Catalog.IdentifierPrefix
		if !strings.HasPrefix(identifier, prefix) {
			records, err := app.service.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("resolve '%s': %s: %w", identifier, catalog.Classify(err), err)
			}
			identifier, err = resolveIdentifier(identifier, prefix, records)
			if err != nil {
				return err
			}
		}

		favorite, err := app.service.ToggleFavorite(cmd.Context(), identifier)
		if err != nil {
			return err
		}
		if favorite {
			fmt.Printf("added %s to the favorites\n", identifier)
		} else {
			fmt.Printf("removed %s from the favorites\n", identifier)
		}
		return nil
	},
}
