package commands

import (
	"appdeck/cmd/appdeck/globals"
	"appdeck/internal/catalog"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var extractJson *bool

func init() {
	extractJson = extractCmd.Flags().Bool("json", false, "Print the catalog as JSON instead of a table.")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <page.html>",
	Short: "Extracts the catalog from a saved developer page without touching the network.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())

		cfg, err := readConfig(g.ConfigPath)
		if err != nil {
			return err
		}

		page, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		parser, err := catalog.NewParser(cfg.Catalog.options())
		if err != nil {
			return err
		}
		records, err := parser.Parse(string(page))
		if err != nil {
			return fmt.Errorf("extract %s: %s: %w", args[0], catalog.Classify(err), err)
		}

		if *extractJson {
			return renderOutcomeJson(os.Stdout, catalog.Success(records))
		}
		renderRecords(os.Stdout, records)
		return nil
	},
}
