package commands

import (
	"appdeck/cmd/appdeck/globals"
	"appdeck/internal/components/telemetry"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
	dumpHttp   *string
	developer  *string
)

var rootCmd = &cobra.Command{
	Use:           "appdeck",
	Short:         "appdeck lists the apps of a developer page and keeps track of your favorites among them.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
		cmd.SetContext(globals.Set(cmd.Context(), &globals.Value{
			ConfigPath: *configPath,
			Verbose:    *verbose,
			DumpHttp:   *dumpHttp,
			Developer:  *developer,
			Telemetry:  telemetry.SlogAPI{},
		}))
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	configPath = flags.String("config", "config.json5", "The config file to read, <name>.local.json5 overrides it.")
	verbose = flags.BoolP("verbose", "v", false, "Enable verbose logging/instrumentation.")
	dumpHttp = flags.String("dump-http", "", "A directory to write every HTTP exchange to.")
	developer = flags.String("developer", "", "The developer id whose page is listed, overrides the config.")
}

// ExecuteContext runs the CLI and returns the exit code.
func ExecuteContext(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
