package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"memband/internal/config"
	libtelemetry "memband/lib/telemetry"
	"memband/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var (
	verbose    *bool
	configPath *string

	// cfg is loaded before any subcommand runs.
	cfg       config.Config
	providers libtelemetry.Telemetry
)

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output, including every filtered row.")
	configPath = rootCmd.PersistentFlags().String("config", "", "The config file to read, defaults to $MEMBAND_CONFIG or memband.json5.")
}

var rootCmd = &cobra.Command{
	Use:           "memband",
	Short:         "memband scrapes memory module listings and plots bandwidth per pin by DDR generation.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		libtelemetry.InitSlog(*verbose)

		var err error
		providers, err = libtelemetry.SetupFromEnv(cmd.Context(), "memband")
		if err != nil {
			slog.Warn("failed to setup telemetry", "err", err)
		}

		cfg, err = config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		return nil
	},
}

// Execute runs the command line in args and flushes telemetry afterwards,
// whether or not the command failed.
func Execute(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)

	flushErr := providers.Shutdown(context.WithoutCancel(ctx))
	if flushErr != nil {
		slog.Warn("failed to flush telemetry", "err", flushErr)
	}
	providers = libtelemetry.Telemetry{}
	return err
}

func ExecuteContext(ctx context.Context) {
	err := Execute(ctx, os.Args[1:])
	if err != nil {
		serviceutil.Fatal("memband failed", err)
	}
}
