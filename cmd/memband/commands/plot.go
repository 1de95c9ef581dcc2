package commands

import (
	"fmt"
	"log/slog"

	"memband/internal/components/telemetry"
	"memband/internal/config"
	"memband/internal/listing"
	"memband/internal/plot"
	"memband/internal/reshape"

	"github.com/spf13/cobra"
)

var (
	plotInput  *string
	plotOutput *string
	plotKind   *string
)

func init() {
	plotInput = plotCmd.Flags().String("input", "", "The csv snapshot to plot, overrides the config.")
	plotOutput = plotCmd.Flags().String("output", "", "The png file to write, overrides the config.")
	plotKind = plotCmd.Flags().String("kind", "", fmt.Sprintf("The chart to draw: %s or %s.", config.KindPerPin, config.KindTimeline))
	rootCmd.AddCommand(plotCmd)
}

var plotCmd = &cobra.Command{
	Use:   "plot [--input <snapshot.csv>] [--output <chart.png>] [--kind per-pin|timeline]",
	Short: "Plots a csv snapshot, bandwidth per pin against bandwidth by default.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if *plotInput != "" {
			cfg.Plot.Input = *plotInput
		}
		if *plotOutput != "" {
			cfg.Plot.Output = *plotOutput
		}
		if *plotKind != "" {
			cfg.Plot.Kind = *plotKind
		}
		err := cfg.Validate()
		if err != nil {
			return fmt.Errorf("invalid plot options: %w", err)
		}

		table, err := listing.LoadCSV(cfg.Plot.Input)
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}

		gens := make([]plot.Generation, len(cfg.Plot.Generations))
		for i, gen := range cfg.Plot.Generations {
			points, err := reshape.Series(table, gen.Version, cfg.Plot.BandDivisor)
			if err != nil {
				return fmt.Errorf("failed to reshape %s: %w", gen.Label, err)
			}
			gens[i] = plot.Generation{Label: gen.Label, Pins: gen.Pins, Points: points}
		}

		plotter := plot.New(plot.Options{
			Output:       cfg.Plot.Output,
			DPI:          cfg.Plot.DPI,
			WidthInches:  cfg.Plot.WidthInches,
			HeightInches: cfg.Plot.HeightInches,
		}, telemetry.SlogAPI{})

		switch cfg.Plot.Kind {
		case config.KindTimeline:
			err = plotter.Timeline(cmd.Context(), gens)
		default:
			err = plotter.PerPin(cmd.Context(), gens)
		}
		if err != nil {
			return fmt.Errorf("failed to plot: %w", err)
		}

		slog.Info("chart written", "kind", cfg.Plot.Kind, "input", cfg.Plot.Input, "output", cfg.Plot.Output)
		return nil
	},
}
