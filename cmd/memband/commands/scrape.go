package commands

import (
	"fmt"
	"log/slog"
	"time"

	"memband/internal/aggregate"
	"memband/internal/components/chrono"
	"memband/internal/components/telemetry"
	"memband/internal/scrapers/kakaku"
	"memband/lib/restyutil"

	"github.com/spf13/cobra"
)

var (
	scrapePages   *int
	scrapeOut     *string
	scrapeDumpDir *string
)

func init() {
	scrapePages = scrapeCmd.Flags().Int("pages", 0, "The number of listing pages to fetch, 0 keeps the configured count.")
	scrapeOut = scrapeCmd.Flags().String("out", "", "The directory snapshots are written to, overrides the config.")
	scrapeDumpDir = scrapeCmd.Flags().String("dump-dir", "", "Write every http request and response to this directory.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--pages <n>] [--out <dir>] [--dump-dir <dir>]",
	Short: "Fetches every listing page and writes a full and a year filtered csv snapshot.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if *scrapePages > 0 {
			cfg.Scrape.Pages = *scrapePages
		}
		if *scrapeOut != "" {
			cfg.Output.Dir = *scrapeOut
		}

		runID := aggregate.NewRunID()
		tel := telemetry.NewSlogAPI("run_id", runID)

		opts := kakaku.ClientOptions{
			URLTemplate:       cfg.Scrape.URLTemplate,
			Timeout:           cfg.Scrape.Timeout(),
			UserAgent:         cfg.Scrape.UserAgent,
			RequestsPerSecond: cfg.Scrape.RequestsPerSecond,
		}
		if *scrapeDumpDir != "" {
			output, err := restyutil.NewFilesystemOutput(*scrapeDumpDir)
			if err != nil {
				return fmt.Errorf("failed to prepare dump directory: %w", err)
			}
			opts.DumpOutput = output
		}

		client, err := kakaku.NewClient(opts, tel)
		if err != nil {
			return fmt.Errorf("failed to create listing client: %w", err)
		}
		parser := kakaku.NewParser(kakaku.ParserOptions{
			Selectors: kakaku.Selectors{
				Names: cfg.Scrape.Selectors.Names,
				Dates: cfg.Scrape.Selectors.Dates,
				Specs: cfg.Scrape.Selectors.SpecsSelector(),
			},
			GenericBrand: cfg.Scrape.GenericBrand,
		}, tel)

		agg := aggregate.New(
			aggregate.Options{
				RunID:    runID,
				Pages:    cfg.Scrape.Pages,
				YearFrom: cfg.Output.YearFrom,
				YearTo:   cfg.Output.YearTo,
			},
			client,
			parser,
			aggregate.DirStore(cfg.Output.Dir),
			chrono.NewStandardTime(),
			tel,
		)

		t1 := time.Now()
		result, err := agg.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to scrape listings: %w", err)
		}
		t2 := time.Now()

		slog.Info(
			"scrape finished",
			"run_id", result.RunID,
			"records", result.Table.Len(),
			"filtered", result.Filtered.Len(),
			"snapshot", result.SnapshotPath,
			"filtered_snapshot", result.FilteredPath,
			"seconds", t2.Sub(t1).Seconds(),
		)
		return nil
	},
}
