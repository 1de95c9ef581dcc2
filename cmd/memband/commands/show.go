package commands

import (
	"fmt"
	"os"

	"memband/internal/listing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show [snapshot.csv]",
	Short: "Prints a per generation summary of a csv snapshot.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Plot.Input
		if len(args) > 0 {
			path = args[0]
		}

		snapshot, err := listing.LoadCSV(path)
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle(path)
		t.AppendHeader(table.Row{"Generation", "Items", "Min bandwidth", "Max bandwidth", "First release", "Last release"})

		for _, s := range listing.Summarize(snapshot) {
			t.AppendRow(table.Row{
				fmt.Sprintf("DDR%d", s.DDRVersion),
				s.Count,
				s.MinBandwidth,
				s.MaxBandwidth,
				s.FirstRelease.Format("2006-01-02"),
				s.LastRelease.Format("2006-01-02"),
			})
		}
		t.AppendFooter(table.Row{"Total", snapshot.Len()})

		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}
