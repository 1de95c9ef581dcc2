package commands

import (
	"fmt"
	"log/slog"

	"memband/internal/listing"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <snapshot.csv> <snapshot.xlsx>",
	Short: "Copies a csv snapshot into a spreadsheet.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := listing.LoadCSV(args[0])
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}
		err = listing.WriteXLSX(args[1], snapshot)
		if err != nil {
			return fmt.Errorf("failed to write spreadsheet: %w", err)
		}
		slog.Info("spreadsheet written", "rows", snapshot.Len(), "output", args[1])
		return nil
	},
}
