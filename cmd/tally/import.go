package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/tally-money/tally/internal/cli"
)

// maxReportedRowErrors caps how many rejected rows are printed; the rest
// are summarized.
const maxReportedRowErrors = 10

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import transactions from a CSV file",
		Long: `Import transactions from a CSV file.

The header is case-sensitive and drives the columns; description/desc,
date/datetime and category/cat are accepted spellings, and an id column is
ignored. Rows failing the same validation as manual entry are rejected and
reported, never inserted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			bar := progressbar.NewOptions(-1,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("Importing transactions..."),
				progressbar.OptionShowCount(),
				progressbar.OptionSpinnerType(14),
			)

			result, err := store.ImportCSVFile(ctx, args[0], func(_, _ int) {
				_ = bar.Add(1)
			})
			_ = bar.Finish()
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"imported %d transactions (%d rejected)", result.Imported, result.Rejected)))

			for i, rowErr := range result.RowErrors {
				if i == maxReportedRowErrors {
					fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf(
						"  ... and %d more", len(result.RowErrors)-maxReportedRowErrors)))
					break
				}
				fmt.Println(cli.FormatWarning(fmt.Sprintf("line %d: %v", rowErr.Line, rowErr.Err)))
			}

			return nil
		},
	}
}
