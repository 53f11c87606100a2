package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tally-money/tally/internal/cli"
	"github.com/tally-money/tally/internal/service"
)

func reportCmd() *cobra.Command {
	var (
		category string
		from     string
		to       string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize totals by category",
		Long: `Summarize transaction totals and counts per category, largest total
first. Totals are plain floating-point sums.

Examples:
  tally report
  tally report --from 2025-12-01 --to 2025-12-31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			filter := service.Filter{Category: category}
			var err error
			if filter.Since, err = parseDateFlag(from, "from"); err != nil {
				return err
			}
			if filter.Until, err = parseDateFlag(to, "to"); err != nil {
				return err
			}

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			totals, err := store.CategorySummary(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}

			fmt.Println(cli.TitleStyle.Render(cli.ChartIcon + " Spending by category"))
			fmt.Print(cli.RenderReport(totals))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only this category (exact name)")
	cmd.Flags().StringVar(&from, "from", "", "earliest date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "latest date, inclusive (YYYY-MM-DD)")

	return cmd
}
