package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tally-money/tally/internal/cli"
	"github.com/tally-money/tally/internal/service"
)

func listCmd() *cobra.Command {
	var (
		category string
		from     string
		to       string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Long: `List transactions, newest first. Filters are combined; date bounds are
inclusive.

Examples:
  tally list
  tally list -c Food --from 2025-12-01
  tally list --limit 10`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			filter := service.Filter{Category: category, Limit: limit}
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

			if category != "" {
				if categories, listErr := store.ListCategories(ctx); listErr == nil {
					if nearby := suggestCategory(category, categories); nearby != "" {
						fmt.Println(cli.FormatWarning(fmt.Sprintf(
							"no category %q; did you mean %q?", category, nearby)))
					}
				}
			}

			transactions, err := store.ListTransactions(ctx, filter)
			if err != nil {
				// Degrade to an empty listing, but say so.
				fmt.Println(cli.FormatWarning(fmt.Sprintf("could not read transactions: %v", err)))
				fmt.Print(cli.RenderTransactions(nil))
				return nil
			}

			fmt.Print(cli.RenderTransactions(transactions))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only this category (exact name)")
	cmd.Flags().StringVar(&from, "from", "", "earliest date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "latest date, inclusive (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "cap the number of rows (0 = all)")

	return cmd
}
