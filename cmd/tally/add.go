package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tally-money/tally/internal/cli"
	"github.com/tally-money/tally/internal/model"
)

func addCmd() *cobra.Command {
	var (
		description string
		amount      float64
		dateValue   string
		category    string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record a transaction in the ledger.

Amounts are signed: use a negative amount for spending.

Examples:
  tally add -d "Coffee" -a -2.50 -c Food
  tally add -d "Salary" -a 3000 -c Salary --date 2025-12-01`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			date, err := parseDateFlag(dateValue, "date")
			if err != nil {
				return err
			}
			if date.IsZero() {
				date = time.Now().UTC().Truncate(24 * time.Hour)
			}

			txn := model.Transaction{
				Description: description,
				Amount:      amount,
				Date:        date,
				Category:    category,
			}
			if err := txn.Validate(); err != nil {
				return err
			}

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			// Warn about likely typos before interning a new category name.
			if categories, listErr := store.ListCategories(ctx); listErr == nil {
				if nearby := suggestCategory(category, categories); nearby != "" {
					fmt.Println(cli.FormatWarning(fmt.Sprintf(
						"category %q is new; did you mean %q?", category, nearby)))
				}
			}

			id, err := store.AddTransaction(ctx, txn)
			if err != nil {
				return fmt.Errorf("failed to add transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"recorded transaction %d: %s %s (%s)",
				id, txn.Description, cli.FormatAmount(txn.Amount), txn.Category)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "desc", "d", "", "transaction description (required)")
	cmd.Flags().Float64VarP(&amount, "amount", "a", 0, "signed amount (required, non-zero)")
	cmd.Flags().StringVar(&dateValue, "date", "", "date as YYYY-MM-DD (default: today)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name (required)")
	_ = cmd.MarkFlagRequired("desc")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}
