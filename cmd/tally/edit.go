package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tally-money/tally/internal/cli"
)

func editCmd() *cobra.Command {
	var (
		description string
		amount      float64
		dateValue   string
		category    string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a transaction",
		Long: `Edit a transaction. Only the fields whose flags are given change; the
update always rewrites the full row.

Example:
  tally edit 12 -a -3.20 -c Entertainment`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			txn, err := store.GetTransaction(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get transaction: %w", err)
			}
			if txn == nil {
				return fmt.Errorf("transaction %d not found", id)
			}

			flags := cmd.Flags()
			if flags.Changed("desc") {
				txn.Description = description
			}
			if flags.Changed("amount") {
				txn.Amount = amount
			}
			if flags.Changed("date") {
				date, dateErr := parseDateFlag(dateValue, "date")
				if dateErr != nil {
					return dateErr
				}
				txn.Date = date
			}
			if flags.Changed("category") {
				txn.Category = category
			}

			if err := txn.Validate(); err != nil {
				return err
			}
			if err := store.UpdateTransaction(ctx, *txn); err != nil {
				return fmt.Errorf("failed to update transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("updated transaction %d", id)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "desc", "d", "", "new description")
	cmd.Flags().Float64VarP(&amount, "amount", "a", 0, "new signed amount")
	cmd.Flags().StringVar(&dateValue, "date", "", "new date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category name")

	return cmd
}
