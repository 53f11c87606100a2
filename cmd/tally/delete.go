package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tally-money/tally/internal/cli"
	"github.com/tally-money/tally/internal/model"
	"github.com/tally-money/tally/internal/storage"
)

func deleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
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

			if !force {
				fmt.Print(cli.RenderTransactions([]model.Transaction{*txn}))
				if !confirm("Delete this transaction?") {
					fmt.Println("Canceled.")
					return nil
				}
			}

			if err := store.DeleteTransaction(ctx, id); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("transaction %d not found", id)
				}
				return fmt.Errorf("failed to delete transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("deleted transaction %d", id)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")

	return cmd
}
