package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tally-money/tally/internal/cli"
	"github.com/tally-money/tally/internal/model"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
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

			fmt.Println(cli.FormatTitle(fmt.Sprintf("Transaction %d", id)))
			fmt.Print(cli.RenderTransactions([]model.Transaction{*txn}))
			return nil
		},
	}
}
