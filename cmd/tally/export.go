package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tally-money/tally/internal/cli"
)

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Export all transactions to a CSV file",
		Long: `Export every transaction to a CSV file with the header
id,description,amount,date,category. An empty ledger produces a
header-only file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			if err := store.ExportCSVFile(ctx, args[0]); err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			count, err := store.CountTransactions(ctx)
			if err != nil {
				count = 0
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"exported %d transactions to %s", count, args[0])))
			return nil
		},
	}
}
