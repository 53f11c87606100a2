package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tally-money/tally/internal/cli"
	"github.com/tally-money/tally/internal/model"
	"github.com/tally-money/tally/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	var (
		dryRun   bool
		category string
	)

	cmd := &cobra.Command{
		Use:   "import-ofx <files...>",
		Short: "Import transactions from OFX/QFX statements",
		Long: `Import transactions from OFX or QFX statement files exported from a bank.

Duplicate statement rows (same date, amount and description) across the
given files are imported once.

Examples:
  tally import-ofx ~/Downloads/checking_jan.qfx
  tally import-ofx ~/Downloads/*.qfx --category Other`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var files []string
			for _, pattern := range args {
				matches, err := filepath.Glob(pattern)
				if err != nil {
					return fmt.Errorf("invalid pattern %s: %w", pattern, err)
				}
				if len(matches) == 0 {
					if _, err := os.Stat(pattern); err == nil {
						files = append(files, pattern)
					} else {
						slog.Warn("no files match pattern", "pattern", pattern)
					}
					continue
				}
				files = append(files, matches...)
			}
			if len(files) == 0 {
				return fmt.Errorf("no files found to import")
			}

			parser := ofx.NewParser(slog.Default())
			seen := make(map[string]bool)
			var transactions []model.Transaction

			for _, path := range files {
				f, err := os.Open(path) // #nosec G304 -- paths come from the user's arguments
				if err != nil {
					slog.Error("failed to open statement", "file", path, "error", err)
					continue
				}

				parsed, err := parser.ParseFile(ctx, f)
				_ = f.Close()
				if err != nil {
					slog.Error("failed to parse statement", "file", path, "error", err)
					continue
				}

				for _, txn := range parsed {
					key := txn.DateString() + "|" + strconv.FormatFloat(txn.Amount, 'f', -1, 64) + "|" + txn.Description
					if seen[key] {
						continue
					}
					seen[key] = true

					if category != "" {
						txn.Category = category
					}
					transactions = append(transactions, txn)
				}
			}

			if dryRun {
				fmt.Print(cli.RenderTransactions(transactions))
				fmt.Println(cli.FormatWarning(fmt.Sprintf(
					"dry run: %d transactions not saved", len(transactions))))
				return nil
			}

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			imported, rejected := 0, 0
			for _, txn := range transactions {
				if _, err := store.AddTransaction(ctx, txn); err != nil {
					rejected++
					slog.Warn("skipping statement row", "description", txn.Description, "error", err)
					continue
				}
				imported++
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"imported %d transactions from %d files (%d rejected)",
				imported, len(files), rejected)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "preview without saving")
	cmd.Flags().StringVarP(&category, "category", "c", "", "override the category for every imported row")

	return cmd
}
