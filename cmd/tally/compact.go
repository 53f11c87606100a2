package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tally-money/tally/internal/cli"
)

func compactCmd() *cobra.Command {
	var (
		force    bool
		noBackup bool
	)

	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Renumber transaction ids densely from 1",
		Long: `Rebuild the transactions table so ids run densely from 1, closing the
gaps deletions leave behind.

Every previously known transaction id becomes stale. The rebuild is
all-or-nothing, and a backup is taken first unless --no-backup is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			count, err := store.CountTransactions(ctx)
			if err != nil {
				return fmt.Errorf("failed to count transactions: %w", err)
			}
			if count == 0 {
				fmt.Println("Ledger is empty. Nothing to compact.")
				return nil
			}

			if !force {
				fmt.Println(cli.FormatWarning(fmt.Sprintf(
					"compacting renumbers all %d transactions; existing ids become invalid", count)))
				if !confirm("Continue?") {
					fmt.Println("Canceled.")
					return nil
				}
			}

			if !noBackup {
				bm, bmErr := store.NewBackupManager()
				if bmErr != nil {
					return bmErr
				}
				info, backupErr := bm.Create(ctx, "", "before id compaction", true)
				if backupErr != nil {
					return fmt.Errorf("pre-compaction backup failed: %w", backupErr)
				}
				fmt.Println(cli.SubtleStyle.Render("backed up to " + info.Tag))
			}

			mapping, err := store.CompactTransactionIDs(ctx)
			if err != nil {
				return fmt.Errorf("compaction failed, ledger unchanged: %w", err)
			}

			renumbered := 0
			for oldID, newID := range mapping {
				if oldID != newID {
					renumbered++
				}
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"compacted %d transactions (%d renumbered)", len(mapping), renumbered)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "skip the automatic backup")

	return cmd
}
