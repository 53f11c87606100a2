package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tally-money/tally/internal/cli"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage ledger backups",
		Long: `Create, list, restore, delete and prune snapshots of the ledger file.
Backups live in a backups/ directory next to the database.`,
	}

	cmd.AddCommand(backupCreateCmd())
	cmd.AddCommand(backupListCmd())
	cmd.AddCommand(backupRestoreCmd())
	cmd.AddCommand(backupDeleteCmd())
	cmd.AddCommand(backupPruneCmd())

	return cmd
}

func backupCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create [tag]",
		Short: "Snapshot the ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			bm, err := store.NewBackupManager()
			if err != nil {
				return err
			}

			tag := ""
			if len(args) > 0 {
				tag = args[0]
			}

			info, err := bm.Create(ctx, tag, description, false)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"created backup %s (%d transactions, %d bytes)",
				info.Tag, info.Transactions, info.FileSize)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "message", "m", "", "describe this backup")

	return cmd
}

func backupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			bm, err := store.NewBackupManager()
			if err != nil {
				return err
			}

			backups, err := bm.List(ctx)
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No backups."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Tag"),
				cli.HeaderStyle.Render("Created"),
				cli.HeaderStyle.Render("Transactions"),
				cli.HeaderStyle.Render("Auto"),
				cli.HeaderStyle.Render("Description"))
			for _, info := range backups {
				auto := ""
				if info.Auto {
					auto = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
					info.Tag,
					info.CreatedAt.Format("2006-01-02 15:04:05"),
					info.Transactions,
					auto,
					info.Description)
			}
			return w.Flush()
		},
	}
}

func backupRestoreCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <tag>",
		Short: "Replace the ledger with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !force {
				fmt.Println(cli.FormatWarning("restoring replaces the current ledger file"))
				if !confirm("Continue?") {
					fmt.Println("Canceled.")
					return nil
				}
			}

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			// Restore closes the store handle on success; on failure it may
			// not have gotten that far, and double-closing is harmless.

			bm, err := store.NewBackupManager()
			if err != nil {
				closeStore(store)
				return err
			}

			if err := bm.Restore(ctx, args[0]); err != nil {
				closeStore(store)
				return fmt.Errorf("restore failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess("restored backup " + args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")

	return cmd
}

func backupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tag>",
		Short: "Delete a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			bm, err := store.NewBackupManager()
			if err != nil {
				return err
			}

			if err := bm.Delete(ctx, args[0]); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("deleted backup " + args[0]))
			return nil
		},
	}
}

func backupPruneCmd() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest backups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			bm, err := store.NewBackupManager()
			if err != nil {
				return err
			}

			pruned, err := bm.Prune(ctx, keep)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"pruned %d backups, kept %d", pruned, keep)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&keep, "keep", "k", 5, "how many backups to keep")

	return cmd
}
