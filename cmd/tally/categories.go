package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tally-money/tally/internal/cli"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
		Long: `List and add categories. Categories are interned on first use and never
edited or deleted; adding one up front just names it before any
transaction references it.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			categories, err := store.ListCategories(ctx)
			if err != nil {
				// Degrade to an empty listing, but say so.
				fmt.Println(cli.FormatWarning(fmt.Sprintf("could not read categories: %v", err)))
				fmt.Print(cli.RenderCategories(nil))
				return nil
			}

			fmt.Print(cli.RenderCategories(categories))
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			id, err := store.EnsureCategory(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to add category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("category %q has id %d", args[0], id)))
			return nil
		},
	}
}
