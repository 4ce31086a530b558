package main

import (
	"fmt"
	"strconv"

	"github.com/nextax/nextax/internal/cli"
	"github.com/nextax/nextax/internal/model"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage income and expense categories",
		Long:  `List, add and delete the categories transactions are filed under.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

// parseOptionalType accepts an empty string as "any type".
func parseOptionalType(s string) (model.TransactionType, error) {
	if s == "" {
		return "", nil
	}
	return model.ParseTransactionType(s)
}

func listCategoriesCmd() *cobra.Command {
	var categoryType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			kind, err := parseOptionalType(categoryType)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			categories, err := store.GetCategories(ctx, kind)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			outln(cmd, cli.RenderCategories(categories))
			return nil
		},
	}

	cmd.Flags().StringVarP(&categoryType, "type", "t", "", "only show income or expense categories")

	return cmd
}

func addCategoryCmd() *cobra.Command {
	var (
		categoryType string
		color        string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			kind, err := model.ParseTransactionType(categoryType)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			category, err := store.CreateCategory(ctx, args[0], kind, color)
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			outln(cmd, cli.FormatSuccess(fmt.Sprintf("Created category %q (ID: %d)", category.Name, category.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&categoryType, "type", "t", string(model.TypeExpense), "category type (income, expense)")
	cmd.Flags().StringVarP(&color, "color", "c", model.DefaultCategoryColor, "display color as #RGB or #RRGGBB")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long:  `Delete a category. Its transactions are kept and become uncategorized.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid category id %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			category, err := store.GetCategoryByID(ctx, id)
			if err != nil {
				return err
			}

			ok, err := confirm(cmd, force, fmt.Sprintf("Delete category %q?", category.Name))
			if err != nil {
				return err
			}
			if !ok {
				outln(cmd, cli.SubtleStyle.Render("Deletion cancelled."))
				return nil
			}

			if err := store.DeleteCategory(ctx, id); err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}

			outln(cmd, cli.FormatSuccess(fmt.Sprintf("Deleted category %q", category.Name)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}
