package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"librairie/pkg/domain"
)

func newBooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Browse and manage the catalog",
	}
	cmd.AddCommand(
		newBooksListCmd(),
		newBooksAllCmd(),
		newBooksCategoriesCmd(),
		newBooksFilterCmd(),
		newBooksCreateCmd(),
	)
	return cmd
}

func newBooksListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one catalog page, or search by title/author",
		RunE:  runBooksList,
	}
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().String("search", "", "case-insensitive title/author substring")
	return cmd
}

func runBooksList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	page, _ := cmd.Flags().GetInt("page")
	search, _ := cmd.Flags().GetString("search")

	ctx, cancel := opContext(cmd)
	defer cancel()
	if err := a.catalog.FetchBooks(ctx, page, search); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"books":      a.catalog.Books(),
		"page":       a.catalog.CurrentPage(),
		"totalPages": a.catalog.TotalPages(),
		"total":      a.catalog.TotalBooks(),
	})
}

func newBooksAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Fetch the full book list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := opContext(cmd)
			defer cancel()
			books, err := a.catalog.FetchAllBooks(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), books)
		},
	}
}

func newBooksCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the distinct categories derived from the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := opContext(cmd)
			defer cancel()
			if _, err := a.catalog.FetchAllBooks(ctx); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a.catalog.Categories())
		},
	}
}

func newBooksFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter the catalog by category id",
		RunE:  runBooksFilter,
	}
	cmd.Flags().String("category", "", "category id (empty resets to the first page)")
	return cmd
}

func runBooksFilter(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	categoryID, _ := cmd.Flags().GetString("category")

	ctx, cancel := opContext(cmd)
	defer cancel()
	if _, err := a.catalog.FetchAllBooks(ctx); err != nil {
		return err
	}
	a.catalog.FilterByCategory(categoryID)
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"books":      a.catalog.Books(),
		"page":       a.catalog.CurrentPage(),
		"totalPages": a.catalog.TotalPages(),
	})
}

func newBooksCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a book (admin only)",
		RunE:  runBooksCreate,
	}
	cmd.Flags().String("file", "", "book JSON file ('-' reads stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runBooksCreate(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.session.RequireAdmin(); err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("file")
	data, err := readAll(path)
	if err != nil {
		return err
	}
	var book domain.Book
	if err := json.Unmarshal(data, &book); err != nil {
		return fmt.Errorf("parse book file: %w", err)
	}

	ctx, cancel := opContext(cmd)
	defer cancel()
	created, err := a.catalog.CreateBook(ctx, book)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), created)
}

func readAll(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
