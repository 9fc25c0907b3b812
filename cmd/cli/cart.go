package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and mutate the cart",
	}
	cmd.AddCommand(
		newCartShowCmd(),
		newCartAddCmd(),
		newCartSetCmd(),
		newCartRemoveCmd(),
		newCartClearCmd(),
	)
	return cmd
}

func newCartShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Fetch and display the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.session.RequireAuth(); err != nil {
				return err
			}
			ctx, cancel := opContext(cmd)
			defer cancel()
			items, err := a.cart.FetchCart(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"items":     items,
				"total":     a.cart.Total(),
				"itemCount": a.cart.ItemCount(),
			})
		},
	}
}

func newCartAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <livre-id>",
		Short: "Add a book to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, _ := cmd.Flags().GetInt("quantity")
			return runCartMutation(cmd, func(a *app) error {
				ctx, cancel := opContext(cmd)
				defer cancel()
				return a.cart.AddToCart(ctx, args[0], quantity)
			})
		},
	}
	cmd.Flags().Int("quantity", 1, "quantity to add")
	return cmd
}

func newCartSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <livre-id>",
		Short: "Set a line's quantity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, _ := cmd.Flags().GetInt("quantity")
			return runCartMutation(cmd, func(a *app) error {
				ctx, cancel := opContext(cmd)
				defer cancel()
				return a.cart.UpdateQuantity(ctx, args[0], quantity)
			})
		},
	}
	cmd.Flags().Int("quantity", 1, "new quantity")
	_ = cmd.MarkFlagRequired("quantity")
	return cmd
}

func newCartRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <livre-id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartMutation(cmd, func(a *app) error {
				ctx, cancel := opContext(cmd)
				defer cancel()
				return a.cart.RemoveItem(ctx, args[0])
			})
		},
	}
}

func newCartClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.session.RequireAuth(); err != nil {
				return err
			}
			ctx, cancel := opContext(cmd)
			defer cancel()
			if err := a.cart.ClearCart(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

// runCartMutation gates on authentication, runs the mutation, and prints the
// refreshed cart.
func runCartMutation(cmd *cobra.Command, mutate func(a *app) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.session.RequireAuth(); err != nil {
		return err
	}
	if err := mutate(a); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"items":     a.cart.Items(),
		"total":     a.cart.Total(),
		"itemCount": a.cart.ItemCount(),
	})
}
