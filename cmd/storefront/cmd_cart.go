package main

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/product"
)

func renderCart(w io.Writer, items []cart.Item) {
	if len(items) == 0 {
		printf(w, "Your cart is empty.\n")
		return
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			it.Product.ID,
			it.Product.Title(),
			money(it.Product.Price),
			strconv.Itoa(it.Quantity),
			money(it.Subtotal()),
		})
	}
	renderTable(w, []string{"Product", "Name", "Price", "Qty", "Subtotal"}, rows)
	printf(w, "%s %s\n", titleStyle.Render("Total:"), money(cart.Total(items)))
}

func renderProducts(w io.Writer, products []product.Product, empty string) {
	if len(products) == 0 {
		printf(w, "%s\n", empty)
		return
	}
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{p.ID, p.Title(), money(p.Price), strconv.Itoa(p.Stock)})
	}
	renderTable(w, []string{"ID", "Name", "Price", "Stock"}, rows)
}

func (c *cli) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			items, err := a.Shop.Cart(cmd.Context())
			if err != nil {
				return err
			}
			renderCart(cmd.OutOrStdout(), items)
			return nil
		},
	}

	var qty int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			items, err := a.Shop.AddToCart(cmd.Context(), args[0], qty)
			if err != nil {
				return err
			}
			renderCart(cmd.OutOrStdout(), items)
			return nil
		},
	}
	add.Flags().IntVarP(&qty, "qty", "q", 1, "Quantity")

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			items, err := a.Shop.RemoveFromCart(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderCart(cmd.OutOrStdout(), items)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			items, err := a.Shop.ClearCart(cmd.Context())
			if err != nil {
				return err
			}
			renderCart(cmd.OutOrStdout(), items)
			return nil
		},
	}

	cmd.AddCommand(add, remove, clearCmd)
	return cmd
}

func (c *cli) wishlistCmd() *cobra.Command {
	const empty = "Your wishlist is empty."
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Show the wishlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			products, err := a.Shop.Wishlist(cmd.Context())
			if err != nil {
				return err
			}
			renderProducts(cmd.OutOrStdout(), products, empty)
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			products, err := a.Shop.AddToWishlist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderProducts(cmd.OutOrStdout(), products, empty)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			products, err := a.Shop.RemoveFromWishlist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderProducts(cmd.OutOrStdout(), products, empty)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the wishlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			products, err := a.Shop.ClearWishlist(cmd.Context())
			if err != nil {
				return err
			}
			renderProducts(cmd.OutOrStdout(), products, empty)
			return nil
		},
	}

	cmd.AddCommand(add, remove, clearCmd)
	return cmd
}
