package main

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xenking/kart-storefront/internal/checkout"
	"github.com/xenking/kart-storefront/internal/domain/order"
)

func renderOrders(w io.Writer, orders []order.Order) {
	if len(orders) == 0 {
		printf(w, "No orders yet.\n")
		return
	}
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		status := string(o.EffectiveStatus())
		if o.ReturnRequested {
			status += " (return requested)"
		}
		rows = append(rows, []string{o.ID, when(o.CreatedAt), strconv.Itoa(len(o.Items)), money(o.Total), status})
	}
	renderTable(w, []string{"Order", "Placed", "Items", "Total", "Status"}, rows)
}

func renderOrder(w io.Writer, o *order.Order) {
	printf(w, "%s %s\n", titleStyle.Render("Order"), o.ID)
	printf(w, "Placed:  %s\n", when(o.CreatedAt))
	printf(w, "Status:  %s\n", o.EffectiveStatus())
	printf(w, "Payment: %s\n", orDash(o.PaymentMethod))
	printf(w, "Ship to: %s, %s, %s\n", orDash(o.ShippingAddress.Name), orDash(o.ShippingAddress.Address), orDash(o.ShippingAddress.Phone))
	if o.ReturnRequested {
		printf(w, "Return:  requested (%s)\n", orDash(o.ReturnReason))
	}
	rows := make([][]string, 0, len(o.Items))
	for _, it := range o.Items {
		rows = append(rows, []string{orDash(it.Name), money(it.Price), strconv.Itoa(it.Quantity)})
	}
	renderTable(w, []string{"Item", "Price", "Qty"}, rows)
	printf(w, "%s %s\n", titleStyle.Render("Total:"), money(o.Total))
}

func (c *cli) ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List your orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			orders, err := a.Shop.Orders(cmd.Context())
			if err != nil {
				return err
			}
			renderOrders(cmd.OutOrStdout(), orders)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			o, err := a.Shop.Order(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderOrder(cmd.OutOrStdout(), o)
			return nil
		},
	}

	cancel := &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel a processing order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			o, err := a.Shop.CancelOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Order %s is now %s.\n", o.ID, o.EffectiveStatus())
			return nil
		},
	}

	var reason string
	ret := &cobra.Command{
		Use:   "return <order-id>",
		Short: "Request a return for a delivered order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			o, err := a.Shop.RequestReturn(cmd.Context(), args[0], reason)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Return requested for order %s.\n", o.ID)
			return nil
		},
	}
	ret.Flags().StringVar(&reason, "reason", "", "Why the order is returned")

	cmd.AddCommand(show, cancel, ret)
	return cmd
}

func (c *cli) checkoutCmd() *cobra.Command {
	var (
		ship checkout.Shipping
		card checkout.Card
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Pay for the cart with a dummy card and place the order",
		Long: "Pay for the cart with a dummy card and place the order. No payment is\n" +
			"processed: any card number of 12 or more characters, an expiry with a\n" +
			"slash and a CVC of 3 or more characters are accepted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			r, err := a.Checkout.Pay(cmd.Context(), ship, card)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printf(w, "%s Order %s placed, %s paid.\n", okStyle.Render("✓"), r.Order.ID, money(r.Total))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&ship.Name, "name", "", "Recipient name")
	f.StringVar(&ship.Email, "email", "", "Contact email")
	f.StringVar(&ship.Phone, "phone", "", "Contact phone")
	f.StringVar(&ship.Address, "address", "", "Shipping address")
	f.StringVar(&card.Number, "card", "", "Card number")
	f.StringVar(&card.Expiry, "expiry", "", "Card expiry (MM/YY)")
	f.StringVar(&card.CVC, "cvc", "", "Card CVC")
	return cmd
}
