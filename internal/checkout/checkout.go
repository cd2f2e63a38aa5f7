// Package checkout places an order for the cart after a simulated card
// payment.
package checkout

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/order"
)

// PaymentMethod is recorded on every order placed through checkout.
const PaymentMethod = "Card (Dummy)"

// Sentinel errors for checkout validation.
var (
	ErrMissingShipping = errors.New("please fill all shipping details")
	ErrInvalidCard     = errors.New("enter valid dummy card details")
	ErrEmptyCart       = errors.New("cart is empty")
)

// Shipping is where the order ships to. Email is collected but not sent.
type Shipping struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Validate requires name, address and phone.
func (s Shipping) Validate() error {
	if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Address) == "" || strings.TrimSpace(s.Phone) == "" {
		return ErrMissingShipping
	}
	return nil
}

// Card is a dummy payment card. No payment is processed.
type Card struct {
	Number string
	Expiry string
	CVC    string
}

// Validate applies the dummy card checks: a number of at least 12
// characters, an expiry containing "/" and a CVC of at least 3 characters.
func (c Card) Validate() error {
	if len(c.Number) < 12 || !strings.Contains(c.Expiry, "/") || len(c.CVC) < 3 {
		return ErrInvalidCard
	}
	return nil
}

// Line is one cart line as shown in the order summary.
type Line struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
	Subtotal decimal.Decimal
}

// Summary is the order summary shown before paying.
type Summary struct {
	Lines []Line
	Total decimal.Decimal
}

// Summarize builds the summary of items.
func Summarize(items []cart.Item) Summary {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{
			Name:     it.Product.Title(),
			Price:    it.Product.Price,
			Quantity: it.Quantity,
			Subtotal: it.Subtotal(),
		})
	}
	return Summary{Lines: lines, Total: cart.Total(items)}
}

// Shop is the part of the shop service checkout drives.
type Shop interface {
	Cart(ctx context.Context) ([]cart.Item, error)
	ClearCart(ctx context.Context) ([]cart.Item, error)
	PlaceOrder(ctx context.Context, req order.PlaceRequest, requestID string) (*order.Order, error)
}

// Receipt is the outcome of a successful checkout.
type Receipt struct {
	Order     *order.Order
	Total     decimal.Decimal
	RequestID string
}

// Service runs checkouts.
type Service struct {
	shop  Shop
	newID func() string
}

// NewService creates a checkout Service.
func NewService(shop Shop) *Service {
	return &Service{
		shop:  shop,
		newID: uuid.NewString,
	}
}

// Pay validates the details, places the order and empties the cart. A
// failure before the order is placed leaves the cart untouched. A failure to
// clear the cart after placing is logged; the order stands.
func (s *Service) Pay(ctx context.Context, ship Shipping, card Card) (*Receipt, error) {
	if err := ship.Validate(); err != nil {
		return nil, err
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}

	items, err := s.shop.Cart(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	total := cart.Total(items)

	requestID := s.newID()
	lg := zctx.From(ctx).With(zap.String("request_id", requestID))

	o, err := s.shop.PlaceOrder(ctx, order.PlaceRequest{
		ShippingAddress: order.ShippingAddress{
			Name:    strings.TrimSpace(ship.Name),
			Address: strings.TrimSpace(ship.Address),
			Phone:   strings.TrimSpace(ship.Phone),
		},
		PaymentMethod: PaymentMethod,
	}, requestID)
	if err != nil {
		return nil, errors.Wrap(err, "place order")
	}
	lg.Info("Order placed", zap.String("order_id", o.ID), zap.String("total", total.StringFixed(2)))

	if _, err := s.shop.ClearCart(ctx); err != nil {
		lg.Warn("Clear cart after order", zap.Error(err))
	} else if _, err := s.shop.Cart(ctx); err != nil {
		lg.Warn("Reload cart after order", zap.Error(err))
	}

	return &Receipt{Order: o, Total: total, RequestID: requestID}, nil
}
