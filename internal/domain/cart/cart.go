package cart

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/product"
)

// Item is a cart or wishlist line with the populated product.
type Item struct {
	ID       string          `json:"_id"`
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price * quantity for the line.
func (i Item) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total returns the sum of all line subtotals rounded to 2 decimal places.
func Total(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum.Round(2)
}

// Contains reports whether any line holds the given product.
func Contains(items []Item, productID string) bool {
	for _, it := range items {
		if it.Product.ID == productID {
			return true
		}
	}
	return false
}
