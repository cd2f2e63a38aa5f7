package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xenking/kart-storefront/internal/domain/product"
)

func item(id string, price string, qty int) Item {
	return Item{
		ID:       "line-" + id,
		Product:  product.Product{ID: id, Price: decimal.RequireFromString(price)},
		Quantity: qty,
	}
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  string
	}{
		{name: "empty", want: "0"},
		{name: "single", items: []Item{item("a", "19.99", 3)}, want: "59.97"},
		{name: "mixed", items: []Item{item("a", "0.1", 1), item("b", "0.2", 1)}, want: "0.3"},
		{name: "rounds", items: []Item{item("a", "1.005", 1), item("b", "2.001", 1)}, want: "3.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Total(tt.items).String())
		})
	}
}

func TestContains(t *testing.T) {
	items := []Item{item("a", "1", 1), item("b", "2", 1)}
	assert.True(t, Contains(items, "b"))
	assert.False(t, Contains(items, "c"))
	assert.False(t, Contains(nil, "a"))
}
