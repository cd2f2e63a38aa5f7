package store

import (
	"github.com/xenking/kart-storefront/internal/domain/auth"
	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
)

// State is the whole client-side state. Slices are replaced, never mutated
// in place, so a State returned by Store.State is safe to keep.
type State struct {
	Auth     AuthState
	Catalog  CatalogState
	Cart     CartState
	Orders   OrdersState
	Wishlist WishlistState
}

// AuthState holds the logged-in user, nil when logged out.
type AuthState struct {
	User    *auth.UserInfo
	Loading bool
	Err     error
}

// LoggedIn reports whether a user is set.
func (s AuthState) LoggedIn() bool {
	return s.User != nil
}

// CatalogState holds the product detail being viewed and the category list.
type CatalogState struct {
	Product     *product.Product
	Categories  []product.Category
	SearchQuery string
	Loading     bool
	Err         error
}

// CartState holds the server-side cart.
type CartState struct {
	Items   []cart.Item
	Loading bool
	Err     error
}

// OrdersState holds the user's order list and the order last opened or placed.
type OrdersState struct {
	List    []order.Order
	Current *order.Order
	Loading bool
	Err     error
}

// WishlistState holds the wishlisted products.
type WishlistState struct {
	Items   []product.Product
	Loading bool
	Err     error
}
