package store

import (
	"github.com/xenking/kart-storefront/internal/domain/auth"
	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
)

// Auth actions.
type (
	// AuthPending starts a login, register or profile request.
	AuthPending struct{}
	// AuthFulfilled sets the user. With Merge the fields are overlaid on the
	// current user, as a profile response omits the token.
	AuthFulfilled struct {
		User  auth.UserInfo
		Merge bool
	}
	AuthRejected struct{ Err error }
	Logout       struct{}
)

// Catalog actions.
type (
	CatalogPending      struct{}
	ProductFulfilled    struct{ Product product.Product }
	CategoriesFulfilled struct{ Categories []product.Category }
	CatalogRejected     struct{ Err error }
	SetSearchQuery      struct{ Query string }
)

// Cart actions. Every cart endpoint answers with the full cart.
type (
	CartPending   struct{}
	CartFulfilled struct{ Items []cart.Item }
	CartRejected  struct{ Err error }
)

// Order actions.
type (
	OrdersPending   struct{}
	OrdersFulfilled struct{ List []order.Order }
	// OrderFulfilled sets the current order and replaces its entry in the list.
	OrderFulfilled struct{ Order order.Order }
	OrdersRejected struct{ Err error }
)

// Wishlist actions. Every wishlist endpoint answers with the full wishlist.
type (
	WishlistPending   struct{}
	WishlistFulfilled struct{ Items []product.Product }
	WishlistRejected  struct{ Err error }
)

func (AuthPending) Domain() Domain   { return DomainAuth }
func (AuthFulfilled) Domain() Domain { return DomainAuth }
func (AuthRejected) Domain() Domain  { return DomainAuth }
func (Logout) Domain() Domain        { return DomainAuth }

func (CatalogPending) Domain() Domain      { return DomainCatalog }
func (ProductFulfilled) Domain() Domain    { return DomainCatalog }
func (CategoriesFulfilled) Domain() Domain { return DomainCatalog }
func (CatalogRejected) Domain() Domain     { return DomainCatalog }
func (SetSearchQuery) Domain() Domain      { return DomainCatalog }

func (CartPending) Domain() Domain   { return DomainCart }
func (CartFulfilled) Domain() Domain { return DomainCart }
func (CartRejected) Domain() Domain  { return DomainCart }

func (OrdersPending) Domain() Domain   { return DomainOrders }
func (OrdersFulfilled) Domain() Domain { return DomainOrders }
func (OrderFulfilled) Domain() Domain  { return DomainOrders }
func (OrdersRejected) Domain() Domain  { return DomainOrders }

func (WishlistPending) Domain() Domain   { return DomainWishlist }
func (WishlistFulfilled) Domain() Domain { return DomainWishlist }
func (WishlistRejected) Domain() Domain  { return DomainWishlist }
