package store

import (
	"slices"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/product"
)

// Reduce returns the state after a. It does not modify s.
func Reduce(s State, a Action) State {
	switch a.Domain() {
	case DomainAuth:
		s.Auth = reduceAuth(s.Auth, a)
	case DomainCatalog:
		s.Catalog = reduceCatalog(s.Catalog, a)
	case DomainCart:
		s.Cart = reduceCart(s.Cart, a)
	case DomainOrders:
		s.Orders = reduceOrders(s.Orders, a)
	case DomainWishlist:
		s.Wishlist = reduceWishlist(s.Wishlist, a)
	}
	return s
}

func reduceAuth(s AuthState, a Action) AuthState {
	switch a := a.(type) {
	case AuthPending:
		s.Loading = true
		s.Err = nil
	case AuthFulfilled:
		u := a.User
		if a.Merge && s.User != nil {
			u = s.User.Merge(a.User)
		}
		s.User = &u
		s.Loading = false
		s.Err = nil
	case AuthRejected:
		s.Loading = false
		s.Err = a.Err
	case Logout:
		s = AuthState{}
	}
	return s
}

func reduceCatalog(s CatalogState, a Action) CatalogState {
	switch a := a.(type) {
	case CatalogPending:
		s.Loading = true
		s.Err = nil
	case ProductFulfilled:
		p := a.Product
		s.Product = &p
		s.Loading = false
	case CategoriesFulfilled:
		s.Categories = slices.Clone(a.Categories)
		s.Loading = false
	case CatalogRejected:
		s.Loading = false
		s.Err = a.Err
	case SetSearchQuery:
		s.SearchQuery = a.Query
	}
	return s
}

func reduceCart(s CartState, a Action) CartState {
	switch a := a.(type) {
	case CartPending:
		s.Loading = true
		s.Err = nil
	case CartFulfilled:
		s.Items = slices.Clone(a.Items)
		if s.Items == nil {
			s.Items = []cart.Item{}
		}
		s.Loading = false
	case CartRejected:
		s.Loading = false
		s.Err = a.Err
	}
	return s
}

func reduceOrders(s OrdersState, a Action) OrdersState {
	switch a := a.(type) {
	case OrdersPending:
		s.Loading = true
		s.Err = nil
	case OrdersFulfilled:
		s.List = slices.Clone(a.List)
		s.Loading = false
	case OrderFulfilled:
		o := a.Order
		s.Current = &o
		s.List = slices.Clone(s.List)
		for i := range s.List {
			if s.List[i].ID == o.ID {
				s.List[i] = o
			}
		}
		s.Loading = false
	case OrdersRejected:
		s.Loading = false
		s.Err = a.Err
	}
	return s
}

func reduceWishlist(s WishlistState, a Action) WishlistState {
	switch a := a.(type) {
	case WishlistPending:
		s.Loading = true
		s.Err = nil
	case WishlistFulfilled:
		s.Items = slices.Clone(a.Items)
		if s.Items == nil {
			s.Items = []product.Product{}
		}
		s.Loading = false
	case WishlistRejected:
		s.Loading = false
		s.Err = a.Err
	}
	return s
}
