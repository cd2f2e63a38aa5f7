package shop

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/store"
)

// ErrInvalidQuantity is returned when adding fewer than one unit.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

func cartFulfilled(items []cart.Item) store.Action { return store.CartFulfilled{Items: items} }
func cartRejected(err error) store.Action          { return store.CartRejected{Err: err} }

func (s *Service) cartAction(ctx context.Context, op string, fn func(context.Context) ([]cart.Item, error)) ([]cart.Item, error) {
	if _, err := s.RequireLogin(ctx); err != nil {
		return nil, err
	}
	return run(ctx, s, op, store.CartPending{}, fn, cartFulfilled, cartRejected)
}

// Cart loads the cart.
func (s *Service) Cart(ctx context.Context) ([]cart.Item, error) {
	return s.cartAction(ctx, "fetch cart", s.api.Cart)
}

// AddToCart adds quantity units of a product.
func (s *Service) AddToCart(ctx context.Context, productID string, quantity int) ([]cart.Item, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	return s.cartAction(ctx, "add to cart", func(ctx context.Context) ([]cart.Item, error) {
		return s.api.AddToCart(ctx, productID, quantity)
	})
}

// RemoveFromCart removes a product from the cart.
func (s *Service) RemoveFromCart(ctx context.Context, productID string) ([]cart.Item, error) {
	return s.cartAction(ctx, "remove from cart", func(ctx context.Context) ([]cart.Item, error) {
		return s.api.RemoveFromCart(ctx, productID)
	})
}

// ClearCart empties the cart.
func (s *Service) ClearCart(ctx context.Context) ([]cart.Item, error) {
	return s.cartAction(ctx, "clear cart", s.api.ClearCart)
}

func wishlistFulfilled(items []product.Product) store.Action {
	return store.WishlistFulfilled{Items: items}
}
func wishlistRejected(err error) store.Action { return store.WishlistRejected{Err: err} }

func (s *Service) wishlistAction(ctx context.Context, op string, fn func(context.Context) ([]product.Product, error)) ([]product.Product, error) {
	if _, err := s.RequireLogin(ctx); err != nil {
		return nil, err
	}
	return run(ctx, s, op, store.WishlistPending{}, fn, wishlistFulfilled, wishlistRejected)
}

// Wishlist loads the wishlist.
func (s *Service) Wishlist(ctx context.Context) ([]product.Product, error) {
	return s.wishlistAction(ctx, "fetch wishlist", s.api.Wishlist)
}

// AddToWishlist adds a product to the wishlist.
func (s *Service) AddToWishlist(ctx context.Context, productID string) ([]product.Product, error) {
	return s.wishlistAction(ctx, "add to wishlist", func(ctx context.Context) ([]product.Product, error) {
		return s.api.AddToWishlist(ctx, productID)
	})
}

// RemoveFromWishlist removes a product from the wishlist.
func (s *Service) RemoveFromWishlist(ctx context.Context, productID string) ([]product.Product, error) {
	return s.wishlistAction(ctx, "remove from wishlist", func(ctx context.Context) ([]product.Product, error) {
		return s.api.RemoveFromWishlist(ctx, productID)
	})
}

// ClearWishlist empties the wishlist.
func (s *Service) ClearWishlist(ctx context.Context) ([]product.Product, error) {
	return s.wishlistAction(ctx, "clear wishlist", s.api.ClearWishlist)
}
