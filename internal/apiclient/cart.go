package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/product"
)

type productRef struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity,omitempty"`
}

// list decodes the {"items": [...]} envelope the cart and wishlist endpoints
// answer with. Older deployments send "cartItems" or a bare array.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(data []byte) error {
	if isArray(data) {
		return json.Unmarshal(data, (*[]T)(l))
	}
	var v struct {
		Items     []T `json:"items"`
		CartItems []T `json:"cartItems"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = v.Items
	if *l == nil {
		*l = v.CartItems
	}
	return nil
}

func fetchList[T any](ctx context.Context, c *Client, method, path string, in any) ([]T, error) {
	var out list[T]
	if err := c.do(ctx, method, path, nil, in, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return []T{}, nil
	}
	return out, nil
}

func (c *Client) items(ctx context.Context, method, path string, in any) ([]cart.Item, error) {
	return fetchList[cart.Item](ctx, c, method, path, in)
}

func (c *Client) products(ctx context.Context, method, path string, in any) ([]product.Product, error) {
	return fetchList[product.Product](ctx, c, method, path, in)
}

// Cart returns the cart of the logged-in user.
func (c *Client) Cart(ctx context.Context) ([]cart.Item, error) {
	res, err := c.items(ctx, http.MethodGet, "/api/cart", nil)
	return res, errors.Wrap(err, "get cart")
}

// AddToCart adds quantity units of a product and returns the updated cart.
func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) ([]cart.Item, error) {
	res, err := c.items(ctx, http.MethodPost, "/api/cart/add", productRef{ProductID: productID, Quantity: quantity})
	return res, errors.Wrap(err, "add to cart")
}

// RemoveFromCart removes a product and returns the updated cart.
func (c *Client) RemoveFromCart(ctx context.Context, productID string) ([]cart.Item, error) {
	res, err := c.items(ctx, http.MethodPost, "/api/cart/remove", productRef{ProductID: productID})
	return res, errors.Wrap(err, "remove from cart")
}

// ClearCart empties the cart.
func (c *Client) ClearCart(ctx context.Context) ([]cart.Item, error) {
	res, err := c.items(ctx, http.MethodPost, "/api/cart/clear", nil)
	return res, errors.Wrap(err, "clear cart")
}

// Wishlist returns the wishlist of the logged-in user. It is always fetched
// fresh.
func (c *Client) Wishlist(ctx context.Context) ([]product.Product, error) {
	res, err := c.products(ctx, http.MethodGet, "/api/wishlist", nil)
	return res, errors.Wrap(err, "get wishlist")
}

// AddToWishlist adds a product and returns the updated wishlist.
func (c *Client) AddToWishlist(ctx context.Context, productID string) ([]product.Product, error) {
	res, err := c.products(ctx, http.MethodPost, "/api/wishlist/add", productRef{ProductID: productID})
	return res, errors.Wrap(err, "add to wishlist")
}

// RemoveFromWishlist removes a product and returns the updated wishlist.
func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) ([]product.Product, error) {
	res, err := c.products(ctx, http.MethodPost, "/api/wishlist/remove", productRef{ProductID: productID})
	return res, errors.Wrap(err, "remove from wishlist")
}

// ClearWishlist empties the wishlist.
func (c *Client) ClearWishlist(ctx context.Context) ([]product.Product, error) {
	res, err := c.products(ctx, http.MethodPost, "/api/wishlist/clear", nil)
	return res, errors.Wrap(err, "clear wishlist")
}
