package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/pkg/roundtrip"
)

// PlaceOrder creates an order from the server-side cart. A non-empty
// requestID is sent as X-Request-ID so a retried placement is not duplicated.
func (c *Client) PlaceOrder(ctx context.Context, req order.PlaceRequest, requestID string) (*order.Order, error) {
	if requestID != "" {
		ctx = roundtrip.WithRequestID(ctx, requestID)
	}
	var o order.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", nil, req, &o); err != nil {
		return nil, errors.Wrap(err, "place order")
	}
	return &o, nil
}

// Orders returns the logged-in user's orders.
func (c *Client) Orders(ctx context.Context) ([]order.Order, error) {
	var orders []order.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, nil, &orders); err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// Order returns one of the logged-in user's orders.
func (c *Client) Order(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, nil, &o); err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	return &o, nil
}

// CancelOrder cancels a processing order and returns it.
func (c *Client) CancelOrder(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id)+"/cancel", nil, nil, &o); err != nil {
		return nil, errors.Wrap(err, "cancel order")
	}
	return &o, nil
}

// RequestReturn asks for a return of a delivered order.
func (c *Client) RequestReturn(ctx context.Context, id, reason string) (*order.Order, error) {
	var resp struct {
		Order json.RawMessage `json:"order"`
	}
	body := struct {
		Reason string `json:"reason"`
	}{Reason: reason}
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id)+"/return", nil, body, &resp); err != nil {
		return nil, errors.Wrap(err, "request return")
	}
	var o order.Order
	if len(resp.Order) > 0 && string(resp.Order) != "null" {
		if err := json.Unmarshal(resp.Order, &o); err != nil {
			return nil, errors.Wrap(err, "decode order")
		}
	}
	return &o, nil
}
