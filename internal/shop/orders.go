package shop

import (
	"context"
	"strings"

	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/store"
)

func ordersRejected(err error) store.Action { return store.OrdersRejected{Err: err} }

func orderFulfilled(o *order.Order) store.Action { return store.OrderFulfilled{Order: *o} }

// PlaceOrder places an order for the current cart and makes it current.
// requestID identifies the placement so a retried request is not duplicated.
func (s *Service) PlaceOrder(ctx context.Context, req order.PlaceRequest, requestID string) (*order.Order, error) {
	if _, err := s.RequireLogin(ctx); err != nil {
		return nil, err
	}
	return run(ctx, s, "place order", store.OrdersPending{},
		func(ctx context.Context) (*order.Order, error) { return s.api.PlaceOrder(ctx, req, requestID) },
		orderFulfilled,
		ordersRejected,
	)
}

// Orders loads the user's orders.
func (s *Service) Orders(ctx context.Context) ([]order.Order, error) {
	if _, err := s.RequireLogin(ctx); err != nil {
		return nil, err
	}
	return run(ctx, s, "fetch orders", store.OrdersPending{}, s.api.Orders,
		func(list []order.Order) store.Action { return store.OrdersFulfilled{List: list} },
		ordersRejected,
	)
}

// Order loads one order and makes it current.
func (s *Service) Order(ctx context.Context, id string) (*order.Order, error) {
	if _, err := s.RequireLogin(ctx); err != nil {
		return nil, err
	}
	return run(ctx, s, "fetch order", store.OrdersPending{},
		func(ctx context.Context) (*order.Order, error) { return s.api.Order(ctx, id) },
		orderFulfilled,
		ordersRejected,
	)
}

// CancelOrder cancels an order. Orders already known not to be processing
// are rejected without calling the API.
func (s *Service) CancelOrder(ctx context.Context, id string) (*order.Order, error) {
	if _, err := s.RequireLogin(ctx); err != nil {
		return nil, err
	}
	if o, ok := s.knownOrder(id); ok && !o.Cancelable() {
		return nil, order.ErrNotCancelable
	}
	return run(ctx, s, "cancel order", store.OrdersPending{},
		func(ctx context.Context) (*order.Order, error) { return s.api.CancelOrder(ctx, id) },
		orderFulfilled,
		ordersRejected,
	)
}

// RequestReturn asks for a return of a delivered order. A reason is
// required.
func (s *Service) RequestReturn(ctx context.Context, id, reason string) (*order.Order, error) {
	if _, err := s.RequireLogin(ctx); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, order.ErrEmptyReturnCause
	}
	if o, ok := s.knownOrder(id); ok && !o.Returnable() {
		return nil, order.ErrNotReturnable
	}
	return run(ctx, s, "request return", store.OrdersPending{},
		func(ctx context.Context) (*order.Order, error) { return s.api.RequestReturn(ctx, id, reason) },
		orderFulfilled,
		ordersRejected,
	)
}

func (s *Service) knownOrder(id string) (order.Order, bool) {
	st := s.store.State().Orders
	if st.Current != nil && st.Current.ID == id {
		return *st.Current, true
	}
	for _, o := range st.List {
		if o.ID == id {
			return o, true
		}
	}
	return order.Order{}, false
}
