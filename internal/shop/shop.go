// Package shop runs the storefront's user actions against the API and records
// their progress in the store.
//
// Every action dispatches a pending action, calls the API, and then dispatches
// either the fulfilled result or the rejection. Callers read results from the
// return values or from the store.
package shop

import (
	"context"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/apiclient"
	"github.com/xenking/kart-storefront/internal/domain/auth"
	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/store"
)

// AccountAPI is the account part of the storefront API.
type AccountAPI interface {
	Login(ctx context.Context, creds auth.Credentials) (*auth.UserInfo, error)
	Register(ctx context.Context, reg auth.Registration) (*auth.UserInfo, error)
	Profile(ctx context.Context) (*auth.UserInfo, error)
	UpdateProfile(ctx context.Context, upd auth.ProfileUpdate) (*auth.UserInfo, error)
}

// CatalogAPI is the read side of the catalog plus reviews.
type CatalogAPI interface {
	Product(ctx context.Context, id string) (*product.Product, error)
	Categories(ctx context.Context) ([]product.Category, error)
	Reviews(ctx context.Context, productID string) ([]product.Review, error)
	AddReview(ctx context.Context, in apiclient.ReviewInput) error
}

// CartAPI manages the server-side cart.
type CartAPI interface {
	Cart(ctx context.Context) ([]cart.Item, error)
	AddToCart(ctx context.Context, productID string, quantity int) ([]cart.Item, error)
	RemoveFromCart(ctx context.Context, productID string) ([]cart.Item, error)
	ClearCart(ctx context.Context) ([]cart.Item, error)
}

// WishlistAPI manages the server-side wishlist.
type WishlistAPI interface {
	Wishlist(ctx context.Context) ([]product.Product, error)
	AddToWishlist(ctx context.Context, productID string) ([]product.Product, error)
	RemoveFromWishlist(ctx context.Context, productID string) ([]product.Product, error)
	ClearWishlist(ctx context.Context) ([]product.Product, error)
}

// OrderAPI reads and changes the user's orders.
type OrderAPI interface {
	PlaceOrder(ctx context.Context, req order.PlaceRequest, requestID string) (*order.Order, error)
	Orders(ctx context.Context) ([]order.Order, error)
	Order(ctx context.Context, id string) (*order.Order, error)
	CancelOrder(ctx context.Context, id string) (*order.Order, error)
	RequestReturn(ctx context.Context, id, reason string) (*order.Order, error)
}

// API is everything the Service calls.
type API interface {
	AccountAPI
	CatalogAPI
	CartAPI
	WishlistAPI
	OrderAPI
}

var _ API = (*apiclient.Client)(nil)

// Sessions persists the logged-in user between runs.
type Sessions interface {
	Save(u auth.UserInfo) error
	Clear() error
}

// Service runs user actions.
type Service struct {
	api      API
	store    *store.Store
	sessions Sessions
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used to check token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service. sessions may be nil, in which case the user
// is kept in memory only.
func NewService(api API, st *store.Store, sessions Sessions, opts ...Option) *Service {
	s := &Service{
		api:      api,
		store:    st,
		sessions: sessions,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the store the service dispatches to.
func (s *Service) Store() *store.Store {
	return s.store
}

// Token returns the session token for the bearer round tripper.
func (s *Service) Token() string {
	if u := s.store.State().Auth.User; u != nil {
		return u.Token
	}
	return ""
}

// run dispatches pending, calls fn, and dispatches done or fail with the
// outcome.
func run[T any](
	ctx context.Context,
	s *Service,
	op string,
	pending store.Action,
	fn func(context.Context) (T, error),
	done func(T) store.Action,
	fail func(error) store.Action,
) (T, error) {
	s.store.Dispatch(pending)
	res, err := fn(ctx)
	if err != nil {
		zctx.From(ctx).Warn("Action failed", zap.String("action", op), zap.Error(err))
		s.store.Dispatch(fail(err))
		var zero T
		return zero, err
	}
	s.store.Dispatch(done(res))
	return res, nil
}
