package store

import (
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/kart-storefront/internal/domain/auth"
	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
)

func TestReduce_Auth(t *testing.T) {
	s := Reduce(State{}, AuthPending{})
	assert.True(t, s.Auth.Loading)
	assert.False(t, s.Auth.LoggedIn())

	s = Reduce(s, AuthFulfilled{User: auth.UserInfo{ID: "u1", Name: "Ann", Token: "tok"}})
	require.True(t, s.Auth.LoggedIn())
	assert.False(t, s.Auth.Loading)
	assert.Equal(t, "tok", s.Auth.User.Token)

	// A profile response lacks the token; merging keeps it.
	s = Reduce(s, AuthFulfilled{User: auth.UserInfo{ID: "u1", Name: "Ann B"}, Merge: true})
	assert.Equal(t, "Ann B", s.Auth.User.Name)
	assert.Equal(t, "tok", s.Auth.User.Token)

	errBoom := errors.New("boom")
	s = Reduce(s, AuthRejected{Err: errBoom})
	assert.ErrorIs(t, s.Auth.Err, errBoom)
	assert.True(t, s.Auth.LoggedIn(), "a failed request keeps the session")

	s = Reduce(s, Logout{})
	assert.Equal(t, AuthState{}, s.Auth)
}

func TestReduce_PendingClearsError(t *testing.T) {
	s := Reduce(State{}, CartRejected{Err: errors.New("down")})
	require.Error(t, s.Cart.Err)

	s = Reduce(s, CartPending{})
	assert.NoError(t, s.Cart.Err)
	assert.True(t, s.Cart.Loading)
}

func TestReduce_DoesNotShareInput(t *testing.T) {
	items := []cart.Item{{ID: "i1", Quantity: 1}}
	s := Reduce(State{}, CartFulfilled{Items: items})
	items[0].Quantity = 5
	assert.Equal(t, 1, s.Cart.Items[0].Quantity)

	before := Reduce(State{}, OrdersFulfilled{List: []order.Order{{ID: "o1", Status: order.StatusProcessing}}})
	after := Reduce(before, OrderFulfilled{Order: order.Order{ID: "o1", Status: order.StatusCancelled}})
	assert.Equal(t, order.StatusProcessing, before.Orders.List[0].Status)
	assert.Equal(t, order.StatusCancelled, after.Orders.List[0].Status)
	assert.Equal(t, "o1", after.Orders.Current.ID)
}

func TestReduce_EmptyResponsesYieldEmptySlices(t *testing.T) {
	s := Reduce(State{}, CartFulfilled{})
	assert.NotNil(t, s.Cart.Items)
	assert.Empty(t, s.Cart.Items)

	s = Reduce(s, WishlistFulfilled{})
	assert.NotNil(t, s.Wishlist.Items)
}

func TestStore_NotifiesOnlyDomain(t *testing.T) {
	st := New(WithLogger(zaptest.NewLogger(t)))

	var cartCalls, wishCalls int
	st.Subscribe(DomainCart, func(s State) {
		cartCalls++
		assert.Len(t, s.Cart.Items, 1)
	})
	st.Subscribe(DomainWishlist, func(State) { wishCalls++ })

	st.Dispatch(CartFulfilled{Items: []cart.Item{{ID: "i1"}}})
	assert.Equal(t, 1, cartCalls)
	assert.Equal(t, 0, wishCalls)

	st.Dispatch(WishlistFulfilled{Items: []product.Product{{ID: "p1"}}})
	assert.Equal(t, 1, cartCalls)
	assert.Equal(t, 1, wishCalls)
}

func TestStore_SkipsUnchangedSlice(t *testing.T) {
	st := New(WithLogger(zaptest.NewLogger(t)))

	var calls int
	st.Subscribe(DomainCatalog, func(State) { calls++ })

	st.Dispatch(SetSearchQuery{Query: "shoes"})
	st.Dispatch(SetSearchQuery{Query: "shoes"})
	assert.Equal(t, 1, calls)

	st.Dispatch(CatalogPending{})
	st.Dispatch(CatalogPending{})
	assert.Equal(t, 2, calls)

	st.Dispatch(CategoriesFulfilled{Categories: []product.Category{{ID: "c1"}}})
	st.Dispatch(CategoriesFulfilled{Categories: []product.Category{{ID: "c1"}}})
	assert.Equal(t, 3, calls)
	assert.Equal(t, "shoes", st.State().Catalog.SearchQuery)
}

func TestStore_Unsubscribe(t *testing.T) {
	st := New()
	var calls int
	unsubscribe := st.Subscribe(DomainAuth, func(State) { calls++ })

	st.Dispatch(AuthPending{})
	unsubscribe()
	unsubscribe()
	st.Dispatch(Logout{})
	assert.Equal(t, 1, calls)
}

func TestStore_InitialState(t *testing.T) {
	u := &auth.UserInfo{ID: "u1", Token: "tok"}
	st := New(WithState(State{Auth: AuthState{User: u}}))
	assert.True(t, st.State().Auth.LoggedIn())
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	st := New()

	var (
		mu   sync.Mutex
		seen []string
	)
	st.Subscribe(DomainCatalog, func(s State) {
		mu.Lock()
		seen = append(seen, s.Catalog.SearchQuery)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for _, q := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Dispatch(SetSearchQuery{Query: q})
		}()
	}
	wg.Wait()

	require.Len(t, seen, 4)
	assert.Equal(t, seen[len(seen)-1], st.State().Catalog.SearchQuery)
}
