// Package store holds the storefront's client-side state: the logged-in user,
// the product detail and categories, the cart, the wishlist and orders.
//
// State changes only through Dispatch, which runs the pure reducer of the
// action's domain and then notifies that domain's subscribers if the
// domain's slice changed.
package store

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Domain names one slice of the state.
type Domain string

const (
	DomainAuth     Domain = "auth"
	DomainCatalog  Domain = "catalog"
	DomainCart     Domain = "cart"
	DomainOrders   Domain = "orders"
	DomainWishlist Domain = "wishlist"
)

// Action is a state transition. Every action belongs to exactly one domain.
type Action interface {
	Domain() Domain
}

// Listener receives the state after an action of its domain was applied.
type Listener func(State)

// Store is an observable State.
//
// Dispatch is serialized: listeners see states in the order actions were
// dispatched. Listeners must not call Dispatch.
type Store struct {
	dispatchMu sync.Mutex

	mu    sync.RWMutex
	state State

	subsMu sync.Mutex
	subs   map[Domain][]subscriber
	nextID int

	lg *zap.Logger
}

type subscriber struct {
	id int
	fn Listener
}

// Option configures a Store.
type Option func(*Store)

// WithState sets the initial state, e.g. a user restored from a session file.
func WithState(s State) Option {
	return func(st *Store) {
		st.state = s
	}
}

// WithLogger sets the logger used to trace dispatched actions.
func WithLogger(lg *zap.Logger) Option {
	return func(st *Store) {
		st.lg = lg
	}
}

// New creates a Store.
func New(opts ...Option) *Store {
	s := &Store{
		subs: make(map[Domain][]subscriber),
		lg:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies a and notifies the subscribers of a's domain when the
// domain's slice changed.
func (s *Store) Dispatch(a Action) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, a)
	s.state = next
	s.mu.Unlock()

	changed := !reflect.DeepEqual(slice(prev, a.Domain()), slice(next, a.Domain()))
	s.lg.Debug("Dispatched action",
		zap.String("domain", string(a.Domain())),
		zap.String("action", fmt.Sprintf("%T", a)),
		zap.Bool("changed", changed),
	)
	if !changed {
		return
	}

	s.subsMu.Lock()
	subs := make([]subscriber, len(s.subs[a.Domain()]))
	copy(subs, s.subs[a.Domain()])
	s.subsMu.Unlock()

	for _, sub := range subs {
		sub.fn(next)
	}
}

func slice(s State, d Domain) any {
	switch d {
	case DomainAuth:
		return s.Auth
	case DomainCatalog:
		return s.Catalog
	case DomainCart:
		return s.Cart
	case DomainOrders:
		return s.Orders
	case DomainWishlist:
		return s.Wishlist
	}
	return nil
}

// Subscribe registers fn for actions of domain d and returns a function that
// removes it.
func (s *Store) Subscribe(d Domain, fn Listener) (unsubscribe func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs[d] = append(s.subs[d], subscriber{id: id, fn: fn})
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		subs := s.subs[d]
		for i, sub := range subs {
			if sub.id == id {
				s.subs[d] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}
