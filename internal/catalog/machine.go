package catalog

import (
	"strings"
	"sync"
)

// Machine holds a listing's current query. Every filter mutator resets the
// page to 1 when it changes its field; SetPage changes only the page.
// Subscribers run after each mutation that changed the query.
//
// Subscribers are called synchronously from the mutating goroutine and must
// not mutate the Machine themselves.
type Machine struct {
	mu     sync.Mutex
	q      Query
	subs   []machineSub
	nextID int
}

type machineSub struct {
	id int
	fn func(Query)
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithQuery starts the machine from q instead of DefaultQuery.
func WithQuery(q Query) MachineOption {
	return func(m *Machine) {
		m.q = normalize(q)
	}
}

// NewMachine creates a Machine at DefaultQuery.
func NewMachine(opts ...MachineOption) *Machine {
	m := &Machine{q: DefaultQuery()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the composed query.
func (m *Machine) Current() Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.q
}

// Subscribe registers fn and returns a function that removes it.
func (m *Machine) Subscribe(fn func(Query)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, machineSub{id: id, fn: fn})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// SetSearch sets the free-text search term.
func (m *Machine) SetSearch(s string) {
	s = strings.TrimSpace(s)
	m.update(func(q *Query) {
		setFilter(q, &q.Search, s)
	})
}

// SetCategory selects a category; "" and CategoryAll select every category.
func (m *Machine) SetCategory(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = CategoryAll
	}
	m.update(func(q *Query) {
		setFilter(q, &q.Category, id)
	})
}

// SetPriceBucket selects a price bucket.
func (m *Machine) SetPriceBucket(b PriceBucket) error {
	if b == "" {
		b = PriceAll
	}
	if !b.Valid() {
		return ErrInvalidPriceBucket
	}
	m.update(func(q *Query) {
		setFilter(q, &q.Price, b)
	})
	return nil
}

// SetMinRating sets the minimum star rating, 0 through 4.
func (m *Machine) SetMinRating(n int) error {
	if n < 0 || n > 4 {
		return ErrInvalidRating
	}
	m.update(func(q *Query) {
		setFilter(q, &q.MinRating, n)
	})
	return nil
}

// SetSort sets the sort key.
func (m *Machine) SetSort(k SortKey) error {
	if !k.Valid() {
		return ErrInvalidSort
	}
	m.update(func(q *Query) {
		setFilter(q, &q.Sort, k)
	})
	return nil
}

// SetPage moves to page n, leaving the filters alone.
func (m *Machine) SetPage(n int) error {
	if n < 1 {
		return ErrInvalidPage
	}
	m.update(func(q *Query) {
		q.Page = n
	})
	return nil
}

// Reset returns every field to its default.
func (m *Machine) Reset() {
	m.update(func(q *Query) {
		*q = DefaultQuery()
	})
}

func (m *Machine) update(fn func(*Query)) {
	m.mu.Lock()
	next := m.q
	fn(&next)
	if next == m.q {
		m.mu.Unlock()
		return
	}
	m.q = next
	subs := make([]machineSub, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, s := range subs {
		s.fn(next)
	}
}

// setFilter assigns v to field and restarts pagination when the value changed.
func setFilter[T comparable](q *Query, field *T, v T) {
	if *field == v {
		return
	}
	*field = v
	q.Page = 1
}

func normalize(q Query) Query {
	q.Search = strings.TrimSpace(q.Search)
	if q.Category == "" {
		q.Category = CategoryAll
	}
	if q.Price == "" {
		q.Price = PriceAll
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}
