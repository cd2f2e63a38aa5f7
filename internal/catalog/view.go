package catalog

import (
	"context"
	"net/url"
	"sync"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/imageref"
)

// Source fetches products for a View.
type Source interface {
	// Products returns the filtered listing for params.
	Products(ctx context.Context, params url.Values) (*product.Page, error)
	// TopProducts returns the curated set shown when no filter is active.
	TopProducts(ctx context.Context) ([]product.Product, error)
}

// Status is the state of a View's result.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusEmpty
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Item is a product with its resolved image URL.
type Item struct {
	Product  product.Product
	ImageURL string
}

// Result is one published page of products.
type Result struct {
	Items      []Item
	Page       int
	TotalPages int
	TotalCount int
}

// ViewModel is what a listing renders.
type ViewModel struct {
	Query Query
	Result
	IsFiltered bool
	Status     Status
	Err        error
}

// request identifies an outbound fetch. Queries that map to the same request
// share one fetch.
type request struct {
	top    bool
	params string
}

type cachedSet struct {
	params   string
	products []product.Product
}

type viewSub struct {
	id int
	fn func(ViewModel)
}

// Option configures a View.
type Option func(*View)

// WithPageSize sets the page size. Defaults to DefaultPageSize.
func WithPageSize(n int) Option {
	return func(v *View) {
		if n > 0 {
			v.pageSize = n
		}
	}
}

// WithClientPaging makes the view fetch the whole filtered set once per
// filter combination and slice pages locally, so page changes do not refetch.
func WithClientPaging() Option {
	return func(v *View) {
		v.clientPaging = true
	}
}

// WithMachine uses m instead of a fresh Machine.
func WithMachine(m *Machine) Option {
	return func(v *View) {
		v.machine = m
	}
}

// WithLogger sets the logger.
func WithLogger(lg *zap.Logger) Option {
	return func(v *View) {
		v.lg = lg
	}
}

// WithMeterProvider sets the meter provider for view counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(v *View) {
		v.meterProvider = mp
	}
}

// View drives a Machine against a Source and publishes ViewModels. Only the
// response to the most recently issued request is ever published.
type View struct {
	machine      *Machine
	source       Source
	resolver     *imageref.Resolver
	pageSize     int
	clientPaging bool

	lg            *zap.Logger
	meterProvider metric.MeterProvider
	fetches       metric.Int64Counter
	stale         metric.Int64Counter

	mu      sync.Mutex
	base    context.Context
	seq     uint64
	cancel  context.CancelFunc
	last    request
	hasLast bool
	cache   *cachedSet
	vm      ViewModel
	closed  bool
	unsub   func()

	subsMu   sync.Mutex
	notifyMu sync.Mutex
	subs     []viewSub
	nextSub  int

	wg sync.WaitGroup
}

// NewView creates a View over source. Items are passed through resolver
// before they are published.
func NewView(source Source, resolver *imageref.Resolver, opts ...Option) (*View, error) {
	v := &View{
		source:        source,
		resolver:      resolver,
		pageSize:      DefaultPageSize,
		lg:            zap.NewNop(),
		meterProvider: noop.NewMeterProvider(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.machine == nil {
		v.machine = NewMachine()
	}
	if v.resolver == nil {
		v.resolver = imageref.New(imageref.Config{})
	}

	meter := v.meterProvider.Meter("github.com/xenking/kart-storefront/internal/catalog")
	var err error
	if v.fetches, err = meter.Int64Counter("catalog.fetches",
		metric.WithDescription("Listing fetches issued"),
	); err != nil {
		return nil, errors.Wrap(err, "fetches counter")
	}
	if v.stale, err = meter.Int64Counter("catalog.stale_responses",
		metric.WithDescription("Listing responses discarded because a newer request was issued"),
	); err != nil {
		return nil, errors.Wrap(err, "stale responses counter")
	}

	v.vm = ViewModel{Query: v.machine.Current(), IsFiltered: v.machine.Current().IsFiltered()}
	return v, nil
}

// Machine returns the view's query machine.
func (v *View) Machine() *Machine {
	return v.machine
}

// Start issues the first fetch and refetches whenever the query changes.
// Fetches run under ctx until Close.
func (v *View) Start(ctx context.Context) {
	v.mu.Lock()
	if v.base != nil || v.closed {
		v.mu.Unlock()
		return
	}
	v.base = ctx
	v.mu.Unlock()

	unsub := v.machine.Subscribe(func(Query) {
		v.refresh(false)
	})
	v.mu.Lock()
	v.unsub = unsub
	v.mu.Unlock()

	v.refresh(false)
}

// Reload refetches the current query even if it has not changed.
func (v *View) Reload() {
	v.refresh(true)
}

// Close stops reacting to the machine, cancels the in-flight fetch and waits
// for it to return.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	unsub := v.unsub
	if v.cancel != nil {
		v.cancel()
	}
	v.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	v.wg.Wait()
}

// Snapshot returns the current view model.
func (v *View) Snapshot() ViewModel {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vm
}

// Subscribe registers fn to receive view models after every change and
// returns a function that removes it. Calls are serialized and the last call
// always carries the latest state.
func (v *View) Subscribe(fn func(ViewModel)) (unsubscribe func()) {
	v.subsMu.Lock()
	defer v.subsMu.Unlock()
	v.nextSub++
	id := v.nextSub
	v.subs = append(v.subs, viewSub{id: id, fn: fn})
	return func() {
		v.subsMu.Lock()
		defer v.subsMu.Unlock()
		for i, s := range v.subs {
			if s.id == id {
				v.subs = append(v.subs[:i:i], v.subs[i+1:]...)
				return
			}
		}
	}
}

// Await blocks until the view is neither idle nor loading and returns the
// settled view model.
func (v *View) Await(ctx context.Context) (ViewModel, error) {
	changed := make(chan struct{}, 1)
	unsub := v.Subscribe(func(ViewModel) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsub()

	for {
		vm := v.Snapshot()
		if vm.Status != StatusIdle && vm.Status != StatusLoading {
			return vm, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return vm, ctx.Err()
		}
	}
}

// SetSearch delegates to the machine.
func (v *View) SetSearch(s string) { v.machine.SetSearch(s) }

// SetCategory delegates to the machine.
func (v *View) SetCategory(id string) { v.machine.SetCategory(id) }

// SetPriceBucket delegates to the machine.
func (v *View) SetPriceBucket(b PriceBucket) error { return v.machine.SetPriceBucket(b) }

// SetMinRating delegates to the machine.
func (v *View) SetMinRating(n int) error { return v.machine.SetMinRating(n) }

// SetSort delegates to the machine.
func (v *View) SetSort(k SortKey) error { return v.machine.SetSort(k) }

// SetPage delegates to the machine.
func (v *View) SetPage(n int) error { return v.machine.SetPage(n) }

// Reset delegates to the machine.
func (v *View) Reset() { v.machine.Reset() }

func (v *View) requestFor(q Query) request {
	switch {
	case q.Mode() == ModeDefault:
		return request{top: true}
	case v.clientPaging:
		return request{params: q.Params(0).Encode()}
	default:
		return request{params: q.Params(v.pageSize).Encode()}
	}
}

func (v *View) refresh(force bool) {
	v.mu.Lock()
	if v.closed || v.base == nil {
		v.mu.Unlock()
		return
	}
	// The query is read under v.mu so sequence numbers follow query order.
	q := v.machine.Current()
	req := v.requestFor(q)
	if force {
		v.cache = nil
	}

	if !force && v.hasLast && req == v.last {
		// Same outbound request: only the page may have moved.
		changed := v.vm.Query != q
		v.vm.Query = q
		if changed && v.clientPaging && !req.top && v.cache != nil && v.cache.params == req.params &&
			v.vm.Status != StatusLoading {
			v.publishLocked(v.buildLocked(req, v.cache.products, nil))
		}
		v.mu.Unlock()
		if changed {
			v.notify()
		}
		return
	}

	v.seq++
	seq := v.seq
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.last, v.hasLast = req, true
	v.vm.Query = q
	v.vm.IsFiltered = q.IsFiltered()

	if v.clientPaging && !req.top && v.cache != nil && v.cache.params == req.params {
		v.publishLocked(v.buildLocked(req, v.cache.products, nil))
		v.mu.Unlock()
		v.notify()
		return
	}

	ctx, cancel := context.WithCancel(v.base)
	v.cancel = cancel
	v.vm.Status = StatusLoading
	v.vm.Err = nil
	v.wg.Add(1)
	v.mu.Unlock()

	mode := ModeFiltered
	if req.top {
		mode = ModeDefault
	}
	v.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode.String())))
	v.notify()
	go v.fetch(ctx, cancel, seq, req)
}

func (v *View) fetch(ctx context.Context, cancel context.CancelFunc, seq uint64, req request) {
	defer v.wg.Done()
	defer cancel()

	products, page, err := v.load(ctx, req)

	v.mu.Lock()
	if seq != v.seq {
		v.mu.Unlock()
		v.stale.Add(context.WithoutCancel(ctx), 1)
		v.lg.Debug("Discarding stale catalog response", zap.Uint64("seq", seq))
		return
	}
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.cancel = nil
	if err != nil {
		v.vm.Result = Result{}
		v.vm.Status = StatusFailed
		v.vm.Err = err
		v.mu.Unlock()
		v.lg.Warn("Catalog fetch failed", zap.Error(err))
		v.notify()
		return
	}
	if v.clientPaging && !req.top {
		v.cache = &cachedSet{params: req.params, products: products}
	}
	v.publishLocked(v.buildLocked(req, products, page))
	v.mu.Unlock()
	v.notify()
}

func (v *View) load(ctx context.Context, req request) ([]product.Product, *product.Page, error) {
	if req.top {
		products, err := v.source.TopProducts(ctx)
		if err != nil {
			return nil, nil, errors.Wrap(err, "fetch top products")
		}
		return products, nil, nil
	}
	params, err := url.ParseQuery(req.params)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parse params")
	}
	page, err := v.source.Products(ctx, params)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fetch products")
	}
	if page == nil {
		page = &product.Page{}
	}
	return page.Products, page, nil
}

// buildLocked turns fetched products into a Result for the recorded query.
// page carries server pagination metadata and is nil for the top set and for
// cached client-paged sets.
func (v *View) buildLocked(req request, products []product.Product, page *product.Page) Result {
	if req.top {
		return Result{
			Items:      v.resolve(products),
			Page:       1,
			TotalPages: 1,
			TotalCount: len(products),
		}
	}
	if !v.clientPaging && page != nil && page.Paginated() {
		current := page.Page
		if current < 1 {
			current = v.vm.Query.Page
		}
		return Result{
			Items:      v.resolve(products),
			Page:       current,
			TotalPages: page.Pages,
			TotalCount: page.Total,
		}
	}
	return v.slice(products, v.vm.Query.Page)
}

// slice pages an unpaginated set locally.
func (v *View) slice(products []product.Product, page int) Result {
	total := len(products)
	pages := (total + v.pageSize - 1) / v.pageSize
	if page < 1 {
		page = 1
	}
	start := (page - 1) * v.pageSize
	end := start + v.pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return Result{
		Items:      v.resolve(products[start:end]),
		Page:       page,
		TotalPages: pages,
		TotalCount: total,
	}
}

func (v *View) resolve(products []product.Product) []Item {
	items := make([]Item, 0, len(products))
	for _, p := range products {
		items = append(items, Item{
			Product:  p,
			ImageURL: v.resolver.Resolve(p.ImageRef()),
		})
	}
	return items
}

func (v *View) publishLocked(r Result) {
	v.vm.Result = r
	v.vm.Err = nil
	if len(r.Items) == 0 {
		v.vm.Status = StatusEmpty
	} else {
		v.vm.Status = StatusReady
	}
}

func (v *View) notify() {
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()

	vm := v.Snapshot()
	v.subsMu.Lock()
	subs := make([]viewSub, len(v.subs))
	copy(subs, v.subs)
	v.subsMu.Unlock()

	for _, s := range subs {
		s.fn(vm)
	}
}
