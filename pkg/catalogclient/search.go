package catalogclient

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vitalcosmeticos/catalog/pkg/debounce"
	"github.com/vitalcosmeticos/catalog/pkg/pagination"
)

// Lister is the part of Client a SearchBox drives.
type Lister interface {
	ListProducts(ctx context.Context, q Query) (*ProductPage, error)
}

// Result is one settled listing. Products accumulates across LoadMore calls.
type Result struct {
	Query    Query
	Page     *ProductPage
	Products []Product
	Err      error
}

// SearchBox holds the storefront filter state. Search text is debounced;
// category and stock changes query at once. Any filter change resets to
// page 1, and responses that were overtaken by a newer query are dropped.
type SearchBox struct {
	lister  Lister
	timeout time.Duration
	results chan Result
	typing  *debounce.Debouncer[string]

	mu       sync.Mutex
	query    Query
	loaded   []Product
	seq      uint64
	closed   bool
	inflight sync.WaitGroup
}

func NewSearchBox(lister Lister, delay time.Duration) *SearchBox {
	b := &SearchBox{
		lister:  lister,
		timeout: 15 * time.Second,
		results: make(chan Result, 8),
		query:   Query{Page: 1, Limit: pagination.DefaultLimit},
	}
	b.typing = debounce.New(delay, b.applySearch)
	return b
}

// Results delivers settled listings, newest last.
func (b *SearchBox) Results() <-chan Result {
	return b.results
}

func (b *SearchBox) Query() Query {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// Type records the current search text.
func (b *SearchBox) Type(text string) {
	b.typing.Trigger(text)
}

func (b *SearchBox) applySearch(text string) {
	b.update(func(q *Query) { q.Search = strings.TrimSpace(text) })
}

// SetCategory narrows to one category name; "" shows all.
func (b *SearchBox) SetCategory(name string) {
	b.update(func(q *Query) { q.Category = name })
}

func (b *SearchBox) SetStock(stock string) {
	b.update(func(q *Query) { q.Stock = stock })
}

// Refresh re-runs the current filters from page 1.
func (b *SearchBox) Refresh() {
	b.update(func(*Query) {})
}

// GoToPage replaces the listing with page n.
func (b *SearchBox) GoToPage(n int) {
	b.mu.Lock()
	b.query.Page = max(n, 1)
	b.loaded = nil
	b.dispatchLocked()
	b.mu.Unlock()
}

// LoadMore appends the next page to what is already shown.
func (b *SearchBox) LoadMore() {
	b.mu.Lock()
	b.query.Page++
	b.dispatchLocked()
	b.mu.Unlock()
}

func (b *SearchBox) update(mutate func(*Query)) {
	b.mu.Lock()
	mutate(&b.query)
	b.query.Page = 1
	b.loaded = nil
	b.dispatchLocked()
	b.mu.Unlock()
}

func (b *SearchBox) dispatchLocked() {
	if b.closed {
		return
	}
	b.seq++
	seq, q := b.seq, b.query

	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		page, err := b.lister.ListProducts(ctx, q)
		b.settle(seq, q, page, err)
	}()
}

func (b *SearchBox) settle(seq uint64, q Query, page *ProductPage, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || seq != b.seq {
		return
	}
	res := Result{Query: q, Page: page, Err: err}
	if err == nil {
		b.loaded = append(b.loaded, page.Products...)
		res.Products = append([]Product(nil), b.loaded...)
	}
	select {
	case b.results <- res:
	default:
		// Reader fell behind; drop the oldest result to keep the newest.
		select {
		case <-b.results:
		default:
		}
		b.results <- res
	}
}

// Close stops the debouncer, waits for in-flight queries and closes Results.
func (b *SearchBox) Close() {
	b.typing.Stop()
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()
	b.inflight.Wait()
	close(b.results)
}
