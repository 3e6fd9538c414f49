package store

import (
	"sort"
	"sync"

	"github.com/invoicedesk/idesk/internal/api"
)

// Status tracks the lifecycle of an asynchronous operation against a cache.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Pagination describes the window of a server-side collection the cache
// currently holds.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int
	Limit       int
}

// Cache is a normalized collection of records keyed by id. It keeps the
// server ordering of the last fetched page and separate statuses for reads
// and writes, so a slow background refresh never masks a failed mutation.
//
// All methods are safe for concurrent use.
type Cache[T any] struct {
	mu sync.Mutex

	idOf func(T) string
	less func(a, b T) bool

	items map[string]T
	order []string

	selectedID string
	hasSelect  bool

	page Pagination

	fetch    Status
	mutation Status

	fetchErr    *api.Error
	mutationErr *api.Error
}

// NewCache builds an empty cache. idOf extracts the identity of a record and
// must be stable for the record's lifetime.
func NewCache[T any](idOf func(T) string) *Cache[T] {
	return &Cache[T]{
		idOf:  idOf,
		items: make(map[string]T),
	}
}

// NewSortedCache builds a cache that keeps records ordered by less instead of
// server order. Upserted records are slotted into position, so out-of-band
// events cannot scramble the listing.
func NewSortedCache[T any](idOf func(T) string, less func(a, b T) bool) *Cache[T] {
	c := NewCache(idOf)
	c.less = less
	return c
}

func (c *Cache[T]) BeginFetch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetch = StatusLoading
	c.fetchErr = nil
}

// CommitList replaces the cached page with the given records, preserving
// their order.
func (c *Cache[T]) CommitList(items []T, page Pagination) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]T, len(items))
	c.order = make([]string, 0, len(items))
	for _, it := range items {
		id := c.idOf(it)
		if _, dup := c.items[id]; !dup {
			c.order = append(c.order, id)
		}
		c.items[id] = it
	}
	c.sortLocked()
	c.page = page
	c.fetch = StatusSucceeded
	c.fetchErr = nil
}

// CommitDetail merges a single freshly fetched record and marks it selected.
// Records already present keep their position; new ones are appended.
func (c *Cache[T]) CommitDetail(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.upsertLocked(item)
	c.selectedID = c.idOf(item)
	c.hasSelect = true
	c.fetch = StatusSucceeded
	c.fetchErr = nil
}

// FailFetch records a failed read. A cancelled request is not a failure:
// the cache simply returns to idle with its previous contents intact.
func (c *Cache[T]) FailFetch(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if api.IsCancelled(err) {
		c.fetch = StatusIdle
		c.fetchErr = nil
		return
	}
	c.fetch = StatusFailed
	c.fetchErr = asAPIError(err)
}

func (c *Cache[T]) BeginMutation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mutation = StatusLoading
	c.mutationErr = nil
}

// CommitMutation merges the server's post-write record into the cache.
func (c *Cache[T]) CommitMutation(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.upsertLocked(item)
	c.mutation = StatusSucceeded
	c.mutationErr = nil
}

// CommitCreation inserts a freshly created record, grows the pagination
// window and selects it, so the listing can jump straight to the new detail.
func (c *Cache[T]) CommitCreation(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.upsertLocked(item)
	c.selectedID = c.idOf(item)
	c.hasSelect = true
	c.page.TotalItems++
	if c.page.Limit > 0 {
		pages := (c.page.TotalItems + c.page.Limit - 1) / c.page.Limit
		if pages < 1 {
			pages = 1
		}
		c.page.TotalPages = pages
	}
	c.mutation = StatusSucceeded
	c.mutationErr = nil
}

// CommitRemoval drops a record and shrinks the pagination window. When the
// removal empties the current page the page number is clamped to the new
// last page so the next refresh cannot request past the end.
func (c *Cache[T]) CommitRemoval(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; ok {
		delete(c.items, id)
		for i, oid := range c.order {
			if oid == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
		if c.page.TotalItems > 0 {
			c.page.TotalItems--
		}
		if c.page.Limit > 0 {
			pages := (c.page.TotalItems + c.page.Limit - 1) / c.page.Limit
			if pages < 1 {
				pages = 1
			}
			c.page.TotalPages = pages
			if c.page.CurrentPage > pages {
				c.page.CurrentPage = pages
			}
		}
	}
	if c.selectedID == id {
		c.selectedID = ""
		c.hasSelect = false
	}
	c.mutation = StatusSucceeded
	c.mutationErr = nil
}

// FailMutation mirrors FailFetch for writes.
func (c *Cache[T]) FailMutation(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if api.IsCancelled(err) {
		c.mutation = StatusIdle
		c.mutationErr = nil
		return
	}
	c.mutation = StatusFailed
	c.mutationErr = asAPIError(err)
}

// Upsert merges a record without touching any status, for out-of-band
// updates such as realtime events.
func (c *Cache[T]) Upsert(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.upsertLocked(item)
}

// Drop removes a record without touching statuses or pagination.
func (c *Cache[T]) Drop(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return
	}
	delete(c.items, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	if c.selectedID == id {
		c.selectedID = ""
		c.hasSelect = false
	}
}

func (c *Cache[T]) upsertLocked(item T) {
	id := c.idOf(item)
	if _, ok := c.items[id]; !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = item
	c.sortLocked()
}

// sortLocked re-applies the ordering rule. A write may change a record's sort
// key, so it runs after every insert or replace.
func (c *Cache[T]) sortLocked() {
	if c.less == nil {
		return
	}
	sort.SliceStable(c.order, func(i, j int) bool {
		return c.less(c.items[c.order[i]], c.items[c.order[j]])
	})
}

// Items returns the cached records in server order.
func (c *Cache[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

func (c *Cache[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[id]
	return it, ok
}

// Selected returns the record last loaded through CommitDetail, if it is
// still cached.
func (c *Cache[T]) Selected() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if !c.hasSelect {
		return zero, false
	}
	it, ok := c.items[c.selectedID]
	if !ok {
		return zero, false
	}
	return it, true
}

func (c *Cache[T]) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedID = ""
	c.hasSelect = false
}

func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache[T]) Pagination() Pagination {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Cache[T]) FetchStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetch
}

func (c *Cache[T]) MutationStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mutation
}

func (c *Cache[T]) FetchError() *api.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchErr
}

func (c *Cache[T]) MutationError() *api.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mutationErr
}

// Reset empties the cache and returns every status to idle. Used on logout.
func (c *Cache[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]T)
	c.order = nil
	c.selectedID = ""
	c.hasSelect = false
	c.page = Pagination{}
	c.fetch = StatusIdle
	c.mutation = StatusIdle
	c.fetchErr = nil
	c.mutationErr = nil
}

func asAPIError(err error) *api.Error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*api.Error); ok {
		return ae
	}
	return &api.Error{Message: err.Error(), Err: err}
}

func pageFrom[T any](r api.ListResult[T]) Pagination {
	return Pagination{
		CurrentPage: r.CurrentPage,
		TotalPages:  r.TotalPages,
		TotalItems:  r.TotalItems,
		Limit:       r.Limit,
	}
}
