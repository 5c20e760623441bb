// Package querycache keeps client-side views of server data and applies
// optimistic mutations against them. A view is the cached result of one
// query key. Mutations update the view immediately, dispatch the request,
// roll the view back on failure and always trigger a background refetch.
package querycache

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/expensekeeper/internal/client/api"
)

// Key identifies one cached query, e.g. "expenses" or "expense:42".
type Key string

// Fetcher loads the authoritative view for a key from the server.
type Fetcher func(ctx context.Context) ([]api.Expense, error)

type Cache struct {
	mu       sync.Mutex
	views    map[Key][]api.Expense
	stale    map[Key]bool
	fetchers map[Key]Fetcher
	inflight map[Key]*fetchToken

	refetches sync.WaitGroup
}

// fetchToken ties an in-flight fetch to its cancel func so that only the
// fetch still owning the slot may publish its result.
type fetchToken struct {
	cancel context.CancelFunc
}

func NewCache() *Cache {
	return &Cache{
		views:    make(map[Key][]api.Expense),
		stale:    make(map[Key]bool),
		fetchers: make(map[Key]Fetcher),
		inflight: make(map[Key]*fetchToken),
	}
}

// Register associates a fetcher with a key. Invalidate and Fetch are no-ops
// for keys without a fetcher.
func (c *Cache) Register(key Key, f Fetcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchers[key] = f
}

// View returns a copy of the cached view for key. The second result is false
// if the key has never been populated.
func (c *Cache) View(key Key) ([]api.Expense, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	view, ok := c.views[key]
	if !ok {
		return nil, false
	}
	return cloneView(view), true
}

// Read returns the view for key, fetching first when the view is missing or
// marked stale.
func (c *Cache) Read(ctx context.Context, key Key) ([]api.Expense, error) {
	c.mu.Lock()
	_, ok := c.views[key]
	stale := c.stale[key]
	c.mu.Unlock()

	if !ok || stale {
		if err := c.Fetch(ctx, key); err != nil {
			return nil, err
		}
	}
	view, _ := c.View(key)
	return view, nil
}

// Stale reports whether the view for key is marked out of date.
func (c *Cache) Stale(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale[key]
}

// Set replaces the view for key and clears its stale mark.
func (c *Cache) Set(key Key, view []api.Expense) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[key] = cloneView(view)
	c.stale[key] = false
}

// Drop removes the view for key entirely.
func (c *Cache) Drop(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, key)
	delete(c.stale, key)
}

// CancelInflight aborts any fetch currently running for key, so that a
// response from before a mutation cannot overwrite the optimistic view.
func (c *Cache) CancelInflight(key Key) {
	c.mu.Lock()
	tok := c.inflight[key]
	delete(c.inflight, key)
	c.mu.Unlock()
	if tok != nil {
		tok.cancel()
	}
}

// Fetch loads the view for key in the foreground. A concurrent
// CancelInflight for the same key aborts the request and leaves the cached
// view untouched.
func (c *Cache) Fetch(ctx context.Context, key Key) error {
	c.mu.Lock()
	f, ok := c.fetchers[key]
	if !ok {
		c.mu.Unlock()
		return nil
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	tok := &fetchToken{cancel: cancel}
	if prev := c.inflight[key]; prev != nil {
		prev.cancel()
	}
	c.inflight[key] = tok
	c.mu.Unlock()
	defer cancel()

	view, err := f(fetchCtx)

	// only the fetch still owning the slot may publish
	c.mu.Lock()
	owns := c.inflight[key] == tok
	if owns {
		delete(c.inflight, key)
	}
	c.mu.Unlock()

	if !owns {
		return context.Canceled
	}
	if err != nil {
		return err
	}
	c.Set(key, view)
	return nil
}

// Invalidate marks the view for key stale and starts one background refetch.
// The refetch is not awaited; Wait blocks until all pending refetches finish.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	c.stale[key] = true
	_, registered := c.fetchers[key]
	c.mu.Unlock()

	if !registered {
		return
	}

	c.refetches.Add(1)
	go func() {
		defer c.refetches.Done()
		_ = c.Fetch(context.Background(), key)
	}()
}

// Wait blocks until all background refetches started by Invalidate are done.
func (c *Cache) Wait() {
	c.refetches.Wait()
}

func cloneView(view []api.Expense) []api.Expense {
	out := make([]api.Expense, len(view))
	for i, e := range view {
		out[i] = e
		if e.FileURL != nil {
			u := *e.FileURL
			out[i].FileURL = &u
		}
	}
	return out
}
