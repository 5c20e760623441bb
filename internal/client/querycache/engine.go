package querycache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/expensekeeper/internal/client/api"
)

// mutationAPI is the slice of the HTTP client the engine dispatches through.
type mutationAPI interface {
	CreateExpense(ctx context.Context, title string, amount int64) (*api.Expense, error)
	UpdateExpense(ctx context.Context, id int64, title string, amount int64) (*api.Expense, error)
	PatchExpense(ctx context.Context, id int64, fields map[string]any) (*api.Expense, error)
	DeleteExpense(ctx context.Context, id int64) (*api.Expense, error)
}

// Engine runs optimistic mutations against one Cache. Every mutation follows
// the same protocol:
//
//  1. serialize with other mutations on the same key
//  2. cancel any in-flight fetch for the key
//  3. snapshot the current view
//  4. apply the optimistic delta to the view
//  5. dispatch the request
//  6. on failure restore the snapshot and return a user-facing error
//  7. invalidate the key exactly once, success or not
type Engine struct {
	cache  *Cache
	client mutationAPI

	mu     sync.Mutex
	keyMu  map[Key]*sync.Mutex
	nextID int64
}

func NewEngine(cache *Cache, client mutationAPI) *Engine {
	return &Engine{
		cache:  cache,
		client: client,
		keyMu:  make(map[Key]*sync.Mutex),
	}
}

// lockKey serializes mutations per key. Mutations on different keys run
// concurrently.
func (e *Engine) lockKey(key Key) *sync.Mutex {
	e.mu.Lock()
	m, ok := e.keyMu[key]
	if !ok {
		m = &sync.Mutex{}
		e.keyMu[key] = m
	}
	e.mu.Unlock()
	m.Lock()
	return m
}

// tempID returns the next placeholder id. Ids count down from -1 so they can
// never collide with server-assigned positive ids.
func (e *Engine) tempID() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID--
	return e.nextID
}

// Create appends a placeholder row to the view, dispatches the create request
// and rolls the view back if the request fails.
func (e *Engine) Create(ctx context.Context, key Key, title string, amount int64) (*api.Expense, error) {
	m := e.lockKey(key)
	defer m.Unlock()
	defer e.cache.Invalidate(key)

	e.cache.CancelInflight(key)
	snapshot, had := e.cache.View(key)

	optimistic := api.Expense{ID: e.tempID(), Title: title, Amount: amount}
	e.cache.Set(key, append(cloneView(snapshot), optimistic))

	created, err := e.client.CreateExpense(ctx, title, amount)
	if err != nil {
		e.restore(key, snapshot, had)
		return nil, userError(err, "Failed to add expense")
	}
	return created, nil
}

// Delete removes the row from the view, dispatches the delete request and
// rolls the view back if the request fails.
func (e *Engine) Delete(ctx context.Context, key Key, id int64) (*api.Expense, error) {
	m := e.lockKey(key)
	defer m.Unlock()
	defer e.cache.Invalidate(key)

	e.cache.CancelInflight(key)
	snapshot, had := e.cache.View(key)

	trimmed := make([]api.Expense, 0, len(snapshot))
	for _, row := range snapshot {
		if row.ID != id {
			trimmed = append(trimmed, row)
		}
	}
	e.cache.Set(key, trimmed)

	deleted, err := e.client.DeleteExpense(ctx, id)
	if err != nil {
		e.restore(key, snapshot, had)
		return nil, userError(err, "Failed to delete expense")
	}
	return deleted, nil
}

// Update replaces title and amount without an optimistic delta; the refetch
// triggered by the invalidation brings the authoritative row in.
func (e *Engine) Update(ctx context.Context, key Key, id int64, title string, amount int64) (*api.Expense, error) {
	m := e.lockKey(key)
	defer m.Unlock()
	defer e.cache.Invalidate(key)

	e.cache.CancelInflight(key)

	updated, err := e.client.UpdateExpense(ctx, id, title, amount)
	if err != nil {
		return nil, userError(err, "Failed to update expense")
	}
	return updated, nil
}

// Patch updates a subset of fields without an optimistic delta.
func (e *Engine) Patch(ctx context.Context, key Key, id int64, fields map[string]any) (*api.Expense, error) {
	m := e.lockKey(key)
	defer m.Unlock()
	defer e.cache.Invalidate(key)

	e.cache.CancelInflight(key)

	patched, err := e.client.PatchExpense(ctx, id, fields)
	if err != nil {
		return nil, userError(err, "Failed to update expense")
	}
	return patched, nil
}

// restore puts the pre-mutation snapshot back. A key that had no view before
// the mutation stays without one.
func (e *Engine) restore(key Key, snapshot []api.Expense, had bool) {
	if had {
		e.cache.Set(key, snapshot)
		return
	}
	e.cache.Drop(key)
}

// userError keeps the server-provided message when there is one and falls
// back to a generic message otherwise. The original error stays wrapped for
// errors.Is / errors.As.
func userError(err error, fallback string) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return err
	}
	return fmt.Errorf("%s: %w", fallback, err)
}
