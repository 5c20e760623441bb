package querycache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/expensekeeper/internal/client/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMutator struct {
	create func(ctx context.Context, title string, amount int64) (*api.Expense, error)
	update func(ctx context.Context, id int64, title string, amount int64) (*api.Expense, error)
	patch  func(ctx context.Context, id int64, fields map[string]any) (*api.Expense, error)
	delete func(ctx context.Context, id int64) (*api.Expense, error)
}

func (f *fakeMutator) CreateExpense(ctx context.Context, title string, amount int64) (*api.Expense, error) {
	return f.create(ctx, title, amount)
}
func (f *fakeMutator) UpdateExpense(ctx context.Context, id int64, title string, amount int64) (*api.Expense, error) {
	return f.update(ctx, id, title, amount)
}
func (f *fakeMutator) PatchExpense(ctx context.Context, id int64, fields map[string]any) (*api.Expense, error) {
	return f.patch(ctx, id, fields)
}
func (f *fakeMutator) DeleteExpense(ctx context.Context, id int64) (*api.Expense, error) {
	return f.delete(ctx, id)
}

const key = Key("expenses")

func seededCache(fetched []api.Expense, fetchCount *atomic.Int64) *Cache {
	c := NewCache()
	c.Register(key, func(ctx context.Context) ([]api.Expense, error) {
		if fetchCount != nil {
			fetchCount.Add(1)
		}
		return fetched, nil
	})
	return c
}

func TestCreate_AppendsPlaceholderBeforeDispatch(t *testing.T) {
	serverRow := api.Expense{ID: 10, Title: "Coffee", Amount: 5}
	cache := seededCache([]api.Expense{{ID: 1, Title: "Lunch", Amount: 12}, serverRow}, nil)
	cache.Set(key, []api.Expense{{ID: 1, Title: "Lunch", Amount: 12}})

	var seen []api.Expense
	mut := &fakeMutator{
		create: func(ctx context.Context, title string, amount int64) (*api.Expense, error) {
			seen, _ = cache.View(key)
			return &serverRow, nil
		},
	}
	e := NewEngine(cache, mut)

	created, err := e.Create(context.Background(), key, "Coffee", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(10), created.ID)

	// during dispatch the view already contained the placeholder
	require.Len(t, seen, 2)
	assert.Equal(t, "Coffee", seen[1].Title)
	assert.Negative(t, seen[1].ID, "placeholder id must come from outside the server id space")
}

func TestCreate_RollbackRestoresExactSnapshot(t *testing.T) {
	url := "https://signed/uploads/x"
	snapshot := []api.Expense{
		{ID: 1, Title: "Lunch", Amount: 12},
		{ID: 2, Title: "Taxi", Amount: 20, FileURL: &url},
	}
	cache := seededCache(snapshot, nil)
	cache.Set(key, snapshot)

	mut := &fakeMutator{
		create: func(ctx context.Context, title string, amount int64) (*api.Expense, error) {
			return nil, errors.New("boom")
		},
	}
	e := NewEngine(cache, mut)

	_, err := e.Create(context.Background(), key, "Coffee", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to add expense")

	cache.Wait()
	view, ok := cache.View(key)
	require.True(t, ok)
	assert.Equal(t, snapshot, view)
}

func TestCreate_KeepsServerMessage(t *testing.T) {
	cache := seededCache(nil, nil)
	mut := &fakeMutator{
		create: func(ctx context.Context, title string, amount int64) (*api.Expense, error) {
			return nil, &api.APIError{Status: 400, Message: "title must be between 3 and 100 characters"}
		},
	}
	e := NewEngine(cache, mut)

	_, err := e.Create(context.Background(), key, "ab", 5)
	require.Error(t, err)
	assert.Equal(t, "title must be between 3 and 100 characters", err.Error())
}

func TestCreate_WithoutPriorViewRollbackDropsView(t *testing.T) {
	cache := NewCache()
	mut := &fakeMutator{
		create: func(ctx context.Context, title string, amount int64) (*api.Expense, error) {
			return nil, errors.New("boom")
		},
	}
	e := NewEngine(cache, mut)

	_, err := e.Create(context.Background(), key, "Coffee", 5)
	require.Error(t, err)

	_, ok := cache.View(key)
	assert.False(t, ok)
}

func TestTempIDsNeverRepeat(t *testing.T) {
	cache := NewCache()
	var ids []int64
	mut := &fakeMutator{
		create: func(ctx context.Context, title string, amount int64) (*api.Expense, error) {
			view, _ := cache.View(key)
			ids = append(ids, view[len(view)-1].ID)
			return &api.Expense{ID: int64(len(ids)), Title: title, Amount: amount}, nil
		},
	}
	e := NewEngine(cache, mut)

	for i := 0; i < 3; i++ {
		_, err := e.Create(context.Background(), key, "Coffee", 5)
		require.NoError(t, err)
	}

	assert.Equal(t, []int64{-1, -2, -3}, ids)
}

func TestDelete_RemovesRowBeforeDispatch(t *testing.T) {
	cache := seededCache(nil, nil)
	cache.Set(key, []api.Expense{{ID: 1, Title: "Lunch", Amount: 12}, {ID: 2, Title: "Taxi", Amount: 20}})

	var seen []api.Expense
	mut := &fakeMutator{
		delete: func(ctx context.Context, id int64) (*api.Expense, error) {
			seen, _ = cache.View(key)
			return &api.Expense{ID: id, Title: "Lunch", Amount: 12}, nil
		},
	}
	e := NewEngine(cache, mut)

	deleted, err := e.Delete(context.Background(), key, 1)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", deleted.Title)

	require.Len(t, seen, 1)
	assert.Equal(t, int64(2), seen[0].ID)
}

func TestDelete_RollbackOnFailure(t *testing.T) {
	snapshot := []api.Expense{{ID: 1, Title: "Lunch", Amount: 12}, {ID: 2, Title: "Taxi", Amount: 20}}
	cache := seededCache(snapshot, nil)
	cache.Set(key, snapshot)

	mut := &fakeMutator{
		delete: func(ctx context.Context, id int64) (*api.Expense, error) {
			return nil, errors.New("boom")
		},
	}
	e := NewEngine(cache, mut)

	_, err := e.Delete(context.Background(), key, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to delete expense")

	cache.Wait()
	view, _ := cache.View(key)
	assert.Equal(t, snapshot, view)
}

func TestPatch_NoOptimisticDelta(t *testing.T) {
	snapshot := []api.Expense{{ID: 1, Title: "Lunch", Amount: 12}}
	cache := seededCache(snapshot, nil)
	cache.Set(key, snapshot)

	var seen []api.Expense
	mut := &fakeMutator{
		patch: func(ctx context.Context, id int64, fields map[string]any) (*api.Expense, error) {
			seen, _ = cache.View(key)
			return &api.Expense{ID: id, Title: "Lunch", Amount: 15}, nil
		},
	}
	e := NewEngine(cache, mut)

	_, err := e.Patch(context.Background(), key, 1, map[string]any{"amount": 15})
	require.NoError(t, err)
	assert.Equal(t, snapshot, seen, "patch must not touch the view before the response")
}

func TestPatch_FailureUsesFallbackMessage(t *testing.T) {
	cache := seededCache(nil, nil)
	mut := &fakeMutator{
		patch: func(ctx context.Context, id int64, fields map[string]any) (*api.Expense, error) {
			return nil, errors.New("boom")
		},
	}
	e := NewEngine(cache, mut)

	_, err := e.Patch(context.Background(), key, 1, map[string]any{"amount": 15})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to update expense")
}

func TestMutation_InvalidatesExactlyOnce(t *testing.T) {
	var fetches atomic.Int64
	cache := seededCache([]api.Expense{{ID: 10, Title: "Coffee", Amount: 5}}, &fetches)

	mut := &fakeMutator{
		create: func(ctx context.Context, title string, amount int64) (*api.Expense, error) {
			return &api.Expense{ID: 10, Title: title, Amount: amount}, nil
		},
		delete: func(ctx context.Context, id int64) (*api.Expense, error) {
			return nil, errors.New("boom")
		},
	}
	e := NewEngine(cache, mut)

	_, err := e.Create(context.Background(), key, "Coffee", 5)
	require.NoError(t, err)
	cache.Wait()
	assert.Equal(t, int64(1), fetches.Load(), "success still refetches exactly once")

	_, err = e.Delete(context.Background(), key, 10)
	require.Error(t, err)
	cache.Wait()
	assert.Equal(t, int64(2), fetches.Load(), "failure also refetches exactly once")

	assert.False(t, cache.Stale(key), "refetch clears the stale mark")
}

func TestUpdate_DispatchesWithoutDelta(t *testing.T) {
	snapshot := []api.Expense{{ID: 1, Title: "Lunch", Amount: 12}}
	cache := seededCache(snapshot, nil)
	cache.Set(key, snapshot)

	mut := &fakeMutator{
		update: func(ctx context.Context, id int64, title string, amount int64) (*api.Expense, error) {
			view, _ := cache.View(key)
			assert.Equal(t, snapshot, view)
			return &api.Expense{ID: id, Title: title, Amount: amount}, nil
		},
	}
	e := NewEngine(cache, mut)

	updated, err := e.Update(context.Background(), key, 1, "Dinner", 30)
	require.NoError(t, err)
	assert.Equal(t, "Dinner", updated.Title)
}
