package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/dmitrijs2005/expensekeeper/internal/client/api"
)

// list shows the cached view when there is one and only hits the server when
// the view is missing or stale.
func (a *App) list(ctx context.Context) {
	view, err := a.cache.Read(ctx, KeyExpenses)
	if err != nil {
		log.Println(err.Error())
		return
	}

	if len(view) == 0 {
		fmt.Println("No expenses yet")
		return
	}
	for _, item := range view {
		fmt.Println(formatExpense(item))
	}
}

func formatExpense(e api.Expense) string {
	s := fmt.Sprintf("#%d  %s  %d", e.ID, e.Title, e.Amount)
	if e.ID < 0 {
		s += "  (saving...)"
	}
	if e.FileURL != nil {
		s += "  [receipt]"
	}
	return s
}
