package expenses

import (
	"context"

	"github.com/dmitrijs2005/expensekeeper/internal/server/models"
)

type Repository interface {
	SelectAll(ctx context.Context) ([]*models.Expense, error)
	SelectByID(ctx context.Context, id int64) (*models.Expense, error)
	Insert(ctx context.Context, title string, amount int64) (*models.Expense, error)
	Update(ctx context.Context, id int64, title string, amount int64) (*models.Expense, error)
	UpdatePartial(ctx context.Context, id int64, patch models.ExpensePatch) (*models.Expense, error)
	DeleteByID(ctx context.Context, id int64) (*models.Expense, error)
}
