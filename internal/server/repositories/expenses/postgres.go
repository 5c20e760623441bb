// Package expenses provides PostgreSQL-backed storage for expense records.
package expenses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
	"github.com/dmitrijs2005/expensekeeper/internal/dbx"
	"github.com/dmitrijs2005/expensekeeper/internal/server/models"
)

const columns = "id, title, amount, file_key, created_at, updated_at"

// PostgresRepository implements expense storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanExpense(row *sql.Row) (*models.Expense, error) {
	var e models.Expense
	err := row.Scan(&e.ID, &e.Title, &e.Amount, &e.FileKey, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &e, nil
}

func (r *PostgresRepository) SelectAll(ctx context.Context) ([]*models.Expense, error) {
	query := `SELECT ` + columns + ` FROM expenses ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select expenses: %w", err)
	}
	defer rows.Close()

	var result []*models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.Title, &e.Amount, &e.FileKey, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) SelectByID(ctx context.Context, id int64) (*models.Expense, error) {
	query := `SELECT ` + columns + ` FROM expenses WHERE id = $1`
	return scanExpense(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Insert(ctx context.Context, title string, amount int64) (*models.Expense, error) {
	query := `
		INSERT INTO expenses (title, amount)
		VALUES ($1, $2)
		RETURNING ` + columns
	return scanExpense(r.db.QueryRowContext(ctx, query, title, amount))
}

// Update replaces title and amount wholesale. The stored file key is untouched.
func (r *PostgresRepository) Update(ctx context.Context, id int64, title string, amount int64) (*models.Expense, error) {
	query := `
		UPDATE expenses SET title = $2, amount = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + columns
	return scanExpense(r.db.QueryRowContext(ctx, query, id, title, amount))
}

// UpdatePartial applies only the fields set in patch. Callers must reject an
// empty patch before reaching the store.
func (r *PostgresRepository) UpdatePartial(ctx context.Context, id int64, patch models.ExpensePatch) (*models.Expense, error) {
	if patch.Empty() {
		return nil, common.ErrorEmptyPatch
	}

	sets := make([]string, 0, 3)
	args := []any{id}

	add := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if patch.Title != nil {
		add("title = $%d", *patch.Title)
	}
	if patch.Amount != nil {
		add("amount = $%d", *patch.Amount)
	}
	if patch.FileKey != nil {
		add("file_key = $%d", *patch.FileKey)
	}

	query := `
		UPDATE expenses SET ` + strings.Join(sets, ", ") + `, updated_at = now()
		WHERE id = $1
		RETURNING ` + columns
	return scanExpense(r.db.QueryRowContext(ctx, query, args...))
}

// DeleteByID removes the record and returns its last-known state. Deleting an
// absent id yields common.ErrorNotFound.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id int64) (*models.Expense, error) {
	query := `
		DELETE FROM expenses
		WHERE id = $1
		RETURNING ` + columns
	return scanExpense(r.db.QueryRowContext(ctx, query, id))
}
