// Package repomanager wires concrete repositories to database handles so
// services can run the same repository against *sql.DB or an open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/expensekeeper/internal/dbx"
	"github.com/dmitrijs2005/expensekeeper/internal/server/repositories/expenses"
	"github.com/dmitrijs2005/expensekeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	Expenses(db dbx.DBTX) expenses.Repository
	Users(db dbx.DBTX) users.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
