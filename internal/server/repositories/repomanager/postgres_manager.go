package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/expensekeeper/internal/dbx"
	"github.com/dmitrijs2005/expensekeeper/internal/server/migrations"
	"github.com/dmitrijs2005/expensekeeper/internal/server/repositories/expenses"
	"github.com/dmitrijs2005/expensekeeper/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct {
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Expenses(db dbx.DBTX) expenses.Repository {
	return expenses.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}
