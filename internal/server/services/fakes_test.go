package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/expensekeeper/internal/dbx"
	"github.com/dmitrijs2005/expensekeeper/internal/server/models"
	"github.com/dmitrijs2005/expensekeeper/internal/server/repositories/expenses"
	"github.com/dmitrijs2005/expensekeeper/internal/server/repositories/users"
)

// fakeExpenseRepo lets each test wire just the calls it expects.
type fakeExpenseRepo struct {
	selectAll     func(ctx context.Context) ([]*models.Expense, error)
	selectByID    func(ctx context.Context, id int64) (*models.Expense, error)
	insert        func(ctx context.Context, title string, amount int64) (*models.Expense, error)
	update        func(ctx context.Context, id int64, title string, amount int64) (*models.Expense, error)
	updatePartial func(ctx context.Context, id int64, patch models.ExpensePatch) (*models.Expense, error)
	deleteByID    func(ctx context.Context, id int64) (*models.Expense, error)
}

func (f *fakeExpenseRepo) SelectAll(ctx context.Context) ([]*models.Expense, error) {
	return f.selectAll(ctx)
}
func (f *fakeExpenseRepo) SelectByID(ctx context.Context, id int64) (*models.Expense, error) {
	return f.selectByID(ctx, id)
}
func (f *fakeExpenseRepo) Insert(ctx context.Context, title string, amount int64) (*models.Expense, error) {
	return f.insert(ctx, title, amount)
}
func (f *fakeExpenseRepo) Update(ctx context.Context, id int64, title string, amount int64) (*models.Expense, error) {
	return f.update(ctx, id, title, amount)
}
func (f *fakeExpenseRepo) UpdatePartial(ctx context.Context, id int64, patch models.ExpensePatch) (*models.Expense, error) {
	return f.updatePartial(ctx, id, patch)
}
func (f *fakeExpenseRepo) DeleteByID(ctx context.Context, id int64) (*models.Expense, error) {
	return f.deleteByID(ctx, id)
}

type fakeUserRepo struct {
	create     func(ctx context.Context, user *models.User) (*models.User, error)
	getByLogin func(ctx context.Context, userName string) (*models.User, error)
	getByID    func(ctx context.Context, id string) (*models.User, error)
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return f.create(ctx, user)
}
func (f *fakeUserRepo) GetByLogin(ctx context.Context, userName string) (*models.User, error) {
	return f.getByLogin(ctx, userName)
}
func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return f.getByID(ctx, id)
}

type fakeRepoManager struct {
	exp expenses.Repository
	usr users.Repository
}

func (m *fakeRepoManager) Expenses(db dbx.DBTX) expenses.Repository { return m.exp }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository      { return m.usr }
func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func newMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New err: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// stubGetURL makes every resolved file key sign to "https://signed/<key>".
func stubGetURL(t *testing.T) {
	t.Helper()
	restoreSeams(t)
	stubPresignClient(t)
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://signed/" + *in.Key}, nil
	}
}
