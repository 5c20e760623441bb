package services

import (
	"context"
	"database/sql"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
	"github.com/dmitrijs2005/expensekeeper/internal/server/models"
	"github.com/dmitrijs2005/expensekeeper/internal/server/repositories/repomanager"
)

// ExpenseView is an expense shaped for a response: the stored file key is
// already resolved into a freshly signed download URL (or nil).
type ExpenseView struct {
	ID      int64
	Title   string
	Amount  int64
	FileURL *string
}

// ExpenseService implements expense CRUD on top of the record store, resolving
// file keys into presigned download URLs at response-construction time.
type ExpenseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	signer      *Signer
}

func NewExpenseService(db *sql.DB, repomanager repomanager.RepositoryManager, signer *Signer) *ExpenseService {
	return &ExpenseService{db: db, repomanager: repomanager, signer: signer}
}

// ValidateExpenseInput checks create/full-update input before it reaches the
// store: title 3-100 characters, amount a positive integer.
func ValidateExpenseInput(title string, amount int64) error {
	if n := utf8.RuneCountInString(title); n < 3 || n > 100 {
		return fmt.Errorf("%w: title must be 3-100 characters", common.ErrorValidation)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive integer", common.ErrorValidation)
	}
	return nil
}

func (s *ExpenseService) view(ctx context.Context, e *models.Expense) (*ExpenseView, error) {
	v := &ExpenseView{ID: e.ID, Title: e.Title, Amount: e.Amount}
	if !e.FileKey.Valid {
		return v, nil
	}
	url, err := s.signer.PresignedGetURL(ctx, e.FileKey.String)
	if err != nil {
		return nil, fmt.Errorf("error signing download url: %w", err)
	}
	v.FileURL = &url
	return v, nil
}

func (s *ExpenseService) List(ctx context.Context) ([]*ExpenseView, error) {
	repo := s.repomanager.Expenses(s.db)

	rows, err := repo.SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing expenses: %w", err)
	}

	result := make([]*ExpenseView, 0, len(rows))
	for _, e := range rows {
		v, err := s.view(ctx, e)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

func (s *ExpenseService) Get(ctx context.Context, id int64) (*ExpenseView, error) {
	repo := s.repomanager.Expenses(s.db)

	e, err := repo.SelectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, e)
}

func (s *ExpenseService) Create(ctx context.Context, title string, amount int64) (*ExpenseView, error) {
	if err := ValidateExpenseInput(title, amount); err != nil {
		return nil, err
	}

	repo := s.repomanager.Expenses(s.db)

	e, err := repo.Insert(ctx, title, amount)
	if err != nil {
		return nil, fmt.Errorf("error creating expense: %w", err)
	}
	return s.view(ctx, e)
}

// Update replaces title and amount wholesale (the attached file is untouched).
func (s *ExpenseService) Update(ctx context.Context, id int64, title string, amount int64) (*ExpenseView, error) {
	if err := ValidateExpenseInput(title, amount); err != nil {
		return nil, err
	}

	repo := s.repomanager.Expenses(s.db)

	e, err := repo.Update(ctx, id, title, amount)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, e)
}

// Patch applies a partial update. An empty patch is rejected before the store
// is touched; patched fields are validated with the same rules as Create.
func (s *ExpenseService) Patch(ctx context.Context, id int64, patch models.ExpensePatch) (*ExpenseView, error) {
	if patch.Empty() {
		return nil, common.ErrorEmptyPatch
	}
	if patch.Title != nil {
		if n := utf8.RuneCountInString(*patch.Title); n < 3 || n > 100 {
			return nil, fmt.Errorf("%w: title must be 3-100 characters", common.ErrorValidation)
		}
	}
	if patch.Amount != nil && *patch.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be a positive integer", common.ErrorValidation)
	}

	repo := s.repomanager.Expenses(s.db)

	e, err := repo.UpdatePartial(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, e)
}

// Delete removes the record and returns its last-known state.
func (s *ExpenseService) Delete(ctx context.Context, id int64) (*ExpenseView, error) {
	repo := s.repomanager.Expenses(s.db)

	e, err := repo.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// The deleted row is reported as-is: no point signing a URL for an
	// object that is about to become unreachable through the API.
	v := &ExpenseView{ID: e.ID, Title: e.Title, Amount: e.Amount}
	return v, nil
}
