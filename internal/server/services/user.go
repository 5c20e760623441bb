package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
	"github.com/dmitrijs2005/expensekeeper/internal/dbx"
	"github.com/dmitrijs2005/expensekeeper/internal/server/auth"
	"github.com/dmitrijs2005/expensekeeper/internal/server/config"
	"github.com/dmitrijs2005/expensekeeper/internal/server/models"
	"github.com/dmitrijs2005/expensekeeper/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint a session token
// - GetByID: resolve the current session identity
type UserService struct {
	db                      *sql.DB
	repomanager             repomanager.RepositoryManager
	jwtSecret               []byte
	sessionValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                      db,
		repomanager:             m,
		jwtSecret:               []byte(cfg.SecretKey),
		sessionValidityDuration: cfg.SessionValidityDuration,
	}
}

// Register creates a new user with a bcrypt-hashed password. The duplicate
// check and the insert run in one transaction.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || len(password) < 8 {
		return nil, fmt.Errorf("%w: username required, password min 8 characters", common.ErrorValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	var u *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		if _, err := repo.GetByLogin(ctx, username); err == nil {
			return fmt.Errorf("%w: username already taken", common.ErrorValidation)
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		created, err := repo.Create(ctx, &models.User{UserName: username, PasswordHash: hash})
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		u = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the credentials and, on success, returns a signed session
// token. Unknown users and wrong passwords are indistinguishable to callers.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return "", nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.sessionValidityDuration)
	if err != nil {
		return "", nil, fmt.Errorf("error generating token: %w", err)
	}

	return token, user, nil
}

// GetByID resolves a session's user id into the stored account.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	return user, nil
}
