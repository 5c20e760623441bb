// Package httpapi exposes the JSON-over-HTTP wire contract of the expense
// service. Handlers validate input before any store call and shape every
// response from service views; store and signing failures propagate as typed
// HTTP statuses.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/expensekeeper/internal/logging"
	"github.com/dmitrijs2005/expensekeeper/internal/server/models"
	"github.com/dmitrijs2005/expensekeeper/internal/server/services"
)

// ExpenseProvider is the expense surface the handlers need. Implemented by
// *services.ExpenseService.
type ExpenseProvider interface {
	List(ctx context.Context) ([]*services.ExpenseView, error)
	Get(ctx context.Context, id int64) (*services.ExpenseView, error)
	Create(ctx context.Context, title string, amount int64) (*services.ExpenseView, error)
	Update(ctx context.Context, id int64, title string, amount int64) (*services.ExpenseView, error)
	Patch(ctx context.Context, id int64, patch models.ExpensePatch) (*services.ExpenseView, error)
	Delete(ctx context.Context, id int64) (*services.ExpenseView, error)
}

// UploadProvider issues signed upload grants. Implemented by *services.UploadService.
type UploadProvider interface {
	Sign(ctx context.Context, filename, contentType string) (*services.UploadGrant, error)
}

// UserProvider is the identity surface. Implemented by *services.UserService.
type UserProvider interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type Server struct {
	logger    logging.Logger
	expenses  ExpenseProvider
	uploads   UploadProvider
	users     UserProvider
	jwtSecret []byte

	httpServer *http.Server
}

func NewServer(addr string, logger logging.Logger, expenses ExpenseProvider,
	uploads UploadProvider, users UserProvider, secretKey string) *Server {

	s := &Server{
		logger:    logger,
		expenses:  expenses,
		uploads:   uploads,
		users:     users,
		jwtSecret: []byte(secretKey),
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Routes wires the wire contract onto a stdlib mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("PATCH /api/expenses/{id}", s.handlePatchExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("POST /api/upload/sign", s.requireAuth(s.handleSignUpload))

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/auth/me", s.requireAuth(s.handleMe))

	mux.HandleFunc("GET /health", s.handleHealth)

	return s.withLogging(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.httpServer.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
