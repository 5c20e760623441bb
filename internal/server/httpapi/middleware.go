package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
	"github.com/dmitrijs2005/expensekeeper/internal/server/auth"
)

type ctxKey int

const userIDKey ctxKey = iota

// userID returns the authenticated user's id, or "" when the request carries
// no valid session.
func userID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// requireAuth rejects requests without a valid session cookie and stores the
// session's user id on the request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(common.SessionCookieName)
		if err != nil {
			s.writeError(w, r, common.ErrorUnauthorized)
			return
		}

		id, err := auth.GetUserIDFromToken(cookie.Value, s.jwtSecret)
		if err != nil {
			s.writeError(w, r, common.ErrorUnauthorized)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// withLogging logs every request with method, path, status, and duration.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}
