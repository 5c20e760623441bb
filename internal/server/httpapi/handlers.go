package httpapi

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
	"github.com/dmitrijs2005/expensekeeper/internal/server/models"
	"github.com/dmitrijs2005/expensekeeper/internal/server/services"
)

type expenseJSON struct {
	ID      int64   `json:"id"`
	Title   string  `json:"title"`
	Amount  int64   `json:"amount"`
	FileURL *string `json:"fileUrl"`
}

func toExpenseJSON(v *services.ExpenseView) expenseJSON {
	return expenseJSON{ID: v.ID, Title: v.Title, Amount: v.Amount, FileURL: v.FileURL}
}

type userJSON struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError translates the error taxonomy into the wire contract's statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorEmptyPatch):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrorUnauthorized):
		status = http.StatusUnauthorized
	default:
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err.Error())
		s.writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrorNotFound
	}
	return id, nil
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	views, err := s.expenses.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]expenseJSON, 0, len(views))
	for _, v := range views {
		out = append(out, toExpenseJSON(v))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"expenses": out})
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	v, err := s.expenses.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"expense": toExpenseJSON(v)})
}

type createExpenseRequest struct {
	Title  string `json:"title"`
	Amount int64  `json:"amount"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	v, err := s.expenses.Create(r.Context(), req.Title, req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"expense": toExpenseJSON(v)})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req createExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	v, err := s.expenses.Update(r.Context(), id, req.Title, req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"expense": toExpenseJSON(v)})
}

// patchExpenseRequest distinguishes absent fields from explicit nulls:
// a nil RawMessage means the field was not sent at all.
type patchExpenseRequest struct {
	Title   *string         `json:"title"`
	Amount  *int64          `json:"amount"`
	FileKey json.RawMessage `json:"fileKey"`
	FileURL json.RawMessage `json:"fileUrl"`
}

var jsonNull = []byte("null")

func rawToNullString(raw json.RawMessage) (sql.NullString, error) {
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return sql.NullString{}, nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil || v == "" {
		return sql.NullString{}, common.ErrorValidation
	}
	return sql.NullString{String: v, Valid: true}, nil
}

func (s *Server) handlePatchExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req patchExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	patch := models.ExpensePatch{Title: req.Title, Amount: req.Amount}

	// fileKey and fileUrl both address the stored object key; when both are
	// present the fileUrl wins, matching the ad hoc clients in the wild.
	for _, raw := range []json.RawMessage{req.FileKey, req.FileURL} {
		if raw == nil {
			continue
		}
		key, err := rawToNullString(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		patch.FileKey = &key
	}

	v, err := s.expenses.Patch(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"expense": toExpenseJSON(v)})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	v, err := s.expenses.Delete(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"deleted": toExpenseJSON(v)})
}

type signUploadRequest struct {
	Filename string `json:"filename"`
	Type     string `json:"type"`
}

func (s *Server) handleSignUpload(w http.ResponseWriter, r *http.Request) {
	var req signUploadRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	grant, err := s.uploads.Sign(r.Context(), req.Filename, req.Type)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"uploadUrl": grant.UploadURL, "key": grant.Key})
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	u, err := s.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"user": userJSON{ID: u.ID, Username: u.UserName}})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	token, u, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.writeJSON(w, http.StatusOK, map[string]any{"user": userJSON{ID: u.ID, Username: u.UserName}})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.GetByID(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"user": userJSON{ID: u.ID, Username: u.UserName}})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
