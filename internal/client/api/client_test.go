package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListExpenses_DecodesCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/expenses", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"expenses":[{"id":1,"title":"Lunch","amount":12,"fileUrl":null},{"id":2,"title":"Taxi","amount":20,"fileUrl":"https://signed/a"}]}`)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	expenses, err := c.ListExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Nil(t, expenses[0].FileURL)
	require.NotNil(t, expenses[1].FileURL)
	assert.Equal(t, "https://signed/a", *expenses[1].FileURL)
}

func TestCreateExpense_SendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Coffee", body["title"])
		assert.Equal(t, float64(5), body["amount"])
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"expense":{"id":7,"title":"Coffee","amount":5,"fileUrl":null}}`)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	created, err := c.CreateExpense(context.Background(), "Coffee", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
}

func TestDeleteExpense_DecodesDeleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/expenses/7", r.URL.Path)
		io.WriteString(w, `{"deleted":{"id":7,"title":"Coffee","amount":5,"fileUrl":null}}`)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	deleted, err := c.DeleteExpense(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", deleted.Title)
}

func TestErrorMapping_ExtractsServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"amount must be a positive integer"}`)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.CreateExpense(context.Background(), "Coffee", -5)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "amount must be a positive integer", apiErr.Message)
	assert.True(t, IsStatus(err, http.StatusBadRequest))
	assert.False(t, IsStatus(err, http.StatusUnauthorized))
}

func TestLogin_KeepsSessionCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "ek_session", Value: "tok", Path: "/"})
			io.WriteString(w, `{"user":{"id":"u-1","username":"alice"}}`)
		case "/api/auth/me":
			cookie, err := r.Cookie("ek_session")
			if err != nil || cookie.Value != "tok" {
				w.WriteHeader(http.StatusUnauthorized)
				io.WriteString(w, `{"error":"authentication required"}`)
				return
			}
			io.WriteString(w, `{"user":{"id":"u-1","username":"alice"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	// without a session the call is rejected
	_, err = c.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	u, err := c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-1", me.ID)
}

func TestPutFile_SetsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "bytes", string(body))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	err = c.PutFile(context.Background(), srv.URL+"/uploads/k", "image/png", strings.NewReader("bytes"))
	require.NoError(t, err)
}

func TestPutFile_FailureIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, "AccessDenied")
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	err = c.PutFile(context.Background(), srv.URL+"/uploads/k", "image/png", strings.NewReader("bytes"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestDo_ServerUnreachable(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1")
	require.NoError(t, err)

	_, err = c.ListExpenses(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPatchExpense_SendsNullFileKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"fileKey":null}`, string(body))
		io.WriteString(w, `{"expense":{"id":3,"title":"Taxi","amount":20,"fileUrl":null}}`)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	patched, err := c.PatchExpense(context.Background(), 3, map[string]any{"fileKey": nil})
	require.NoError(t, err)
	assert.Nil(t, patched.FileURL)
}
