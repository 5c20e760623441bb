// Package api implements the HTTP client for the expense tracking server.
// All methods translate non-2xx responses into *APIError values so that
// callers can branch on the status code.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// Expense is the wire representation of a single expense row.
type Expense struct {
	ID      int64   `json:"id"`
	Title   string  `json:"title"`
	Amount  int64   `json:"amount"`
	FileURL *string `json:"fileUrl"`
}

// User is the wire representation of an account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// UploadGrant is the result of a successful sign request.
type UploadGrant struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given base URL, e.g. "http://localhost:3000".
// The session cookie issued on login is kept in an in-memory jar.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return err
		}
		reqBody = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return newAPIError(resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// ListExpenses fetches all expenses.
func (c *Client) ListExpenses(ctx context.Context) ([]Expense, error) {
	var resp struct {
		Expenses []Expense `json:"expenses"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/expenses", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Expenses, nil
}

// GetExpense fetches a single expense by id.
func (c *Client) GetExpense(ctx context.Context, id int64) (*Expense, error) {
	var resp struct {
		Expense Expense `json:"expense"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/expenses/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Expense, nil
}

// CreateExpense creates a new expense and returns the stored row.
func (c *Client) CreateExpense(ctx context.Context, title string, amount int64) (*Expense, error) {
	var resp struct {
		Expense Expense `json:"expense"`
	}
	body := map[string]any{"title": title, "amount": amount}
	if err := c.do(ctx, http.MethodPost, "/api/expenses", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Expense, nil
}

// UpdateExpense replaces both title and amount of an expense.
func (c *Client) UpdateExpense(ctx context.Context, id int64, title string, amount int64) (*Expense, error) {
	var resp struct {
		Expense Expense `json:"expense"`
	}
	body := map[string]any{"title": title, "amount": amount}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/expenses/%d", id), body, &resp); err != nil {
		return nil, err
	}
	return &resp.Expense, nil
}

// PatchExpense updates a subset of fields. Keys follow the wire contract:
// "title", "amount", "fileKey" (null clears the attachment), "fileUrl".
func (c *Client) PatchExpense(ctx context.Context, id int64, fields map[string]any) (*Expense, error) {
	var resp struct {
		Expense Expense `json:"expense"`
	}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/expenses/%d", id), fields, &resp); err != nil {
		return nil, err
	}
	return &resp.Expense, nil
}

// DeleteExpense removes an expense and returns its last stored state.
func (c *Client) DeleteExpense(ctx context.Context, id int64) (*Expense, error) {
	var resp struct {
		Deleted Expense `json:"deleted"`
	}
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Deleted, nil
}

// SignUpload asks the server for a presigned PUT URL for the given file.
func (c *Client) SignUpload(ctx context.Context, filename, contentType string) (*UploadGrant, error) {
	var resp UploadGrant
	body := map[string]string{"filename": filename, "type": contentType}
	if err := c.do(ctx, http.MethodPost, "/api/upload/sign", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PutFile uploads content directly to a presigned URL. The request bypasses
// the API base URL entirely; only the content type header is set.
func (c *Client) PutFile(ctx context.Context, url, contentType string, content io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, content)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return newAPIError(resp)
	}
	return nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, password string) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Login authenticates and stores the session cookie in the client's jar.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout drops the session on the server side and clears the cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Me returns the account of the current session.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}
