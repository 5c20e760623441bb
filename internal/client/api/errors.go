package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	ErrUnavailable = errors.New("server unavailable")
)

// APIError carries the HTTP status and the server-provided message of a
// failed request.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return e.Message
}

// newAPIError reads a failed response's body and extracts the "error" field
// if the body is the usual {"error": "..."} shape, otherwise keeps the raw
// text so nothing is lost.
func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &APIError{Status: resp.StatusCode, Message: payload.Error}
	}
	return &APIError{Status: resp.StatusCode, Message: string(body)}
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
