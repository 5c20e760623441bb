// Package upload drives the three step attachment flow: ask the server to
// sign an upload URL, transfer the file bytes to storage, then attach the
// storage key to the expense.
package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/expensekeeper/internal/client/api"
	"github.com/dmitrijs2005/expensekeeper/internal/client/querycache"
	"github.com/dmitrijs2005/expensekeeper/internal/common"
)

// State tracks where in the flow an upload currently is.
type State int

const (
	StateIdle State = iota
	StateSigning
	StateTransferring
	StateAttaching
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSigning:
		return "signing"
	case StateTransferring:
		return "transferring"
	case StateAttaching:
		return "attaching"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// uploadAPI is the slice of the HTTP client the uploader needs.
type uploadAPI interface {
	SignUpload(ctx context.Context, filename, contentType string) (*api.UploadGrant, error)
	PutFile(ctx context.Context, url, contentType string, content io.Reader) error
	PatchExpense(ctx context.Context, id int64, fields map[string]any) (*api.Expense, error)
}

type Uploader struct {
	client uploadAPI
	cache  *querycache.Cache

	mu    sync.Mutex
	state State
}

func NewUploader(client uploadAPI, cache *querycache.Cache) *Uploader {
	return &Uploader{client: client, cache: cache, state: StateIdle}
}

// State returns the current stage of the flow.
func (u *Uploader) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

func (u *Uploader) setState(s State) {
	u.mu.Lock()
	u.state = s
	u.mu.Unlock()
}

// Upload runs the full flow for one file and returns the patched expense.
// Once the sign step has succeeded, both query keys are invalidated whatever
// the outcome, because the stored object may exist even when a later step
// failed.
func (u *Uploader) Upload(ctx context.Context, expenseID int64, filename, contentType string,
	content io.Reader, collectionKey, recordKey querycache.Key) (*api.Expense, error) {

	u.setState(StateSigning)

	grant, err := u.client.SignUpload(ctx, filename, contentType)
	if err != nil {
		u.setState(StateFailed)
		if api.IsStatus(err, http.StatusUnauthorized) {
			return nil, fmt.Errorf("%w: please log in to upload files", common.ErrorUnauthorized)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrSigning, err)
	}

	defer func() {
		u.cache.Invalidate(collectionKey)
		u.cache.Invalidate(recordKey)
	}()

	u.setState(StateTransferring)
	if err := u.client.PutFile(ctx, grant.UploadURL, contentType, content); err != nil {
		u.setState(StateFailed)
		return nil, fmt.Errorf("%w: %v", common.ErrTransfer, err)
	}

	u.setState(StateAttaching)
	patched, err := u.client.PatchExpense(ctx, expenseID, map[string]any{"fileKey": grant.Key})
	if err != nil {
		u.setState(StateFailed)
		return nil, fmt.Errorf("%w: %v", common.ErrAttach, err)
	}

	u.setState(StateDone)
	return patched, nil
}
