package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
)

// UploadGrant is a signed upload URL plus the storage key it writes to.
// The key is attached to an expense in a later PATCH; the URL goes straight
// to the object store and never passes through the API again.
type UploadGrant struct {
	UploadURL string
	Key       string
}

// UploadService issues presigned PUT grants for receipt uploads.
type UploadService struct {
	signer *Signer
}

func NewUploadService(signer *Signer) *UploadService {
	return &UploadService{signer: signer}
}

// Sign validates the declared filename and content type and returns a fresh
// upload grant. Authentication is the caller's concern (the HTTP layer).
func (s *UploadService) Sign(ctx context.Context, filename, contentType string) (*UploadGrant, error) {
	if filename == "" || contentType == "" {
		return nil, fmt.Errorf("%w: missing filename or type", common.ErrorValidation)
	}

	key := StorageKey(filename)

	url, err := s.signer.PresignedPutURL(ctx, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("error signing upload url: %w", err)
	}

	return &UploadGrant{UploadURL: url, Key: key}, nil
}
