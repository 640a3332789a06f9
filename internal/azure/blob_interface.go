package azure

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned by Download when the blob does not exist
var ErrBlobNotFound = errors.New("blob not found")

// BlobStorage defines the interface for blob storage operations
// This interface allows for easier testing with mock implementations
type BlobStorage interface {
	Upload(ctx context.Context, blobName string, data []byte, contentType string) error
	Download(ctx context.Context, blobName string) ([]byte, error)
	Delete(ctx context.Context, blobName string) error
}

// Ensure BlobStorageClient implements BlobStorage interface
var _ BlobStorage = (*BlobStorageClient)(nil)
