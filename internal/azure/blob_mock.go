package azure

import (
	"bytes"
	"context"
	"sync"

	"go.uber.org/zap"
)

// MockBlobStorageClient is an in-memory implementation of BlobStorage for testing
type MockBlobStorageClient struct {
	Storage      map[string][]byte
	ContentTypes map[string]string
	mu           sync.RWMutex
	logger       *zap.Logger
}

// NewMockBlobStorageClient creates a new mock blob storage client
func NewMockBlobStorageClient(logger *zap.Logger) *MockBlobStorageClient {
	return &MockBlobStorageClient{
		Storage:      make(map[string][]byte),
		ContentTypes: make(map[string]string),
		logger:       logger,
	}
}

func (c *MockBlobStorageClient) Upload(ctx context.Context, blobName string, data []byte, contentType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Storage[blobName] = bytes.Clone(data)
	c.ContentTypes[blobName] = contentType

	if c.logger != nil {
		c.logger.Info("mock: blob uploaded",
			zap.String("blob_name", blobName),
			zap.Int("size_bytes", len(data)),
		)
	}
	return nil
}

func (c *MockBlobStorageClient) Download(ctx context.Context, blobName string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, exists := c.Storage[blobName]
	if !exists {
		return nil, ErrBlobNotFound
	}
	return bytes.Clone(data), nil
}

func (c *MockBlobStorageClient) Delete(ctx context.Context, blobName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.Storage, blobName)
	delete(c.ContentTypes, blobName)
	return nil
}

// ListBlobs returns all blob names in storage
func (c *MockBlobStorageClient) ListBlobs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blobs := make([]string, 0, len(c.Storage))
	for name := range c.Storage {
		blobs = append(blobs, name)
	}
	return blobs
}
