package azure

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"go.uber.org/zap"
)

// BlobConfig holds the storage account settings
type BlobConfig struct {
	AccountName   string
	AccountKey    string
	ContainerName string
	ServiceURL    string // defaults to the public endpoint of the account
}

// BlobStorageClient wraps Azure Blob Storage SDK for file operations
type BlobStorageClient struct {
	client        *azblob.Client
	containerName string
	logger        *zap.Logger
}

// NewBlobStorageClient creates a new Azure Blob Storage client
func NewBlobStorageClient(cfg BlobConfig, logger *zap.Logger) (*BlobStorageClient, error) {
	if cfg.AccountName == "" || cfg.AccountKey == "" || cfg.ContainerName == "" {
		return nil, fmt.Errorf("accountName, accountKey, and containerName are required")
	}

	serviceURL := cfg.ServiceURL
	if serviceURL == "" {
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)
	}

	credential, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &BlobStorageClient{
		client:        client,
		containerName: cfg.ContainerName,
		logger:        logger,
	}, nil
}

// EnsureContainer creates the container unless it already exists
func (c *BlobStorageClient) EnsureContainer(ctx context.Context) error {
	_, err := c.client.CreateContainer(ctx, c.containerName, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("failed to create container %s: %w", c.containerName, err)
	}
	return nil
}

// Upload stores data under blobName, replacing any existing blob
func (c *BlobStorageClient) Upload(ctx context.Context, blobName string, data []byte, contentType string) error {
	blobClient := c.client.ServiceClient().NewContainerClient(c.containerName).NewBlockBlobClient(blobName)

	_, err := blobClient.UploadBuffer(ctx, data, &azblob.UploadBufferOptions{
		Metadata: map[string]*string{
			"contenttype": toPtr(contentType),
		},
	})
	if err != nil {
		c.logger.Error("failed to upload blob",
			zap.String("blob_name", blobName),
			zap.Error(err),
		)
		return fmt.Errorf("failed to upload blob %s: %w", blobName, err)
	}

	c.logger.Debug("blob uploaded",
		zap.String("blob_name", blobName),
		zap.Int("size_bytes", len(data)),
	)
	return nil
}

// Download reads a blob. A missing blob yields ErrBlobNotFound.
func (c *BlobStorageClient) Download(ctx context.Context, blobName string) ([]byte, error) {
	blobClient := c.client.ServiceClient().NewContainerClient(c.containerName).NewBlockBlobClient(blobName)

	downloadResponse, err := blobClient.DownloadStream(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrBlobNotFound
		}
		c.logger.Error("failed to download blob",
			zap.String("blob_name", blobName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to download blob %s: %w", blobName, err)
	}
	defer downloadResponse.Body.Close()

	data, err := io.ReadAll(downloadResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", blobName, err)
	}

	c.logger.Debug("blob downloaded",
		zap.String("blob_name", blobName),
		zap.Int("size_bytes", len(data)),
	)
	return data, nil
}

// Delete removes a blob. Deleting a missing blob succeeds.
func (c *BlobStorageClient) Delete(ctx context.Context, blobName string) error {
	blobClient := c.client.ServiceClient().NewContainerClient(c.containerName).NewBlockBlobClient(blobName)

	if _, err := blobClient.Delete(ctx, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete blob %s: %w", blobName, err)
	}
	return nil
}

// toPtr is a helper function to convert a value to a pointer
func toPtr(s string) *string {
	return &s
}
