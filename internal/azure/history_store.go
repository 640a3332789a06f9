package azure

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ayni-health/backend/internal/repository"
	"github.com/ayni-health/backend/pkg/model"
)

// BlobHistoryStore keeps each user's encoded history in its own blob
type BlobHistoryStore struct {
	blobs  BlobStorage
	prefix string
	codec  repository.Codec
	logger *zap.Logger
}

var _ repository.HistoryStore = (*BlobHistoryStore)(nil)

// NewBlobHistoryStore creates a history store on top of blob storage
func NewBlobHistoryStore(blobs BlobStorage, prefix string, codec repository.Codec, logger *zap.Logger) *BlobHistoryStore {
	return &BlobHistoryStore{
		blobs:  blobs,
		prefix: prefix,
		codec:  codec,
		logger: logger,
	}
}

func blobName(key string) string {
	return "history/" + key + ".json"
}

func (s *BlobHistoryStore) Load(ctx context.Context, userID string) ([]model.HistoryEntry, error) {
	key := repository.Key(s.prefix, userID)

	payload, err := s.blobs.Download(ctx, blobName(key))
	if errors.Is(err, ErrBlobNotFound) {
		return []model.HistoryEntry{}, nil
	}
	if err != nil {
		return nil, &repository.StorageError{Op: "load", Key: key, Err: err}
	}

	entries, err := s.codec.Decode(payload)
	if err != nil {
		s.logger.Warn("stored history blob is unreadable", zap.String("key", key), zap.Error(err))
		return nil, &repository.StorageError{Op: "load", Key: key, Err: err}
	}
	return entries, nil
}

func (s *BlobHistoryStore) Save(ctx context.Context, userID string, entries []model.HistoryEntry) error {
	key := repository.Key(s.prefix, userID)

	payload, err := s.codec.Encode(entries)
	if err != nil {
		return &repository.StorageError{Op: "save", Key: key, Err: err}
	}
	if err := s.blobs.Upload(ctx, blobName(key), payload, "application/json"); err != nil {
		return &repository.StorageError{Op: "save", Key: key, Err: err}
	}
	return nil
}

func (s *BlobHistoryStore) Clear(ctx context.Context, userID string) error {
	key := repository.Key(s.prefix, userID)
	if err := s.blobs.Delete(ctx, blobName(key)); err != nil {
		return &repository.StorageError{Op: "clear", Key: key, Err: err}
	}
	return nil
}
