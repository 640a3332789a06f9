package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayni-health/backend/internal/security"
	"github.com/ayni-health/backend/pkg/model"
)

// DefaultKeyPrefix namespaces every stored history
const DefaultKeyPrefix = "ayni_analysis_history"

// HistoryStore persists the capped analysis history of each user
type HistoryStore interface {
	Load(ctx context.Context, userID string) ([]model.HistoryEntry, error)
	Save(ctx context.Context, userID string, entries []model.HistoryEntry) error
	Clear(ctx context.Context, userID string) error
}

// StorageError wraps a failed storage operation on one key
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ErrCorruptPayload is wrapped when a stored history cannot be decoded
var ErrCorruptPayload = errors.New("corrupt history payload")

// Key builds the storage key of a user's history
func Key(prefix, userID string) string {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return prefix + ":" + userID
}

// Codec turns a history into a stored payload and back. With an encryptor the JSON is sealed.
type Codec struct {
	encryptor *security.Encryptor
}

// NewCodec creates a codec. A nil encryptor stores plain JSON.
func NewCodec(encryptor *security.Encryptor) Codec {
	return Codec{encryptor: encryptor}
}

// Encode serialises entries as a JSON array
func (c Codec) Encode(entries []model.HistoryEntry) ([]byte, error) {
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}
	if c.encryptor == nil {
		return payload, nil
	}
	sealed, err := c.encryptor.Seal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt history: %w", err)
	}
	return sealed, nil
}

// Decode parses a payload written by Encode
func (c Codec) Decode(payload []byte) ([]model.HistoryEntry, error) {
	if len(payload) == 0 {
		return []model.HistoryEntry{}, nil
	}
	if c.encryptor != nil {
		opened, err := c.encryptor.Open(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
		}
		payload = opened
	}

	var entries []model.HistoryEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	return entries, nil
}
