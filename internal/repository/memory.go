package repository

import (
	"context"
	"sync"

	"github.com/ayni-health/backend/pkg/model"
)

// MemoryHistoryStore keeps encoded histories in process memory
type MemoryHistoryStore struct {
	mu     sync.RWMutex
	prefix string
	codec  Codec
	data   map[string][]byte
}

// NewMemoryHistoryStore creates an empty in-memory store
func NewMemoryHistoryStore(prefix string, codec Codec) *MemoryHistoryStore {
	return &MemoryHistoryStore{
		prefix: prefix,
		codec:  codec,
		data:   make(map[string][]byte),
	}
}

// Load returns an empty history for unknown users
func (s *MemoryHistoryStore) Load(ctx context.Context, userID string) ([]model.HistoryEntry, error) {
	key := Key(s.prefix, userID)

	s.mu.RLock()
	payload, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return []model.HistoryEntry{}, nil
	}

	entries, err := s.codec.Decode(payload)
	if err != nil {
		return nil, &StorageError{Op: "load", Key: key, Err: err}
	}
	return entries, nil
}

func (s *MemoryHistoryStore) Save(ctx context.Context, userID string, entries []model.HistoryEntry) error {
	key := Key(s.prefix, userID)

	payload, err := s.codec.Encode(entries)
	if err != nil {
		return &StorageError{Op: "save", Key: key, Err: err}
	}

	s.mu.Lock()
	s.data[key] = payload
	s.mu.Unlock()
	return nil
}

func (s *MemoryHistoryStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	delete(s.data, Key(s.prefix, userID))
	s.mu.Unlock()
	return nil
}
