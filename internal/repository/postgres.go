package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ayni-health/backend/pkg/model"
)

const historySchema = `
	CREATE TABLE IF NOT EXISTS analysis_history (
		user_id    TEXT PRIMARY KEY,
		payload    BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// PostgresHistoryStore keeps one encoded history row per user
type PostgresHistoryStore struct {
	db     *pgxpool.Pool
	prefix string
	codec  Codec
	logger *zap.Logger
}

// NewPostgresHistoryStore creates a store on an existing pool
func NewPostgresHistoryStore(db *pgxpool.Pool, prefix string, codec Codec, logger *zap.Logger) *PostgresHistoryStore {
	return &PostgresHistoryStore{
		db:     db,
		prefix: prefix,
		codec:  codec,
		logger: logger,
	}
}

// EnsureSchema creates the history table if it does not exist
func (s *PostgresHistoryStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, historySchema); err != nil {
		return &StorageError{Op: "migrate", Key: "analysis_history", Err: err}
	}
	return nil
}

func (s *PostgresHistoryStore) Load(ctx context.Context, userID string) ([]model.HistoryEntry, error) {
	key := Key(s.prefix, userID)

	var payload []byte
	err := s.db.QueryRow(ctx, `SELECT payload FROM analysis_history WHERE user_id = $1`, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return []model.HistoryEntry{}, nil
	}
	if err != nil {
		s.logger.Error("failed to load history", zap.Error(err), zap.String("key", key))
		return nil, &StorageError{Op: "load", Key: key, Err: err}
	}

	entries, err := s.codec.Decode(payload)
	if err != nil {
		return nil, &StorageError{Op: "load", Key: key, Err: err}
	}
	return entries, nil
}

func (s *PostgresHistoryStore) Save(ctx context.Context, userID string, entries []model.HistoryEntry) error {
	key := Key(s.prefix, userID)

	payload, err := s.codec.Encode(entries)
	if err != nil {
		return &StorageError{Op: "save", Key: key, Err: err}
	}

	query := `
		INSERT INTO analysis_history (user_id, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = NOW()
	`
	if _, err := s.db.Exec(ctx, query, key, payload); err != nil {
		s.logger.Error("failed to save history", zap.Error(err), zap.String("key", key))
		return &StorageError{Op: "save", Key: key, Err: err}
	}
	return nil
}

func (s *PostgresHistoryStore) Clear(ctx context.Context, userID string) error {
	key := Key(s.prefix, userID)
	if _, err := s.db.Exec(ctx, `DELETE FROM analysis_history WHERE user_id = $1`, key); err != nil {
		return &StorageError{Op: "clear", Key: key, Err: err}
	}
	return nil
}
