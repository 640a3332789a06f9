package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ayni-health/backend/pkg/model"
)

// RedisOptions configures the Redis connection of RedisHistoryStore
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	TTL      time.Duration
}

// RedisHistoryStore keeps one encoded history per user key
type RedisHistoryStore struct {
	client *redis.Client
	prefix string
	codec  Codec
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisClient opens a Redis connection and verifies it with a ping
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisHistoryStore wraps an existing client. A zero ttl keeps histories forever.
func NewRedisHistoryStore(client *redis.Client, prefix string, ttl time.Duration, codec Codec, logger *zap.Logger) *RedisHistoryStore {
	return &RedisHistoryStore{
		client: client,
		prefix: prefix,
		codec:  codec,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *RedisHistoryStore) Load(ctx context.Context, userID string) ([]model.HistoryEntry, error) {
	key := Key(s.prefix, userID)

	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []model.HistoryEntry{}, nil
	}
	if err != nil {
		s.logger.Error("failed to load history from redis", zap.Error(err), zap.String("key", key))
		return nil, &StorageError{Op: "load", Key: key, Err: err}
	}

	entries, err := s.codec.Decode(payload)
	if err != nil {
		return nil, &StorageError{Op: "load", Key: key, Err: err}
	}
	return entries, nil
}

func (s *RedisHistoryStore) Save(ctx context.Context, userID string, entries []model.HistoryEntry) error {
	key := Key(s.prefix, userID)

	payload, err := s.codec.Encode(entries)
	if err != nil {
		return &StorageError{Op: "save", Key: key, Err: err}
	}

	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Error("failed to save history to redis", zap.Error(err), zap.String("key", key))
		return &StorageError{Op: "save", Key: key, Err: err}
	}
	return nil
}

func (s *RedisHistoryStore) Clear(ctx context.Context, userID string) error {
	key := Key(s.prefix, userID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return &StorageError{Op: "clear", Key: key, Err: err}
	}
	return nil
}

// Ping checks if Redis is reachable
func (s *RedisHistoryStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
