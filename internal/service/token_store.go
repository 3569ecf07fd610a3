package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// TokenStore is the key-value contract behind the refresh token registry and
// the access token denylist. Implementations enforce TTLs themselves: a key
// whose TTL has elapsed reads as absent. Every operation is atomic for a
// single key. A non-nil error means the store could not be reached.
type TokenStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns found=false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Exists(ctx context.Context, key string) (bool, error)
	// Delete of an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

type RedisTokenStore struct {
	client  redis.UniversalClient
	timeout time.Duration
	logger  *logrus.Logger
}

func NewRedisTokenStore(client redis.UniversalClient, timeout time.Duration, logger *logrus.Logger) *RedisTokenStore {
	return &RedisTokenStore{
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

func (s *RedisTokenStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.WithError(err).Error("Failed to write token key to Redis")
		return fmt.Errorf("failed to set key: %w", err)
	}

	return nil
}

func (s *RedisTokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to read token key from Redis")
		return "", false, fmt.Errorf("failed to get key: %w", err)
	}

	return value, true, nil
}

func (s *RedisTokenStore) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		s.logger.WithError(err).Error("Failed to check token key in Redis")
		return false, fmt.Errorf("failed to check key: %w", err)
	}

	return n > 0, nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.WithError(err).Error("Failed to delete token key from Redis")
		return fmt.Errorf("failed to delete key: %w", err)
	}

	return nil
}
