package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"surveycore/internal/providers"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares sessions between replicas.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger providers.Logger
}

// Connect accepts either a redis:// URL or a bare host:port.
func Connect(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

func NewRedisStore(redisURL string, ttl time.Duration, logger providers.Logger) (*RedisStore, error) {
	client, err := Connect(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger}, nil
}

func (s *RedisStore) Put(ctx context.Context, tokenID, responseID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tokenPrefix+tokenID, responseID, s.ttl)
		pipe.Set(ctx, responsePrefix+responseID, tokenID, s.ttl)
		return nil
	})
	return err
}

func (s *RedisStore) get(ctx context.Context, key string) (string, bool) {
	v, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warnf(providers.TypeApp, "Session lookup failed, treating as miss: %v", err)
		}
		return "", false
	}
	return v, true
}

func (s *RedisStore) Lookup(ctx context.Context, tokenID string) (string, bool) {
	return s.get(ctx, tokenPrefix+tokenID)
}

func (s *RedisStore) TokenFor(ctx context.Context, responseID string) (string, bool) {
	return s.get(ctx, responsePrefix+responseID)
}

func (s *RedisStore) Delete(ctx context.Context, responseID string) error {
	keys := []string{responsePrefix + responseID}
	if tokenID, ok := s.TokenFor(ctx, responseID); ok {
		keys = append(keys, tokenPrefix+tokenID)
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
