package util

import (
	"context"
	"fmt"
	"time"

	"pinemarket/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// RedisSessionStore хранит сессии редактирования в Redis.
// Сессии транзиентны по своей природе, но переживают перезапуск
// admin-service: недозаполненная форма не теряется.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(addr, password string, db int) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisSessionStore{client: client}, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		metrics.RedisErrors.WithLabelValues("admin", "get").Inc()
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		metrics.RedisErrors.WithLabelValues("admin", "set").Inc()
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		metrics.RedisErrors.WithLabelValues("admin", "del").Inc()
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Incr атомарно увеличивает счетчик. Используется для поколений сессий:
// счетчик без TTL, чтобы поколения не повторялись.
func (s *RedisSessionStore) Incr(ctx context.Context, key string) (int64, error) {
	val, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		metrics.RedisErrors.WithLabelValues("admin", "incr").Inc()
		return 0, fmt.Errorf("failed to incr key %s: %w", key, err)
	}
	return val, nil
}

func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}
