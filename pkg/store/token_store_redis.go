package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTokenKey = "librairie:session:token"

// RedisTokenStore keeps the token in Redis, for deployments where several
// client processes share one session.
type RedisTokenStore struct {
	client *redis.Client
	key    string
}

// NewRedisTokenStore builds a Redis-backed token store. key defaults to
// "librairie:session:token".
func NewRedisTokenStore(addr, password, key string) *RedisTokenStore {
	if key == "" {
		key = defaultRedisTokenKey
	}
	return &RedisTokenStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		key: key,
	}
}

func (s *RedisTokenStore) Load() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	val, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisTokenStore) Save(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.client.Set(ctx, s.key, token, 0).Err()
}

func (s *RedisTokenStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.client.Del(ctx, s.key).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}
