package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Redis guarda cada chave como string, sem TTL
type Redis struct{ R *redis.Client }

func NewRedis(r *redis.Client) *Redis { return &Redis{R: r} }

func (s *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.R.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Redis) Set(ctx context.Context, key, value string) error {
	return s.R.Set(ctx, key, value, 0).Err()
}
