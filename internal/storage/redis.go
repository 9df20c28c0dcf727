package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis хранит значения в Redis под общим префиксом.
type Redis struct {
	db     *redis.Client
	prefix string
}

// NewRedis подключается к Redis по адресу addr и проверяет соединение.
func NewRedis(ctx context.Context, addr, prefix string) (*Redis, error) {
	const op = "storage.NewRedis"

	db := redis.NewClient(&redis.Options{Addr: addr})
	if err := db.Ping(ctx).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Redis{db: db, prefix: prefix}, nil
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "storage.Redis.Get"

	val, err := r.db.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	const op = "storage.Redis.Set"

	if err := r.db.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	const op = "storage.Redis.Delete"

	if err := r.db.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает соединение с Redis.
func (r *Redis) Close() error {
	return r.db.Close()
}
