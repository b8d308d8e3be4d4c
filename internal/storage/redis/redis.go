// redis - хранилище сессии в Redis: общая сессия для нескольких экземпляров шлюза.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pribylovaa/go-shop-client/internal/storage"
)

const defaultPrefix = "shop:session:"

type Store struct {
	rdb    goredis.Cmdable
	closer func() error
	prefix string
	ttl    time.Duration
}

var _ storage.Store = (*Store)(nil)

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой - используется "shop:session:". ttl <= 0 - ключи без срока жизни.
func New(ctx context.Context, redisURL, prefix string, ttl time.Duration) (*Store, error) {
	const op = "storage.redis.New"

	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := goredis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	s := NewWithClient(rdb, prefix, ttl)
	s.closer = rdb.Close
	return s, nil
}

// NewWithClient оборачивает уже созданный клиент. Close такого хранилища клиент не закрывает.
func NewWithClient(rdb goredis.Cmdable, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}

	if ttl < 0 {
		ttl = 0
	}

	return &Store{rdb: rdb, prefix: prefix, ttl: ttl, closer: func() error { return nil }}
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "storage.redis.Get"

	if key == "" {
		return "", false, storage.ErrEmptyKey
	}

	v, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	const op = "storage.redis.Set"

	if key == "" {
		return storage.ErrEmptyKey
	}

	if err := s.rdb.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	const op = "storage.redis.Delete"

	if key == "" {
		return storage.ErrEmptyKey
	}

	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Close() error { return s.closer() }
