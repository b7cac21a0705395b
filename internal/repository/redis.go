package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront/internal/domain"
)

const redisField = "cart"

// RedisStore хранит запись в Redis: hash с ключом RecordName, поле "cart"
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore принимает "redis://..." URL или просто host:port
func NewRedisStore(addr string) *RedisStore {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		// not a URL, treat as plain address
		opts = &redis.Options{
			Addr:         addr,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}
	}
	return &RedisStore{client: redis.NewClient(opts), key: RecordName}
}

var _ CartRepository = (*RedisStore)(nil)

// Ping проверяет доступность Redis
func (r *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Load(ctx context.Context) (domain.CartState, error) {
	b, err := r.client.HGet(ctx, r.key, redisField).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CartState{}, ErrNotFound
	}
	if err != nil {
		return domain.CartState{}, fmt.Errorf("redis HGet: %w", err)
	}
	return Decode(b)
}

func (r *RedisStore) Save(ctx context.Context, s domain.CartState) error {
	b, err := Encode(s)
	if err != nil {
		return err
	}
	if err := r.client.HSet(ctx, r.key, redisField, b).Err(); err != nil {
		return fmt.Errorf("redis HSet: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
