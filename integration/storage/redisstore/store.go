package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookhaven/storefront/core/storage"
)

// Store is a storage.Storage backed by Redis string keys.
type Store struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

var _ storage.Storage = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPrefix namespaces every key, e.g. "storefront".
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix + ":"
		}
	}
}

// WithTTL expires keys that were not written for d. Zero keeps them forever.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// New creates a Redis-backed storage.
func New(client redis.Cmdable, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: redis client is required", storage.ErrInvalidConfig)
	}
	s := &Store{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) key(key string) (string, error) {
	if key == "" {
		return "", storage.ErrInvalidKey
	}
	return s.prefix + key, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	k, err := s.key(key)
	if err != nil {
		return nil, err
	}
	v, err := s.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	k, err := s.key(key)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, k, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	k, err := s.key(key)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, k).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}
