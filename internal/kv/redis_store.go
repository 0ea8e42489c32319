package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a Redis server. Prefix scans use SCAN with
// a MATCH pattern, so they observe Redis's usual scan guarantees (no
// ordering, entries written mid-scan may or may not appear) — which is
// within the unordered contract of GetByPrefix.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(url string) (*RedisStore, error) {
	if url == "" {
		return nil, errors.New("redis store configuration URL not provided")
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// NewRedisStoreWithClient wraps an existing client. Used by tests.
func NewRedisStoreWithClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (s *RedisStore) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	entries := make([]Entry, 0)

	iter := s.client.Scan(ctx, 0, escapeGlob(prefix)+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// deleted between scan and get
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		entries = append(entries, Entry{Key: key, Value: val})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return entries, nil
}

func (s *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return int(incr.Val()), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// escapeGlob escapes glob metacharacters in a SCAN MATCH pattern so prefixes
// containing "*", "?" or "[" match literally.
func escapeGlob(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`*`, `\*`,
		`?`, `\?`,
		`[`, `\[`,
		`]`, `\]`,
	)
	return replacer.Replace(s)
}
