package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check that RedisStore implements Store
var _ Store = (*RedisStore)(nil)

// updateAttempts bounds the WATCH/MULTI retries of Update under contention.
const updateAttempts = 5

// RedisStore is the Redis adapter of Store.
type RedisStore struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisStore(client *redis.Client, log *zap.Logger) *RedisStore {
	return &RedisStore{client: client, log: log.With(zap.String("component", "redis-store"))}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.fail("get", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return s.fail("set", key, err)
	}
	return nil
}

func (s *RedisStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, s.fail("setnx", key, err)
	}
	return ok, nil
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return s.fail("del", keys[0], err)
	}
	return nil
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, s.fail("exists", key, err)
	}
	return n > 0, nil
}

// Update is an optimistic read-modify-write: GET under WATCH, then SET inside
// MULTI/EXEC, retried when another client touched the key.
func (s *RedisStore) Update(ctx context.Context, key string, fn func(current string, found bool) (string, error)) error {
	var fnErr error
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		found := true
		if errors.Is(err, redis.Nil) {
			found = false
		} else if err != nil {
			return err
		}

		next, err := fn(current, found)
		if err != nil {
			fnErr = err
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, redis.KeepTTL)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < updateAttempts; attempt++ {
		fnErr = nil
		err = s.client.Watch(ctx, txf, key)
		if fnErr != nil {
			return fnErr
		}
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
		s.log.Debug("update contended, retrying", zap.String("key", key), zap.Int("attempt", attempt+1))
	}
	if err != nil {
		return s.fail("update", key, err)
	}
	return nil
}

func (s *RedisStore) SAdd(ctx context.Context, key, member string) (bool, error) {
	n, err := s.client.SAdd(ctx, key, member).Result()
	if err != nil {
		return false, s.fail("sadd", key, err)
	}
	return n > 0, nil
}

func (s *RedisStore) SCard(ctx context.Context, key string) (int64, error) {
	n, err := s.client.SCard(ctx, key).Result()
	if err != nil {
		return 0, s.fail("scard", key, err)
	}
	return n, nil
}

func (s *RedisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, s.fail("smembers", key, err)
	}
	return members, nil
}

func (s *RedisStore) fail(op, key string, err error) error {
	s.log.Error("redis operation failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
	return fmt.Errorf("%w: redis %s %s: %v", ErrUnavailable, op, key, err)
}
