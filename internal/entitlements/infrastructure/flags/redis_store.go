package flags

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisFlagStore keeps each scope's flag in a hash namespaced as
// {prefix}:flags:{scope}.
type RedisFlagStore struct {
	client *redis.Client
	prefix string
}

// NewRedisFlagStore creates a Redis-backed flag store.
func NewRedisFlagStore(client *redis.Client, prefix string) *RedisFlagStore {
	if prefix == "" {
		prefix = "coachly"
	}
	return &RedisFlagStore{client: client, prefix: prefix}
}

func (s *RedisFlagStore) key(scope string) string {
	return fmt.Sprintf("%s:flags:%s", s.prefix, scope)
}

func (s *RedisFlagStore) Load(ctx context.Context, scope string) (PremiumFlag, error) {
	values, err := s.client.HGetAll(ctx, s.key(scope)).Result()
	if err != nil {
		return PremiumFlag{}, fmt.Errorf("read premium flag: %w", err)
	}
	return FlagFromValues(values), nil
}

// Save replaces the hash atomically.
func (s *RedisFlagStore) Save(ctx context.Context, scope string, flag PremiumFlag) error {
	key := s.key(scope)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, flag.Values())
		return nil
	})
	if err != nil {
		return fmt.Errorf("write premium flag: %w", err)
	}
	return nil
}

func (s *RedisFlagStore) Clear(ctx context.Context, scope string) error {
	if err := s.client.Del(ctx, s.key(scope)).Err(); err != nil {
		return fmt.Errorf("clear premium flag: %w", err)
	}
	return nil
}

// Ping verifies the Redis server is reachable.
func (s *RedisFlagStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
