package cache

import (
	"context"
	"errors"

	"advisor-chat-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "advisor-chat:"

// RedisKeyValueRepository keeps transcripts in Redis so every instance
// behind the load balancer reads the same conversation.
type RedisKeyValueRepository struct {
	rdb *redis.Client
}

func NewRedisKeyValueRepository(rdb *redis.Client) contract.KeyValueRepository {
	return &RedisKeyValueRepository{rdb: rdb}
}

func redisKey(key string) string {
	return keyPrefix + key
}

func (r *RedisKeyValueRepository) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisKeyValueRepository) Set(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, redisKey(key), value, 0).Err()
}

func (r *RedisKeyValueRepository) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, redisKey(key)).Err()
}
