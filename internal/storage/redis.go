package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	client *redis.Client
}

var _ Store = (*RedisClient)(nil)

func NewRedis(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisClient{client: client}, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisClient) Close() error {
	return c.client.Close()
}

// PurgeOlderThan drops log entries scored strictly below cutoff. Scores are
// millisecond timestamps, so 0 is a safe lower bound.
func (c *RedisClient) PurgeOlderThan(ctx context.Context, key string, cutoff int64) error {
	max := "(" + strconv.FormatInt(cutoff, 10)
	if err := c.client.ZRemRangeByScore(ctx, key, "0", max).Err(); err != nil {
		return &StoreError{Op: "purge", Err: err}
	}
	return nil
}

func (c *RedisClient) Count(ctx context.Context, key string) (int64, error) {
	count, err := c.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, &StoreError{Op: "count", Err: err}
	}
	return count, nil
}

func (c *RedisClient) RangeWithScores(ctx context.Context, key string, start, stop int64) ([]ScoredEntry, error) {
	rows, err := c.client.ZRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		return nil, &StoreError{Op: "range", Err: err}
	}

	entries := make([]ScoredEntry, 0, len(rows))
	for _, row := range rows {
		member, _ := row.Member.(string)
		entries = append(entries, ScoredEntry{Member: member, Score: row.Score})
	}

	return entries, nil
}

func (c *RedisClient) AddScored(ctx context.Context, key string, score int64, member string) error {
	err := c.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(score),
		Member: member,
	}).Err()
	if err != nil {
		return &StoreError{Op: "add", Err: err}
	}
	return nil
}

func (c *RedisClient) SetExpiry(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.client.PExpire(ctx, key, ttl).Err(); err != nil {
		return &StoreError{Op: "expire", Err: err}
	}
	return nil
}

// Eval runs a Lua script server-side. Not part of Store; callers that need
// scripting type-assert for it.
func (c *RedisClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	res, err := c.client.Eval(ctx, script, keys, args...).Result()
	if err != nil {
		return nil, &StoreError{Op: "eval", Err: err}
	}
	return res, nil
}

// Hash operations below back the shared override store.

func (c *RedisClient) HSet(ctx context.Context, key, field, value string) error {
	if err := c.client.HSet(ctx, key, field, value).Err(); err != nil {
		return &StoreError{Op: "hset", Err: err}
	}
	return nil
}

func (c *RedisClient) HGet(ctx context.Context, key, field string) (string, bool, error) {
	val, err := c.client.HGet(ctx, key, field).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StoreError{Op: "hget", Err: err}
	}
	return val, true, nil
}

func (c *RedisClient) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	vals, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, &StoreError{Op: "hgetall", Err: err}
	}
	return vals, nil
}
