package ratelimit

import (
	"context"
	"fmt"
	"time"

	"admission-gateway/internal/storage"

	"github.com/google/uuid"
)

// Scripter is satisfied by stores that can evaluate a script server-side in
// one atomic step. The Redis client qualifies; the in-memory store does not.
type Scripter interface {
	storage.Store
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)
}

// checkScript is the whole purge/count/append sequence as one unit, so
// concurrent checks for the same identifier cannot interleave. Replies:
// {1, 0} admitted, {0, oldestScore} denied, {0, -1} denied with the log
// emptied mid-check.
const checkScript = `local key = KEYS[1]
local now = tonumber(ARGV[1])
local max = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, '(' .. ARGV[2])

if redis.call('ZCARD', key) >= max then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  if oldest[2] then
    return {0, tonumber(oldest[2])}
  end
  return {0, -1}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, ARGV[5])
return {1, 0}
`

// ScriptLimiter admits requests with the same trailing-window semantics as
// SlidingWindowLimiter but runs the store sequence atomically, trading the
// bounded overshoot of the standard strategy for a single round trip.
type ScriptLimiter struct {
	store     Scripter
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewScriptLimiter(store Scripter, limit int, window time.Duration, keyPrefix string) *ScriptLimiter {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &ScriptLimiter{
		store:     store,
		limit:     limit,
		window:    window,
		keyPrefix: keyPrefix,
	}
}

func (s *ScriptLimiter) Check(ctx context.Context, identifier string) (Result, error) {
	key := s.keyPrefix + identifier
	now := time.Now().UnixMilli()
	windowStart := now - s.window.Milliseconds()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())
	ttl := s.window.Milliseconds() + expiryBuffer.Milliseconds()

	raw, err := s.store.Eval(ctx, checkScript, []string{key}, now, windowStart, s.limit, member, ttl)
	if err != nil {
		return Result{}, err
	}

	reply, ok := raw.([]interface{})
	if !ok || len(reply) != 2 {
		return Result{}, &storage.StoreError{Op: "check script", Err: fmt.Errorf("unexpected reply %v", raw)}
	}

	if admitted, _ := reply[0].(int64); admitted == 1 {
		return Result{Allowed: true, Identifier: identifier}, nil
	}

	res := Result{Identifier: identifier}
	if oldest, _ := reply[1].(int64); oldest > 0 {
		secs := retryAfterSeconds(oldest, s.window.Milliseconds(), now)
		res.RetryAfter = &secs
	}
	return res, nil
}

func (s *ScriptLimiter) Limit() int {
	return s.limit
}

func (s *ScriptLimiter) Window() time.Duration {
	return s.window
}
