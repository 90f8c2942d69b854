package ratelimit

import (
	"context"
	"fmt"
	"time"

	"admission-gateway/internal/storage"

	"github.com/google/uuid"
)

const (
	// DefaultKeyPrefix namespaces request logs in the shared store.
	DefaultKeyPrefix = "rate-limit:"

	// expiryBuffer pads the log key's TTL slightly past the window so an
	// idle log outlives its last useful read before the store drops it.
	expiryBuffer = time.Second
)

// SlidingWindowLimiter keeps a per-identifier log of request timestamps in
// the shared store and admits a request only while fewer than limit entries
// fall inside the trailing window. Purge, count and append run as separate
// round trips; concurrent checks for the same identifier can interleave
// between them, so the admitted count may briefly overshoot the limit by the
// number of in-flight checks.
type SlidingWindowLimiter struct {
	store     storage.Store
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewSlidingWindow(store storage.Store, limit int, window time.Duration, keyPrefix string) *SlidingWindowLimiter {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &SlidingWindowLimiter{
		store:     store,
		limit:     limit,
		window:    window,
		keyPrefix: keyPrefix,
	}
}

func (s *SlidingWindowLimiter) Check(ctx context.Context, identifier string) (Result, error) {
	key := s.keyPrefix + identifier
	now := time.Now().UnixMilli()
	windowStart := now - s.window.Milliseconds()

	// Drop entries that fell out of the window. Entries scored exactly at
	// windowStart still count.
	if err := s.store.PurgeOlderThan(ctx, key, windowStart); err != nil {
		return Result{}, err
	}

	count, err := s.store.Count(ctx, key)
	if err != nil {
		return Result{}, err
	}

	if count >= int64(s.limit) {
		return s.deny(ctx, key, identifier, now)
	}

	member := fmt.Sprintf("%d-%s", now, uuid.NewString())
	if err := s.store.AddScored(ctx, key, now, member); err != nil {
		return Result{}, err
	}
	if err := s.store.SetExpiry(ctx, key, s.window+expiryBuffer); err != nil {
		return Result{}, err
	}

	return Result{Allowed: true, Identifier: identifier}, nil
}

// deny estimates when the oldest logged request ages out. The log can empty
// between the count and this read when another check purges concurrently; in
// that case RetryAfter stays nil rather than guessing.
func (s *SlidingWindowLimiter) deny(ctx context.Context, key, identifier string, now int64) (Result, error) {
	oldest, err := s.store.RangeWithScores(ctx, key, 0, 0)
	if err != nil {
		return Result{}, err
	}

	res := Result{Identifier: identifier}
	if len(oldest) > 0 {
		secs := retryAfterSeconds(int64(oldest[0].Score), s.window.Milliseconds(), now)
		res.RetryAfter = &secs
	}
	return res, nil
}

func (s *SlidingWindowLimiter) Limit() int {
	return s.limit
}

func (s *SlidingWindowLimiter) Window() time.Duration {
	return s.window
}

// retryAfterSeconds converts the moment the oldest entry leaves the window
// into whole seconds from now, rounded up, clamped at zero.
func retryAfterSeconds(oldest, windowMS, now int64) int {
	ms := oldest + windowMS - now
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}
