package storage

import (
	"context"
	"time"
)

// ScoredEntry is one member of a per-identifier request log, scored by its
// admission timestamp in milliseconds.
type ScoredEntry struct {
	Member string
	Score  float64
}

// Store is the capability set the sliding-window limiter needs from the
// shared store. Every call is a single round trip. Implementations wrap
// transport failures in *StoreError so callers only ever see one error kind.
type Store interface {
	// PurgeOlderThan removes entries scored strictly below cutoff.
	PurgeOlderThan(ctx context.Context, key string, cutoff int64) error

	// Count returns the number of live entries under key.
	Count(ctx context.Context, key string) (int64, error)

	// RangeWithScores returns entries in ascending score order.
	// Indexes follow Redis semantics: negative values count from the end.
	RangeWithScores(ctx context.Context, key string, start, stop int64) ([]ScoredEntry, error)

	// AddScored appends a member with the given score.
	AddScored(ctx context.Context, key string, score int64, member string) error

	// SetExpiry refreshes the key's time-to-live.
	SetExpiry(ctx context.Context, key string, ttl time.Duration) error

	Close() error
}
