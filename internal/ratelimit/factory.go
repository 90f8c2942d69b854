package ratelimit

import (
	"log"
	"time"

	"admission-gateway/internal/storage"
)

const (
	// StrategyStandard issues the purge, count and append steps as
	// independent round trips.
	StrategyStandard = "standard"

	// StrategyAtomic collapses the sequence into one server-side script.
	StrategyAtomic = "atomic"
)

// NewLimiter builds a limiter for the given strategy. The atomic strategy
// needs a store that can evaluate scripts; when the store cannot, it falls
// back to standard so a memory-backed deployment still works.
func NewLimiter(store storage.Store, strategy string, limit int, window time.Duration, keyPrefix string) Limiter {
	switch strategy {
	case StrategyAtomic:
		if scripter, ok := store.(Scripter); ok {
			return NewScriptLimiter(scripter, limit, window, keyPrefix)
		}
		log.Printf("Limiter strategy %q needs a scriptable store, using %q", strategy, StrategyStandard)
		return NewSlidingWindow(store, limit, window, keyPrefix)
	default:
		return NewSlidingWindow(store, limit, window, keyPrefix)
	}
}
